package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/lessonplan/lesson"
)

// Compose 按固定顺序把规范化教案排成分页结果：
// 标题 → 基本信息 → 主题/子主题 → 探究问题 → 学习目标 → 学习资源 → 课堂流程。
// 只有排版后端出错时才返回错误，此时不返回部分结果。
func Compose(doc lesson.Document, labels lesson.LabelSet, opts Options) (*Result, error) {
	opts.NotAvailable = labels.Get(lesson.FieldNotAvailable)
	e, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}
	c := composer{engine: e, labels: labels}

	c.title()
	c.basicInformation(doc)
	c.keyValue(lesson.FieldStrand, doc.Strand)
	c.keyValue(lesson.FieldSubStrand, doc.SubStrand)

	c.heading(lesson.FieldGuidingQuestion)
	c.paragraph(doc.GuidingQuestion)

	c.heading(lesson.FieldLearningOutcomes)
	c.paragraph(labels.Get(lesson.FieldOutcomeStatement))
	outcomes := make([]string, 0, len(doc.LearningOutcomes))
	for _, o := range doc.LearningOutcomes {
		outcomes = append(outcomes, o.Text)
	}
	c.list(outcomes, true)

	c.heading(lesson.FieldResources)
	c.list(doc.Resources, false)

	c.lessonFlow(doc.LessonFlow)

	if c.err != nil {
		return nil, c.err
	}
	return e.Result(documentMeta(doc, labels, opts.Meta)), nil
}

// composer 在第一次出错后忽略后续指令。
type composer struct {
	engine *Engine
	labels lesson.LabelSet
	err    error
}

func (c *composer) do(fn func() error) {
	if c.err != nil {
		return
	}
	c.err = fn()
}

func (c *composer) title() {
	c.do(func() error { return c.engine.AddTitle(c.labels.Get(lesson.FieldTitle)) })
}

func (c *composer) heading(field string) {
	c.do(func() error { return c.engine.AddSectionHeading(c.labels.Get(field)) })
}

func (c *composer) keyValue(field, value string) {
	c.do(func() error { return c.engine.AddKeyValue(c.labels.Get(field), value) })
}

func (c *composer) paragraph(text string) {
	c.do(func() error { return c.engine.AddParagraph(text) })
}

func (c *composer) list(items []string, numbered bool) {
	c.do(func() error { return c.engine.AddList(items, numbered) })
}

func (c *composer) basicInformation(doc lesson.Document) {
	c.keyValue(lesson.FieldSchool, doc.School)
	c.keyValue(lesson.FieldSubject, doc.Subject)
	c.keyValue(lesson.FieldGrade, doc.Grade)
	if doc.Term != "" {
		c.keyValue(lesson.FieldTerm, doc.Term)
	}
	c.keyValue(lesson.FieldDate, doc.Date)
	c.keyValue(lesson.FieldTime, doc.Time.String())
	c.keyValue(lesson.FieldRoll, RollSummary(doc.Roll, c.labels))
	if doc.Teacher.Name != "" {
		c.keyValue(lesson.FieldTeacher, doc.Teacher.Name)
	}
	if doc.Teacher.TSCNumber != "" {
		c.keyValue(lesson.FieldTSCNumber, doc.Teacher.TSCNumber)
	}
}

func (c *composer) lessonFlow(flow lesson.LessonFlow) {
	c.heading(lesson.FieldLessonFlow)
	c.keyValue(lesson.FieldIntroduction, flow.Introduction.Description)
	c.do(func() error { return c.engine.AddSubHeading(c.labels.Get(lesson.FieldDevelopment)) })
	if len(flow.Development) == 0 {
		c.paragraph("")
	}
	for _, step := range flow.Development {
		c.paragraph(StepText(step, c.labels))
	}
	c.keyValue(lesson.FieldConclusion, flow.Conclusion.Description)
}

// RollSummary 组合人数文本，例如 "Boys: 3, Girls: 2, Total: 5"。
func RollSummary(roll lesson.Roll, labels lesson.LabelSet) string {
	return fmt.Sprintf("%s: %d, %s: %d, %s: %d",
		labels.Get(lesson.FieldBoys), roll.Boys,
		labels.Get(lesson.FieldGirls), roll.Girls,
		labels.Get(lesson.FieldTotal), roll.Total)
}

// StepText 生成步骤段落："Step N: 描述"。标题另起一行，活动附在末行；
// 没有描述时标题接在编号之后。
func StepText(step lesson.Step, labels lesson.LabelSet) string {
	head := fmt.Sprintf("%s %d: ", labels.Get(lesson.FieldStep), step.Step)
	var lines []string
	switch {
	case step.Description != "":
		lines = append(lines, head+step.Description)
		if step.Title != "" {
			lines = append(lines, step.Title)
		}
	case step.Title != "":
		lines = append(lines, head+step.Title)
	default:
		lines = append(lines, head+labels.Get(lesson.FieldNotAvailable))
	}
	if step.Activity != "" {
		lines = append(lines, labels.Get(lesson.FieldActivity)+": "+step.Activity)
	}
	return strings.Join(lines, "\n")
}

func documentMeta(doc lesson.Document, labels lesson.LabelSet, base DocumentMeta) DocumentMeta {
	meta := DocumentMeta{
		Title:   strings.TrimSpace(doc.Subject + " " + strings.ToLower(labels.Get(lesson.FieldTitle))),
		Author:  doc.Teacher.Name,
		Subject: doc.Subject,
		Creator: base.Creator,
	}
	meta.Keywords = append(meta.Keywords, base.Keywords...)
	for _, k := range []string{doc.Strand, doc.SubStrand} {
		if k != "" {
			meta.Keywords = append(meta.Keywords, k)
		}
	}
	return meta
}
