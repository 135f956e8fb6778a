// Package resolver 将任意形状、中英（斯瓦希里语/英语）混合键名的教案记录
// 解析为规范的 lesson.Document 与对应语言的 LabelSet。解析从不失败，缺失字段退化为默认值。
package resolver

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ByLCY/lessonplan/lesson"
	"github.com/ByLCY/lessonplan/record"
)

// Resolve 解析原始记录。相同输入总是得到结构相同的结果。
func Resolve(raw any) (lesson.Document, lesson.LabelSet) {
	root := normalizeRoot(raw)
	lang := detect(root)
	labels := lesson.LabelsFor(lang)
	r := resolution{root: root, lang: lang}

	doc := lesson.Document{
		Language:         lang,
		School:           r.text(lesson.FieldSchool),
		Subject:          r.text(lesson.FieldSubject),
		Grade:            r.text(lesson.FieldGrade),
		Term:             r.text(lesson.FieldTerm),
		Date:             r.text(lesson.FieldDate),
		Time:             r.time(),
		Roll:             r.roll(),
		Teacher:          r.teacher(),
		Strand:           r.text(lesson.FieldStrand),
		SubStrand:        r.text(lesson.FieldSubStrand),
		GuidingQuestion:  r.text(lesson.FieldGuidingQuestion),
		LearningOutcomes: r.outcomes(),
		Resources:        r.resources(),
		LessonFlow:       r.lessonFlow(),
	}
	if doc.Subject == "" {
		doc.Subject = labels.Get(lesson.FieldDefaultSubject)
	}
	return doc, labels
}

func normalizeRoot(raw any) any {
	return record.FromAny(raw)
}

type resolution struct {
	root any
	lang lesson.Language
}

// locate 依次尝试本语言、通用、另一语言的候选位置，返回第一个非空值。
func locate(data any, sources []source, lang lesson.Language) (any, bool) {
	other := lesson.Kiswahili
	if lang == lesson.Kiswahili {
		other = lesson.English
	}
	for _, pass := range []lesson.Language{lang, "", other} {
		for _, s := range sources {
			if s.lang != pass {
				continue
			}
			if v, ok := record.LookupPath(data, s.path...); ok && present(v) {
				return v, true
			}
		}
	}
	return nil, false
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

func (r resolution) field(name string) (any, bool) {
	return locate(r.root, fieldTable[name], r.lang)
}

func (r resolution) text(name string) string {
	v, _ := r.field(name)
	return record.String(v)
}

func (r resolution) textIn(container any, sources []source) string {
	v, _ := locate(container, sources, r.lang)
	return record.String(v)
}

// scopes 返回查找人数等附属字段时依次使用的容器。
func (r resolution) scopes(container any) []any {
	var out []any
	if record.IsStructured(container) {
		out = append(out, container)
	}
	for _, admin := range []string{swAdmin, enAdmin} {
		if v, ok := record.Lookup(r.root, admin); ok && record.IsStructured(v) {
			out = append(out, v)
		}
	}
	return append(out, r.root)
}

func (r resolution) roll() lesson.Roll {
	container, found := r.field(lesson.FieldRoll)
	scopes := r.scopes(container)
	count := func(field string) (int, bool) {
		for _, scope := range scopes {
			if v, ok := locate(scope, rollKeys[field], r.lang); ok {
				if n, ok := record.Int(v); ok {
					return n, true
				}
			}
		}
		return 0, false
	}

	var roll lesson.Roll
	roll.Boys, _ = count(lesson.FieldBoys)
	roll.Girls, _ = count(lesson.FieldGirls)
	total, hasTotal := count(lesson.FieldTotal)
	if found && !record.IsStructured(container) {
		// 人数以单个数字给出时视为总数。
		if n, ok := record.Int(container); ok {
			total, hasTotal = n, true
		}
	}
	roll.Boys = max(roll.Boys, 0)
	roll.Girls = max(roll.Girls, 0)
	if !hasTotal {
		total = roll.Boys + roll.Girls
	}
	roll.Total = max(total, 0)
	return roll
}

func (r resolution) time() lesson.Time {
	v, ok := r.field(lesson.FieldTime)
	if !ok {
		return lesson.Time{}
	}
	if record.IsStructured(v) {
		t := lesson.Time{
			Start: r.textIn(v, timeKeys["start"]),
			End:   r.textIn(v, timeKeys["end"]),
		}
		if t.Start == "" && t.End == "" {
			t.Text = record.String(v)
		}
		return t
	}
	return lesson.Time{Text: record.String(v)}
}

func (r resolution) teacher() lesson.Teacher {
	var t lesson.Teacher
	if v, ok := r.field(lesson.FieldTeacher); ok {
		if record.IsStructured(v) {
			t.Name = r.textIn(v, teacherKeys["name"])
			t.TSCNumber = r.textIn(v, teacherKeys[lesson.FieldTSCNumber])
		} else {
			t.Name = record.String(v)
		}
	}
	if t.TSCNumber == "" {
		t.TSCNumber = r.text(lesson.FieldTSCNumber)
	}
	return t
}

func (r resolution) outcomes() []lesson.Outcome {
	out := []lesson.Outcome{}
	v, _ := r.field(lesson.FieldLearningOutcomes)
	items, ok := record.Items(v)
	if !ok {
		return out
	}
	for _, item := range items {
		var o lesson.Outcome
		if record.IsStructured(item) {
			o.ID = strings.TrimRight(r.textIn(item, outcomeKeys["id"]), ".)")
			o.Text = r.textIn(item, outcomeKeys["text"])
			if o.Text == "" {
				o.Text = textWithout(item, outcomeKeys["id"])
			}
		} else {
			o.Text = record.String(item)
		}
		if o.Text == "" {
			continue
		}
		out = append(out, o)
	}
	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	if !contiguous(ids) {
		for i := range out {
			out[i].ID = strconv.Itoa(i + 1)
		}
	}
	return out
}

// textWithout 把映射中不属于 skip 候选键的值连接为文本，用于没有可识别正文键的条目。
func textWithout(item any, skip []source) string {
	m, ok := item.(*record.Map)
	if !ok {
		return record.String(item)
	}
	rest := record.NewMap()
	for _, k := range m.Keys() {
		if matchesSource(k, skip) {
			continue
		}
		v, _ := m.Get(k)
		rest.Set(k, v)
	}
	return record.String(rest)
}

func matchesSource(key string, sources []source) bool {
	for _, s := range sources {
		if len(s.path) == 1 && record.NormalizeKey(s.path[0]) == record.NormalizeKey(key) {
			return true
		}
	}
	return false
}

// contiguous 判断 ID 是否已是 1,2,3… 或 a,b,c… 的连续序列。
func contiguous(ids []string) bool {
	numeric := true
	for i, id := range ids {
		if id != strconv.Itoa(i+1) {
			numeric = false
			break
		}
	}
	if numeric {
		return true
	}
	for i, id := range ids {
		runes := []rune(id)
		if len(runes) != 1 || i >= 26 || unicode.ToLower(runes[0]) != rune('a'+i) {
			return false
		}
	}
	return true
}

func (r resolution) resources() []string {
	out := []string{}
	v, ok := r.field(lesson.FieldResources)
	if !ok {
		return out
	}
	if items, ok := record.Items(v); ok {
		for _, item := range items {
			if s := record.String(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	text := strings.ReplaceAll(record.String(v), "\n", ",")
	return append(out, record.SplitList(text)...)
}

func (r resolution) lessonFlow() lesson.LessonFlow {
	flow, _ := r.field(lesson.FieldLessonFlow)
	find := func(part string) any {
		for _, scope := range []any{flow, r.root} {
			if v, ok := locate(scope, flowKeys[part], r.lang); ok {
				return v
			}
		}
		return nil
	}
	return lesson.LessonFlow{
		Introduction: r.part(find(lesson.FieldIntroduction)),
		Development:  r.development(find(lesson.FieldDevelopment)),
		Conclusion:   r.part(find(lesson.FieldConclusion)),
	}
}

func (r resolution) part(v any) lesson.Part {
	if v == nil {
		return lesson.Part{}
	}
	if record.IsStructured(v) {
		return lesson.Part{Description: r.textIn(v, partKeys)}
	}
	return lesson.Part{Description: record.String(v)}
}

func (r resolution) development(v any) []lesson.Step {
	items, ok := record.Items(v)
	if !ok {
		// 标量整体作为一个步骤
		if text := record.String(v); text != "" {
			return lesson.NormalizeSteps([]lesson.DevelopmentItem{lesson.Freeform{Text: text}})
		}
		return []lesson.Step{}
	}
	raw := make([]lesson.DevelopmentItem, 0, len(items))
	for _, item := range items {
		if !record.IsStructured(item) {
			raw = append(raw, lesson.Freeform{Text: record.String(item)})
			continue
		}
		s := lesson.Structured{
			Title:       r.textIn(item, stepKeys["title"]),
			Description: r.textIn(item, stepKeys["description"]),
			Activity:    r.textIn(item, stepKeys["activity"]),
		}
		if n, found := locate(item, stepKeys["step"], r.lang); found {
			s.Step, _ = record.Int(n)
		}
		raw = append(raw, s)
	}
	return lesson.NormalizeSteps(raw)
}
