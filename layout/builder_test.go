package layout

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/lessonplan/lesson"
	"github.com/ByLCY/lessonplan/resolver"
)

// stubTypesetter 是测试用的确定性实现：每个字符宽 0.5×字号，按空格贪心折行。
type stubTypesetter struct {
	err error
}

func (s *stubTypesetter) width(content string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(content)) * fontSize * 0.5
}

func (s *stubTypesetter) MeasureWidth(content string, font FontResource, fontSize float64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.width(content, fontSize), nil
}

func (s *stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []TextLine
	for _, para := range strings.Split(content, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if line != "" && s.width(candidate, fontSize) > width {
				out = append(out, TextLine{Content: line, Width: s.width(line, fontSize), Height: fontSize})
				line = word
				continue
			}
			line = candidate
		}
		out = append(out, TextLine{Content: line, Width: s.width(line, fontSize), Height: fontSize})
	}
	return out, nil
}

func allOps(res *Result) []DrawOp {
	var ops []DrawOp
	for _, p := range res.Pages {
		ops = append(ops, p.Ops...)
	}
	return ops
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestNewEngineCursorStartsAtTopMargin(t *testing.T) {
	e, err := NewEngine(DefaultOptions(&stubTypesetter{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if c := e.Cursor(); c.Page != 0 || c.Y != 20 {
		t.Fatalf("unexpected cursor %+v", c)
	}
	if _, err := NewEngine(Options{}); err == nil {
		t.Fatalf("expected error without typesetter")
	}
}

func TestScenarioA(t *testing.T) {
	doc, labels := resolver.Resolve(map[string]any{
		"administrativeDetails": map[string]any{"subject": "Biology", "grade": "10"},
		"learningOutcomes":      []any{map[string]any{"id": "1", "outcome": "Define cell"}},
	})
	if doc.Subject != "Biology" {
		t.Fatalf("unexpected subject %q", doc.Subject)
	}
	res, err := Compose(doc, labels, DefaultOptions(&stubTypesetter{}))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	first := res.Pages[0].Ops
	if first[0].Kind != OpTitle || first[0].Text != "LESSON PLAN" {
		t.Fatalf("expected title op first, got %+v", first[0])
	}
	var subjectOK, itemOK bool
	for _, op := range allOps(res) {
		if op.Kind == OpKeyValue && op.Label == "Subject" && op.Value == "Biology" {
			subjectOK = true
		}
		if op.Kind == OpListItem && op.Numbered && op.Prefix+op.Text == "1) Define cell" {
			itemOK = true
		}
	}
	if !subjectOK || !itemOK {
		t.Fatalf("missing subject key/value (%v) or numbered item (%v)", subjectOK, itemOK)
	}
	if res.Meta.Subject != "Biology" || res.Meta.Creator != "lessonplan" {
		t.Fatalf("unexpected meta %+v", res.Meta)
	}
}

func TestScenarioB(t *testing.T) {
	doc, labels := resolver.Resolve(map[string]any{"MAELEZO YA KIUTAWALA": map[string]any{"Somo": "Kiswahili"}})
	if !labels.IsSecondLanguage {
		t.Fatalf("expected second language")
	}
	res, err := Compose(doc, labels, DefaultOptions(&stubTypesetter{}))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if title := res.Pages[0].Ops[0]; title.Text != "MPANGO WA SOMO" {
		t.Fatalf("expected kiswahili title, got %q", title.Text)
	}
}

func TestScenarioCOverflowKeepsStepsWhole(t *testing.T) {
	var steps []lesson.Step
	for i := 1; i <= 40; i++ {
		steps = append(steps, lesson.Step{Step: i, Description: words(30)})
	}
	doc := lesson.Document{Subject: "Biology", LessonFlow: lesson.LessonFlow{Development: steps}}
	labels := lesson.LabelsFor(lesson.English)
	res, err := Compose(doc, labels, DefaultOptions(&stubTypesetter{}))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(res.Pages) < 2 {
		t.Fatalf("expected more than one page, got %d", len(res.Pages))
	}
	found := 0
	for _, op := range allOps(res) {
		if op.Kind == OpParagraph && strings.HasPrefix(op.Text, "Step ") {
			found++
			want := StepText(steps[found-1], labels)
			if op.Text != want {
				t.Fatalf("step %d was split or altered: %q", found, op.Text)
			}
		}
	}
	if found != len(steps) {
		t.Fatalf("expected %d step paragraphs, got %d", len(steps), found)
	}
}

func TestPaginationInvariant(t *testing.T) {
	doc := lesson.Document{
		School:          words(20),
		Subject:         "Biology",
		GuidingQuestion: words(600),
		Resources:       []string{words(5), words(80), ""},
		LearningOutcomes: []lesson.Outcome{
			{ID: "1", Text: words(200)},
			{ID: "2", Text: "Short"},
		},
		LessonFlow: lesson.LessonFlow{
			Introduction: lesson.Part{Description: words(300)},
			Development:  []lesson.Step{{Step: 1, Title: "Intro", Description: words(40), Activity: words(10)}},
		},
	}
	labels := lesson.LabelsFor(lesson.English)
	for _, height := range []float64{60, 90, 150, 297} {
		opts := DefaultOptions(&stubTypesetter{})
		opts.Geometry = Geometry{Width: 120, Height: height, Margin: Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}}
		res, err := Compose(doc, labels, opts)
		if err != nil {
			t.Fatalf("height %g: compose: %v", height, err)
		}
		for _, page := range res.Pages {
			limit := page.Height - page.Margin.Bottom
			for _, op := range page.Ops {
				if op.Bottom() > limit+1e-9 {
					t.Fatalf("height %g page %d: %s op bottom %g exceeds %g", height, page.Index, op.Kind, op.Bottom(), limit)
				}
				if op.Y < page.Margin.Top-1e-9 {
					t.Fatalf("height %g page %d: op starts above top margin at %g", height, page.Index, op.Y)
				}
			}
		}
	}
}

func TestOversizedParagraphSplitsAtLineBoundaries(t *testing.T) {
	opts := DefaultOptions(&stubTypesetter{})
	opts.Geometry = Geometry{Width: 120, Height: 60, Margin: Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}}
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	text := words(400)
	if err := e.AddParagraph(text); err != nil {
		t.Fatalf("add paragraph: %v", err)
	}
	res := e.Result(DocumentMeta{})
	if len(res.Pages) < 2 {
		t.Fatalf("expected paragraph to span pages, got %d", len(res.Pages))
	}
	var pieces []string
	for _, page := range res.Pages {
		if len(page.Ops) != 1 || page.Ops[0].Kind != OpParagraph {
			t.Fatalf("page %d: expected one paragraph piece, got %+v", page.Index, page.Ops)
		}
		pieces = append(pieces, page.Ops[0].Text)
	}
	if strings.Join(pieces, " ") != text {
		t.Fatalf("split pieces do not reassemble the paragraph")
	}
	if c := e.Cursor(); c.Page != len(res.Pages)-1 {
		t.Fatalf("cursor page %d does not match last page %d", c.Page, len(res.Pages)-1)
	}
}

func TestOpStartsNewPageWhenItDoesNotFit(t *testing.T) {
	opts := DefaultOptions(&stubTypesetter{})
	opts.Geometry = Geometry{Width: 120, Height: 60, Margin: Margin{Top: 10, Right: 10, Bottom: 10, Left: 10}}
	e, _ := NewEngine(opts)
	for i := 0; i < 20; i++ {
		if err := e.AddKeyValue("Key", words(6)); err != nil {
			t.Fatalf("add key/value: %v", err)
		}
	}
	res := e.Result(DocumentMeta{})
	if len(res.Pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(res.Pages))
	}
	for _, page := range res.Pages {
		for _, op := range page.Ops {
			if op.Label != "Key" || op.Value != words(6) {
				t.Fatalf("key/value op was split: %+v", op)
			}
		}
	}
}

func TestListFallbackRendersSingleNAParagraph(t *testing.T) {
	labels := lesson.LabelsFor(lesson.English)
	res, err := Compose(lesson.Document{Resources: []string{"Chart"}}, labels, DefaultOptions(&stubTypesetter{}))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	ops := allOps(res)
	start, end := -1, -1
	for i, op := range ops {
		if op.Kind != OpSectionHeading {
			continue
		}
		switch op.Text {
		case "SPECIFIC LEARNING OUTCOMES":
			start = i
		case "LEARNING RESOURCES":
			end = i
		}
	}
	if start < 0 || end < start {
		t.Fatalf("outcome section not found")
	}
	section := ops[start+1 : end]
	if len(section) != 2 {
		t.Fatalf("expected statement and one N/A paragraph, got %d ops", len(section))
	}
	if section[1].Kind != OpParagraph || section[1].Text != "N/A" {
		t.Fatalf("expected N/A paragraph, got %+v", section[1])
	}
}

func TestKeyValueGeometry(t *testing.T) {
	ts := &stubTypesetter{}
	opts := DefaultOptions(ts)
	e, _ := NewEngine(opts)
	if err := e.AddKeyValue("Subject", "Biology"); err != nil {
		t.Fatalf("add key/value: %v", err)
	}
	long := strings.Repeat("Label ", 30)
	if err := e.AddKeyValue(long, ""); err != nil {
		t.Fatalf("add key/value: %v", err)
	}
	ops := e.Result(DocumentMeta{}).Pages[0].Ops

	labelWidth := ts.width("Subject: ", opts.Typography.Label.Size)
	value := ops[0].Boxes[1]
	if math.Abs(value.X-(opts.Geometry.Margin.Left+labelWidth)) > 1e-9 {
		t.Fatalf("value should start at margin+labelWidth, got %g", value.X)
	}
	if math.Abs(value.Width-(opts.Geometry.ContentWidth()-labelWidth)) > 1e-9 {
		t.Fatalf("unexpected value width %g", value.Width)
	}
	if ops[0].Height <= value.Height {
		t.Fatalf("key/value height should include padding")
	}

	capped := ops[1].Boxes[0]
	if capped.Width > opts.Geometry.ContentWidth()*0.6+1e-9 {
		t.Fatalf("label width %g exceeds cap", capped.Width)
	}
	if ops[1].Value != "N/A" {
		t.Fatalf("empty value should render N/A, got %q", ops[1].Value)
	}
}

func TestSectionHeadingUpperCase(t *testing.T) {
	e, _ := NewEngine(DefaultOptions(&stubTypesetter{}))
	if err := e.AddSectionHeading("Lesson flow"); err != nil {
		t.Fatalf("add heading: %v", err)
	}
	op := e.Result(DocumentMeta{}).Pages[0].Ops[0]
	if op.Kind != OpSectionHeading || op.Text != "LESSON FLOW" {
		t.Fatalf("unexpected heading %+v", op)
	}
}

func TestListPrefixes(t *testing.T) {
	e, _ := NewEngine(DefaultOptions(&stubTypesetter{}))
	if err := e.AddList([]string{"Chart", "Slides"}, false); err != nil {
		t.Fatalf("add list: %v", err)
	}
	if err := e.AddList([]string{"Define", "Draw"}, true); err != nil {
		t.Fatalf("add list: %v", err)
	}
	ops := e.Result(DocumentMeta{}).Pages[0].Ops
	want := []string{"• Chart", "• Slides", "1) Define", "2) Draw"}
	for i, w := range want {
		if got := ops[i].Prefix + ops[i].Text; got != w {
			t.Fatalf("item %d: got %q want %q", i, got, w)
		}
	}
	if ops[3].Index != 2 || !ops[3].Numbered {
		t.Fatalf("unexpected numbering %+v", ops[3])
	}
	if ops[0].X != 20+5 {
		t.Fatalf("list items should be indented, got x=%g", ops[0].X)
	}
}

func TestComposeReportsTypesetterFailure(t *testing.T) {
	boom := errors.New("font missing")
	res, err := Compose(lesson.Document{}, lesson.LabelsFor(lesson.English), DefaultOptions(&stubTypesetter{err: boom}))
	if err == nil || res != nil {
		t.Fatalf("expected failure without partial result, got %v %v", res, err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped typesetter error, got %v", err)
	}
}

func TestFormatting(t *testing.T) {
	en := lesson.LabelsFor(lesson.English)
	if got := RollSummary(lesson.Roll{Boys: 3, Girls: 2, Total: 5}, en); got != "Boys: 3, Girls: 2, Total: 5" {
		t.Fatalf("unexpected roll summary %q", got)
	}
	sw := lesson.LabelsFor(lesson.Kiswahili)
	if got := RollSummary(lesson.Roll{}, sw); got != "Wavulana: 0, Wasichana: 0, Jumla: 0" {
		t.Fatalf("unexpected kiswahili roll summary %q", got)
	}
	if got := StepText(lesson.Step{Step: 2, Description: "Observe"}, en); got != "Step 2: Observe" {
		t.Fatalf("unexpected step text %q", got)
	}
	got := StepText(lesson.Step{Step: 1, Title: "Warm up", Description: "Recall", Activity: "Pair talk"}, sw)
	if got != "Hatua 1: Recall\nWarm up\nShughuli: Pair talk" {
		t.Fatalf("unexpected titled step text %q", got)
	}
	if got := StepText(lesson.Step{Step: 2, Title: "Observation", Description: "Look at cells"}, en); got != "Step 2: Look at cells\nObservation" {
		t.Fatalf("description should follow the step label, got %q", got)
	}
	if got := StepText(lesson.Step{Step: 3, Title: "Recap"}, en); got != "Step 3: Recap" {
		t.Fatalf("title should stand in for a missing description, got %q", got)
	}
}

func TestComposeOptionalBasicFields(t *testing.T) {
	labels := lesson.LabelsFor(lesson.English)
	res, err := Compose(lesson.Document{Subject: "Biology", Time: lesson.Time{Start: "8:00", End: "8:40"}}, labels, DefaultOptions(&stubTypesetter{}))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	seen := map[string]string{}
	for _, op := range allOps(res) {
		if op.Kind == OpKeyValue {
			seen[op.Label] = op.Value
		}
	}
	for _, absent := range []string{"Term", "Teacher", "TSC Number"} {
		if _, ok := seen[absent]; ok {
			t.Fatalf("%s should be omitted when empty", absent)
		}
	}
	if seen["School"] != "N/A" || seen["Time"] != "8:00 – 8:40" || seen["Roll"] != "Boys: 0, Girls: 0, Total: 0" {
		t.Fatalf("unexpected basic fields %+v", seen)
	}
}
