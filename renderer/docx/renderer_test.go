package docxrenderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/ByLCY/lessonplan/layout"
)

func sampleResult() *layout.Result {
	fonts := layout.DefaultOptions(nil).Fonts
	size := 11 * layout.PtToMm
	page := func(i int, ops ...layout.DrawOp) layout.Page {
		return layout.Page{Index: i, Width: 210, Height: 297, Margin: layout.Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}, Ops: ops}
	}
	return &layout.Result{
		Pages: []layout.Page{
			page(0,
				layout.DrawOp{Kind: layout.OpTitle, Font: layout.FontBold, FontSize: 16 * layout.PtToMm, Text: "LESSON PLAN"},
				layout.DrawOp{Kind: layout.OpKeyValue, Font: layout.FontBody, FontSize: size, Label: "Subject", Value: "Biology",
					Boxes: []layout.TextBox{{Font: layout.FontBold}, {Font: layout.FontBody}}},
			),
			page(1,
				layout.DrawOp{Kind: layout.OpListItem, Font: layout.FontBody, FontSize: size, Prefix: "1) ", Text: "Define cell", Numbered: true, Index: 1},
				layout.DrawOp{Kind: layout.OpParagraph, Font: layout.FontBody, FontSize: size, Text: "Step 1: Observe\nActivity: Draw"},
			),
		},
		Resources: layout.ResourceSet{Fonts: fonts.Fonts},
	}
}

func paragraphs(t *testing.T, data []byte) []string {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	var out []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			out = append(out, p.String())
		}
	}
	return out
}

func TestRenderDOCX(t *testing.T) {
	data, err := New().Render(sampleResult())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	paras := paragraphs(t, data)
	var texts []string
	breaks := 0
	for _, p := range paras {
		if strings.TrimSpace(p) == "" {
			breaks++
			continue
		}
		texts = append(texts, p)
	}
	want := []string{"LESSON PLAN", "Subject: Biology", "1) Define cell", "Step 1: Observe\nActivity: Draw"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected paragraphs %q", texts)
	}
	if breaks != 1 {
		t.Fatalf("expected one page break paragraph, got %d", breaks)
	}
}

func TestRenderDOCXRejectsEmpty(t *testing.T) {
	if _, err := New().Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for empty result")
	}
}

func TestHalfPoints(t *testing.T) {
	if got := halfPoints(11 * layout.PtToMm); got != "22" {
		t.Fatalf("expected 22 half-points, got %s", got)
	}
}
