// Package docxrenderer writes paginated lesson plans as Word documents.
package docxrenderer

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/ByLCY/lessonplan/layout"
	"github.com/ByLCY/lessonplan/renderer"
)

// twipsPerMM converts millimetres to twentieths of a point.
const twipsPerMM = 1440 / 25.4

var _ renderer.Renderer = (*Renderer)(nil)

// Renderer emits one Word paragraph per draw op and a page break between
// layout pages, so the DOCX keeps the same page boundaries as the PDF.
type Renderer struct{}

// New returns a DOCX renderer.
func New() *Renderer { return &Renderer{} }

// Render implements renderer.Renderer.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	doc := docx.New().WithDefaultTheme()
	fonts := result.Resources.Fonts

	for i, page := range result.Pages {
		if i > 0 {
			doc.AddParagraph().AddPageBreaks()
		}
		for _, op := range page.Ops {
			writeOp(doc, op, fonts)
		}
	}
	doc.Document.Body.Items = append(doc.Document.Body.Items, sectionProperties(result.Pages[0]))

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("写入 DOCX 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func writeOp(doc *docx.Docx, op layout.DrawOp, fonts map[string]layout.FontResource) {
	p := doc.AddParagraph()
	size := halfPoints(op.FontSize)
	switch op.Kind {
	case layout.OpTitle:
		p.Justification("center")
		styled(p.AddText(op.Text), op.Font, size, fonts)
	case layout.OpSectionHeading:
		styled(p.AddText(op.Text), op.Font, size, fonts)
	case layout.OpKeyValue:
		labelFont := op.Font
		if len(op.Boxes) > 0 {
			labelFont = op.Boxes[0].Font
		}
		if op.Label != "" {
			styled(p.AddText(op.Label+": "), labelFont, size, fonts)
		}
		styled(p.AddText(op.Value), op.Font, size, fonts)
	case layout.OpListItem:
		styled(p.AddText(op.Prefix+op.Text), op.Font, size, fonts)
	default:
		styled(p.AddText(op.Text), op.Font, size, fonts)
	}
}

func styled(run *docx.Run, fontName, size string, fonts map[string]layout.FontResource) {
	run.Size(size)
	font, ok := fonts[fontName]
	if !ok {
		return
	}
	style := strings.ToLower(font.Style)
	if strings.Contains(style, "bold") {
		run.Bold()
	}
	if strings.Contains(style, "italic") {
		run.Italic()
	}
	if font.Family != "" {
		run.Font(font.Family, font.Family, font.Family, "")
	}
}

// halfPoints formats a size in mm as Word half-points.
func halfPoints(mm float64) string {
	return strconv.Itoa(int(math.Round(mm * layout.MmToPt * 2)))
}

func sectionProperties(page layout.Page) *docx.SectPr {
	twips := func(mm float64) int { return int(math.Round(mm * twipsPerMM)) }
	return &docx.SectPr{
		PgSz: &docx.PgSz{W: twips(page.Width), H: twips(page.Height)},
		PgMar: &docx.PgMar{
			Top:    twips(page.Margin.Top),
			Left:   twips(page.Margin.Left),
			Bottom: twips(page.Margin.Bottom),
			Right:  twips(page.Margin.Right),
			Header: twips(page.Margin.Top / 2),
			Footer: twips(page.Margin.Bottom / 2),
		},
	}
}
