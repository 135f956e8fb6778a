package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/ByLCY/lessonplan/layout"
)

func result() *layout.Result {
	fonts := layout.DefaultOptions(nil).Fonts
	size := 11 * layout.PtToMm
	line := layout.TextLine{Content: "LESSON PLAN", Height: size}
	page := layout.Page{
		Width: 210, Height: 297, Margin: layout.Margin{Top: 20, Right: 20, Bottom: 20, Left: 20},
		Ops: []layout.DrawOp{
			{Kind: layout.OpTitle, X: 20, Y: 20, Width: 170, Height: 14, Font: layout.FontBold, FontSize: size,
				Boxes: []layout.TextBox{{X: 20, Y: 20, Width: 170, Font: layout.FontBold, FontSize: size, Align: "center", Lines: []layout.TextLine{line}}}},
			{Kind: layout.OpSectionHeading, X: 20, Y: 40, Width: 170, Height: size, Font: layout.FontBold, FontSize: size,
				Boxes: []layout.TextBox{{X: 20, Y: 40, Width: 170, Font: "Missing", FontSize: size, Lines: []layout.TextLine{{Content: "RESOURCES", Height: size}}}}},
		},
	}
	second := page
	second.Index = 1
	return &layout.Result{Pages: []layout.Page{page, second}, Resources: fonts}
}

func TestRenderPagePNG(t *testing.T) {
	r := New(72)
	data, err := r.RenderPage(result(), 1)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 595 || b.Dy() != 842 {
		t.Fatalf("unexpected image size %dx%d", b.Dx(), b.Dy())
	}
	// 标题区域应有非白色像素
	dark := false
	for y := 56; y < 100 && !dark; y++ {
		for x := 0; x < b.Dx(); x++ {
			if r, g, bl, _ := img.At(x, y).RGBA(); r < 0x8000 && g < 0x8000 && bl < 0x8000 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Fatalf("expected title glyphs to be drawn")
	}
}

func TestRenderPageOutOfRange(t *testing.T) {
	r := New(0)
	if _, err := r.RenderPage(result(), 5); err == nil {
		t.Fatalf("expected range error")
	}
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}
