// Package preview rasterises layout pages to PNG thumbnails.
package preview

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/ByLCY/lessonplan/fonts"
	"github.com/ByLCY/lessonplan/layout"
	"github.com/ByLCY/lessonplan/renderer"
)

// DefaultDPI is used when Renderer.DPI is not set.
const DefaultDPI = 96

var _ renderer.Renderer = (*Renderer)(nil)

// Renderer draws pages with fogleman/gg. Parsed fonts are shared across
// calls; faces hold glyph caches and are created per page.
type Renderer struct {
	DPI float64

	mu     sync.Mutex
	parsed map[string]*truetype.Font
}

// New returns a preview renderer at the given resolution.
func New(dpi float64) *Renderer {
	return &Renderer{DPI: dpi}
}

// Render returns the first page as PNG.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	return r.RenderPage(result, 0)
}

// RenderPage returns page index (0-based) as PNG.
func (r *Renderer) RenderPage(result *layout.Result, index int) ([]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	if index < 0 || index >= len(result.Pages) {
		return nil, fmt.Errorf("页码 %d 超出范围 (共 %d 页)", index, len(result.Pages))
	}
	page := result.Pages[index]
	scale := r.dpi() / 25.4

	dc := gg.NewContext(int(math.Round(page.Width*scale)), int(math.Round(page.Height*scale)))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.RGBA{R: 30, G: 30, B: 30, A: 255})

	faces := map[string]font.Face{}
	for _, op := range page.Ops {
		for _, tb := range op.Boxes {
			if err := r.drawTextBox(dc, tb, result.Resources.Fonts, scale, faces); err != nil {
				return nil, err
			}
		}
		if op.Kind == layout.OpSectionHeading {
			y := op.Bottom() * scale
			dc.SetLineWidth(1)
			dc.DrawLine(op.X*scale, y, (op.X+op.Width)*scale, y)
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawTextBox(dc *gg.Context, tb layout.TextBox, res map[string]layout.FontResource, scale float64, faces map[string]font.Face) error {
	face, err := r.face(res[tb.Font], tb.FontSize*layout.MmToPt, faces)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	ascent := float64(face.Metrics().Ascent) / 64

	y := tb.Y
	for _, line := range tb.Lines {
		y += line.GapBefore
		if line.Content != "" {
			x := tb.X * scale
			w, _ := dc.MeasureString(line.Content)
			switch strings.ToLower(tb.Align) {
			case "center":
				x = (tb.X+tb.Width/2)*scale - w/2
			case "right", "end":
				x = (tb.X+tb.Width)*scale - w
			}
			dc.DrawString(line.Content, x, y*scale+ascent)
		}
		y += line.Height
	}
	return nil
}

func (r *Renderer) dpi() float64 {
	if r.DPI <= 0 {
		return DefaultDPI
	}
	return r.DPI
}

// face 返回字号 sizePt 的字体面，加载失败时使用内置常规字体。
func (r *Renderer) face(res layout.FontResource, sizePt float64, faces map[string]font.Face) (font.Face, error) {
	key := fmt.Sprintf("%s|%.3f", res.Src, sizePt)
	if f, ok := faces[key]; ok {
		return f, nil
	}
	ttf, err := r.parse(res.Src)
	if err != nil {
		if ttf, err = r.parse(fonts.Regular); err != nil {
			return nil, err
		}
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    sizePt,
		DPI:     r.dpi(),
		Hinting: font.HintingNone,
	})
	faces[key] = f
	return f, nil
}

func (r *Renderer) parse(src string) (*truetype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parsed == nil {
		r.parsed = map[string]*truetype.Font{}
	}
	if f, ok := r.parsed[src]; ok {
		return f, nil
	}
	var data []byte
	var err error
	if src == "" || strings.HasPrefix(src, "embed:") || src == fonts.Regular {
		data, err = fonts.Load(src)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	r.parsed[src] = f
	return f, nil
}
