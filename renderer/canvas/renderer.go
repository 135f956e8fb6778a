package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/lessonplan/layout"
	"github.com/ByLCY/lessonplan/renderer"
)

const ruleWidth = 0.2

var (
	textColor  = canvas.Hex("#1e1e1e")
	ruleColor  = canvas.Hex("#8c8c8c")
	debugColor = canvas.Hex("#d0d7de")
)

// Renderer 通过 github.com/tdewolff/canvas 测量文本并输出 PDF。
// 字体缓存受 fontMu 保护，同一实例可被多个排版任务并发使用。
type Renderer struct {
	baseDir string
	debug   bool

	fontBlobs map[string][]byte

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options 配置渲染器。
type Options struct {
	BaseDir string              // 相对字体路径的根目录
	Fonts   map[string]Resource // 通过 built-in:<name> 引用的字体
	Debug   bool                // 为每条指令绘制外框
}

// Resource 由 Bytes 或 Path 提供。
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer 创建以 baseDir 解析字体路径的渲染器。
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions 创建注入了字体资源的渲染器。
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		debug:        opts.Debug,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			// 读取失败时留到真正使用时报错
			if data, err := os.ReadFile(res.Path); err == nil {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Render 把分页结果渲染为 PDF 字节。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	keywords := strings.Join(result.Meta.Keywords, ", ")
	writer.SetInfo(result.Meta.Title, result.Meta.Subject, keywords, result.Meta.Author, result.Meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 坐标原点在左上角，与布局一致

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	for _, op := range page.Ops {
		if r.debug {
			drawOutline(ctx, op)
		}
		for _, tb := range op.Boxes {
			if err := r.drawTextBox(ctx, tb, resolveFontResource(tb.Font, resources.Fonts)); err != nil {
				return err
			}
		}
		if op.Kind == layout.OpSectionHeading {
			drawRule(ctx, op.X, op.Bottom(), op.Width)
		}
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fontRes layout.FontResource) error {
	face, err := r.fontFace(fontRes, toPt(tb.FontSize), textColor)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	ascent := face.Metrics().Ascent
	cursorY := tb.Y
	for _, line := range lines {
		cursorY += line.GapBefore
		height := line.Height
		if height <= 0 {
			height = tb.FontSize
		}
		if line.Content != "" {
			ctx.DrawText(anchorX, cursorY+ascent, canvas.NewTextLine(face, line.Content, textAlign))
		}
		cursorY += height
	}
	return nil
}

// drawRule 在节标题下方画一条细线。
func drawRule(ctx *canvas.Context, x, y, width float64) {
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(ruleColor)
	ctx.SetStrokeWidth(ruleWidth)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(width, 0)
	ctx.DrawPath(x, y, p)
}

func drawOutline(ctx *canvas.Context, op layout.DrawOp) {
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(debugColor)
	ctx.SetStrokeWidth(ruleWidth)
	ctx.DrawPath(op.X, op.Y, canvas.Rectangle(op.Width, op.Height))
}
