package layout

import "fmt"

// Options 配置一次排版所需的依赖与版式参数。
type Options struct {
	Typesetter   Typesetter
	Geometry     Geometry
	Typography   Typography
	Fonts        ResourceSet
	Meta         DocumentMeta // 仅 Creator/Keywords 会被保留到结果中
	NotAvailable string       // 空值占位文本，默认 "N/A"
}

// Geometry 为页面尺寸与边距（mm）。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// ContentWidth 返回去掉左右边距后的内容宽度。
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.Margin.Left - g.Margin.Right
}

// ContentHeight 返回去掉上下边距后的内容高度。
func (g Geometry) ContentHeight() float64 {
	return g.Height - g.Margin.Top - g.Margin.Bottom
}

// TextStyle 描述一种文本样式：字体名、字号（mm）与行高（mm）。
type TextStyle struct {
	Font       string  `json:"font"`
	Size       float64 `json:"size"`
	LineHeight float64 `json:"lineHeight"`
}

// Typography 汇总各类指令使用的样式与间距（mm）。
type Typography struct {
	Title           TextStyle `json:"title"`
	TitleHeight     float64   `json:"titleHeight"` // 标题固定占用的高度
	Heading         TextStyle `json:"heading"`
	HeadingGap      float64   `json:"headingGap"`
	SubHeading      TextStyle `json:"subHeading"`
	Label           TextStyle `json:"label"`
	Body            TextStyle `json:"body"`
	ParagraphGap    float64   `json:"paragraphGap"`
	KeyValuePadding float64   `json:"keyValuePadding"`
	ListIndent      float64   `json:"listIndent"`
	ListGap         float64   `json:"listGap"`
	LabelMaxRatio   float64   `json:"labelMaxRatio"` // 键值标签最多占内容宽度的比例
}

// Typesetter 负责文本测量与按宽度折行。实现必须对相同输入给出相同结果。
type Typesetter interface {
	MeasureWidth(content string, font FontResource, fontSize float64) (float64, error)
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// 默认字体名。
const (
	FontBody = "Body"
	FontBold = "Bold"
)

// DefaultOptions 返回 A4 纵向、20mm 边距的默认版式。
func DefaultOptions(ts Typesetter) Options {
	style := func(font string, pt, factor float64) TextStyle {
		size := pt * PtToMm
		return TextStyle{Font: font, Size: size, LineHeight: size * factor}
	}
	return Options{
		Typesetter: ts,
		Geometry: Geometry{
			Width:  210,
			Height: 297,
			Margin: Margin{Top: 20, Right: 20, Bottom: 20, Left: 20},
		},
		Typography: Typography{
			Title:           style(FontBold, 16, 1.4),
			TitleHeight:     14,
			Heading:         style(FontBold, 12, 1.4),
			HeadingGap:      2,
			SubHeading:      style(FontBold, 11, 1.4),
			Label:           style(FontBold, 11, 1.4),
			Body:            style(FontBody, 11, 1.4),
			ParagraphGap:    2,
			KeyValuePadding: 1.5,
			ListIndent:      5,
			ListGap:         1.5,
			LabelMaxRatio:   0.6,
		},
		Fonts: ResourceSet{Fonts: map[string]FontResource{
			FontBody: {Name: FontBody, Src: "embed:go-regular", Family: "Go"},
			FontBold: {Name: FontBold, Src: "embed:go-bold", Style: "bold", Family: "Go"},
		}},
		Meta:         DocumentMeta{Creator: "lessonplan"},
		NotAvailable: "N/A",
	}
}

// Validate 检查版式参数是否可用于排版。
func (o Options) Validate() error {
	if o.Typesetter == nil {
		return fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	g := o.Geometry
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("layout: 页面尺寸无效 %gx%g", g.Width, g.Height)
	}
	if g.ContentWidth() <= 0 || g.ContentHeight() <= 0 {
		return fmt.Errorf("layout: 边距过大，内容区域为空")
	}
	for _, s := range []TextStyle{o.Typography.Title, o.Typography.Heading, o.Typography.SubHeading, o.Typography.Label, o.Typography.Body} {
		if s.Size <= 0 {
			return fmt.Errorf("layout: 字号必须大于 0")
		}
	}
	if len(o.Fonts.Fonts) == 0 {
		return fmt.Errorf("layout: 未定义任何字体")
	}
	return nil
}
