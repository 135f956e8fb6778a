package profile

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/lessonplan/layout"
)

//go:embed profiles/*.profile
var builtinFS embed.FS

// DefaultName 是默认内置版式。
const DefaultName = "classic"

// pageSizes 为纵向纸张尺寸（mm）。
var pageSizes = map[string][2]float64{
	"a3":     {297, 420},
	"a4":     {210, 297},
	"a5":     {148, 210},
	"letter": {215.9, 279.4},
	"legal":  {215.9, 355.6},
}

// Builtin 返回内置版式名列表。
func Builtin() []string {
	entries, err := builtinFS.ReadDir("profiles")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".profile"))
	}
	sort.Strings(names)
	return names
}

// Default 返回默认内置版式。
func Default() *Profile {
	p, err := Load(DefaultName)
	if err != nil {
		panic(err)
	}
	return p
}

// Load 按名称加载内置版式，名称不是内置版式时按文件路径读取。空名称等同默认版式。
func Load(name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if data, err := builtinFS.ReadFile(path.Join("profiles", name+".profile")); err == nil {
		return ParseString(string(data))
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("版式 %s 不存在: %w", name, err)
	}
	defer f.Close()
	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("解析版式 %s 失败: %w", name, err)
	}
	return p, nil
}

// Options 把版式配置叠加到默认排版参数上。
func (p *Profile) Options(ts layout.Typesetter) (layout.Options, error) {
	opts := layout.DefaultOptions(ts)
	for _, s := range p.Sections {
		var err error
		switch {
		case s.Page != nil:
			err = applyPage(&opts.Geometry, s.Page)
		case s.Resources != nil:
			err = applyResources(&opts.Fonts, s.Resources.Block)
		case s.Style != nil:
			err = applyStyle(&opts.Typography, s.Style)
		case s.Spacing != nil:
			err = applySpacing(&opts.Typography, s.Spacing.Block)
		case s.Meta != nil:
			err = applyMeta(&opts.Meta, s.Meta.Block)
		}
		if err != nil {
			return layout.Options{}, fmt.Errorf("版式 %s: %s: %w", p.Name, s.Kind(), err)
		}
	}
	if err := opts.Validate(); err != nil {
		return layout.Options{}, fmt.Errorf("版式 %s: %w", p.Name, err)
	}
	return opts, nil
}

func applyPage(g *layout.Geometry, page *PageSection) error {
	size, ok := pageSizes[strings.ToLower(page.Size)]
	if !ok {
		return fmt.Errorf("不支持的纸张 %s", page.Size)
	}
	g.Width, g.Height = size[0], size[1]
	for i := 0; i < len(page.Params); i++ {
		switch param := strings.ToLower(page.Params[i].Value); param {
		case "portrait":
		case "landscape":
			g.Width, g.Height = size[1], size[0]
		case "margin":
			var values []float64
			for i+1 < len(page.Params) {
				l, ok := layout.ParseLength(page.Params[i+1].Value)
				if !ok {
					break
				}
				values = append(values, l.ToMM())
				i++
			}
			m, err := expandMargin(values)
			if err != nil {
				return err
			}
			g.Margin = m
		default:
			return fmt.Errorf("未知的页面参数 %s", page.Params[i].Raw)
		}
	}
	return nil
}

// expandMargin 按 CSS 简写顺序展开 1~4 个边距值。
func expandMargin(v []float64) (layout.Margin, error) {
	switch len(v) {
	case 1:
		return layout.Margin{Top: v[0], Right: v[0], Bottom: v[0], Left: v[0]}, nil
	case 2:
		return layout.Margin{Top: v[0], Right: v[1], Bottom: v[0], Left: v[1]}, nil
	case 3:
		return layout.Margin{Top: v[0], Right: v[1], Bottom: v[2], Left: v[1]}, nil
	case 4:
		return layout.Margin{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, nil
	default:
		return layout.Margin{}, fmt.Errorf("margin 需要 1~4 个长度，实际 %d 个", len(v))
	}
}

func applyResources(res *layout.ResourceSet, block *Block) error {
	if res.Fonts == nil {
		res.Fonts = map[string]layout.FontResource{}
	}
	for _, st := range block.Statements {
		cmd := st.Command
		if cmd == nil || cmd.Name != "font" {
			return fmt.Errorf("resources 中只能声明 font")
		}
		if len(cmd.Args) != 1 || cmd.Block == nil {
			return fmt.Errorf("font 声明格式应为 font NAME { ... }")
		}
		font := layout.FontResource{Name: cmd.Args[0].Value}
		for _, a := range assignments(cmd.Block) {
			switch a.Key {
			case "src":
				font.Src = a.Value.Text()
			case "style":
				font.Style = a.Value.Text()
			case "family":
				font.Family = a.Value.Text()
			default:
				return fmt.Errorf("font %s: 未知属性 %s", font.Name, a.Key)
			}
		}
		if strings.TrimSpace(font.Src) == "" {
			return fmt.Errorf("font %s 缺少 src", font.Name)
		}
		res.Fonts[font.Name] = font
	}
	return nil
}

type styleTarget struct {
	style    *layout.TextStyle
	extraKey string
	extra    *float64
}

func applyStyle(t *layout.Typography, s *StyleSection) error {
	targets := map[string]styleTarget{
		"title":      {&t.Title, "height", &t.TitleHeight},
		"heading":    {&t.Heading, "gap", &t.HeadingGap},
		"subheading": {&t.SubHeading, "", nil},
		"label":      {&t.Label, "", nil},
		"body":       {&t.Body, "gap", &t.ParagraphGap},
	}
	target, ok := targets[strings.ToLower(s.Name)]
	if !ok {
		return fmt.Errorf("未知的样式 %s", s.Name)
	}
	style := *target.style
	factor := 1.4
	if style.Size > 0 && style.LineHeight > 0 {
		factor = style.LineHeight / style.Size
	}
	var lineHeight *layout.LineHeightSpec
	for _, a := range assignments(s.Block) {
		raw := a.Value.Text()
		switch {
		case a.Key == "font":
			style.Font = raw
		case a.Key == "size":
			l, ok := layout.ParseLength(raw)
			if !ok || l.Value <= 0 {
				return fmt.Errorf("无效的字号 %q", raw)
			}
			if l.Unit == layout.UnitNone {
				l.Unit = layout.UnitPT
			}
			style.Size = l.ToMM()
		case a.Key == "line-height":
			spec, ok := layout.ParseLineHeight(raw)
			if !ok {
				return fmt.Errorf("无效的行高 %q", raw)
			}
			lineHeight = &spec
		case a.Key == target.extraKey && target.extra != nil:
			v, err := parseMM(raw)
			if err != nil {
				return err
			}
			*target.extra = v
		default:
			return fmt.Errorf("样式 %s 不支持属性 %s", s.Name, a.Key)
		}
	}
	if lineHeight != nil {
		style.LineHeight = lineHeight.ResolveMM(style.Size)
	} else {
		style.LineHeight = style.Size * factor
	}
	*target.style = style
	return nil
}

func applySpacing(t *layout.Typography, block *Block) error {
	for _, a := range assignments(block) {
		raw := a.Value.Text()
		var err error
		switch a.Key {
		case "key-value-padding":
			t.KeyValuePadding, err = parseMM(raw)
		case "list-indent":
			t.ListIndent, err = parseMM(raw)
		case "list-gap":
			t.ListGap, err = parseMM(raw)
		case "label-max":
			t.LabelMaxRatio, err = parseRatio(raw)
		default:
			err = fmt.Errorf("未知的间距属性 %s", a.Key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func applyMeta(meta *layout.DocumentMeta, block *Block) error {
	for _, a := range assignments(block) {
		switch a.Key {
		case "creator":
			meta.Creator = a.Value.Text()
		case "keywords":
			meta.Keywords = a.Value.Strings()
		default:
			return fmt.Errorf("未知的元数据 %s", a.Key)
		}
	}
	return nil
}

func assignments(block *Block) []*Assignment {
	if block == nil {
		return nil
	}
	out := make([]*Assignment, 0, len(block.Statements))
	for _, st := range block.Statements {
		if st.Assignment != nil {
			out = append(out, st.Assignment)
		}
	}
	return out
}

func parseMM(raw string) (float64, error) {
	l, ok := layout.ParseLength(raw)
	if !ok || l.Value < 0 {
		return 0, fmt.Errorf("无效的长度 %q", raw)
	}
	return l.ToMM(), nil
}

// parseRatio 接受 "60%" 或 "0.6"。
func parseRatio(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v/scale > 1 {
		return 0, fmt.Errorf("无效的比例 %q", raw)
	}
	return v / scale, nil
}
