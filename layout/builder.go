package layout

import (
	"fmt"
	"math"
	"strings"
)

// Cursor 是排版光标：当前页序号（从 0 开始）与距页面顶部的纵向位置（mm）。
type Cursor struct {
	Page int     `json:"page"`
	Y    float64 `json:"y"`
}

type pageAccumulator struct {
	ops []DrawOp
}

type pageCollector struct {
	geometry Geometry
	accs     []*pageAccumulator
	current  int
}

func newPageCollector(g Geometry) *pageCollector {
	pc := &pageCollector{geometry: g}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 {
	return pc.geometry.Margin.Top
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.geometry.Height - pc.geometry.Margin.Bottom
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		ops := acc.ops
		if ops == nil {
			ops = []DrawOp{}
		}
		out[i] = Page{
			Index:  i,
			Width:  pc.geometry.Width,
			Height: pc.geometry.Height,
			Margin: pc.geometry.Margin,
			Ops:    ops,
		}
	}
	return out
}

// Engine 按固定的视觉规则把文本指令排入分页结果。每个 Engine 独占自己的光标，
// 一次排版使用一个实例；并发排版时各自创建 Engine。
type Engine struct {
	opts      Options
	collector *pageCollector
	cursor    Cursor
}

// NewEngine 创建排版引擎，光标位于第 0 页的上边距处。
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.NotAvailable) == "" {
		opts.NotAvailable = "N/A"
	}
	if r := opts.Typography.LabelMaxRatio; r <= 0 || r > 1 {
		opts.Typography.LabelMaxRatio = 0.6
	}
	collector := newPageCollector(opts.Geometry)
	return &Engine{
		opts:      opts,
		collector: collector,
		cursor:    Cursor{Page: 0, Y: collector.contentTop()},
	}, nil
}

// Cursor 返回当前光标。
func (e *Engine) Cursor() Cursor { return e.cursor }

// PageCount 返回已开启的页数。
func (e *Engine) PageCount() int { return len(e.collector.accs) }

// Result 汇总分页结果。
func (e *Engine) Result(meta DocumentMeta) *Result {
	fonts := make(map[string]FontResource, len(e.opts.Fonts.Fonts))
	for k, v := range e.opts.Fonts.Fonts {
		fonts[k] = v
	}
	return &Result{
		Pages:     e.collector.pages(),
		Resources: ResourceSet{Fonts: fonts},
		Meta:      meta,
	}
}

// AddTitle 居中绘制大号标题，占用固定高度。
func (e *Engine) AddTitle(text string) error {
	typ := e.opts.Typography
	text = e.orNA(text)
	left, width := e.opts.Geometry.Margin.Left, e.opts.Geometry.ContentWidth()
	box, err := e.composeTextBox(text, left, width, typ.Title, "center")
	if err != nil {
		return err
	}
	e.emit(block{
		op: DrawOp{
			Kind: OpTitle, X: left, Width: width,
			Font: typ.Title.Font, FontSize: typ.Title.Size, Align: "center",
			Text: text, Boxes: []TextBox{box},
		},
		roles:     []boxRole{roleText},
		content:   box.Height,
		minHeight: typ.TitleHeight,
	})
	return nil
}

// AddSectionHeading 绘制大写的节标题，之后留出固定间距。
func (e *Engine) AddSectionHeading(text string) error {
	return e.addHeading(strings.ToUpper(e.orNA(text)), e.opts.Typography.Heading)
}

// AddSubHeading 绘制节内的小标题（不转大写）。
func (e *Engine) AddSubHeading(text string) error {
	return e.addHeading(e.orNA(text), e.opts.Typography.SubHeading)
}

func (e *Engine) addHeading(text string, style TextStyle) error {
	left, width := e.opts.Geometry.Margin.Left, e.opts.Geometry.ContentWidth()
	box, err := e.composeTextBox(text, left, width, style, "")
	if err != nil {
		return err
	}
	e.emit(block{
		op: DrawOp{
			Kind: OpSectionHeading, X: left, Width: width,
			Font: style.Font, FontSize: style.Size, Text: text, Boxes: []TextBox{box},
		},
		roles:   []boxRole{roleText},
		content: box.Height,
		gap:     e.opts.Typography.HeadingGap,
	})
	return nil
}

// AddKeyValue 在左边距绘制粗体标签 "label: "，值从 margin+labelWidth 处开始并按剩余宽度折行。
// 标签宽度最多占内容宽度的 LabelMaxRatio，超出时标签自身折行。
func (e *Engine) AddKeyValue(label, value string) error {
	typ := e.opts.Typography
	left, width := e.opts.Geometry.Margin.Left, e.opts.Geometry.ContentWidth()
	label = strings.TrimSpace(label)
	value = e.orNA(value)

	labelWidth, err := e.measure(label+": ", typ.Label)
	if err != nil {
		return err
	}
	labelWidth = math.Min(labelWidth, width*typ.LabelMaxRatio)
	labelBox, err := e.composeTextBox(label+":", left, labelWidth, typ.Label, "")
	if err != nil {
		return err
	}
	valueBox, err := e.composeTextBox(value, left+labelWidth, width-labelWidth, typ.Body, "")
	if err != nil {
		return err
	}
	e.emit(block{
		op: DrawOp{
			Kind: OpKeyValue, X: left, Width: width,
			Font: typ.Body.Font, FontSize: typ.Body.Size,
			Label: label, Value: value, Boxes: []TextBox{labelBox, valueBox},
		},
		roles:   []boxRole{roleLabel, roleText},
		content: math.Max(labelBox.Height, valueBox.Height),
		padding: typ.KeyValuePadding,
	})
	return nil
}

// AddParagraph 按整个内容宽度折行绘制正文段落。
func (e *Engine) AddParagraph(text string) error {
	typ := e.opts.Typography
	left, width := e.opts.Geometry.Margin.Left, e.opts.Geometry.ContentWidth()
	text = e.orNA(text)
	box, err := e.composeTextBox(text, left, width, typ.Body, "")
	if err != nil {
		return err
	}
	e.emit(block{
		op: DrawOp{
			Kind: OpParagraph, X: left, Width: width,
			Font: typ.Body.Font, FontSize: typ.Body.Size, Text: text, Boxes: []TextBox{box},
		},
		roles:   []boxRole{roleText},
		content: box.Height,
		gap:     typ.ParagraphGap,
	})
	return nil
}

// AddList 逐项绘制列表，前缀为 "n) "（有序）或 "• "（无序）。空列表绘制一段 N/A。
func (e *Engine) AddList(items []string, numbered bool) error {
	if len(items) == 0 {
		return e.AddParagraph(e.opts.NotAvailable)
	}
	typ := e.opts.Typography
	x := e.opts.Geometry.Margin.Left + typ.ListIndent
	width := e.opts.Geometry.ContentWidth() - typ.ListIndent
	for i, item := range items {
		prefix := "• "
		if numbered {
			prefix = fmt.Sprintf("%d) ", i+1)
		}
		prefixWidth, err := e.measure(prefix, typ.Body)
		if err != nil {
			return err
		}
		prefixWidth = math.Min(prefixWidth, width*typ.LabelMaxRatio)
		prefixBox, err := e.composeTextBox(strings.TrimSpace(prefix), x, prefixWidth, typ.Body, "")
		if err != nil {
			return err
		}
		text := e.orNA(item)
		textBox, err := e.composeTextBox(text, x+prefixWidth, width-prefixWidth, typ.Body, "")
		if err != nil {
			return err
		}
		gap := typ.ListGap
		if i == len(items)-1 {
			gap = math.Max(gap, typ.ParagraphGap)
		}
		e.emit(block{
			op: DrawOp{
				Kind: OpListItem, X: x, Width: width,
				Font: typ.Body.Font, FontSize: typ.Body.Size,
				Text: text, Prefix: prefix, Numbered: numbered, Index: i + 1,
				Boxes: []TextBox{prefixBox, textBox},
			},
			roles:   []boxRole{rolePrefix, roleText},
			content: math.Max(prefixBox.Height, textBox.Height),
			gap:     gap,
		})
	}
	return nil
}

func (e *Engine) orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return e.opts.NotAvailable
	}
	return s
}

type boxRole int

const (
	roleText boxRole = iota
	roleLabel
	rolePrefix
)

// block 是尚未定位的指令，Boxes 的 Y 相对块顶部。
type block struct {
	op        DrawOp
	roles     []boxRole
	content   float64 // 文本占用高度
	padding   float64 // 计入指令高度的底部留白
	minHeight float64 // 固定占用高度（标题）
	gap       float64 // 指令之后的间距，不计入指令高度
}

func (b block) height() float64 {
	return math.Max(b.content+b.padding, b.minHeight)
}

// emit 按分页规则放置块：先算高度，当前页放不下则换页后再放；
// 整页也放不下时在行边界拆成多条同类指令，各占一页。
func (e *Engine) emit(b block) {
	bottom := e.collector.contentBottom()
	if e.cursor.Y+b.height() > bottom && len(e.collector.curr().ops) > 0 {
		e.pageBreak()
	}
	for e.cursor.Y+b.height() > bottom {
		head, rest, ok := b.split(bottom - e.cursor.Y)
		if !ok {
			// 单行即高于整页内容区，只能原样放置。
			break
		}
		e.commit(head)
		if rest == nil {
			e.cursor.Y += b.gap
			return
		}
		e.pageBreak()
		b = *rest
	}
	e.commit(b)
	e.cursor.Y += b.gap
}

func (e *Engine) commit(b block) {
	op := b.op
	op.Y = e.cursor.Y
	op.Height = b.height()
	op.Boxes = make([]TextBox, len(b.op.Boxes))
	for i, box := range b.op.Boxes {
		box.Y += e.cursor.Y
		op.Boxes[i] = box
	}
	acc := e.collector.curr()
	acc.ops = append(acc.ops, op)
	e.cursor.Y += op.Height
}

func (e *Engine) pageBreak() {
	e.collector.newPage()
	e.cursor = Cursor{Page: e.collector.current, Y: e.collector.contentTop()}
}

// split 在 avail 高度内按行切分块。head 不含任何行时返回 false；
// 全部行都能放入（只是留白放不下）时 rest 为 nil。
func (b block) split(avail float64) (block, *block, bool) {
	head := block{op: b.op}
	rest := block{op: b.op, padding: b.padding, gap: b.gap}
	head.op.Boxes, rest.op.Boxes = nil, nil
	for i, box := range b.op.Boxes {
		top, bottom := splitBox(box, avail)
		if top != nil {
			head.op.Boxes = append(head.op.Boxes, *top)
			head.roles = append(head.roles, b.roles[i])
			head.content = math.Max(head.content, top.Y+top.Height)
		}
		if bottom != nil {
			rest.op.Boxes = append(rest.op.Boxes, *bottom)
			rest.roles = append(rest.roles, b.roles[i])
			rest.content = math.Max(rest.content, bottom.Height)
		}
	}
	if len(head.op.Boxes) == 0 {
		return b, nil, false
	}
	if len(rest.op.Boxes) == 0 {
		return head, nil, true
	}
	head.refreshText()
	rest.refreshText()
	return head, &rest, true
}

// refreshText 根据拆分后剩余的行重建语义文本。
func (b *block) refreshText() {
	texts := map[boxRole]string{}
	for i, box := range b.op.Boxes {
		texts[b.roles[i]] = joinLines(box.Lines)
	}
	switch b.op.Kind {
	case OpKeyValue:
		b.op.Label = strings.TrimSuffix(strings.TrimSpace(texts[roleLabel]), ":")
		b.op.Value = texts[roleText]
	case OpListItem:
		b.op.Prefix = ""
		if p := texts[rolePrefix]; p != "" {
			b.op.Prefix = p + " "
		}
		b.op.Text = texts[roleText]
	default:
		b.op.Text = texts[roleText]
	}
}

// splitBox 把文本块在 avail 处按行切开，返回上下两部分（可能为 nil）。下半部分的 Y 归零。
func splitBox(box TextBox, avail float64) (*TextBox, *TextBox) {
	y := box.Y
	cut := len(box.Lines)
	for i, line := range box.Lines {
		next := y + line.GapBefore + line.Height
		if next > avail {
			cut = i
			break
		}
		y = next
	}
	var top, bottom *TextBox
	if cut > 0 {
		t := box
		t.Lines = append([]TextLine(nil), box.Lines[:cut]...)
		t.Height = linesHeight(t.Lines)
		t.Content = joinLines(t.Lines)
		top = &t
	}
	if cut < len(box.Lines) {
		b := box
		b.Y = 0
		b.Lines = append([]TextLine(nil), box.Lines[cut:]...)
		b.Lines[0].GapBefore = 0
		b.Height = linesHeight(b.Lines)
		b.Content = joinLines(b.Lines)
		bottom = &b
	}
	return top, bottom
}

func linesHeight(lines []TextLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.GapBefore + l.Height
	}
	return total
}

func joinLines(lines []TextLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// composeTextBox 测量并折行，得到一个 Y 为 0 的文本块。
func (e *Engine) composeTextBox(content string, x, width float64, style TextStyle, align string) (TextBox, error) {
	font, err := resolveFontResource(style.Font, e.opts.Fonts)
	if err != nil {
		return TextBox{}, err
	}
	fontSize := style.Size
	lineHeight := style.LineHeight
	if lineHeight <= 0 {
		lineHeight = fontSize * 1.4
	}
	lines, err := layoutLines(content, width, font, fontSize, lineHeight, e.opts.Typesetter)
	if err != nil {
		return TextBox{}, err
	}

	defaultLeading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
	}
	return TextBox{
		Content:    content,
		X:          x,
		Width:      width,
		LineHeight: lineHeight,
		Font:       style.Font,
		FontSize:   fontSize,
		Lines:      lines,
		Height:     linesHeight(lines),
		Align:      align,
	}, nil
}

func (e *Engine) measure(content string, style TextStyle) (float64, error) {
	font, err := resolveFontResource(style.Font, e.opts.Fonts)
	if err != nil {
		return 0, err
	}
	w, err := e.opts.Typesetter.MeasureWidth(content, font, style.Size)
	if err != nil {
		return 0, fmt.Errorf("测量文本宽度失败: %w", err)
	}
	return w, nil
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts[FontBody]; ok {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter) ([]TextLine, error) {
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, "anywhere")
	if err != nil {
		return nil, fmt.Errorf("排版文本失败: %w", err)
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: fontSize}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}
