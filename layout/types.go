package layout

// 该文件定义分页结果与资源描述，供布局计算、渲染与调试 JSON 共用。所有长度单位为 mm。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录可用字体，键为布局中引用的字体名（如 Body、Bold）。
type ResourceSet struct {
	Fonts map[string]FontResource `json:"fonts"`
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:<内置字体名>。
type FontResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Style  string `json:"style"`
	Family string `json:"family"` // 渲染器使用的 Family 名称
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Page 记录页面尺寸、边距以及按顺序排列的绘制指令。
type Page struct {
	Index  int      `json:"index"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Margin Margin   `json:"margin"`
	Ops    []DrawOp `json:"ops"`
}

// OpKind 为绘制指令类型。
type OpKind string

const (
	OpTitle          OpKind = "title"
	OpSectionHeading OpKind = "sectionHeading"
	OpKeyValue       OpKind = "keyValue"
	OpParagraph      OpKind = "paragraph"
	OpListItem       OpKind = "listItem"
)

// DrawOp 是一个已定位的可渲染单元。X/Y 为页面绝对坐标（左上角为原点），
// Boxes 是渲染器直接绘制的文本块，其余字段保留语义内容供 DOCX 等后端使用。
type DrawOp struct {
	Kind     OpKind    `json:"kind"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Font     string    `json:"font"`
	FontSize float64   `json:"fontSize"`
	Align    string    `json:"align,omitempty"`
	Text     string    `json:"text,omitempty"`
	Label    string    `json:"label,omitempty"`
	Value    string    `json:"value,omitempty"`
	Prefix   string    `json:"prefix,omitempty"`
	Numbered bool      `json:"numbered,omitempty"`
	Index    int       `json:"index,omitempty"`
	Boxes    []TextBox `json:"boxes"`
}

// Bottom 返回指令下边缘的纵坐标。
func (op DrawOp) Bottom() float64 { return op.Y + op.Height }

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align,omitempty"` // left/center/right（默认 left）
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// DocumentMeta 保存文档元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
