package record

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// 行内强调、代码、标题与列表；下划线强调须包含空白，__init__ 之类的标识符不算。
	markdownPattern   = regexp.MustCompile("(?m)(\\*\\*\\S|`[^`\n]+`|__[^_\n]*\\s[^_\n]*__|^\\s{0,3}#{1,6}\\s|^\\s{0,3}[-*+]\\s)")
	identifierPattern = regexp.MustCompile(`__[\p{L}\p{N}_]+__`)
	spacePattern      = regexp.MustCompile(`[\t\f\v\p{Zs}]+`)
)

// identifierMark 暂时替换标识符中的下划线，使其不被当作强调。
const identifierMark = "\uE000"

// voidTags 单独出现即可判定为 HTML。
var voidTags = map[atom.Atom]bool{atom.Br: true, atom.Hr: true, atom.Img: true, atom.Wbr: true}

// 这些标签结束时视为换行。
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "blockquote": true,
}

var md = goldmark.New()

// PlainText 把编辑器产生的 HTML 片段或生成服务输出的 Markdown 标记还原为纯文本，
// 普通文本只做首尾空白裁剪。
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if looksLikeHTML(s) {
		s = stripHTML(s)
	}
	if markdownPattern.MatchString(s) {
		s = stripMarkdown(s)
	}
	return s
}

// looksLikeHTML 只在出现已知 HTML 元素时成立：空元素，或有对应结束标签的元素。
// "a<b and b>a"、"<microscope>" 这类普通文本不算。
func looksLikeHTML(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	open := map[atom.Atom]bool{}
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == 0 {
				continue
			}
			if voidTags[a] {
				return true
			}
			open[a] = true
		case html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a != 0 && open[a] {
				return true
			}
		}
	}
}

func stripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tidy(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
			}
			if tag == "br" || (blockTags[tag] && b.Len() > 0) {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		}
	}
}

func stripMarkdown(s string) string {
	s = identifierPattern.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, "_", identifierMark)
	})
	src := []byte(s)
	doc := md.Parser().Parse(text.NewReader(src))
	var b bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && n.PreviousSibling() != nil && b.Len() > 0 {
			b.WriteByte('\n')
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.HardLineBreak() {
				b.WriteByte('\n')
			} else if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.URL(src))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return tidy(strings.ReplaceAll(b.String(), identifierMark, "_"))
}

// tidy 压缩行内空白并丢弃空行。
func tidy(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
