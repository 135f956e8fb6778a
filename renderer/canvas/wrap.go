package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/lessonplan/layout"
)

// widthMeasurer 抽象出 face.TextWidth，宽度单位为 mm。
type widthMeasurer interface {
	TextWidth(string) float64
}

// lineBuilder 累积当前行的内容与宽度。
type lineBuilder struct {
	lines []layout.TextLine
	buf   strings.Builder
	width float64
}

func (b *lineBuilder) add(s string, w float64) {
	b.buf.WriteString(s)
	b.width += w
}

// emit 结束当前行；force 为 true 时空行也会保留（显式换行）。
func (b *lineBuilder) emit(force bool) {
	if b.buf.Len() == 0 {
		if force {
			b.lines = append(b.lines, layout.TextLine{})
		}
		return
	}
	b.lines = append(b.lines, layout.TextLine{Content: b.buf.String(), Width: b.width})
	b.buf.Reset()
	b.width = 0
}

// greedyWrap 按 wrap 模式折行：nowrap 只在显式换行处断开；break-word 逐字符按宽度切分；
// 其余模式优先在空白处断开，单个词超宽时在词内拆分。
func greedyWrap(content string, width float64, face widthMeasurer, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	content = strings.ReplaceAll(content, "\r", "")

	switch wrap {
	case "nowrap":
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: face.TextWidth(p)})
		}
		return lines
	case "break-word":
		var b lineBuilder
		for _, r := range content {
			if r == '\n' {
				b.emit(true)
				continue
			}
			s := string(r)
			cw := face.TextWidth(s)
			if b.width > 0 && b.width+cw > limit {
				b.emit(false)
			}
			b.add(s, cw)
		}
		b.emit(true)
		return b.lines
	}

	// 空白先挂起，只有后面的词留在同一行时才计入，行首行尾都不保留空白。
	var b lineBuilder
	space, spaceWidth := "", 0.0
	for _, token := range tokenizeContent(content) {
		if token == "\n" {
			b.emit(true)
			space, spaceWidth = "", 0
			continue
		}
		if strings.TrimSpace(token) == "" {
			if b.buf.Len() > 0 {
				space, spaceWidth = token, face.TextWidth(token)
			}
			continue
		}
		tokenWidth := face.TextWidth(token)
		if b.buf.Len() > 0 && b.width+spaceWidth+tokenWidth > limit {
			b.emit(false)
		}
		if b.buf.Len() > 0 {
			b.add(space, spaceWidth)
		}
		space, spaceWidth = "", 0
		if tokenWidth <= limit {
			b.add(token, tokenWidth)
			continue
		}
		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if b.buf.Len() > 0 && b.width+chunkWidth > limit {
				b.emit(false)
			}
			b.add(chunk, chunkWidth)
		}
	}
	b.emit(true)
	return b.lines
}

// tokenizeContent 把文本切成交替的空白串与非空白串，换行单独成为 "\n"。
func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}
	for _, r := range s {
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face widthMeasurer) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && face.TextWidth(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = []rune{r}
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
