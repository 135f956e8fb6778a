package record

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// NormalizeKey 将键转为小写并去掉全部空白，用于宽松匹配。
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Lookup 在映射中两级查找键：先精确匹配，再按 NormalizeKey 扫描映射自身的键。
// 非映射容器或键不存在时返回 false，永不 panic。
func Lookup(container any, key string) (any, bool) {
	m, ok := asMap(container)
	if !ok {
		return nil, false
	}
	if v, ok := m.Get(key); ok {
		return v, true
	}
	want := NormalizeKey(key)
	if want == "" {
		return nil, false
	}
	for _, k := range m.keys {
		if NormalizeKey(k) == want {
			return m.values[k], true
		}
	}
	return nil, false
}

// LookupPath 依次对每一段执行 Lookup；段可带 [n] 下标访问序列元素。
func LookupPath(data any, path ...string) (any, bool) {
	current := data
	for _, segment := range path {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = Lookup(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// HasKey 判断记录树中是否存在与任一候选键宽松匹配的键（递归扫描映射与序列）。
func HasKey(data any, candidates ...string) bool {
	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[NormalizeKey(c)] = true
	}
	var walk func(v any) bool
	walk = func(v any) bool {
		switch t := v.(type) {
		case *Map:
			for _, k := range t.Keys() {
				if want[NormalizeKey(k)] {
					return true
				}
				child, _ := t.Get(k)
				if walk(child) {
					return true
				}
			}
		case []any:
			for _, item := range t {
				if walk(item) {
					return true
				}
			}
		}
		return false
	}
	return walk(FromAny(data))
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值（路径以 "." 分段）。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := LookupPath(data, strings.Split(path, ".")...); ok {
			return String(val)
		}
		return match
	})
}

func asMap(v any) (*Map, bool) {
	switch t := v.(type) {
	case *Map:
		return t, t != nil
	case map[string]any:
		m, _ := FromAny(t).(*Map)
		return m, m != nil
	default:
		return nil, false
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
