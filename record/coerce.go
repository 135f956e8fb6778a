package record

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// String 将任意值防御性地转换为去除首尾空白的纯文本。
// nil 返回空串；映射与序列把非空子值以 ", " 连接。
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return PlainText(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case *Map:
		return joinValues(Values(t))
	case map[string]any:
		m, _ := FromAny(t).(*Map)
		return joinValues(Values(m))
	case []any:
		return joinValues(t)
	case []string:
		parts := make([]any, len(t))
		for i, s := range t {
			parts[i] = s
		}
		return joinValues(parts)
	default:
		return ""
	}
}

// Int 将数值或数字字符串转换为整数（小数部分截断）。无法识别时返回 false。
func Int(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(t), true
	case float32:
		return Int(float64(t))
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return Int(f)
		}
		return 0, false
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), " ", "")
		if s == "" {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Int(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// IsStructured 判断值是否为映射。
func IsStructured(v any) bool {
	_, ok := asMap(v)
	return ok
}

// Items 把列表形状的值统一为有序序列：序列原样返回，映射按枚举顺序取值。
// 标量与 nil 返回 false，由调用方决定如何处理。
func Items(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string, []map[string]any:
		items, _ := FromAny(t).([]any)
		return items, true
	}
	if m, ok := asMap(v); ok {
		return Values(m), true
	}
	return nil, false
}

// Values 按枚举顺序返回映射的值：整数形式的键按数值升序在前，其余键保持插入顺序。
func Values(m *Map) []any {
	keys := EnumerationOrder(m)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		v, _ := m.Get(k)
		out = append(out, v)
	}
	return out
}

// EnumerationOrder 返回映射键的枚举顺序。
func EnumerationOrder(m *Map) []string {
	keys := m.Keys()
	var numeric, named []string
	for _, k := range keys {
		if isIndexKey(k) {
			numeric = append(numeric, k)
		} else {
			named = append(named, k)
		}
	}
	sort.SliceStable(numeric, func(i, j int) bool {
		a, _ := strconv.ParseUint(numeric[i], 10, 64)
		b, _ := strconv.ParseUint(numeric[j], 10, 64)
		return a < b
	})
	return append(numeric, named...)
}

// SplitList 以逗号切分文本，去除空白并丢弃空项。
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isIndexKey(k string) bool {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return false
	}
	for _, r := range k {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := strconv.ParseUint(k, 10, 32)
	return err == nil
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if s := String(v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
