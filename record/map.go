// Package record 描述教案原始记录（RawRecord）：由标量、映射与序列组成的无类型树，
// 并提供两级键查找、值强制转换与 JSON/YAML 解码。
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Map 是保留键插入顺序的映射，解码 JSON/YAML 时使用它代替 map[string]any，
// 以便“单个映射形式的列表”可以按枚举顺序取值。
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap 创建空映射。
func NewMap() *Map {
	return &Map{values: map[string]any{}}
}

// Set 写入键值；已存在的键保持原位置，仅覆盖值。
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get 精确查找键。
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys 返回按插入顺序排列的键副本。
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len 返回键数量。
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// MarshalJSON 按插入顺序输出。
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FromAny 将普通的 map[string]any 树转换为 *Map 树。Go 的 map 没有顺序，
// 因此键按字典序排列，保证结果确定。已是 *Map 的节点会递归处理其子节点。
func FromAny(v any) any {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return nil
		}
		out := NewMap()
		for _, k := range t.keys {
			out.Set(k, FromAny(t.values[k]))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			out.Set(k, FromAny(t[k]))
		}
		return out
	case map[any]any:
		keys := make([]string, 0, len(t))
		byKey := make(map[string]any, len(t))
		for k, val := range t {
			ks := fmt.Sprint(k)
			keys = append(keys, ks)
			byKey[ks] = val
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			out.Set(k, FromAny(byKey[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromAny(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromAny(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	default:
		return v
	}
}
