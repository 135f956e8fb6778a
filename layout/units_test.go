package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度。
func TestPtMmRoundTrip(t *testing.T) {
	for _, pt := range []float64{0, 0.001, 1, 12, 14.4, 72, 1000} {
		back := Length{Value: pt * PtToMm, Unit: UnitMM}.ToPT()
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		unit Unit
	}{
		{"1in", 25.4, UnitIN},
		{"2.54cm", 25.4, UnitCM},
		{"12pt", 12 * PtToMm, UnitPT},
		{" 20MM ", 20, UnitMM},
		{"7", 7, UnitNone},
	}
	for _, tc := range cases {
		l, ok := ParseLength(tc.in)
		if !ok {
			t.Fatalf("%q 解析失败", tc.in)
		}
		if l.Unit != tc.unit || math.Abs(l.ToMM()-tc.mm) > 1e-9 {
			t.Fatalf("%q 期望 %gmm(%s)，实际 %gmm(%s)", tc.in, tc.mm, tc.unit, l.ToMM(), l.Unit)
		}
	}
	if _, ok := ParseLength("portrait"); ok {
		t.Fatalf("非数字不应解析成功")
	}
}

// TestLineHeightResolve 验证倍数与绝对值两种行高在 mm 下的解析结果。
func TestLineHeightResolve(t *testing.T) {
	sizeMM := 12 * PtToMm
	cases := []struct {
		in   string
		want float64
	}{
		{"1.2x", sizeMM * 1.2},
		{"1.5", sizeMM * 1.5},
		{"18pt", 18 * PtToMm},
		{"6mm", 6},
	}
	for _, tc := range cases {
		spec, ok := ParseLineHeight(tc.in)
		if !ok {
			t.Fatalf("%q 解析失败", tc.in)
		}
		if got := spec.ResolveMM(sizeMM); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%q 行高错误: got=%g want=%g", tc.in, got, tc.want)
		}
	}
	if _, ok := ParseLineHeight("0x"); ok {
		t.Fatalf("0x 不应解析成功")
	}
}
