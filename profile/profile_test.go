package profile_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/lessonplan/layout"
	"github.com/ByLCY/lessonplan/profile"
)

type nopTypesetter struct{}

func (nopTypesetter) MeasureWidth(string, layout.FontResource, float64) (float64, error) {
	return 0, nil
}

func (nopTypesetter) LayoutLines(string, float64, layout.FontResource, float64, float64, string) ([]layout.TextLine, error) {
	return nil, nil
}

const sampleProfile = `
# handout for the lab
profile handout v2 {
  page Letter landscape margin 10mm 15mm 12mm 8mm

  resources {
    font Body {
      src: "embed:go-regular"
    }
    font Italic { src: "embed:go-italic"; style: italic }
  }

  style body { font: Italic; size: 10pt; line-height: 5mm; gap: 3mm }
  style heading { size: 14pt }

  spacing { label-max: 0.5; list-indent: 1cm }

  meta {
    creator: "lab"
    keywords: [
      "biology"
      "practical"
    ]
  }
}
`

func TestParseProfile(t *testing.T) {
	p, err := profile.ParseString(sampleProfile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if p.Name != "handout" || p.Version != "v2" {
		t.Fatalf("unexpected header %s %s", p.Name, p.Version)
	}
	if len(p.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(p.Sections))
	}
	kinds := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "page,resources,style,style,spacing,meta" {
		t.Fatalf("unexpected section order %s", got)
	}
	page := p.Sections[0].Page
	if page.Size != "Letter" || len(page.Params) != 6 || page.Params[5].Value != "8mm" {
		t.Fatalf("unexpected page section %+v", page)
	}
	fonts := p.Sections[1].Resources.Block.Statements
	if len(fonts) != 2 || fonts[1].Command == nil || fonts[1].Command.Args[0].Value != "Italic" {
		t.Fatalf("unexpected resources %+v", fonts)
	}
}

func TestProfileOptions(t *testing.T) {
	p, err := profile.ParseString(sampleProfile)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	opts, err := p.Options(nopTypesetter{})
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	g := opts.Geometry
	if g.Width != 279.4 || g.Height != 215.9 {
		t.Fatalf("landscape letter expected, got %gx%g", g.Width, g.Height)
	}
	if g.Margin != (layout.Margin{Top: 10, Right: 15, Bottom: 12, Left: 8}) {
		t.Fatalf("unexpected margin %+v", g.Margin)
	}
	body := opts.Typography.Body
	if body.Font != "Italic" || math.Abs(body.Size-10*layout.PtToMm) > 1e-9 || body.LineHeight != 5 {
		t.Fatalf("unexpected body style %+v", body)
	}
	if opts.Typography.ParagraphGap != 3 {
		t.Fatalf("unexpected paragraph gap %g", opts.Typography.ParagraphGap)
	}
	heading := opts.Typography.Heading
	if math.Abs(heading.LineHeight-heading.Size*1.4) > 1e-9 {
		t.Fatalf("heading line height should keep its factor, got %g", heading.LineHeight)
	}
	if opts.Typography.LabelMaxRatio != 0.5 || opts.Typography.ListIndent != 10 {
		t.Fatalf("unexpected spacing %+v", opts.Typography)
	}
	if f := opts.Fonts.Fonts["Italic"]; f.Src != "embed:go-italic" || f.Style != "italic" {
		t.Fatalf("unexpected italic font %+v", f)
	}
	if _, ok := opts.Fonts.Fonts["Bold"]; !ok {
		t.Fatalf("default fonts should be kept")
	}
	if opts.Meta.Creator != "lab" || strings.Join(opts.Meta.Keywords, "|") != "biology|practical" {
		t.Fatalf("unexpected meta %+v", opts.Meta)
	}
}

func TestBuiltinProfiles(t *testing.T) {
	names := profile.Builtin()
	if strings.Join(names, ",") != "classic,compact" {
		t.Fatalf("unexpected builtin profiles %v", names)
	}
	def, err := profile.Default().Options(nopTypesetter{})
	if err != nil {
		t.Fatalf("default options: %v", err)
	}
	want := layout.DefaultOptions(nopTypesetter{})
	if def.Geometry != want.Geometry {
		t.Fatalf("classic geometry %+v differs from defaults %+v", def.Geometry, want.Geometry)
	}
	if math.Abs(def.Typography.Title.Size-want.Typography.Title.Size) > 1e-9 || def.Typography.TitleHeight != 14 {
		t.Fatalf("unexpected classic title %+v", def.Typography)
	}

	p, err := profile.Load("compact")
	if err != nil {
		t.Fatalf("load compact: %v", err)
	}
	compact, err := p.Options(nopTypesetter{})
	if err != nil {
		t.Fatalf("compact options: %v", err)
	}
	if compact.Geometry.Width != 148 || compact.Geometry.Margin.Left != 10 || compact.Geometry.Margin.Top != 12 {
		t.Fatalf("unexpected compact geometry %+v", compact.Geometry)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.profile")
	src := "profile custom v1 {\n  page A5 margin 5mm\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	p, err := profile.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "custom" {
		t.Fatalf("unexpected name %s", p.Name)
	}
	if _, err := profile.Load(filepath.Join(t.TempDir(), "missing.profile")); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}

func TestProfileErrors(t *testing.T) {
	cases := map[string]string{
		"paper":   "profile x v1 {\n page B9\n}",
		"param":   "profile x v1 {\n page A4 sideways\n}",
		"margin":  "profile x v1 {\n page A4 margin 1mm 2mm 3mm 4mm 5mm\n}",
		"style":   "profile x v1 {\n style footer { size: 9pt }\n}",
		"font":    "profile x v1 {\n resources { font Body { family: \"Go\" } }\n}",
		"ratio":   "profile x v1 {\n spacing { label-max: 150% }\n}",
		"meta":    "profile x v1 {\n meta { title: \"x\" }\n}",
		"content": "profile x v1 {\n page A4 margin 200mm\n}",
	}
	for name, src := range cases {
		p, err := profile.ParseString(src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		if _, err := p.Options(nopTypesetter{}); err == nil {
			t.Fatalf("%s: expected options error", name)
		}
	}
	if _, err := profile.ParseString("profile x {"); err == nil {
		t.Fatalf("expected syntax error")
	}
}
