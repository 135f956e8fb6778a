// Package export runs the resolve → layout → render pipeline and turns every
// failure into a result the caller can show to a user.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/lessonplan/exportlog"
	"github.com/ByLCY/lessonplan/layout"
	"github.com/ByLCY/lessonplan/lesson"
	"github.com/ByLCY/lessonplan/logger"
	"github.com/ByLCY/lessonplan/profile"
	"github.com/ByLCY/lessonplan/renderer"
	canvasrenderer "github.com/ByLCY/lessonplan/renderer/canvas"
	docxrenderer "github.com/ByLCY/lessonplan/renderer/docx"
	"github.com/ByLCY/lessonplan/renderer/preview"
	"github.com/ByLCY/lessonplan/resolver"
)

// DefaultBatchLimit bounds ExportBatch when no limit is given.
const DefaultBatchLimit = 4

// Result is the outcome of one export. Data is nil unless Success is true.
type Result struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Filename string          `json:"filename,omitempty"`
	Format   Format          `json:"format"`
	Language lesson.Language `json:"language,omitempty"`
	Pages    int             `json:"pages"`
	Data     []byte          `json:"-"`
}

// Recorder receives one entry per export attempt. *exportlog.Store satisfies it.
type Recorder interface {
	Append(ctx context.Context, e exportlog.Entry) (exportlog.Entry, error)
}

// Options configures an Exporter.
type Options struct {
	Profile          *profile.Profile // nil means profile.Default()
	FontDir          string           // base for relative font paths in the profile
	DPI              float64          // PNG resolution
	FilenameTemplate string
	Recorder         Recorder
	Logger           *logger.Logger
	Debug            bool // outline every op in PDF output
}

// Exporter is safe for concurrent use; each call composes with its own engine.
type Exporter struct {
	layout    layout.Options
	renderers map[Format]renderer.Renderer
	preview   *preview.Renderer
	template  string
	recorder  Recorder
	log       *logger.Logger
}

// New builds an exporter from a layout profile.
func New(opts Options) (*Exporter, error) {
	prof := opts.Profile
	if prof == nil {
		prof = profile.Default()
	}
	ts := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: opts.FontDir,
		Debug:   opts.Debug,
	})
	lopts, err := prof.Options(ts)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	lopts.Fonts = resolveFontPaths(lopts.Fonts, opts.FontDir)

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	png := preview.New(opts.DPI)
	return &Exporter{
		layout: lopts,
		renderers: map[Format]renderer.Renderer{
			PDF:  ts,
			DOCX: docxrenderer.New(),
			PNG:  png,
		},
		preview:  png,
		template: opts.FilenameTemplate,
		recorder: opts.Recorder,
		log:      log.With("component", "export", "profile", prof.Name),
	}, nil
}

// resolveFontPaths anchors relative font files at dir so every backend sees
// the same path.
func resolveFontPaths(set layout.ResourceSet, dir string) layout.ResourceSet {
	if dir == "" {
		return set
	}
	out := layout.ResourceSet{Fonts: make(map[string]layout.FontResource, len(set.Fonts))}
	for name, res := range set.Fonts {
		if res.Src != "" && !strings.Contains(res.Src, ":") && !filepath.IsAbs(res.Src) {
			res.Src = filepath.Join(dir, res.Src)
		}
		out.Fonts[name] = res
	}
	return out
}

// Resolve normalizes a raw record.
func (e *Exporter) Resolve(raw any) (lesson.Document, lesson.LabelSet) {
	return resolver.Resolve(raw)
}

// Layout resolves and paginates raw without rendering.
func (e *Exporter) Layout(raw any) (*layout.Result, lesson.Document, error) {
	doc, labels := resolver.Resolve(raw)
	res, err := layout.Compose(doc, labels, e.layout)
	if err != nil {
		return nil, doc, fmt.Errorf("layout: %w", err)
	}
	return res, doc, nil
}

// PreviewPage renders page index (0-based) of raw as PNG.
func (e *Exporter) PreviewPage(raw any, index int) ([]byte, int, error) {
	result, _, err := e.Layout(raw)
	if err != nil {
		return nil, 0, err
	}
	data, err := e.preview.RenderPage(result, index)
	if err != nil {
		return nil, len(result.Pages), fmt.Errorf("render png: %w", err)
	}
	return data, len(result.Pages), nil
}

// Export renders raw into format. It never returns partial data.
func (e *Exporter) Export(ctx context.Context, raw any, format Format) Result {
	start := time.Now()
	res := Result{Format: format}
	doc, data, pages, err := e.export(ctx, raw, format)
	res.Language = doc.Language
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
		res.Data = data
		res.Pages = pages
		res.Filename = Filename(doc, format, e.template)
	}
	e.record(ctx, doc, res, time.Since(start))
	return res
}

func (e *Exporter) export(ctx context.Context, raw any, format Format) (lesson.Document, []byte, int, error) {
	if err := ctx.Err(); err != nil {
		return lesson.Document{}, nil, 0, fmt.Errorf("export cancelled: %w", err)
	}
	r, ok := e.renderers[format]
	if !ok {
		return lesson.Document{}, nil, 0, fmt.Errorf("unsupported export format %q", format)
	}
	if raw == nil {
		return lesson.Document{}, nil, 0, errors.New("lesson plan is empty")
	}
	result, doc, err := e.Layout(raw)
	if err != nil {
		return doc, nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return doc, nil, 0, fmt.Errorf("export cancelled: %w", err)
	}
	data, err := r.Render(result)
	if err != nil {
		return doc, nil, 0, fmt.Errorf("render %s: %w", format, err)
	}
	return doc, data, len(result.Pages), nil
}

func (e *Exporter) record(ctx context.Context, doc lesson.Document, res Result, took time.Duration) {
	kv := []interface{}{"format", res.Format, "subject", doc.Subject, "pages", res.Pages, "bytes", len(res.Data), "duration_ms", took.Milliseconds()}
	if res.Success {
		e.log.Info("export finished", kv...)
	} else {
		e.log.Warn("export failed", append(kv, "error", res.Error)...)
	}
	if e.recorder == nil {
		return
	}
	// history failures never change the export result
	_, err := e.recorder.Append(context.WithoutCancel(ctx), exportlog.Entry{
		Format:   string(res.Format),
		Filename: res.Filename,
		Subject:  doc.Subject,
		Language: string(doc.Language),
		Success:  res.Success,
		Error:    res.Error,
		Pages:    res.Pages,
		Bytes:    len(res.Data),
		Duration: took,
	})
	if err != nil {
		e.log.Error("record export", "error", err)
	}
}

// ExportBatch exports every record concurrently, at most limit at a time.
// Results keep the input order; one failure does not stop the others.
func (e *Exporter) ExportBatch(ctx context.Context, raws []any, format Format, limit int) []Result {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	results := make([]Result, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, raw := range raws {
		g.Go(func() error {
			results[i] = e.Export(gctx, raw, format)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
