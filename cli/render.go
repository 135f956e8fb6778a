package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/lessonplan/export"
	"github.com/ByLCY/lessonplan/layout"
	"github.com/ByLCY/lessonplan/record"
)

type renderOptions struct {
	format    string
	outDir    string
	debugDir  string
	outline   bool
	noHistory bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render lesson-plan records to PDF, DOCX or PNG",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "pdf", "Output format: pdf, docx or png")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&opts.debugDir, "debug", "", "Write layout debug JSON to this directory")
	cmd.Flags().BoolVar(&opts.outline, "outline", false, "Outline every draw op in PDF output")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record exports in the history database")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions, files []string) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	e, err := root.setup(!opts.noHistory, opts.outline)
	if err != nil {
		return err
	}
	defer e.Close()

	var (
		failed  []string
		sources []string
		raws    []any
	)
	for _, path := range files {
		raw, err := record.DecodeFile(path)
		if err == nil && opts.debugDir != "" {
			err = writeDebug(e, raw, opts.debugDir, path)
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed = append(failed, path)
			continue
		}
		sources = append(sources, path)
		raws = append(raws, raw)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	results := e.exporter.ExportBatch(cmd.Context(), raws, format, e.cfg.BatchLimit)
	used := map[string]int{}
	for i, res := range results {
		if !res.Success {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", sources[i], res.Error)
			failed = append(failed, sources[i])
			continue
		}
		out := filepath.Join(opts.outDir, uniqueName(used, res.Filename))
		if err := os.WriteFile(out, res.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d pages)\n", sources[i], out, res.Pages)
	}
	if len(failed) > 0 {
		return errors.New("render failed for " + strings.Join(failed, ", "))
	}
	return nil
}

// uniqueName suffixes repeated names within one run: "A.pdf", "A (2).pdf".
func uniqueName(used map[string]int, name string) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
}

func writeDebug(e *env, raw any, dir, source string) error {
	result, _, err := e.exporter.Layout(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if err := layout.WriteDebugJSON(result, filepath.Join(dir, base+".layout.json")); err != nil {
		return fmt.Errorf("write debug json: %w", err)
	}
	return nil
}
