// Package cli implements the lessonplan command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/lessonplan/config"
	"github.com/ByLCY/lessonplan/export"
	"github.com/ByLCY/lessonplan/exportlog"
	"github.com/ByLCY/lessonplan/logger"
	"github.com/ByLCY/lessonplan/profile"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	profile    string
	logMode    string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "lessonplan",
		Short:         "Resolve and typeset lesson plans",
		Long:          "Normalizes English or Kiswahili lesson-plan records and renders them to PDF, DOCX or PNG.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $"+config.EnvConfig+")")
	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Layout profile name or file")
	root.PersistentFlags().StringVar(&opts.logMode, "log-mode", "", "Log mode: dev, prod or nop")

	root.AddCommand(
		newResolveCmd(),
		newRenderCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
		newProfilesCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// config loads settings and applies flag overrides.
func (o *rootOptions) config() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.profile != "" {
		cfg.Profile = o.profile
	}
	if o.logMode != "" {
		cfg.LogMode = o.logMode
	}
	return cfg, cfg.Validate()
}

// env is what a command needs to run the pipeline.
type env struct {
	cfg      config.Config
	log      *logger.Logger
	exporter *export.Exporter
	store    *exportlog.Store
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

// setup loads config, logger, profile and, when withHistory is set and a
// database is configured, the export history.
func (o *rootOptions) setup(withHistory bool, debug bool) (*env, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log}

	prof, err := profile.Load(cfg.Profile)
	if err != nil {
		e.Close()
		return nil, err
	}
	exportOpts := export.Options{
		Profile:          prof,
		FontDir:          cfg.FontDir,
		DPI:              cfg.PreviewDPI,
		FilenameTemplate: cfg.FilenameTemplate,
		Logger:           log,
		Debug:            debug,
	}
	if withHistory && cfg.HistoryDB != "" {
		store, err := exportlog.Open(cfg.HistoryDB)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		e.store = store
		exportOpts.Recorder = store
	}
	if e.exporter, err = export.New(exportOpts); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
