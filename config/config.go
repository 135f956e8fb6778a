// Package config loads service settings: built-in defaults, then an optional
// YAML file, then LESSONPLAN_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the variable holding the config file path.
const EnvConfig = "LESSONPLAN_CONFIG"

type Config struct {
	Port string `yaml:"port"`

	// Auth; empty disables bearer auth.
	APIKey string `yaml:"apiKey"`

	// Layout
	Profile          string  `yaml:"profile"`
	FontDir          string  `yaml:"fontDir"`
	PreviewDPI       float64 `yaml:"previewDPI"`
	FilenameTemplate string  `yaml:"filenameTemplate"`

	// Export history; empty disables it.
	HistoryDB string `yaml:"historyDB"`

	LogMode string `yaml:"logMode"`

	MaxBodyBytes int64 `yaml:"maxBodyBytes"`
	BatchLimit   int   `yaml:"batchLimit"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:             "8090",
		Profile:          "classic",
		PreviewDPI:       96,
		FilenameTemplate: "${subject} - ${date}",
		HistoryDB:        "data/exports.db",
		LogMode:          "dev",
		MaxBodyBytes:     1 << 20,
		BatchLimit:       4,
	}
}

// Load builds the config. path overrides LESSONPLAN_CONFIG; a missing file is
// an error only when a path was given.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("LESSONPLAN_PORT", c.Port)
	c.APIKey = envOr("LESSONPLAN_API_KEY", c.APIKey)
	c.Profile = envOr("LESSONPLAN_PROFILE", c.Profile)
	c.FontDir = envOr("LESSONPLAN_FONT_DIR", c.FontDir)
	c.HistoryDB = envOr("LESSONPLAN_HISTORY_DB", c.HistoryDB)
	c.LogMode = envOr("LESSONPLAN_LOG_MODE", c.LogMode)
	c.MaxBodyBytes = envInt64("LESSONPLAN_MAX_BODY_BYTES", c.MaxBodyBytes)
	c.BatchLimit = envInt("LESSONPLAN_BATCH_LIMIT", c.BatchLimit)
}

func (c Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("config: invalid port %q", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: maxBodyBytes must be > 0")
	}
	if c.BatchLimit <= 0 || c.BatchLimit > 64 {
		return fmt.Errorf("config: batchLimit must be between 1 and 64")
	}
	if c.PreviewDPI < 0 {
		return fmt.Errorf("config: previewDPI must not be negative")
	}
	switch strings.ToLower(c.LogMode) {
	case "", "dev", "development", "prod", "production", "nop", "off", "silent":
	default:
		return fmt.Errorf("config: unknown logMode %q", c.LogMode)
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
