// Package config loads invoicer settings from a YAML or CUE file, then
// applies INVOICER_* environment overrides. Command-line flags are applied
// last by the CLI.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/invoicer/internal/importer"
)

// Environment variables that override file values.
const (
	EnvDatabase       = "INVOICER_DATABASE"
	EnvHTTPAddr       = "INVOICER_HTTP_ADDR"
	EnvLogLevel       = "INVOICER_LOG_LEVEL"
	EnvPushgatewayURL = "INVOICER_PUSHGATEWAY_URL"
)

//go:embed schema.cue
var schemaCUE []byte

// Config holds every setting of the invoicer binary.
type Config struct {
	// Database is a SQLite file path, ":memory:", or a postgres:// URL.
	Database   string           `yaml:"database" json:"database"`
	DateLayout string           `yaml:"date_layout" json:"date_layout"`
	Columns    importer.Columns `yaml:"columns" json:"columns"`
	HTTPAddr   string           `yaml:"http_addr" json:"http_addr"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`

	// PushgatewayURL, when set, receives import run metrics after each
	// import command. Empty disables pushing.
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:   "invoicer.db",
		DateLayout: importer.DefaultDateLayout,
		Columns:    importer.DefaultColumns(),
		HTTPAddr:   ":8080",
		LogLevel:   "info",
	}
}

// Load returns Default overlaid with the file at path (if path is not empty)
// and then with the environment. Fields absent from the file keep their
// defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return c.decodeYAML(data)
	case ".cue":
		return c.decodeCUE(path, data)
	default:
		return fmt.Errorf("read config: unsupported extension %q (want .yaml, .yml or .cue)", ext)
	}
}

func (c *Config) decodeYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse yaml config: %w", err)
	}
	return nil
}

// decodeCUE unifies the file with the embedded #Config schema, which is
// closed: unknown fields and bad log levels fail here.
func (c *Config) decodeCUE(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("parse cue config: %w", err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate cue config: %w", err)
	}

	if err := unified.Decode(c); err != nil {
		return fmt.Errorf("decode cue config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables that are set and non-empty.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		c.HTTPAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvPushgatewayURL); ok && v != "" {
		c.PushgatewayURL = v
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, errors.New("database must not be empty"))
	}
	if strings.TrimSpace(c.DateLayout) == "" {
		errs = append(errs, errors.New("date_layout must not be empty"))
	}
	if err := c.Columns.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level %q: must be debug, info, warn or error", c.LogLevel)
	}
}
