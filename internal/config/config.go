// Package config loads the rangelink configuration file.
//
// Loading runs in a fixed order: .env files, YAML with ${VAR} expansion,
// RANGELINK_* environment overrides, normalization, defaults and finally
// delimiter validation. Invalid delimiters never fail a load; they are
// replaced by the defaults and reported back to the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "rangelink.yaml"

// DefaultDebounce is the watch debounce applied when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Config is the rangelink configuration file.
type Config struct {
	Delimiters delimiter.Config `yaml:"delimiters"`
	Scan       ScanConfig       `yaml:"scan"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ScanConfig controls link detection.
type ScanConfig struct {
	// IncludeUnparsed reports candidates the parser rejected.
	IncludeUnparsed bool `yaml:"include_unparsed"`
	// Markdown classifies links in .md files by their markdown context and
	// honours per-document delimiter overrides in frontmatter.
	Markdown *bool `yaml:"markdown,omitempty"`
}

// MarkdownEnabled reports whether markdown handling is on. It defaults to true.
func (s ScanConfig) MarkdownEnabled() bool {
	return s.Markdown == nil || *s.Markdown
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint in watch mode.
type MetricsConfig struct {
	// ListenAddr such as ":9464"; empty disables the endpoint.
	ListenAddr string `yaml:"listen_addr"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Result is a loaded config plus the non-fatal problems found while loading.
type Result struct {
	Config   *Config
	Warnings []string
	// DelimiterErrors lists the validation failures that caused a fallback to
	// the default delimiters. Empty when the configured delimiters were used.
	DelimiterErrors delimiter.Errors
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configPath. A missing file is not an error when optional is
// true; the defaults are used instead, still subject to env overrides.
func Load(configPath string, optional bool) (*Result, error) {
	loadEnvFiles()

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
				WithContext("file", configPath).
				Fatal().
				Build()
		}
	case errors.Is(err, os.ErrNotExist) && optional:
		// defaults below
	case errors.Is(err, os.ErrNotExist):
		return nil, ferrors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
			WithContext("file", configPath).
			Build()
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("file", configPath).
			Build()
	}

	applyEnvOverrides(&cfg, os.Getenv)
	return finish(&cfg), nil
}

// Parse builds a Result from YAML bytes without touching the filesystem or
// the process environment.
func Parse(data []byte) (*Result, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config").Fatal().Build()
	}
	return finish(&cfg), nil
}

func finish(cfg *Config) *Result {
	res := &Result{Config: cfg}
	res.Warnings = normalize(cfg)
	applyDefaults(cfg)
	res.DelimiterErrors = resolveDelimiters(cfg)
	return res
}

// applyDefaults fills unset fields. Delimiter slots left empty take the
// default value individually, so a file may override only the hash.
func applyDefaults(cfg *Config) {
	def := delimiter.Default()
	for _, sv := range cfg.Delimiters.Slots() {
		if sv.Value == "" {
			cfg.Delimiters = cfg.Delimiters.With(sv.Slot, def.Get(sv.Slot))
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
}

func resolveDelimiters(cfg *Config) delimiter.Errors {
	resolved, errs := delimiter.Resolve(cfg.Delimiters)
	cfg.Delimiters = resolved
	return errs
}

// Init writes a configuration file holding the defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("file", configPath).
			Build()
	}

	example := Default()
	markdown := true
	example.Scan.Markdown = &markdown

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("file", configPath).
			Build()
	}
	return nil
}
