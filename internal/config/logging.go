package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/couimet/rangeLink-sub005/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// normalize canonicalizes enumerated fields in place and returns a warning for
// every value it had to change or could not recognise.
func normalize(cfg *Config) []string {
	var warnings []string

	if raw := string(cfg.Logging.Level); raw != "" {
		lvl, err := logLevelNormalizer.NormalizeWithError(raw)
		switch {
		case err != nil:
			warnings = append(warnings, warnUnknown("logging.level", raw, string(LogLevelInfo)))
			lvl = LogLevelInfo
		case string(lvl) != raw && strings.ToLower(strings.TrimSpace(raw)) != string(lvl):
			warnings = append(warnings, warnChanged("logging.level", raw, string(lvl)))
		}
		cfg.Logging.Level = lvl
	}

	if raw := string(cfg.Logging.Format); raw != "" {
		format, err := logFormatNormalizer.NormalizeWithError(raw)
		if err != nil {
			warnings = append(warnings, warnUnknown("logging.format", raw, string(LogFormatText)))
			format = LogFormatText
		}
		cfg.Logging.Format = format
	}

	if cfg.Watch.Debounce < 0 {
		warnings = append(warnings, fmt.Sprintf("watch.debounce %s is negative, using %s", cfg.Watch.Debounce, DefaultDebounce))
		cfg.Watch.Debounce = 0
	}
	return warnings
}

func warnChanged(field, from, to string) string {
	return fmt.Sprintf("%s normalized from %q to %q", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s %q is not recognised, using %q", field, value, fallback)
}
