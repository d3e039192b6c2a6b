package config

import (
	"strings"

	"github.com/joho/godotenv"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
)

// envFiles are loaded in order. Variables already present in the process
// environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

// Environment variables that override individual delimiter slots.
const (
	EnvDelimiterLine     = "RANGELINK_DELIMITER_LINE"
	EnvDelimiterPosition = "RANGELINK_DELIMITER_POSITION"
	EnvDelimiterHash     = "RANGELINK_DELIMITER_HASH"
	EnvDelimiterRange    = "RANGELINK_DELIMITER_RANGE"
	EnvLogLevel          = "RANGELINK_LOG_LEVEL"
)

var delimiterEnv = map[delimiter.Slot]string{
	delimiter.SlotLine:     EnvDelimiterLine,
	delimiter.SlotPosition: EnvDelimiterPosition,
	delimiter.SlotHash:     EnvDelimiterHash,
	delimiter.SlotRange:    EnvDelimiterRange,
}

func loadEnvFiles() {
	for _, name := range envFiles {
		// Missing files are the common case.
		_ = godotenv.Load(name)
	}
}

// applyEnvOverrides replaces config values with non-empty environment
// variables read through getenv.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	for slot, key := range delimiterEnv {
		if v := getenv(key); v != "" {
			cfg.Delimiters = cfg.Delimiters.With(slot, v)
		}
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
}
