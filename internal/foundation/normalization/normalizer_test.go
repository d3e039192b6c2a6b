package normalization

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelNormalizer() *Normalizer[slog.Level] {
	return NewNormalizer("log level", map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}, slog.LevelInfo)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := levelNormalizer()

	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"exact match", "debug", slog.LevelDebug},
		{"case insensitive", "ERROR", slog.LevelError},
		{"with spaces", "  warn  ", slog.LevelWarn},
		{"alias", "Warning", slog.LevelWarn},
		{"empty", "", slog.LevelInfo},
		{"invalid input", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := levelNormalizer()

	got, err := n.NormalizeWithError(" Debug ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, got)

	got, err = n.NormalizeWithError("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, got)

	_, err = n.NormalizeWithError("loud")
	require.Error(t, err)
	assert.Equal(t, `invalid log level "loud", valid options: debug, error, info, warn, warning`, err.Error())
}

func TestNormalizer_ValidKeysIsACopy(t *testing.T) {
	n := levelNormalizer()
	keys := n.ValidKeys()
	keys[0] = "mutated"
	assert.Equal(t, "debug", n.ValidKeys()[0])
}
