package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: ExitOK},
		{name: "validation", err: ValidationError("bad delimiter").Build(), expected: ExitValidation},
		{name: "config", err: ConfigError("bad config").Build(), expected: ExitConfig},
		{name: "notation", err: NotationError("bad link").Build(), expected: ExitNotation},
		{name: "format", err: FormatError("no selections").Build(), expected: ExitNotation},
		{name: "filesystem", err: FileSystemError("missing file").Build(), expected: ExitFileSystem},
		{name: "runtime", err: RuntimeError("watcher died").Build(), expected: ExitRuntime},
		{name: "internal", err: InternalError("bug").Build(), expected: ExitInternal},
		{
			name:     "wrapped classified",
			err:      wrap(NotationError("bad link").Build()),
			expected: ExitNotation,
		},
		{name: "unclassified", err: stderrors.New("unknown error"), expected: ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	assert.Empty(t, quiet.FormatError(nil))
	assert.Equal(t, "Error: unknown error", quiet.FormatError(stderrors.New("unknown error")))
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("boom").Build()))
	assert.Contains(t, verbose.FormatError(InternalError("boom").Build()), "boom")

	err := WrapError(stderrors.New("range out of order"), CategoryNotation, "link did not parse").Build()
	assert.Equal(t, "Error: link did not parse: range out of order", quiet.FormatError(err))
}

func TestCLIErrorAdapter_Handle(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	assert.Equal(t, ExitOK, adapter.Handle(&out, nil))
	assert.Empty(t, out.String())

	err := ConfigError("invalid delimiters").WithContext("file", "rangelink.yaml").Build()
	assert.Equal(t, ExitConfig, adapter.Handle(&out, err))
	assert.Equal(t, "Error: invalid delimiters\n", out.String())
	assert.Contains(t, logs.String(), "category=config")
	assert.Contains(t, logs.String(), "file=rangelink.yaml")

	logs.Reset()
	out.Reset()
	assert.Equal(t, ExitNotation, adapter.Handle(&out, NotationError("bad link").Build()))
	assert.Empty(t, logs.String(), "non-fatal errors are not logged unless verbose")
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "context: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func wrap(err error) error { return &wrapper{err: err} }
