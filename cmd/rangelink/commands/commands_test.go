package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/link"
	"github.com/couimet/rangeLink-sub005/internal/metrics"
)

type result struct {
	stdout string
	stderr string
	err    error
	code   int
}

// run executes the CLI in a fresh temp working directory unless the test
// already changed into one.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	g := &Global{
		Stdin:    strings.NewReader(stdin),
		Stdout:   &out,
		Stderr:   &errOut,
		Recorder: metrics.NoopRecorder{},
	}
	cli := &CLI{}
	parser, err := New(cli, g, kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	runErr := ctx.Run()
	code := ExitCode(&errOut, runErr, cli.Verbose, cli.Logger())
	return result{stdout: out.String(), stderr: errOut.String(), err: runErr, code: code}
}

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestFormat(t *testing.T) {
	inTempDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"partial range", []string{"format", "src/app.ts", "-s", "10:5", "-e", "12:1"}, "src/app.ts#L10C5-L12C1"},
		{"full lines", []string{"format", "a.go", "-s", "3", "-e", "5"}, "a.go#L3-L5"},
		{"single line", []string{"format", "a.go", "-s", "7"}, "a.go#L7"},
		{"reversed selection", []string{"format", "a.go", "-s", "9:4", "-e", "2:3"}, "a.go#L2C3-L9C4"},
		{"end line length", []string{"format", "a.go", "-s", "3:1", "-e", "4:12", "--end-line-length", "12"}, "a.go#L3-L4"},
		{"forced partial", []string{"format", "a.go", "-s", "3:1", "-e", "4:12", "--coverage", "partial_line"}, "a.go#L3C1-L4C12"},
		{
			"rectangular",
			[]string{"format", "grid.go", "-s", "2:3", "-e", "2:7", "--select", "3:3-3:7", "--select", "4:3-4:7"},
			"grid.go##L2C3-L4C7",
		},
		{"portable", []string{"format", "a.go", "-s", "1", "--portable"}, "a.go#L1~#~L~-~C~"},
		{"quoted path", []string{"format", "my file.go", "-s", "1"}, "'my file.go'#L1"},
		{"quoted link", []string{"format", "my file.go", "-s", "1", "--quote-link"}, "'my file.go#L1'"},
		{"custom delimiters", []string{"format", "a.go", "-s", "1:2", "-e", "3:4", "--hash-delimiter", "@@"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			if tt.want == "" {
				assert.Equal(t, ferrors.ExitValidation, res.code)
				return
			}
			require.NoError(t, res.err)
			assert.Equal(t, tt.want+"\n", res.stdout)
			assert.Equal(t, ferrors.ExitOK, res.code)
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	inTempDir(t)

	res := run(t, "", "format", "a.go", "-s", "x")
	assert.Equal(t, ferrors.ExitValidation, res.code)
	assert.Contains(t, res.stderr, "expected LINE or LINE:CHAR")

	res = run(t, "", "format", "a.go", "-s", "0")
	assert.Equal(t, ferrors.ExitNotation, res.code)
	assert.True(t, ferrors.HasCategory(classify(res.err), ferrors.CategoryFormat))

	res = run(t, "", "format", "a.go", "-s", "1:-2")
	assert.Equal(t, ferrors.ExitNotation, res.code)
}

func TestFormat_UsesConfigDelimiters(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rangelink.yaml"),
		[]byte("delimiters:\n  line: line\n  position: pos\n  range: \" to \"\n"), 0o600))

	// Whitespace is not allowed in a delimiter, so the whole set falls back.
	res := run(t, "", "format", "a.go", "-s", "1:2", "-e", "3:4")
	require.NoError(t, res.err)
	assert.Equal(t, "a.go#L1C2-L3C4\n", res.stdout)
	assert.Contains(t, res.stderr, "Invalid delimiter configuration")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rangelink.yaml"),
		[]byte("delimiters:\n  line: line\n  position: pos\n  range: to\n"), 0o600))
	res = run(t, "", "format", "a.go", "-s", "1:2", "-e", "3:4")
	require.NoError(t, res.err)
	assert.Equal(t, "a.go#line1pos2toline3pos4\n", res.stdout)
}

func TestParse(t *testing.T) {
	inTempDir(t)

	res := run(t, "", "parse", "src/a.ts#L5C10-L10C20")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "path:      src/a.ts\n")
	assert.Contains(t, res.stdout, "start:     line 5, character 10\n")
	assert.Contains(t, res.stdout, "end:       line 10, character 20\n")
	assert.Contains(t, res.stdout, "selection: normal\n")
	assert.Contains(t, res.stdout, "canonical: src/a.ts#L5C10-L10C20\n")
	assert.NotContains(t, res.stdout, "quoted:")

	res = run(t, "", "parse", "'my file.go'#L2")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "quoted:    'my file.go'\n")
}

func TestParse_JSON(t *testing.T) {
	inTempDir(t)

	res := run(t, "", "parse", "--json", "grid.go##L1C2-L3C4")
	require.NoError(t, res.err)

	var got link.ParsedLink
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, "grid.go", got.Path)
	assert.Equal(t, link.Position{Line: 1, Character: 2}, got.Start)
	assert.Equal(t, link.Position{Line: 3, Character: 4}, got.End)
	assert.Equal(t, link.SelectionRectangular, got.SelectionType)
	assert.Equal(t, delimiter.Default(), got.Delimiters)
}

func TestParse_Errors(t *testing.T) {
	inTempDir(t)

	res := run(t, "", "parse", "nohash")
	assert.Equal(t, ferrors.ExitNotation, res.code)
	assert.Contains(t, res.stderr, "Error: invalid link")

	res = run(t, "", "parse", "a.go#L1", "--hash-delimiter", "##")
	assert.Equal(t, ferrors.ExitValidation, res.code)

	res = run(t, "", "parse", "a.go!L3", "--hash-delimiter", "!")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "start:     line 3\n")
}

func TestScan_Stdin(t *testing.T) {
	inTempDir(t)

	res := run(t, "see a.go#L1 and b.go#L0\n", "scan")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "<stdin>:1:5: a.go#L1 -> a.go lines 1-1\n")
	assert.NotContains(t, res.stdout, "b.go#L0")

	res = run(t, "see a.go#L1 and b.go#L0\n", "scan", "-", "--include-unparsed", "--format", "json")
	require.NoError(t, res.err)
	var out struct {
		Totals struct {
			Parsed   int `json:"parsed"`
			Unparsed int `json:"unparsed"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, 1, out.Totals.Parsed)
	assert.Equal(t, 1, out.Totals.Unparsed)

	res = run(t, "b.go#L0\n", "scan", "--include-unparsed", "--strict", "-q")
	assert.Equal(t, ferrors.ExitValidation, res.code)
	assert.Contains(t, res.stdout, "[line_number_out_of_bounds]")
}

func TestScan_StrictWithoutIncludeUnparsed(t *testing.T) {
	inTempDir(t)

	res := run(t, "b.go#L0\n", "scan", "--strict", "-q")
	assert.Equal(t, ferrors.ExitValidation, res.code)
	assert.NotContains(t, res.stdout, "b.go#L0")

	res = run(t, "see a.go#L1 and b.go#L0\n", "scan", "--strict")
	assert.Equal(t, ferrors.ExitValidation, res.code)
	assert.Contains(t, res.stdout, "<stdin>:1:5: a.go#L1 -> a.go lines 1-1\n")
	assert.NotContains(t, res.stdout, "b.go#L0")

	res = run(t, "see a.go#L1\n", "scan", "--strict", "-q")
	require.NoError(t, res.err)
	assert.Equal(t, 0, res.code)
}

func TestScan_Paths(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("see a.go#L1\n\n`b.go#L2`\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("c.go#L3C1-L4C2\n"), 0o600))

	res := run(t, "", "scan", "docs", "notes.txt")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, filepath.Join("docs", "a.md")+":1:5: a.go#L1")
	assert.Contains(t, res.stdout, filepath.Join("docs", "a.md")+":3:2: b.go#L2 -> b.go lines 2-2 (inline_code)")
	assert.Contains(t, res.stdout, "notes.txt:1:1: c.go#L3C1-L4C2 -> c.go lines 3-4 cols 1-2")
	assert.Contains(t, res.stdout, "2 files scanned, 3 links (3 parsed, 0 unparsed)")

	res = run(t, "", "scan", "docs", "--skip-code", "-q")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "b.go#L2")

	res = run(t, "", "scan", "missing")
	assert.Equal(t, ferrors.ExitFileSystem, res.code)
}

func TestScan_FrontmatterOverride(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"),
		[]byte("---\nrangelink:\n  delimiters:\n    hash: \"!\"\n---\nsee a.go!L3 and b.go#L4\n"), 0o600))

	res := run(t, "", "scan", "a.md", "-q")
	require.NoError(t, res.err)
	assert.Equal(t, "a.md:6:5: a.go!L3 -> a.go lines 3-3\n", res.stdout)

	res = run(t, "", "scan", "a.md", "-q", "--no-markdown")
	require.NoError(t, res.err)
	assert.Equal(t, "a.md:6:17: b.go#L4 -> b.go lines 4-4\n", res.stdout)
}

func TestValidate(t *testing.T) {
	dir := inTempDir(t)

	res := run(t, "", "validate")
	require.NoError(t, res.err)
	assert.Equal(t, "delimiters ok: line=L position=C hash=# range=-\n", res.stdout)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rangelink.yaml"),
		[]byte("delimiters:\n  hash: \"##\"\nlogging:\n  level: loud\n"), 0o600))
	res = run(t, "", "validate")
	assert.Equal(t, ferrors.ExitValidation, res.code)
	assert.Contains(t, res.stdout, "warning: ")
	assert.Contains(t, res.stdout, "invalid delimiters:\n")
	assert.Contains(t, res.stdout, "must be exactly one character")

	res = run(t, "", "validate", "--hash-delimiter", "!")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "delimiters ok: line=L position=C hash=! range=-\n")

	res = run(t, "", "validate", "--line-delimiter", "X", "--range-delimiter", "x")
	assert.Equal(t, ferrors.ExitValidation, res.code)
	assert.Contains(t, res.stdout, "unique")
}

func TestConfigErrors(t *testing.T) {
	dir := inTempDir(t)

	res := run(t, "", "-c", "nope.yaml", "parse", "a.go#L1")
	assert.Equal(t, ferrors.ExitConfig, res.code)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rangelink.yaml"), []byte("delimiters: [\n"), 0o600))
	res = run(t, "", "parse", "a.go#L1")
	assert.Equal(t, ferrors.ExitConfig, res.code)
}

func TestInit(t *testing.T) {
	dir := inTempDir(t)

	res := run(t, "", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "initialized successfully")
	data, err := os.ReadFile(filepath.Join(dir, "rangelink.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "delimiters:")

	res = run(t, "", "init")
	assert.Equal(t, ferrors.ExitValidation, res.code)

	res = run(t, "", "init", "--force")
	require.NoError(t, res.err)

	// A broken file can still be replaced.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rangelink.yaml"), []byte("delimiters: [\n"), 0o600))
	res = run(t, "", "init", "--force")
	require.NoError(t, res.err)
}

func TestLogFormat(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rangelink.yaml"), []byte("delimiters:\n  hash: \"##\"\n"), 0o600))

	res := run(t, "", "--log-format", "json", "parse", "a.go#L1")
	require.NoError(t, res.err)
	line, _, _ := strings.Cut(res.stderr, "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "hash", entry["delimiter"])
}

func TestDebugLogFields(t *testing.T) {
	inTempDir(t)

	res := run(t, "", "-v", "--log-format", "json", "format", "a.go", "-s", "3")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, `"link":"a.go#L3"`)
	assert.Contains(t, res.stderr, `"count":1`)

	res = run(t, "a.go#L1\n", "-v", "--log-format", "json", "scan", "-q")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, `"report_id":"`)
	assert.Contains(t, res.stderr, `"files":1`)
}

func TestClassify(t *testing.T) {
	_, linkErr := link.ParseLink("nohash", delimiter.Default())
	_, formatErr := link.FormatLink("a.go", nil, delimiter.Default(), link.FormatOptions{})
	delimErrs := delimiter.Config{Line: "L", Position: "C", Hash: "##", Range: "-"}.Validate()

	tests := []struct {
		name string
		err  error
		want ferrors.ErrorCategory
	}{
		{"notation", linkErr, ferrors.CategoryNotation},
		{"format", formatErr, ferrors.CategoryFormat},
		{"delimiters", delimErrs, ferrors.CategoryValidation},
		{"single delimiter", delimErrs[0], ferrors.CategoryValidation},
		{"wrapped", fmt.Errorf("outer: %w", linkErr), ferrors.CategoryNotation},
		{"canceled", context.Canceled, ferrors.CategoryRuntime},
		{"classified", ferrors.ConfigError("x").Build(), ferrors.CategoryConfig},
		{"unknown", fmt.Errorf("boom"), ferrors.CategoryInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ferrors.GetCategory(classify(tt.err)))
		})
	}
	assert.NoError(t, classify(nil))
}

func TestServeMetrics(t *testing.T) {
	g := &Global{Recorder: metrics.NoopRecorder{}}
	stop, err := serveMetrics(g, "127.0.0.1:0")
	require.NoError(t, err)
	defer stop()
	assert.IsType(t, &metrics.PrometheusRecorder{}, g.Recorder)

	_, err = serveMetrics(&Global{}, "256.0.0.1:bad")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRuntime))
}
