package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/link"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	parsed, err := link.ParseLink("src/a.ts#L5C10-L10C20", delimiter.Default())
	require.NoError(t, err)
	rect, err := link.ParseLink("grid.ts##L1C2-L3C4", delimiter.Default())
	require.NoError(t, err)

	r := New()
	r.Add(FileResult{Path: "empty.md"})
	r.Add(FileResult{
		Path: "docs/guide.md",
		Links: []Entry{
			{Text: "src/a.ts#L5C10-L10C20", Status: StatusParsed, Line: 3, Column: 7, Parsed: parsed, Context: "prose"},
			{Text: "grid.ts##L1C2-L3C4", Status: StatusParsed, Line: 4, Column: 1, Parsed: rect, Context: "inline_code"},
			{Text: "b.go#L0", Status: StatusUnparsed, Line: 9, Column: 2, ErrorKind: string(link.ErrLineNumberOutOfBounds), Error: "line out of bounds"},
		},
	})
	r.Add(FileResult{Path: "gone.md", Error: "no such file"})
	return r
}

func TestNew_AssignsUUID(t *testing.T) {
	r := New()
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.NotEqual(t, r.ID, New().ID)
	assert.NotNil(t, r.Files)
}

func TestReport_Totals(t *testing.T) {
	r := sampleReport(t)
	assert.Equal(t, Totals{Files: 3, Links: 3, Parsed: 2, Unparsed: 1, Errors: 1}, r.Totals())
	assert.True(t, r.HasUnparsed())
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Files, 2, "files without links are only counted")
}

func TestReport_Merge(t *testing.T) {
	r := New()
	r.Add(FileResult{Path: "a.md"})
	other := sampleReport(t)
	r.Merge(other)

	assert.NotEqual(t, other.ID, r.ID)
	assert.Equal(t, 4, r.Totals().Files)
	assert.Equal(t, 3, r.Totals().Links)
	assert.Len(t, r.Files, 2)
}

func TestReport_WithoutUnparsed(t *testing.T) {
	r := New()
	r.Add(FileResult{Path: "only-bad.txt", Links: []Entry{{Text: "a.go#L0", Status: StatusUnparsed}}})
	r.Merge(sampleReport(t))

	out := r.WithoutUnparsed()
	assert.Equal(t, r.ID, out.ID)
	assert.Equal(t, Totals{Files: 4, Links: 2, Parsed: 2, Errors: 1}, out.Totals())
	require.Len(t, out.Files, 2)
	assert.Equal(t, "docs/guide.md", out.Files[0].Path)
	assert.Equal(t, "gone.md", out.Files[1].Path)

	assert.Equal(t, 2, r.Totals().Unparsed, "source report is untouched")
}

func TestTextFormatter(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text", false).Format(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "docs/guide.md:3:7: src/a.ts#L5C10-L10C20 -> src/a.ts lines 5-10 cols 10-20\n")
	assert.Contains(t, out, "docs/guide.md:4:1: grid.ts##L1C2-L3C4 -> grid.ts lines 1-3 cols 2-4 rectangular (inline_code)\n")
	assert.Contains(t, out, "docs/guide.md:9:2: b.go#L0 [line_number_out_of_bounds]\n")
	assert.Contains(t, out, "gone.md: error: no such file\n")
	assert.Contains(t, out, "3 files scanned, 3 links (2 parsed, 1 unparsed)")
	assert.Contains(t, out, "report "+r.ID)

	buf.Reset()
	require.NoError(t, NewTextFormatter(true).Format(&buf, r))
	assert.NotContains(t, buf.String(), "files scanned")
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

func TestJSONFormatter(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("json", false).Format(&buf, r))

	var decoded struct {
		ID     string `json:"id"`
		Totals Totals `json:"totals"`
		Files  []struct {
			Path  string `json:"path"`
			Links []struct {
				Text   string `json:"text"`
				Status string `json:"status"`
				Parsed *struct {
					Path  string        `json:"path"`
					Start link.Position `json:"start"`
				} `json:"parsed"`
				ErrorKind string `json:"errorKind"`
			} `json:"links"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, 3, decoded.Totals.Links)
	require.Len(t, decoded.Files, 2)
	links := decoded.Files[0].Links
	require.Len(t, links, 3)
	require.NotNil(t, links[0].Parsed)
	assert.Equal(t, "src/a.ts", links[0].Parsed.Path)
	assert.Equal(t, link.Position{Line: 5, Character: 10}, links[0].Parsed.Start)
	assert.Nil(t, links[2].Parsed)
	assert.Equal(t, "line_number_out_of_bounds", links[2].ErrorKind)
}
