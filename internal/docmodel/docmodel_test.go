package docmodel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/markdown"
	"github.com/couimet/rangeLink-sub005/internal/scanner"
)

func newScanner(t *testing.T, cfg delimiter.Config) *scanner.Scanner {
	t.Helper()
	s, err := scanner.New(cfg)
	require.NoError(t, err)
	return s
}

func TestParse_SplitsFrontmatter(t *testing.T) {
	src := "---\ntitle: x\n---\n# Body\n"
	doc, err := Parse([]byte(src), Options{})
	require.NoError(t, err)

	assert.True(t, doc.HadFrontmatter())
	assert.Equal(t, []byte("title: x\n"), doc.FrontmatterRaw())
	assert.Equal(t, []byte("# Body\n"), doc.Body())
	assert.Equal(t, []byte(src), doc.Original())
	assert.Equal(t, 3, doc.LineOffset())
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("plain a.go#L1\n"), Options{})
	require.NoError(t, err)
	assert.False(t, doc.HadFrontmatter())
	assert.Nil(t, doc.FrontmatterRaw())
	assert.Equal(t, 0, doc.LineOffset())
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: x\nbody\n"), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestParsedDoc_RangeLinks(t *testing.T) {
	src := "---\n" +
		"title: x\n" +
		"---\n" +
		"Intro src/a.ts#L10 here.\n" +
		"Inline `src/b.ts#L2-L4` and naïve é src/c.ts#L1C2\n" +
		"```\n" +
		"src/d.ts#L7\n" +
		"```\n"

	doc, err := Parse([]byte(src), Options{})
	require.NoError(t, err)

	links, err := doc.RangeLinks(context.Background(), newScanner(t, delimiter.Default()))
	require.NoError(t, err)
	require.Len(t, links, 4)

	assert.Equal(t, "src/a.ts#L10", links[0].LinkText)
	assert.Equal(t, 1, links[0].BodyLine)
	assert.Equal(t, 4, links[0].FileLine)
	assert.Equal(t, 7, links[0].Column)
	assert.Equal(t, markdown.ContextProse, links[0].Context)

	assert.Equal(t, "src/b.ts#L2-L4", links[1].LinkText)
	assert.Equal(t, 5, links[1].FileLine)
	assert.Equal(t, markdown.ContextInlineCode, links[1].Context)

	assert.Equal(t, "src/c.ts#L1C2", links[2].LinkText)
	assert.Equal(t, 5, links[2].FileLine)
	assert.Equal(t, 37, links[2].Column)
	assert.Equal(t, markdown.ContextProse, links[2].Context)

	assert.Equal(t, "src/d.ts#L7", links[3].LinkText)
	assert.Equal(t, 7, links[3].FileLine)
	assert.Equal(t, 1, links[3].Column)
	assert.Equal(t, markdown.ContextCodeBlock, links[3].Context)
}

func TestParsedDoc_RangeLinks_SkipCode(t *testing.T) {
	src := "prose a.go#L1 `b.go#L2`\n\n    c.go#L3\n"
	doc, err := Parse([]byte(src), Options{SkipCode: true})
	require.NoError(t, err)

	links, err := doc.RangeLinks(context.Background(), newScanner(t, delimiter.Default()))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "a.go#L1", links[0].LinkText)
}

func TestParsedDoc_RangeLinks_Canceled(t *testing.T) {
	doc, err := Parse([]byte("a.go#L1 b.go#L2\n"), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	links, err := doc.RangeLinks(ctx, newScanner(t, delimiter.Default()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, links)
}

func TestParsedDoc_Delimiters(t *testing.T) {
	src := "---\nrangelink:\n  delimiters:\n    hash: \"!\"\n---\nsee a.go!L3 and b.go#L4\n"
	doc, err := Parse([]byte(src), Options{})
	require.NoError(t, err)

	cfg, ok, err := doc.Delimiters(delimiter.Default())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "!", cfg.Hash)

	links, err := doc.RangeLinks(context.Background(), newScanner(t, cfg))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "a.go!L3", links[0].LinkText)
	assert.Equal(t, 6, links[0].FileLine)

	bad, err := Parse([]byte("---\nrangelink: [\n---\nbody\n"), Options{})
	require.NoError(t, err)
	_, _, err = bad.Delimiters(delimiter.Default())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParsedDoc_BodyPosition(t *testing.T) {
	doc, err := Parse([]byte("ab\ncdé\nf"), Options{})
	require.NoError(t, err)

	line, col := doc.BodyPosition(0)
	assert.Equal(t, []int{1, 1}, []int{line, col})
	line, col = doc.BodyPosition(3)
	assert.Equal(t, []int{2, 1}, []int{line, col})
	line, col = doc.BodyPosition(8)
	assert.Equal(t, []int{3, 1}, []int{line, col})
	line, col = doc.BodyPosition(7)
	assert.Equal(t, []int{2, 4}, []int{line, col})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("a.go#L1\n"), 0o600))

	doc, err := ParseFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte("a.go#L1\n"), doc.Body())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
