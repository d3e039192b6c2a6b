// Package docmodel models a markdown document for link detection: the body
// split from its frontmatter, the markdown context of each byte, and the
// mapping from body offsets to file lines and columns.
package docmodel

import (
	"bytes"
	"os"
	"sort"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/frontmatter"
)

// Options controls parsing behavior for ParsedDoc.
type Options struct {
	// SkipCode drops links found inside code spans and code blocks.
	SkipCode bool
}

// ParsedDoc is a markdown document split into YAML frontmatter and body.
type ParsedDoc struct {
	original []byte
	split    frontmatter.Document
	opts     Options

	// lineStarts holds the body offset of every line start.
	lineStarts []int
}

// Parse parses raw file content into a ParsedDoc.
func Parse(content []byte, opts Options) (*ParsedDoc, error) {
	orig := append([]byte(nil), content...)
	split, err := frontmatter.Split(orig)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to split frontmatter").Build()
	}

	d := &ParsedDoc{original: orig, split: split, opts: opts}
	d.lineStarts = lineStarts(split.Body)
	return d, nil
}

// ParseFile reads a file from disk and parses it into a ParsedDoc.
func ParseFile(path string, opts Options) (*ParsedDoc, error) {
	// #nosec G304 -- path comes from the command line or the watcher.
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("path", path).
			Build()
	}

	doc, err := Parse(content, opts)
	if err != nil {
		classified, ok := errors.AsClassified(err)
		if ok {
			return nil, classified.WithContext("path", path)
		}
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse document").
			WithContext("path", path).
			Build()
	}
	return doc, nil
}

// Original returns a copy of the original bytes.
func (d *ParsedDoc) Original() []byte {
	return append([]byte(nil), d.original...)
}

// HadFrontmatter reports whether the original document contained a YAML frontmatter block.
func (d *ParsedDoc) HadFrontmatter() bool {
	return d.split.HasFrontmatter
}

// FrontmatterRaw returns the raw YAML frontmatter bytes (without delimiters),
// or nil when the document had none.
func (d *ParsedDoc) FrontmatterRaw() []byte {
	if !d.split.HasFrontmatter {
		return nil
	}
	return append([]byte{}, d.split.Frontmatter...)
}

// Body returns the markdown body bytes (frontmatter removed).
func (d *ParsedDoc) Body() []byte {
	return append([]byte(nil), d.split.Body...)
}

// LineOffset translates body line numbers into file line numbers:
// fileLine = LineOffset() + bodyLine.
func (d *ParsedDoc) LineOffset() int {
	return d.split.BodyLine - 1
}

// Delimiters returns the delimiter config the document asks for in a
// `rangelink.delimiters` frontmatter block, layered over base. ok is false
// when the document carries no such block.
func (d *ParsedDoc) Delimiters(base delimiter.Config) (cfg delimiter.Config, ok bool, err error) {
	cfg, ok, err = frontmatter.Delimiters(d.split.Frontmatter, base)
	if err != nil {
		return base, false, errors.WrapError(err, errors.CategoryConfig, "invalid frontmatter").Build()
	}
	return cfg, ok, nil
}

// BodyPosition maps a body byte offset to a 1-based body line and a 1-based
// column counted in characters.
func (d *ParsedDoc) BodyPosition(offset int) (line, column int) {
	i := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	start := d.lineStarts[i]
	if offset > len(d.split.Body) {
		offset = len(d.split.Body)
	}
	return i + 1, 1 + len(bytes.Runes(d.split.Body[start:offset]))
}

func lineStarts(body []byte) []int {
	starts := []int{0}
	for i, b := range body {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
