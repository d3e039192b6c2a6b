// Package markdown classifies regions of a markdown body using the goldmark
// parser, so detected links can be reported with the construct they sit in.
package markdown

import (
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Context is the markdown construct surrounding a byte offset.
type Context string

const (
	ContextProse      Context = "prose"
	ContextInlineCode Context = "inline_code"
	ContextCodeBlock  Context = "code_block"
)

// Region is a half-open byte range [Start, End) of the body.
type Region struct {
	Start   int
	End     int
	Context Context
}

// ParseBody parses a markdown body (frontmatter already removed) into a goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(body))
}

// CodeRegions returns the byte ranges of code spans and code blocks in body,
// sorted by start offset. Fenced blocks contribute one region per content
// line; fence lines themselves are not included.
func CodeRegions(body []byte) []Region {
	root := ParseBody(body)

	var regions []Region
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				regions = append(regions, Region{Start: seg.Start, End: seg.Stop, Context: ContextCodeBlock})
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeSpan:
			start, end := -1, -1
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				t, ok := c.(*gmast.Text)
				if !ok {
					continue
				}
				if start < 0 {
					start = t.Segment.Start
				}
				end = t.Segment.Stop
			}
			if start >= 0 {
				regions = append(regions, Region{Start: start, End: end, Context: ContextInlineCode})
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	sort.Slice(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })
	return regions
}

// Classifier answers Context queries against precomputed regions.
type Classifier struct {
	regions []Region
}

// NewClassifier parses body once and prepares it for lookups.
func NewClassifier(body []byte) *Classifier {
	return &Classifier{regions: CodeRegions(body)}
}

// ContextAt reports the construct containing the byte at offset.
func (c *Classifier) ContextAt(offset int) Context {
	// First region starting after offset; the candidate is the one before it.
	i := sort.Search(len(c.regions), func(i int) bool { return c.regions[i].Start > offset })
	if i > 0 {
		r := c.regions[i-1]
		if offset < r.End {
			return r.Context
		}
	}
	return ContextProse
}
