package docmodel

import (
	"context"

	"github.com/couimet/rangeLink-sub005/internal/markdown"
	"github.com/couimet/rangeLink-sub005/internal/scanner"
)

// DocLink is a link detected in a document body.
type DocLink struct {
	scanner.DetectedLink

	// BodyLine and FileLine are 1-based; FileLine counts frontmatter lines.
	BodyLine int              `json:"bodyLine"`
	FileLine int              `json:"line"`
	Column   int              `json:"column"`
	Context  markdown.Context `json:"context"`
}

// RangeLinks scans the body with s and places every detected link in the
// file. The scan stops early when ctx is done; the links found so far are
// returned together with ctx.Err().
func (d *ParsedDoc) RangeLinks(ctx context.Context, s *scanner.Scanner) ([]DocLink, error) {
	body := string(d.split.Body)
	classifier := markdown.NewClassifier(d.split.Body)

	var out []DocLink
	for detected := range s.FindLinks(ctx, body) {
		kind := classifier.ContextAt(detected.ByteStart)
		if d.opts.SkipCode && kind != markdown.ContextProse {
			continue
		}

		line, col := d.BodyPosition(detected.ByteStart)
		out = append(out, DocLink{
			DetectedLink: detected,
			BodyLine:     line,
			FileLine:     d.LineOffset() + line,
			Column:       col,
			Context:      kind,
		})
	}
	return out, ctx.Err()
}
