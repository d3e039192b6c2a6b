package link

import (
	"strconv"
	"strings"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/pathquote"
)

// FormatOptions tunes how a link is rendered.
type FormatOptions struct {
	// Coverage overrides the coverage computed from the primary selection.
	Coverage Coverage
	// LinkType requests a portable link when set to LinkTypePortable.
	LinkType LinkType
	// QuoteWholeLink quotes path and position suffix as one shell token
	// instead of quoting only the path. Paths ending in the hash delimiter
	// always get path-only quoting.
	QuoteWholeLink bool
}

// FormatLink renders path and selections as a link using cfg.
func FormatLink(path string, selections []Selection, cfg delimiter.Config, opts FormatOptions) (string, error) {
	return format("FormatLink", path, selections, cfg, opts)
}

// FormatPortableLink is FormatLink with the delimiter config appended, so the
// link can be decoded without knowing cfg.
func FormatPortableLink(path string, selections []Selection, cfg delimiter.Config, opts FormatOptions) (string, error) {
	opts.LinkType = LinkTypePortable
	return format("FormatPortableLink", path, selections, cfg, opts)
}

// Formatter renders links with a fixed, pre-validated config.
type Formatter struct {
	cfg delimiter.Config
}

// NewFormatter validates cfg and returns a Formatter bound to it.
func NewFormatter(cfg delimiter.Config) (*Formatter, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &Formatter{cfg: cfg}, nil
}

// Config returns the delimiters the formatter was built with.
func (f *Formatter) Config() delimiter.Config {
	return f.cfg
}

// Format renders a link, see FormatLink.
func (f *Formatter) Format(path string, selections []Selection, opts FormatOptions) (string, error) {
	return render("FormatLink", path, selections, f.cfg, opts)
}

func format(fn, path string, selections []Selection, cfg delimiter.Config, opts FormatOptions) (string, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return "", &FormatError{Kind: ErrFormatInvalidConfig, Function: fn, Index: -1, Cause: errs}
	}
	return render(fn, path, selections, cfg, opts)
}

func render(fn, path string, selections []Selection, cfg delimiter.Config, opts FormatOptions) (string, error) {
	if len(selections) == 0 {
		return "", &FormatError{Kind: ErrEmptySelections, Function: fn, Index: -1}
	}

	normalized := make([]Selection, len(selections))
	for i, sel := range selections {
		if err := checkSelection(fn, i, sel); err != nil {
			return "", err
		}
		if sel.End.Before(sel.Start) {
			sel.Start, sel.End = sel.End, sel.Start
		}
		normalized[i] = sel
	}

	kind, sel := ClassifySelections(normalized)
	start, end := sel.Start, sel.End

	if kind == SelectionNormal {
		coverage := opts.Coverage
		if coverage == "" {
			coverage = ComputeCoverage(sel)
		}
		if coverage == CoverageFullLine {
			start.Character, end.Character = 0, 0
		}
	}

	suffix := renderRange(start, end, kind, cfg)
	if opts.LinkType == LinkTypePortable {
		suffix += renderMetadata(cfg)
	}

	// A trailing hash in the path would read as the rectangular marker, so
	// the quote has to sit between the two.
	if endsWithHash(path, cfg) {
		return pathquote.Quote(path) + suffix, nil
	}
	if opts.QuoteWholeLink {
		return pathquote.QuoteLink(path+suffix, path), nil
	}
	return pathquote.QuotePath(path) + suffix, nil
}

func endsWithHash(path string, cfg delimiter.Config) bool {
	n := len(cfg.Hash)
	return len(path) >= n && strings.EqualFold(path[len(path)-n:], cfg.Hash)
}

func checkSelection(fn string, i int, sel Selection) *FormatError {
	if sel.Start.Line < 1 || sel.End.Line < 1 || sel.Start.Line > MaxNumber || sel.End.Line > MaxNumber {
		return &FormatError{
			Kind:     ErrInvalidLine,
			Function: fn,
			Index:    i,
			Detail:   "line numbers must be between 1 and " + strconv.Itoa(MaxNumber),
		}
	}
	if sel.Start.Character < 0 || sel.End.Character < 0 {
		return &FormatError{Kind: ErrNegativeCharacter, Function: fn, Index: i, Detail: "character offsets must not be negative"}
	}
	if sel.Start.Character > MaxNumber || sel.End.Character > MaxNumber {
		return &FormatError{
			Kind:     ErrInvalidCharacter,
			Function: fn,
			Index:    i,
			Detail:   "character offsets must not exceed " + strconv.Itoa(MaxNumber),
		}
	}
	return nil
}

// ClassifySelections decides how a multi-selection is encoded. The input is
// rectangular when every selection covers a single line, all share the same
// start and end characters, and the lines are contiguous and ascending. The
// returned selection then spans first to last line with the shared columns.
// Anything else collapses to the primary (first) selection.
func ClassifySelections(selections []Selection) (SelectionType, Selection) {
	if len(selections) == 0 {
		return SelectionNormal, Selection{}
	}
	first := selections[0]
	if len(selections) == 1 {
		return SelectionNormal, first
	}

	for i, sel := range selections {
		if sel.Start.Line != sel.End.Line ||
			sel.Start.Line != first.Start.Line+i ||
			sel.Start.Character != first.Start.Character ||
			sel.End.Character != first.End.Character {
			return SelectionNormal, first
		}
	}

	last := selections[len(selections)-1]
	return SelectionRectangular, Selection{
		Start: first.Start,
		End:   Position{Line: last.End.Line, Character: first.End.Character},
	}
}

func renderRange(start, end Position, kind SelectionType, cfg delimiter.Config) string {
	var b strings.Builder
	b.WriteString(cfg.Hash)
	if kind == SelectionRectangular {
		b.WriteString(cfg.Hash)
	}
	writeGroup(&b, start, cfg)
	if kind == SelectionRectangular || start != end {
		b.WriteString(cfg.Range)
		writeGroup(&b, end, cfg)
	}
	return b.String()
}

func writeGroup(b *strings.Builder, p Position, cfg delimiter.Config) {
	b.WriteString(cfg.Line)
	b.WriteString(strconv.Itoa(p.Line))
	if p.HasCharacter() {
		b.WriteString(cfg.Position)
		b.WriteString(strconv.Itoa(p.Character))
	}
}

// renderMetadata encodes cfg as ~hash~line~range~position~.
func renderMetadata(cfg delimiter.Config) string {
	return "~" + cfg.Hash + "~" + cfg.Line + "~" + cfg.Range + "~" + cfg.Position + "~"
}
