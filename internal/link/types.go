// Package link formats and parses RangeLink notation: a path followed by a
// hash delimiter and a 1-indexed line, line range, or line+column range.
//
//	src/auth.ts#L10
//	src/auth.ts#L5C10-L10C20
//	src/grid.ts##L10C5-L12C10          rectangular block
//	'my file.ts'#L3~#~L~-~C~           portable, delimiters embedded
//
// All coordinates are 1-indexed. Translating to and from a host's 0-indexed
// coordinates happens at the caller's edge, never here.
package link

import (
	"github.com/couimet/rangeLink-sub005/internal/delimiter"
)

// MaxNumber is the largest accepted line or character number.
const MaxNumber = 999_999_999

// Position is a 1-indexed line with an optional 1-indexed character.
// Character 0 means the whole line, not column zero.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character,omitempty"`
}

// HasCharacter reports whether the position names a column.
func (p Position) HasCharacter() bool {
	return p.Character > 0
}

// Before reports whether p sorts strictly before o. A missing character sorts
// before any explicit one on the same line.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Coverage tells whether a selection spans whole lines.
type Coverage string

const (
	CoverageFullLine    Coverage = "full_line"
	CoveragePartialLine Coverage = "partial_line"
)

// Selection is one selected span in 1-indexed coordinates.
//
// EndLineLength is the number of characters on the end line when the caller
// knows it (0 otherwise). It lets ComputeCoverage recognise a selection that
// runs to the end of its last line as full-line.
type Selection struct {
	Start         Position
	End           Position
	EndLineLength int
}

// ComputeCoverage derives coverage from selection geometry. A selection is
// full-line when it starts at character 1 (or has no start character) and
// ends without a character or at/after the last character of its end line.
func ComputeCoverage(sel Selection) Coverage {
	if sel.Start.Character > 1 {
		return CoveragePartialLine
	}
	if !sel.End.HasCharacter() {
		return CoverageFullLine
	}
	if sel.EndLineLength > 0 && sel.End.Character >= sel.EndLineLength {
		return CoverageFullLine
	}
	return CoveragePartialLine
}

// LinkType distinguishes plain links from portable ones that carry their own
// delimiter metadata.
type LinkType string

const (
	LinkTypeRegular  LinkType = "regular"
	LinkTypePortable LinkType = "portable"
)

// SelectionType distinguishes a contiguous range from a column-bounded block.
type SelectionType string

const (
	SelectionNormal      SelectionType = "normal"
	SelectionRectangular SelectionType = "rectangular"
)

// ParsedLink is the structured form of a link. Only the parser creates them.
type ParsedLink struct {
	// Path is the decoded path with any shell quoting removed.
	Path string `json:"path"`
	// QuotedPath is the path as written in the source text.
	QuotedPath    string        `json:"quotedPath"`
	Start         Position      `json:"start"`
	End           Position      `json:"end"`
	LinkType      LinkType      `json:"linkType"`
	SelectionType SelectionType `json:"selectionType"`
	// Delimiters is the config that decoded the link: the embedded one for
	// portable links, the caller's otherwise.
	Delimiters delimiter.Config `json:"delimiters"`
}

// IsRectangular reports whether the link describes a block selection.
func (l *ParsedLink) IsRectangular() bool {
	return l.SelectionType == SelectionRectangular
}

// String re-renders the link in canonical notation with its own delimiters.
func (l *ParsedLink) String() string {
	s := pathText(l) + renderRange(l.Start, l.End, l.SelectionType, l.Delimiters)
	if l.LinkType == LinkTypePortable {
		s += renderMetadata(l.Delimiters)
	}
	return s
}

func pathText(l *ParsedLink) string {
	if l.QuotedPath != "" {
		return l.QuotedPath
	}
	return l.Path
}
