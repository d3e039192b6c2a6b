// Package pattern builds the regular expression used to find candidate links
// in free text.
//
// The pattern deliberately over-matches. It only locates substrings shaped
// like a link; numeric bounds, ordering and delimiter metadata are checked by
// the link parser afterwards.
package pattern

import (
	"iter"
	"regexp"
	"strings"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
)

// metaChars is the exact set escaped by EscapeRegex.
const metaChars = `.*+?^${}()|[]\`

// EscapeRegex prefixes every regex metacharacter in literal with a backslash.
// It is not idempotent: escaping twice double-escapes.
func EscapeRegex(literal string) string {
	if !strings.ContainsAny(literal, metaChars) {
		return literal
	}
	var b strings.Builder
	b.Grow(len(literal) * 2)
	for _, r := range literal {
		if strings.ContainsRune(metaChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Building blocks shared by every compiled pattern.
const (
	// quotedToken is one POSIX single-quoted token: '...' segments joined by \'.
	quotedToken = `'[^'\n]*'(?:\\''[^'\n]*')*`
	// unquotedChar excludes whitespace, quotes and bracket characters that
	// usually surround a link in prose.
	unquotedChar = "[^\\s'\"`<>()\\[\\]{}]"
	// metadata is the portable suffix ~hash~line~range~position~.
	metadata = `~[^~\s]+~[^~\s]+~[^~\s]+~[^~\s]+~`
)

// MetadataSuffix matches the portable delimiter metadata at the end of a link
// and captures hash, line, range and position in that order.
var MetadataSuffix = regexp.MustCompile(`~([^~]+)~([^~]+)~([^~]+)~([^~]+)~$`)

// Span is a half-open byte range [Start, End) into scanned text.
type Span struct {
	Start int
	End   int
}

// Pattern is a compiled candidate detector for one delimiter config.
// It is immutable and safe for concurrent use.
type Pattern struct {
	re *regexp.Regexp
}

// BuildLinkPattern compiles the candidate detector for cfg. The config is
// expected to be valid; every delimiter is escaped before embedding.
//
// Alternatives are ordered so leftmost-first matching prefers the longest
// reading at a given start: whole-link quoted, portable, quoted path, then a
// bare path. A candidate must start the text or follow a character that is
// not a letter, digit, underscore or quote, so links are not picked out of the
// middle of a word.
func BuildLinkPattern(cfg delimiter.Config) *Pattern {
	line := EscapeRegex(cfg.Line)
	pos := EscapeRegex(cfg.Position)
	hash := EscapeRegex(cfg.Hash)
	rng := EscapeRegex(cfg.Range)

	group := line + `\d+(?:` + pos + `\d+)?`
	core := hash + `(?:` + hash + `)?` + group + `(?:` + rng + group + `)?`

	alternatives := []string{
		// 'path#L1~#~L~-~C~' with custom delimiters inside the quotes.
		`'(?:[^'\n~]|'\\'')+` + metadata + `'`,
		// 'my file.ts#L10-L20'
		`'(?:[^'\n]|'\\'')+?` + core + `'`,
		// path#L1~#~L~-~C~ or 'my path'#L1~#~L~-~C~
		`(?:` + quotedToken + `|[^\s'"` + "`" + `~])[^\s~]*` + metadata,
		// 'my file.ts'#L10
		quotedToken + core,
		// src/file.ts#L10C2-L12C4
		unquotedChar + `+?` + core,
	}

	return &Pattern{
		re: regexp.MustCompile(`(?i)` + boundary + `(` + strings.Join(alternatives, `|`) + `)`),
	}
}

// boundary is the single character that must precede a candidate. Scanning
// prepends a newline so a candidate may also start the text.
const boundary = `[^\pL\pN_']`

// Regexp exposes the compiled expression. Submatch 1 holds the candidate.
func (p *Pattern) Regexp() *regexp.Regexp {
	return p.re
}

func (p *Pattern) String() string {
	return p.re.String()
}

// Candidates lazily yields the byte spans of every candidate in text, left to
// right and non-overlapping. Each iteration runs a fresh search, so the
// sequence can be ranged over any number of times.
func (p *Pattern) Candidates(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		s := "\n" + text
		from := 0
		for from < len(s) {
			loc := p.re.FindStringSubmatchIndex(s[from:])
			if loc == nil {
				return
			}
			span := Span{Start: from + loc[2] - 1, End: from + loc[3] - 1}
			if !yield(span) {
				return
			}
			from += loc[3]
		}
	}
}

// FindAll returns every candidate span in text.
func (p *Pattern) FindAll(text string) []Span {
	var spans []Span
	for span := range p.Candidates(text) {
		spans = append(spans, span)
	}
	return spans
}
