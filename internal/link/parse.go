package link

import (
	"strconv"
	"strings"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/pathquote"
	"github.com/couimet/rangeLink-sub005/internal/pattern"
)

const parseFn = "ParseLink"

// Parser decodes links with a fixed, pre-validated config. Portable links
// override it with their embedded delimiters.
type Parser struct {
	cfg delimiter.Config
}

// NewParser validates cfg and returns a Parser bound to it.
func NewParser(cfg delimiter.Config) (*Parser, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &Parser{cfg: cfg}, nil
}

// Config returns the parser's default delimiters.
func (p *Parser) Config() delimiter.Config {
	return p.cfg
}

// ParseLink decodes text using cfg. It accepts exactly what FormatLink and
// FormatPortableLink emit, plus unquoted paths as typed by hand.
func ParseLink(text string, cfg delimiter.Config) (*ParsedLink, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &Error{Kind: ErrInvalidConfig, Function: parseFn, Input: text, Cause: errs}
	}
	return (&Parser{cfg: cfg}).Parse(text)
}

// Parse decodes text, see ParseLink.
func (p *Parser) Parse(text string) (*ParsedLink, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, &Error{Kind: ErrEmptyLink, Function: parseFn, Input: text}
	}

	// 'my file.ts#L10' quotes the whole link as one shell token.
	wholeQuoted := false
	if strings.HasPrefix(s, "'") {
		if inner, ok := pathquote.Unquote(s); ok {
			s, wholeQuoted = inner, true
		}
	}

	cfg := p.cfg
	linkType := LinkTypeRegular
	if m := pattern.MetadataSuffix.FindStringSubmatchIndex(s); m != nil {
		embedded := delimiter.Config{
			Hash:     s[m[2]:m[3]],
			Line:     s[m[4]:m[5]],
			Range:    s[m[6]:m[7]],
			Position: s[m[8]:m[9]],
		}
		if errs := embedded.Validate(); len(errs) > 0 {
			return nil, &Error{
				Kind:      ErrDelimitersAmbiguous,
				Function:  parseFn,
				Input:     text,
				Offending: s[m[0]:],
				Cause:     errs,
			}
		}
		cfg, linkType = embedded, LinkTypePortable
		s = s[:m[0]]
	}

	d := decoder{cfg: cfg, input: text}

	var (
		parsed *ParsedLink
		err    *Error
	)
	if !wholeQuoted && strings.HasPrefix(s, "'") {
		if token, value, ok := pathquote.ReadQuoted(s); ok {
			parsed, err = d.quotedPath(token, value, s[len(token):])
		} else {
			parsed, err = d.barePath(s)
		}
	} else {
		parsed, err = d.barePath(s)
		if err == nil && wholeQuoted {
			parsed.QuotedPath = pathquote.QuotePath(parsed.Path)
		}
	}
	if err != nil {
		return nil, err
	}

	parsed.LinkType = linkType
	parsed.Delimiters = cfg
	return parsed, nil
}

type decoder struct {
	cfg   delimiter.Config
	input string
}

func (d decoder) fail(kind ErrorKind, offending, expected, actual string) *Error {
	return &Error{
		Kind:      kind,
		Function:  parseFn,
		Input:     d.input,
		Offending: offending,
		Expected:  expected,
		Actual:    actual,
	}
}

// quotedPath handles 'path'#L1... where the quoted token must be followed
// directly by the hash.
func (d decoder) quotedPath(token, value, rest string) (*ParsedLink, *Error) {
	if !hasPrefixFold(rest, d.cfg.Hash) {
		return nil, d.fail(ErrNoHashSeparator, rest, "hash delimiter "+strconv.Quote(d.cfg.Hash)+" after quoted path", "")
	}
	if value == "" {
		return nil, d.fail(ErrPathEmpty, token, "", "")
	}
	link, err := d.positions(rest)
	if err != nil {
		return nil, err
	}
	link.Path = value
	link.QuotedPath = token
	return link, nil
}

// barePath splits an unquoted path from its position suffix. A hash only
// separates the two when the line group follows it, so file#1.md#L2 keeps its
// first hash in the path. Candidates are tried left to right and the first
// complete parse wins.
func (d decoder) barePath(s string) (*ParsedLink, *Error) {
	hash := d.cfg.Hash
	first := indexFrom(s, hash, 0)
	if first < 0 {
		return nil, d.fail(ErrNoHashSeparator, "", "hash delimiter "+strconv.Quote(hash), "")
	}

	var firstErr *Error
	prev := -1
	for idx := first; idx >= 0; idx = indexFrom(s, hash, idx+len(hash)) {
		if !d.startsLineGroup(s[idx:]) {
			continue
		}
		// The second hash of ## belongs to the rectangular marker.
		if prev >= 0 && idx == prev+len(hash) {
			continue
		}
		prev = idx
		if idx == 0 {
			return nil, d.fail(ErrPathEmpty, s, "", "")
		}
		link, err := d.positions(s[idx:])
		if err == nil {
			link.Path = s[:idx]
			link.QuotedPath = s[:idx]
			return link, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return nil, d.fail(ErrInvalidLineFormat, s[first:], strconv.Quote(d.cfg.Line)+" followed by a line number", "")
}

// startsLineGroup reports whether s is a hash (optionally doubled) followed by
// the line delimiter and at least one digit.
func (d decoder) startsLineGroup(s string) bool {
	s = s[len(d.cfg.Hash):]
	if hasPrefixFold(s, d.cfg.Hash) {
		s = s[len(d.cfg.Hash):]
	}
	if !hasPrefixFold(s, d.cfg.Line) {
		return false
	}
	s = s[len(d.cfg.Line):]
	return s != "" && isDigit(s[0])
}

// positions parses <hash>[<hash>]<group>[<range><group>] to the end of s.
func (d decoder) positions(s string) (*ParsedLink, *Error) {
	selType := SelectionNormal
	i := len(d.cfg.Hash)
	if hasPrefixFold(s[i:], d.cfg.Hash) {
		selType = SelectionRectangular
		i += len(d.cfg.Hash)
	}

	start, n, err := d.group(s[i:])
	if err != nil {
		return nil, err
	}
	i += n

	if i == len(s) {
		if selType == SelectionRectangular {
			return nil, d.fail(ErrInvalidRectangular, s, "rectangular link with a range", "single position")
		}
		return &ParsedLink{Start: start, End: start, SelectionType: selType}, nil
	}

	if !hasPrefixFold(s[i:], d.cfg.Range) {
		return nil, d.fail(ErrInvalidLineFormat, s[i:], "range delimiter "+strconv.Quote(d.cfg.Range)+" or end of link", strconv.Quote(s[i:]))
	}
	i += len(d.cfg.Range)

	end, n, err := d.group(s[i:])
	if err != nil {
		if err.Kind == ErrInvalidLineFormat {
			err.Kind = ErrInvalidRangeFormat
		}
		return nil, err
	}
	i += n
	if i != len(s) {
		return nil, d.fail(ErrInvalidRangeFormat, s[i:], "end of link", strconv.Quote(s[i:]))
	}

	if end.Line < start.Line || (end.Line == start.Line && start.HasCharacter() && end.HasCharacter() && end.Character < start.Character) {
		return nil, d.fail(ErrRangeOutOfOrder, s, "end at or after start", "")
	}
	if selType == SelectionRectangular && start.Character > end.Character {
		return nil, d.fail(ErrRangeOutOfOrder, s, "start column at or before end column", "")
	}

	return &ParsedLink{Start: start, End: end, SelectionType: selType}, nil
}

// group parses <line><n>[<position><n>] at the start of s and returns the
// number of bytes consumed.
func (d decoder) group(s string) (Position, int, *Error) {
	var p Position
	if !hasPrefixFold(s, d.cfg.Line) {
		return p, 0, d.fail(ErrInvalidLineFormat, s, "line delimiter "+strconv.Quote(d.cfg.Line), "")
	}
	i := len(d.cfg.Line)

	digits := leadingDigits(s[i:])
	if digits == "" {
		return p, 0, d.fail(ErrInvalidLineFormat, s, "line number", "")
	}
	line, ok := parseNumber(digits)
	if !ok {
		return p, 0, d.fail(ErrLineNumberOutOfBounds, digits, "1.."+strconv.Itoa(MaxNumber), digits)
	}
	p.Line = line
	i += len(digits)

	if hasPrefixFold(s[i:], d.cfg.Position) {
		j := i + len(d.cfg.Position)
		digits = leadingDigits(s[j:])
		if digits == "" {
			return p, 0, d.fail(ErrInvalidLineFormat, s[i:], "character number after "+strconv.Quote(d.cfg.Position), "")
		}
		char, ok := parseNumber(digits)
		if !ok {
			return p, 0, d.fail(ErrCharOutOfBounds, digits, "1.."+strconv.Itoa(MaxNumber), digits)
		}
		p.Character = char
		i = j + len(digits)
	}
	return p, i, nil
}

func parseNumber(digits string) (int, bool) {
	if len(digits) > len(strconv.Itoa(MaxNumber)) {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > MaxNumber {
		return 0, false
	}
	return n, true
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// indexFrom finds substr in s at or after from, ignoring case.
func indexFrom(s, substr string, from int) int {
	for i := from; i+len(substr) <= len(s); i++ {
		if hasPrefixFold(s[i:], substr) {
			return i
		}
	}
	return -1
}
