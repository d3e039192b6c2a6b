// Package pathquote applies and removes POSIX shell single quoting for paths
// embedded in links, so a pasted link stays one shell token.
package pathquote

import "strings"

// escapedQuote closes the quoted run, emits a literal quote and reopens it.
const escapedQuote = `'\''`

// NeedsQuoting reports whether path contains any character outside the safe
// set: ASCII letters, digits, '.', '_', '-', '/' and ':'. The empty string is safe.
func NeedsQuoting(path string) bool {
	for i := 0; i < len(path); i++ {
		if !isSafe(path[i]) {
			return true
		}
	}
	return false
}

func isSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-', c == '/', c == ':':
		return true
	}
	return false
}

// QuotePath wraps path in single quotes when it needs quoting and returns it
// unchanged otherwise.
func QuotePath(path string) string {
	if !NeedsQuoting(path) {
		return path
	}
	return Quote(path)
}

// QuoteLink quotes the whole link text when path needs quoting, so the
// position suffix ends up inside the same shell token as the path.
func QuoteLink(linkText, path string) string {
	if !NeedsQuoting(path) {
		return linkText
	}
	return Quote(linkText)
}

// Quote wraps s in single quotes whether or not it needs them.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", escapedQuote) + "'"
}

// ReadQuoted reads one POSIX-quoted token from the start of s. The token is a
// run of '...' segments optionally joined by \' escapes, as produced by
// QuotePath. It returns the raw token, its decoded value, and whether s began
// with a well-formed token.
func ReadQuoted(s string) (token, value string, ok bool) {
	if !strings.HasPrefix(s, "'") {
		return "", "", false
	}

	var b strings.Builder
	i := 0
	for {
		// s[i] is an opening quote.
		end := strings.IndexByte(s[i+1:], '\'')
		if end < 0 {
			return "", "", false
		}
		b.WriteString(s[i+1 : i+1+end])
		i = i + 1 + end + 1

		if !strings.HasPrefix(s[i:], `\''`) {
			return s[:i], b.String(), true
		}
		b.WriteByte('\'')
		i += 2
	}
}

// Unquote reverses QuotePath. Strings that are not quoted are returned
// unchanged with ok set; a string that starts with a quote but is not exactly
// one well-formed token yields ok == false.
func Unquote(s string) (string, bool) {
	if !strings.HasPrefix(s, "'") {
		return s, true
	}
	token, value, ok := ReadQuoted(s)
	if !ok || len(token) != len(s) {
		return "", false
	}
	return value, true
}
