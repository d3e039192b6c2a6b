package inspect

import "unicode/utf8"

// lineCounter maps increasing byte offsets to 1-based line and character
// columns without rescanning the text from the start.
type lineCounter struct {
	text      string
	offset    int
	line      int
	lineStart int
}

func newLineCounter(text string) *lineCounter {
	return &lineCounter{text: text, line: 1}
}

// position must be called with non-decreasing offsets.
func (c *lineCounter) position(offset int) (line, column int) {
	for c.offset < offset && c.offset < len(c.text) {
		if c.text[c.offset] == '\n' {
			c.line++
			c.lineStart = c.offset + 1
		}
		c.offset++
	}
	return c.line, 1 + utf8.RuneCountInString(c.text[c.lineStart:offset])
}
