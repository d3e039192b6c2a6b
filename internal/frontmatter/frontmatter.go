// Package frontmatter separates YAML frontmatter from a markdown body and
// reads the rangelink settings a document may carry there.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a markdown file split at its frontmatter.
type Document struct {
	// Frontmatter is the raw YAML between the --- lines, nil when absent.
	Frontmatter []byte
	Body        []byte
	// HasFrontmatter reports whether the file opened with a --- block.
	HasFrontmatter bool
	// BodyOffset is the byte offset of Body within the original content.
	BodyOffset int
	// BodyLine is the 1-based file line on which Body starts.
	BodyLine int
	Newline  string
}

// Split separates YAML frontmatter (`---` delimited) from the markdown body.
//
// A document that does not start with a delimiter line is returned whole as
// the body.
func Split(content []byte) (Document, error) {
	nl := detectNewline(content)
	doc := Document{Body: content, BodyLine: 1, Newline: nl}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return doc, nil
	}

	start := len(open)
	var fm []byte
	bodyStart := -1
	if bytes.HasPrefix(content[start:], open) {
		fm = []byte{}
		bodyStart = start + len(open)
	} else {
		closeSeq := []byte(nl + "---" + nl)
		idx := bytes.Index(content[start:], closeSeq)
		if idx < 0 {
			// A closing delimiter on the last line without a trailing newline.
			tail := []byte(nl + "---")
			if bytes.HasSuffix(content, tail) && len(content)-len(tail) >= start {
				fm = content[start : len(content)-len(tail)+len(nl)]
				bodyStart = len(content)
			} else {
				return Document{}, ErrMissingClosingDelimiter
			}
		} else {
			fm = content[start : start+idx+len(nl)]
			bodyStart = start + idx + len(closeSeq)
		}
	}

	doc.Frontmatter = fm
	doc.Body = content[bodyStart:]
	doc.HasFrontmatter = true
	doc.BodyOffset = bodyStart
	doc.BodyLine = 1 + bytes.Count(content[:bodyStart], []byte("\n"))
	return doc, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

type settings struct {
	RangeLink struct {
		Delimiters *delimiter.Config `yaml:"delimiters"`
	} `yaml:"rangelink"`
}

// Delimiters reads a `rangelink.delimiters` block from frontmatter. Slots the
// block leaves empty are taken from base. ok is false when the block is
// absent. The returned config is not validated.
func Delimiters(frontmatter []byte, base delimiter.Config) (cfg delimiter.Config, ok bool, err error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return base, false, nil
	}
	var s settings
	if err := yaml.Unmarshal(frontmatter, &s); err != nil {
		return base, false, err
	}
	override := s.RangeLink.Delimiters
	if override == nil {
		return base, false, nil
	}

	cfg = base
	for _, sv := range override.Slots() {
		if sv.Value != "" {
			cfg = cfg.With(sv.Slot, sv.Value)
		}
	}
	return cfg, true, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
