package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders a report.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// TextFormatter prints one line per link in file:line:column form, followed
// by a summary.
type TextFormatter struct {
	// Quiet suppresses the summary block.
	Quiet bool
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(quiet bool) *TextFormatter {
	return &TextFormatter{Quiet: quiet}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, r *Report) error {
	for _, file := range r.Files {
		if file.Error != "" {
			if _, err := fmt.Fprintf(w, "%s: error: %s\n", file.Path, file.Error); err != nil {
				return err
			}
			continue
		}
		for _, e := range file.Links {
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s\n", file.Path, e.Line, e.Column, describe(e)); err != nil {
				return err
			}
		}
	}

	if f.Quiet {
		return nil
	}

	t := r.Totals()
	lines := []string{
		strings.Repeat("━", 60),
		fmt.Sprintf("%d file%s scanned, %d link%s (%d parsed, %d unparsed)",
			t.Files, pluralize(t.Files), t.Links, pluralize(t.Links), t.Parsed, t.Unparsed),
	}
	if t.Errors > 0 {
		lines = append(lines, fmt.Sprintf("%d file%s could not be scanned", t.Errors, pluralize(t.Errors)))
	}
	lines = append(lines, "report "+r.ID)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func describe(e Entry) string {
	var b strings.Builder
	b.WriteString(e.Text)
	if e.Status != StatusParsed || e.Parsed == nil {
		b.WriteString(" [")
		b.WriteString(e.ErrorKind)
		b.WriteString("]")
		return b.String()
	}

	p := e.Parsed
	fmt.Fprintf(&b, " -> %s lines %d-%d", p.Path, p.Start.Line, p.End.Line)
	if p.Start.HasCharacter() || p.End.HasCharacter() {
		fmt.Fprintf(&b, " cols %d-%d", p.Start.Character, p.End.Character)
	}
	if p.IsRectangular() {
		b.WriteString(" rectangular")
	}
	if e.Context != "" && e.Context != "prose" {
		b.WriteString(" (")
		b.WriteString(e.Context)
		b.WriteString(")")
	}
	return b.String()
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	*Report
	Totals Totals `json:"totals"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONOutput{Report: r, Totals: r.Totals()})
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, quiet bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter(quiet)
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
