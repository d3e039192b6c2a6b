// Package report collects detected links into a per-run report and renders
// it as text or JSON.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/couimet/rangeLink-sub005/internal/link"
)

// Status tells whether a detected candidate parsed.
type Status string

const (
	StatusParsed   Status = "parsed"
	StatusUnparsed Status = "unparsed"
)

// Entry is one detected link.
type Entry struct {
	Text   string `json:"text"`
	Status Status `json:"status"`

	// Line and Column are 1-based positions in the scanned source. Column
	// counts characters.
	Line   int `json:"line"`
	Column int `json:"column"`
	// StartIndex and Length are character offsets into the scanned text.
	StartIndex int `json:"startIndex"`
	Length     int `json:"length"`

	// Context is the markdown construct the link sits in, empty for plain text.
	Context string `json:"context,omitempty"`

	Parsed *link.ParsedLink `json:"parsed,omitempty"`

	ErrorKind string `json:"errorKind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FileResult holds the links found in one source.
type FileResult struct {
	Path  string  `json:"path"`
	Links []Entry `json:"links"`
	// Delimiters records a per-document override, if one applied.
	Delimiters string `json:"delimiters,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Report is the outcome of one scan run.
type Report struct {
	ID          string       `json:"id"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Files       []FileResult `json:"files"`
	// FilesTotal counts every source scanned, including those without links.
	FilesTotal int `json:"filesTotal"`
}

// New starts an empty report with a fresh ID.
func New() *Report {
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Files:       []FileResult{},
	}
}

// Add records a scanned source. Sources without links or errors only count
// towards FilesTotal.
func (r *Report) Add(fr FileResult) {
	r.FilesTotal++
	if len(fr.Links) == 0 && fr.Error == "" {
		return
	}
	r.Files = append(r.Files, fr)
}

// Merge appends the sources of other to r, keeping r's ID.
func (r *Report) Merge(other *Report) {
	r.Files = append(r.Files, other.Files...)
	r.FilesTotal += other.FilesTotal
}

// WithoutUnparsed returns a copy of r holding only parsed links. Sources
// left without links are dropped from Files but still counted.
func (r *Report) WithoutUnparsed() *Report {
	out := *r
	out.Files = make([]FileResult, 0, len(r.Files))
	for _, f := range r.Files {
		links := make([]Entry, 0, len(f.Links))
		for _, e := range f.Links {
			if e.Status == StatusParsed {
				links = append(links, e)
			}
		}
		f.Links = links
		if len(f.Links) == 0 && f.Error == "" {
			continue
		}
		out.Files = append(out.Files, f)
	}
	return &out
}

// Totals summarises a report.
type Totals struct {
	Files    int `json:"files"`
	Links    int `json:"links"`
	Parsed   int `json:"parsed"`
	Unparsed int `json:"unparsed"`
	Errors   int `json:"errors"`
}

// Totals counts links by status.
func (r *Report) Totals() Totals {
	t := Totals{Files: r.FilesTotal}
	for _, f := range r.Files {
		if f.Error != "" {
			t.Errors++
		}
		for _, e := range f.Links {
			t.Links++
			if e.Status == StatusParsed {
				t.Parsed++
			} else {
				t.Unparsed++
			}
		}
	}
	return t
}

// HasUnparsed reports whether any candidate failed to parse.
func (r *Report) HasUnparsed() bool {
	return r.Totals().Unparsed > 0
}

// HasErrors reports whether any source could not be scanned.
func (r *Report) HasErrors() bool {
	return r.Totals().Errors > 0
}
