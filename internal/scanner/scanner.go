// Package scanner finds links embedded in free text such as terminal output
// or document contents.
//
// Detection runs in two stages: the compiled pattern proposes candidates and
// the link parser accepts or rejects each one. Only the parser decides what a
// link is.
package scanner

import (
	"context"
	"iter"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/link"
	"github.com/couimet/rangeLink-sub005/internal/metrics"
	"github.com/couimet/rangeLink-sub005/internal/pattern"
)

// DetectedLink is one candidate found in scanned text.
//
// StartIndex and Length count characters (runes); ByteStart and ByteEnd are
// the same span in bytes. Parsed is nil when the candidate failed to parse,
// in which case Err holds the parser's error.
type DetectedLink struct {
	LinkText   string           `json:"linkText"`
	StartIndex int              `json:"startIndex"`
	Length     int              `json:"length"`
	ByteStart  int              `json:"byteStart"`
	ByteEnd    int              `json:"byteEnd"`
	Parsed     *link.ParsedLink `json:"parsed,omitempty"`
	Err        error            `json:"-"`
}

// IsParsed reports whether the candidate is a valid link.
func (d DetectedLink) IsParsed() bool {
	return d.Parsed != nil
}

// Options controls what a scan yields.
type Options struct {
	// IncludeUnparsed yields candidates that failed to parse, with Parsed nil.
	// Document consumers usually drop them; terminal consumers may still
	// want them clickable.
	IncludeUnparsed bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithOptions sets the scan options.
func WithOptions(opts Options) Option {
	return func(s *Scanner) { s.opts = opts }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Scanner) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithSource labels scan duration metrics, e.g. "stdin" or "file".
func WithSource(source string) Option {
	return func(s *Scanner) { s.source = source }
}

// Scanner holds a compiled pattern and parser for one delimiter config. It
// keeps no per-scan state and is safe for concurrent use.
type Scanner struct {
	cfg      delimiter.Config
	pattern  *pattern.Pattern
	parser   *link.Parser
	opts     Options
	recorder metrics.Recorder
	source   string
}

// New validates cfg and compiles a Scanner for it.
func New(cfg delimiter.Config, opts ...Option) (*Scanner, error) {
	parser, err := link.NewParser(cfg)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		cfg:      cfg,
		pattern:  pattern.BuildLinkPattern(cfg),
		parser:   parser,
		recorder: metrics.NoopRecorder{},
		source:   "text",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the delimiters the scanner was built with.
func (s *Scanner) Config() delimiter.Config {
	return s.cfg
}

// Options returns the scanner's scan options.
func (s *Scanner) Options() Options {
	return s.opts
}

// FindLinks lazily yields the links in text, left to right. Every range over
// the returned sequence performs a fresh scan.
//
// ctx is checked before each candidate is parsed; once it is done the
// sequence stops, so a canceled scan yields some prefix of the full result.
func (s *Scanner) FindLinks(ctx context.Context, text string) iter.Seq[DetectedLink] {
	return func(yield func(DetectedLink) bool) {
		started := time.Now()
		outcome := metrics.ScanCompleted
		defer func() {
			s.recorder.ObserveScanDuration(s.source, time.Since(started))
			s.recorder.IncScanOutcome(outcome)
		}()

		runeIdx, byteIdx := 0, 0
		for span := range s.pattern.Candidates(text) {
			if ctx.Err() != nil {
				outcome = metrics.ScanCanceled
				return
			}

			candidate := text[span.Start:span.End]
			parsed, err := s.parser.Parse(candidate)
			if err != nil {
				s.recorder.IncCandidate(metrics.ResultRejected)
				s.recorder.IncParseError(string(link.KindOf(err)))
				if !s.opts.IncludeUnparsed {
					continue
				}
			} else {
				s.recorder.IncCandidate(metrics.ResultAccepted)
			}

			runeIdx += utf8.RuneCountInString(text[byteIdx:span.Start])
			byteIdx = span.Start

			detected := DetectedLink{
				LinkText:   candidate,
				StartIndex: runeIdx,
				Length:     utf8.RuneCountInString(candidate),
				ByteStart:  span.Start,
				ByteEnd:    span.End,
				Parsed:     parsed,
				Err:        err,
			}
			if !yield(detected) {
				return
			}
		}
	}
}

// FindAll collects FindLinks into a slice.
func (s *Scanner) FindAll(ctx context.Context, text string) []DetectedLink {
	return slices.Collect(s.FindLinks(ctx, text))
}

// FindLinksInText scans text with cfg. Scanning never fails: an invalid cfg
// is replaced by the default delimiters.
func FindLinksInText(ctx context.Context, text string, cfg delimiter.Config, opts Options) iter.Seq[DetectedLink] {
	resolved, _ := delimiter.Resolve(cfg)
	s, err := New(resolved, WithOptions(opts))
	if err != nil {
		return func(func(DetectedLink) bool) {}
	}
	return s.FindLinks(ctx, text)
}
