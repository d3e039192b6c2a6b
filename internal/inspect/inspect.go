// Package inspect runs link detection over files, directories and streams
// and collects the results into a report.
package inspect

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	"github.com/couimet/rangeLink-sub005/internal/docmodel"
	"github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/link"
	"github.com/couimet/rangeLink-sub005/internal/logfields"
	"github.com/couimet/rangeLink-sub005/internal/metrics"
	"github.com/couimet/rangeLink-sub005/internal/report"
	"github.com/couimet/rangeLink-sub005/internal/scanner"
)

// DefaultExtensions are the file types picked up when walking a directory.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".log"}

// Config contains configuration for the inspector.
type Config struct {
	Delimiters      delimiter.Config
	IncludeUnparsed bool
	// Markdown enables markdown handling for .md and .markdown files:
	// frontmatter delimiter overrides and context classification.
	Markdown bool
	// SkipCode drops links inside markdown code spans and blocks.
	SkipCode bool
	// Extensions overrides DefaultExtensions for directory walks.
	Extensions []string

	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Inspector scans sources with a fixed base configuration. Documents may
// still switch delimiters through their frontmatter.
type Inspector struct {
	cfg    Config
	base   *scanner.Scanner
	logger *slog.Logger
}

// New validates cfg.Delimiters and prepares an Inspector.
func New(cfg Config) (*Inspector, error) {
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NoopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}

	base, err := newScanner(cfg, cfg.Delimiters, "file")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid delimiter configuration").
			WithContext("delimiters", cfg.Delimiters.String()).
			Build()
	}
	return &Inspector{cfg: cfg, base: base, logger: cfg.Logger}, nil
}

func newScanner(cfg Config, delims delimiter.Config, source string) (*scanner.Scanner, error) {
	return scanner.New(delims,
		scanner.WithOptions(scanner.Options{IncludeUnparsed: cfg.IncludeUnparsed}),
		scanner.WithRecorder(cfg.Recorder),
		scanner.WithSource(source),
	)
}

// Delimiters returns the base delimiter config.
func (in *Inspector) Delimiters() delimiter.Config {
	return in.cfg.Delimiters
}

// InspectPath scans a file, or every matching file below a directory.
func (in *Inspector) InspectPath(ctx context.Context, path string) (*report.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot inspect path").
			WithContext("path", path).
			Build()
	}

	rep := report.New()
	if !info.IsDir() {
		rep.Add(in.InspectFile(ctx, path))
		return rep, ctx.Err()
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Skip hidden directories and files
		if d.Name()[0] == '.' && p != path {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !in.Wants(p) {
			return nil
		}

		rep.Add(in.InspectFile(ctx, p))
		return nil
	})
	if err != nil {
		return rep, err
	}
	return rep, nil
}

// InspectFiles scans an explicit list of files. Unreadable files are
// reported in the result rather than aborting the run.
func (in *Inspector) InspectFiles(ctx context.Context, files []string) (*report.Report, error) {
	rep := report.New()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Add(in.InspectFile(ctx, file))
	}
	return rep, nil
}

// Wants reports whether a directory walk would pick up path.
func (in *Inspector) Wants(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range in.cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// IsMarkdown reports whether path names a markdown document.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// InspectFile scans one file.
func (in *Inspector) InspectFile(ctx context.Context, path string) report.FileResult {
	started := time.Now()

	var (
		res report.FileResult
		err error
	)
	if in.cfg.Markdown && IsMarkdown(path) {
		res, err = in.inspectDocument(ctx, path)
	} else {
		var content []byte
		// #nosec G304 -- path comes from the command line or the watcher.
		content, err = os.ReadFile(path)
		if err == nil {
			res = in.inspectText(ctx, in.base, string(content))
		}
	}
	res.Path = path

	if err != nil {
		res.Error = err.Error()
		in.logger.Warn("Failed to inspect file", logfields.File(path), logfields.Error(err))
		return res
	}

	in.logger.Debug("Inspected file",
		logfields.File(path),
		logfields.Count(len(res.Links)),
		logfields.Duration(time.Since(started)))
	return res
}

// InspectReader scans a stream as plain text under the given name.
func (in *Inspector) InspectReader(ctx context.Context, name string, r io.Reader) (*report.Report, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
			WithContext("source", name).
			Build()
	}
	s, err := newScanner(in.cfg, in.cfg.Delimiters, "stdin")
	if err != nil {
		return nil, err
	}

	rep := report.New()
	res := in.inspectText(ctx, s, string(content))
	res.Path = name
	rep.Add(res)
	return rep, ctx.Err()
}

func (in *Inspector) inspectText(ctx context.Context, s *scanner.Scanner, text string) report.FileResult {
	var res report.FileResult
	lines := newLineCounter(text)
	for d := range s.FindLinks(ctx, text) {
		line, col := lines.position(d.ByteStart)
		res.Links = append(res.Links, entry(d, line, col, ""))
	}
	return res
}

func (in *Inspector) inspectDocument(ctx context.Context, path string) (report.FileResult, error) {
	var res report.FileResult
	doc, err := docmodel.ParseFile(path, docmodel.Options{SkipCode: in.cfg.SkipCode})
	if err != nil {
		return res, err
	}

	s := in.base
	cfg, ok, err := doc.Delimiters(in.cfg.Delimiters)
	if err != nil {
		in.logger.Warn("Ignoring frontmatter delimiters", logfields.File(path), logfields.Error(err))
	} else if ok {
		if errs := cfg.Validate(); len(errs) > 0 {
			for _, e := range errs {
				in.logger.Warn("Invalid frontmatter delimiter, using configured delimiters",
					logfields.File(path),
					logfields.Delimiter(string(e.Slot)),
					logfields.Kind(string(e.Kind)),
					logfields.Error(e))
			}
		} else if alt, err := newScanner(in.cfg, cfg, "file"); err == nil {
			s = alt
			res.Delimiters = cfg.String()
		}
	}

	links, err := doc.RangeLinks(ctx, s)
	for _, l := range links {
		res.Links = append(res.Links, entry(l.DetectedLink, l.FileLine, l.Column, string(l.Context)))
	}
	return res, err
}

func entry(d scanner.DetectedLink, line, col int, mdContext string) report.Entry {
	e := report.Entry{
		Text:       d.LinkText,
		Line:       line,
		Column:     col,
		StartIndex: d.StartIndex,
		Length:     d.Length,
		Context:    mdContext,
		Parsed:     d.Parsed,
	}
	if d.IsParsed() {
		e.Status = report.StatusParsed
		return e
	}
	e.Status = report.StatusUnparsed
	e.ErrorKind = string(link.KindOf(d.Err))
	if d.Err != nil {
		e.Error = d.Err.Error()
	}
	return e
}
