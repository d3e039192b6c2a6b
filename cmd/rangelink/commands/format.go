package commands

import (
	"fmt"
	"strconv"
	"strings"

	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/link"
	"github.com/couimet/rangeLink-sub005/internal/logfields"
	"github.com/couimet/rangeLink-sub005/internal/metrics"
)

// FormatCmd implements the 'format' command.
type FormatCmd struct {
	Path  string `arg:"" help:"File path the link points at"`
	Start string `short:"s" required:"" help:"Selection start as LINE or LINE:CHAR"`
	End   string `short:"e" help:"Selection end as LINE or LINE:CHAR (defaults to the start)"`

	Select        []string `sep:"none" help:"Additional selection as START-END, e.g. 4:2-4:9. Single-line selections with equal columns on consecutive lines form a rectangular link"`
	EndLineLength int      `help:"Character count of the end line; a selection reaching it is full-line"`
	Coverage      string   `enum:",full_line,partial_line" default:"" help:"Override the computed coverage (full_line or partial_line)"`
	Portable      bool     `short:"p" help:"Append delimiter metadata so the link decodes under any configuration"`
	QuoteLink     bool     `help:"Shell-quote the whole link instead of only the path"`

	Delims DelimiterFlags `embed:""`
}

func (f *FormatCmd) Run(g *Global, root *CLI) error {
	cfg, err := delimiters(root, f.Delims)
	if err != nil {
		return err
	}
	selections, err := f.selections()
	if err != nil {
		return err
	}

	opts := link.FormatOptions{
		Coverage:       link.Coverage(f.Coverage),
		QuoteWholeLink: f.QuoteLink,
	}
	render := link.FormatLink
	if f.Portable {
		render = link.FormatPortableLink
	}

	text, err := render(f.Path, selections, cfg, opts)
	if err != nil {
		g.Recorder.IncFormat(metrics.ResultFailed)
		return classify(err)
	}
	g.Recorder.IncFormat(metrics.ResultSuccess)
	root.Logger().Debug("Formatted link", logfields.Link(text), logfields.Count(len(selections)))

	_, err = fmt.Fprintln(g.Stdout, text)
	return err
}

func (f *FormatCmd) selections() ([]link.Selection, error) {
	start, err := parsePosition("--start", f.Start)
	if err != nil {
		return nil, err
	}
	end := start
	if f.End != "" {
		if end, err = parsePosition("--end", f.End); err != nil {
			return nil, err
		}
	}
	out := []link.Selection{{Start: start, End: end, EndLineLength: f.EndLineLength}}

	for _, raw := range f.Select {
		from, to, ok := strings.Cut(raw, "-")
		if !ok {
			to = from
		}
		s, err := parsePosition("--select", from)
		if err != nil {
			return nil, err
		}
		e, err := parsePosition("--select", to)
		if err != nil {
			return nil, err
		}
		out = append(out, link.Selection{Start: s, End: e})
	}
	return out, nil
}

// parsePosition reads LINE or LINE:CHAR.
func parsePosition(flag, raw string) (link.Position, error) {
	lineText, charText, hasChar := strings.Cut(strings.TrimSpace(raw), ":")
	line, err := strconv.Atoi(lineText)
	if err != nil {
		return link.Position{}, invalidPosition(flag, raw)
	}
	pos := link.Position{Line: line}
	if hasChar {
		if pos.Character, err = strconv.Atoi(charText); err != nil {
			return link.Position{}, invalidPosition(flag, raw)
		}
	}
	return pos, nil
}

func invalidPosition(flag, raw string) error {
	return ferrors.ValidationError(fmt.Sprintf("%s: expected LINE or LINE:CHAR, got %q", flag, raw)).
		WithContext("flag", flag).
		Build()
}
