package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couimet/rangeLink-sub005/internal/link"
)

// ParseCmd implements the 'parse' command.
type ParseCmd struct {
	Link string `arg:"" help:"Link text, e.g. src/app.ts#L10C5-L12C1"`
	JSON bool   `help:"Print the parsed link as JSON"`

	Delims DelimiterFlags `embed:""`
}

func (p *ParseCmd) Run(g *Global, root *CLI) error {
	cfg, err := delimiters(root, p.Delims)
	if err != nil {
		return err
	}
	parsed, err := link.ParseLink(p.Link, cfg)
	if err != nil {
		return classify(err)
	}

	if p.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(parsed)
	}
	return describeLink(g.Stdout, parsed)
}

func describeLink(w io.Writer, l *link.ParsedLink) error {
	lines := []string{
		"path:      " + l.Path,
		"start:     " + describePosition(l.Start),
		"end:       " + describePosition(l.End),
		"type:      " + string(l.LinkType),
		"selection: " + string(l.SelectionType),
		"canonical: " + l.String(),
	}
	if l.QuotedPath != l.Path {
		lines = append(lines[:1], append([]string{"quoted:    " + l.QuotedPath}, lines[1:]...)...)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func describePosition(p link.Position) string {
	if !p.HasCharacter() {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("line %d, character %d", p.Line, p.Character)
}
