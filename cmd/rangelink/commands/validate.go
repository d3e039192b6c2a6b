package commands

import (
	"fmt"

	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Delims DelimiterFlags `embed:""`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	for _, w := range root.loaded.Warnings {
		if _, err := fmt.Fprintf(g.Stdout, "warning: %s\n", w); err != nil {
			return err
		}
	}

	candidate, changed := v.Delims.overlay(cfg.Delimiters)
	errs := root.loaded.DelimiterErrors
	if changed {
		errs = candidate.Validate()
	}

	if len(errs) == 0 {
		_, err := fmt.Fprintf(g.Stdout, "delimiters ok: %s\n", candidate)
		return err
	}

	if _, err := fmt.Fprintln(g.Stdout, "invalid delimiters:"); err != nil {
		return err
	}
	for _, e := range errs {
		if _, err := fmt.Fprintf(g.Stdout, "  - %s\n", e); err != nil {
			return err
		}
	}
	return ferrors.ValidationError(fmt.Sprintf("%d delimiter problem(s) found", len(errs))).
		WithContext("file", root.Config).
		Build()
}
