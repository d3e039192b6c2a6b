package commands

import (
	"context"
	"fmt"
	"os"
	"log/slog"
	"os/signal"
	"syscall"

	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/inspect"
	"github.com/couimet/rangeLink-sub005/internal/logfields"
	"github.com/couimet/rangeLink-sub005/internal/report"
)

// stdinName labels results read from standard input.
const stdinName = "<stdin>"

// ScanFlags are shared by scan and watch.
type ScanFlags struct {
	Format          string `short:"f" default:"text" enum:"text,json" help:"Output format (text or json)"`
	Quiet           bool   `short:"q" help:"Omit the summary block from text output"`
	IncludeUnparsed bool   `help:"Also report candidates that failed to parse"`
	SkipCode        bool   `help:"Ignore links inside markdown code spans and blocks"`
	NoMarkdown      bool   `help:"Treat markdown files as plain text"`

	Delims DelimiterFlags `embed:""`
}

// inspector builds the inspector for a run. Unparsed candidates are always
// collected when collectUnparsed is set; the returned bool tells whether the
// user asked to see them.
func (s ScanFlags) inspector(g *Global, root *CLI, collectUnparsed bool) (*inspect.Inspector, bool, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, false, err
	}
	delims, err := s.Delims.Apply(cfg.Delimiters)
	if err != nil {
		return nil, false, err
	}
	show := s.IncludeUnparsed || cfg.Scan.IncludeUnparsed
	in, err := inspect.New(inspect.Config{
		Delimiters:      delims,
		IncludeUnparsed: show || collectUnparsed,
		Markdown:        cfg.Scan.MarkdownEnabled() && !s.NoMarkdown,
		SkipCode:        s.SkipCode,
		Recorder:        g.Recorder,
		Logger:          root.Logger(),
	})
	return in, show, err
}

// ScanCmd implements the 'scan' command.
type ScanCmd struct {
	Paths  []string `arg:"" optional:"" help:"Files or directories to scan; standard input when omitted or '-'"`
	Strict bool     `help:"Exit non-zero when any candidate fails to parse"`

	ScanFlags `embed:""`
}

func (s *ScanCmd) Run(g *Global, root *CLI) error {
	in, showUnparsed, err := s.inspector(g, root, s.Strict)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rep, err := s.collect(ctx, g, in)
	if err != nil {
		return classify(err)
	}

	totals := rep.Totals()
	out := rep
	if !showUnparsed {
		out = rep.WithoutUnparsed()
	}
	if err := report.NewFormatter(s.Format, s.Quiet).Format(g.Stdout, out); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to write report").Build()
	}

	root.Logger().Debug("Scan finished",
		logfields.ReportID(rep.ID),
		logfields.Count(totals.Links),
		slog.Int("files", totals.Files))

	if totals.Errors > 0 {
		return ferrors.FileSystemError(fmt.Sprintf("%d file(s) could not be scanned", totals.Errors)).
			WithContext(logfields.KeyReportID, rep.ID).
			Build()
	}
	if s.Strict && totals.Unparsed > 0 {
		return ferrors.ValidationError(fmt.Sprintf("%d link(s) failed to parse", totals.Unparsed)).
			WithContext(logfields.KeyReportID, rep.ID).
			Build()
	}
	return nil
}

func (s *ScanCmd) collect(ctx context.Context, g *Global, in *inspect.Inspector) (*report.Report, error) {
	if len(s.Paths) == 0 || (len(s.Paths) == 1 && s.Paths[0] == "-") {
		return in.InspectReader(ctx, stdinName, g.Stdin)
	}

	rep := report.New()
	for _, p := range s.Paths {
		sub, err := in.InspectPath(ctx, p)
		if err != nil {
			return nil, err
		}
		rep.Merge(sub)
	}
	return rep, nil
}
