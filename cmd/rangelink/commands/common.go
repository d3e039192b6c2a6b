package commands

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/couimet/rangeLink-sub005/internal/config"
	"github.com/couimet/rangeLink-sub005/internal/delimiter"
	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/link"
	"github.com/couimet/rangeLink-sub005/internal/logfields"
	"github.com/couimet/rangeLink-sub005/internal/metrics"
	"github.com/couimet/rangeLink-sub005/internal/version"
)

// Global carries the process streams and shared services into commands.
type Global struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Recorder metrics.Recorder
}

// NewGlobal wires the process streams.
func NewGlobal() *Global {
	return &Global{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Recorder: metrics.NoopRecorder{},
	}
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"rangelink.yaml" env:"RANGELINK_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `help:"Log output format (text or json), overrides the config file" enum:",text,json" default:""`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Format   FormatCmd   `cmd:"" help:"Format a link for a file and selection"`
	Parse    ParseCmd    `cmd:"" help:"Parse a link and print its parts"`
	Scan     ScanCmd     `cmd:"" help:"Detect links in files, directories or standard input"`
	Validate ValidateCmd `cmd:"" help:"Check the configured delimiters"`
	Watch    WatchCmd    `cmd:"" help:"Re-scan files for links whenever they change"`
	Init     InitCmd     `cmd:"" help:"Write a default configuration file"`

	loaded  *config.Result `kong:"-"`
	loadErr error          `kong:"-"`
	logger  *slog.Logger   `kong:"-"`
}

// New builds the kong parser for cli, binding g and cli for command Run
// methods.
func New(cli *CLI, g *Global, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("rangelink"),
		kong.Description("Create, parse and detect RangeLink code references."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(g, cli),
		kong.Writers(g.Stdout, g.Stderr),
	}
	return kong.New(cli, append(opts, options...)...)
}

// AfterApply runs after flag parsing: it loads the configuration once and
// sets up logging. A configuration error is kept until a command asks for it,
// so init can still replace a broken file.
func (c *CLI) AfterApply(g *Global) error {
	c.loaded, c.loadErr = config.Load(c.Config, c.Config == config.DefaultPath)

	level := slog.LevelInfo
	format := config.LogFormatText
	if c.loaded != nil {
		level = c.loaded.Config.Logging.Level.SlogLevel()
		format = c.loaded.Config.Logging.Format
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(g.Stderr, opts)
	}
	c.logger = slog.New(handler)
	slog.SetDefault(c.logger)

	c.reportLoad()
	return nil
}

func (c *CLI) reportLoad() {
	if c.loaded == nil {
		return
	}
	for _, w := range c.loaded.Warnings {
		c.logger.Warn("Configuration warning", logfields.File(c.Config), slog.String("warning", w))
	}
	for _, e := range c.loaded.DelimiterErrors {
		c.logger.Warn("Invalid delimiter configuration, using defaults",
			logfields.File(c.Config),
			logfields.Delimiter(string(e.Slot)),
			logfields.Kind(string(e.Kind)),
			logfields.Error(e))
	}
}

// LoadConfig returns the configuration read in AfterApply.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.loaded.Config, nil
}

// reloadConfig reads the configuration file again.
func (c *CLI) reloadConfig() error {
	res, err := config.Load(c.Config, c.Config == config.DefaultPath)
	if err != nil {
		return err
	}
	c.loaded, c.loadErr = res, nil
	c.reportLoad()
	return nil
}

// Logger returns the logger configured in AfterApply.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// DelimiterFlags override the configured delimiters for one invocation.
type DelimiterFlags struct {
	LineDelimiter     string `name:"line-delimiter" help:"Line delimiter (default from config, L)"`
	PositionDelimiter string `name:"position-delimiter" help:"Position delimiter (default from config, C)"`
	HashDelimiter     string `name:"hash-delimiter" help:"Hash delimiter, one character (default from config, #)"`
	RangeDelimiter    string `name:"range-delimiter" help:"Range delimiter (default from config, -)"`
}

// overlay applies the flags that were set on top of base.
func (f DelimiterFlags) overlay(base delimiter.Config) (cfg delimiter.Config, changed bool) {
	cfg = base
	for slot, value := range map[delimiter.Slot]string{
		delimiter.SlotLine:     f.LineDelimiter,
		delimiter.SlotPosition: f.PositionDelimiter,
		delimiter.SlotHash:     f.HashDelimiter,
		delimiter.SlotRange:    f.RangeDelimiter,
	} {
		if value != "" {
			cfg = cfg.With(slot, value)
			changed = true
		}
	}
	return cfg, changed
}

// Apply overlays the flags on base. Unlike the config file, invalid flag
// values are an error rather than a silent fallback.
func (f DelimiterFlags) Apply(base delimiter.Config) (delimiter.Config, error) {
	cfg, changed := f.overlay(base)
	if !changed {
		return base, nil
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return base, ferrors.WrapError(errs, ferrors.CategoryValidation, "invalid delimiter flags").
			WithContext("delimiters", cfg.String()).
			Build()
	}
	return cfg, nil
}

// delimiters resolves the effective delimiter config for a command.
func delimiters(root *CLI, flags DelimiterFlags) (delimiter.Config, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return delimiter.Config{}, err
	}
	return flags.Apply(cfg.Delimiters)
}

// classify turns package errors into ClassifiedErrors so the CLI adapter can
// choose an exit code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}

	var (
		linkErr   *link.Error
		formatErr *link.FormatError
		delimErrs delimiter.Errors
		delimErr  *delimiter.ValidationError
	)
	switch {
	case stderrors.As(err, &linkErr):
		return ferrors.WrapError(err, ferrors.CategoryNotation, "invalid link").
			WithContext("kind", string(linkErr.Kind)).
			WithContext("input", linkErr.Input).
			Build()
	case stderrors.As(err, &formatErr):
		return ferrors.WrapError(err, ferrors.CategoryFormat, "cannot format link").
			WithContext("kind", string(formatErr.Kind)).
			Build()
	case stderrors.As(err, &delimErrs), stderrors.As(err, &delimErr):
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid delimiters").Build()
	case stderrors.Is(err, context.Canceled):
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "interrupted").Build()
	default:
		return ferrors.WrapError(err, ferrors.CategoryInternal, "unexpected error").Build()
	}
}

// ExitCode reports err on w and returns the process exit code.
func ExitCode(w io.Writer, err error, verbose bool, logger *slog.Logger) int {
	return ferrors.NewCLIErrorAdapter(verbose, logger).Handle(w, classify(err))
}
