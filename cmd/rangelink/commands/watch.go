package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	ferrors "github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/inspect"
	"github.com/couimet/rangeLink-sub005/internal/logfields"
	"github.com/couimet/rangeLink-sub005/internal/metrics"
	"github.com/couimet/rangeLink-sub005/internal/report"
	"github.com/couimet/rangeLink-sub005/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Paths       []string      `arg:"" help:"Files or directories to watch"`
	MetricsAddr string        `help:"Serve Prometheus metrics on this address, e.g. :9464 (overrides metrics.listen_addr)"`
	Debounce    time.Duration `help:"Quiet period before re-scanning (overrides watch.debounce)"`

	ScanFlags `embed:""`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	logger := root.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := w.MetricsAddr
	if addr == "" {
		addr = cfg.Metrics.ListenAddr
	}
	if addr != "" {
		stop, err := serveMetrics(g, addr)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("Serving metrics", logfields.Addr(addr))
	}

	in, _, err := w.inspector(g, root, false)
	if err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce
	}
	formatter := report.NewFormatter(w.Format, w.Quiet)

	wcfg := watch.Config{
		Paths:    w.Paths,
		Debounce: debounce,
		Logger:   logger,
		OnReport: func(rep *report.Report) {
			if err := formatter.Format(g.Stdout, rep); err != nil {
				logger.Error("Failed to write report", logfields.ReportID(rep.ID), logfields.Error(err))
			}
		},
	}
	if _, err := os.Stat(root.Config); err == nil {
		wcfg.ConfigPath = root.Config
		wcfg.Reload = func() (*inspect.Inspector, error) {
			if err := root.reloadConfig(); err != nil {
				return nil, err
			}
			in, _, err := w.inspector(g, root, false)
			return in, err
		}
	}

	watcher, err := watch.New(in, wcfg)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// serveMetrics swaps g.Recorder for a Prometheus recorder and exposes it on
// addr. The returned func shuts the server down.
func serveMetrics(g *Global, addr string) (func(), error) {
	reg := prometheus.NewRegistry()
	srv, err := metrics.Listen(addr, reg)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen for metrics").
			WithContext(logfields.KeyAddr, addr).
			Build()
	}
	g.Recorder = metrics.NewPrometheusRecorder(reg)

	go func() {
		if err := srv.Serve(); err != nil {
			slog.Error("Metrics server failed", logfields.Addr(addr), logfields.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
