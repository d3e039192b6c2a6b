// Package watch re-scans files for links as they change on disk.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/couimet/rangeLink-sub005/internal/config"
	"github.com/couimet/rangeLink-sub005/internal/foundation/errors"
	"github.com/couimet/rangeLink-sub005/internal/inspect"
	"github.com/couimet/rangeLink-sub005/internal/logfields"
	"github.com/couimet/rangeLink-sub005/internal/report"
)

// ReloadFunc rebuilds the inspector after the configuration file changed.
type ReloadFunc func() (*inspect.Inspector, error)

// ReportFunc receives the report of every scan the watcher runs.
type ReportFunc func(*report.Report)

// Config controls a Watcher.
type Config struct {
	// Paths are the files and directories to watch.
	Paths []string
	// ConfigPath, when set together with Reload, is watched for changes.
	ConfigPath string
	Reload     ReloadFunc
	// Debounce is the quiet window after the last change before a re-scan.
	Debounce time.Duration
	OnReport ReportFunc
	Logger   *slog.Logger
}

// Watcher scans its paths once, then re-scans changed files after a quiet
// window. Configuration changes swap the inspector and trigger a full scan.
type Watcher struct {
	cfg        Config
	logger     *slog.Logger
	fs         *fsnotify.Watcher
	configPath string
	files      []string
	dirs       []string

	mu        sync.Mutex
	inspector *inspect.Inspector
	pending   map[string]struct{}
	reload    bool
	timer     *time.Timer
	flushCh   chan struct{}
}

// New creates a watcher. Run starts it.
func New(in *inspect.Inspector, cfg Config) (*Watcher, error) {
	if in == nil {
		return nil, errors.ValidationError("inspector is required").Build()
	}
	if len(cfg.Paths) == 0 {
		return nil, errors.ValidationError("at least one path must be watched").Build()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultDebounce
	}
	if cfg.OnReport == nil {
		cfg.OnReport = func(*report.Report) {}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &Watcher{
		cfg:       cfg,
		logger:    cfg.Logger,
		inspector: in,
		pending:   make(map[string]struct{}),
		flushCh:   make(chan struct{}, 1),
	}

	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve path").
				WithContext("path", p).
				Build()
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot watch path").
				WithContext("path", p).
				Build()
		}
		if info.IsDir() {
			w.dirs = append(w.dirs, abs)
		} else {
			w.files = append(w.files, abs)
		}
	}
	if cfg.ConfigPath != "" && cfg.Reload != nil {
		abs, err := filepath.Abs(cfg.ConfigPath)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve config path").
				WithContext("path", cfg.ConfigPath).
				Build()
		}
		w.configPath = abs
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w.fs = fsw

	for _, dir := range w.dirs {
		w.addDirsRecursive(dir)
	}
	// Watch parent directories so editors that replace files are still seen.
	for _, dir := range w.parentDirs() {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", dir).
				Build()
		}
	}
	return w, nil
}

func (w *Watcher) parentDirs() []string {
	var dirs []string
	for _, f := range w.files {
		dirs = append(dirs, filepath.Dir(f))
	}
	if w.configPath != "" {
		dirs = append(dirs, filepath.Dir(w.configPath))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func (w *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// Inspector returns the inspector currently in use.
func (w *Watcher) Inspector() *inspect.Inspector {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inspector
}

// Run performs an initial scan and then processes file events until ctx is
// done. It always closes the underlying file watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if err := w.fs.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.logger.Info("Starting watcher",
		logfields.Count(len(w.files)+len(w.dirs)),
		slog.Duration("debounce", w.cfg.Debounce))
	w.scanAll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		case <-w.flushCh:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if w.configPath != "" && name == w.configPath {
		if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
			return
		}
		w.logger.Debug("Config change detected", logfields.Path(name), slog.String("op", ev.Op.String()))
		w.mu.Lock()
		w.reload = true
		w.scheduleLocked()
		w.mu.Unlock()
		return
	}

	if shouldIgnoreEvent(name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() && w.underDir(name) {
			w.addDirsRecursive(name)
			return
		}
	}
	if ev.Op&fsnotify.Chmod == ev.Op {
		return
	}
	if !w.tracks(name) {
		return
	}

	w.logger.Debug("File change detected", logfields.Path(name), slog.String("op", ev.Op.String()))
	w.mu.Lock()
	w.pending[name] = struct{}{}
	w.scheduleLocked()
	w.mu.Unlock()
}

func (w *Watcher) tracks(name string) bool {
	if slices.Contains(w.files, name) {
		return true
	}
	return w.underDir(name) && w.Inspector().Wants(name)
}

func (w *Watcher) underDir(name string) bool {
	for _, dir := range w.dirs {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// scheduleLocked restarts the debounce timer. Callers hold w.mu.
func (w *Watcher) scheduleLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, func() {
		select {
		case w.flushCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	clear(w.pending)
	reload := w.reload
	w.reload = false
	w.mu.Unlock()

	if reload && w.reloadInspector() {
		w.scanAll(ctx)
		return
	}
	if len(files) == 0 {
		return
	}

	slices.Sort(files)
	in := w.Inspector()
	rep := report.New()
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			w.logger.Debug("Changed file no longer exists", logfields.File(f))
			continue
		}
		rep.Add(in.InspectFile(ctx, f))
	}
	if rep.FilesTotal > 0 {
		w.emit(rep)
	}
}

func (w *Watcher) reloadInspector() bool {
	w.logger.Info("Reloading configuration", logfields.Path(w.configPath))
	in, err := w.cfg.Reload()
	if err != nil {
		w.logger.Error("Failed to reload configuration, keeping previous settings", logfields.Error(err))
		return false
	}
	w.mu.Lock()
	w.inspector = in
	w.mu.Unlock()
	w.logger.Info("Configuration reloaded", logfields.Delimiter(in.Delimiters().String()))
	return true
}

func (w *Watcher) scanAll(ctx context.Context) {
	in := w.Inspector()
	rep := report.New()
	for _, f := range w.files {
		rep.Add(in.InspectFile(ctx, f))
	}
	for _, dir := range w.dirs {
		sub, err := in.InspectPath(ctx, dir)
		if sub != nil {
			rep.Merge(sub)
		}
		if err != nil {
			w.logger.Warn("Scan incomplete", logfields.Path(dir), logfields.Error(err))
		}
	}
	w.emit(rep)
}

func (w *Watcher) emit(rep *report.Report) {
	t := rep.Totals()
	w.logger.Info("Scan complete",
		logfields.ReportID(rep.ID),
		slog.Int("files", t.Files),
		slog.Int("links", t.Links),
		slog.Int("unparsed", t.Unparsed))
	w.cfg.OnReport(rep)
}

// shouldIgnoreEvent returns true for hidden files and editor temp files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		return true
	}
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx")
}
