// Package watch re-runs the pipeline when the source bundle changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/apisync/pkg/pipeline"
	"github.com/gnana997/apisync/pkg/source"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Runner is the work done on every change.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a run.
	Debounce time.Duration

	// OnResult is called after every run, from the run goroutine.
	OnResult func(*pipeline.Result, error)
}

// Watcher watches the source bundle and re-runs a Runner after changes.
//
// Runs never overlap: a change during a run schedules another run after
// it. Events on the target file are ignored, so the Runner's own write
// does not trigger a loop.
//
// Usage:
//
//	w, err := watch.New(p, cfg.Source, cfg.Target, watch.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	if err := w.StartAndSync(ctx); err != nil {
//	    return err
//	}
type Watcher struct {
	watcher *fsnotify.Watcher
	runner  Runner
	src     source.Config
	root    string
	file    string
	target  string
	options Options
	logger  *slog.Logger

	// Debouncing
	timer   *time.Timer
	timerMu sync.Mutex

	// runMu serializes runs.
	runMu sync.Mutex
	runs  int

	// Lifecycle
	ctx      context.Context
	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// New creates a Watcher for the bundle described by src.
func New(runner Runner, src source.Config, target string, options Options, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	w := &Watcher{
		runner:   runner,
		src:      src,
		options:  options,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error
	if w.target, err = filepath.Abs(target); err != nil {
		return nil, fmt.Errorf("failed to resolve target path: %w", err)
	}
	if src.Path != "" || len(src.Include) == 0 {
		path := src.Path
		if path == "" {
			path = source.DefaultPath
		}
		if w.file, err = filepath.Abs(path); err != nil {
			return nil, fmt.Errorf("failed to resolve source path: %w", err)
		}
	} else {
		root := src.Root
		if root == "" {
			root = "."
		}
		if w.root, err = filepath.Abs(root); err != nil {
			return nil, fmt.Errorf("failed to resolve root path: %w", err)
		}
	}

	if w.watcher, err = fsnotify.NewWatcher(); err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return w, nil
}

// Start adds the watches and begins processing events in the background.
// The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.ctx = ctx
	w.mu.Unlock()

	if w.file != "" {
		// Watch the directory: editors replace files on save, which drops
		// a watch on the file itself.
		dir := filepath.Dir(w.file)
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Info("watching source", "file", w.file)
	} else {
		if err := w.addTree(w.root); err != nil {
			return err
		}
		w.logger.Info("watching source", "root", w.root, "include", w.src.Include)
	}

	go w.eventLoop()
	return nil
}

// addTree watches dir and every subdirectory that is not excluded.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && source.MatchAny(w.rel(path), w.src.Exclude) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}
	return nil
}

// Stop stops the watcher. Safe to call multiple times. A run in progress
// is allowed to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case <-w.ctx.Done():
			w.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories under the root need their own watch.
	if w.root != "" && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !source.MatchAny(w.rel(event.Name), w.src.Exclude) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !w.relevant(event.Name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("source event", "op", event.Op.String(), "file", event.Name)
	w.schedule()
}

// relevant reports whether path belongs to the bundle.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if abs == w.target || w.isTempOfTarget(abs) {
		return false
	}
	if w.file != "" {
		return abs == w.file
	}

	rel := w.rel(abs)
	if strings.HasPrefix(rel, "../") {
		return false
	}
	return source.MatchAny(rel, w.src.Include) && !source.MatchAny(rel, w.src.Exclude)
}

// isTempOfTarget matches the temp files patcher.WriteFile creates next to
// the target.
func (w *Watcher) isTempOfTarget(abs string) bool {
	return filepath.Dir(abs) == filepath.Dir(w.target) &&
		strings.HasPrefix(filepath.Base(abs), "."+filepath.Base(w.target)+".tmp")
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// schedule (re)starts the debounce timer.
func (w *Watcher) schedule() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, w.runOnce)
}

// runOnce runs the Runner, serialized with any other run.
func (w *Watcher) runOnce() {
	w.mu.Lock()
	stopped := w.stopped
	ctx := w.ctx
	w.mu.Unlock()
	if stopped {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.runs++
	result, err := w.runner.Run(ctx)
	if err != nil {
		w.logger.Error("sync failed", "error", err)
	}
	if w.options.OnResult != nil {
		w.options.OnResult(result, err)
	}
}

// StartAndSync starts watching and then runs the Runner once, so a change
// saved while that first run is in progress still schedules another run.
func (w *Watcher) StartAndSync(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	w.Trigger()
	return nil
}

// Trigger runs the Runner now, serialized with watch-triggered runs.
func (w *Watcher) Trigger() {
	w.runOnce()
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.runMu.Lock()
	runs := w.runs
	w.runMu.Unlock()

	w.mu.Lock()
	running := !w.stopped
	w.mu.Unlock()

	return Stats{Runs: runs, IsRunning: running}
}

// Stats contains watcher statistics.
type Stats struct {
	Runs      int
	IsRunning bool
}
