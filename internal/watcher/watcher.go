// Package watcher triggers an incremental reindex when the repository
// tree changes, debouncing bursts of filesystem events so a multi-file
// save (or a git checkout) causes one reindex instead of many.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches root for changes and debounces them into calls to
// onChange. onChange is typically internal/hybrid.Search.ReindexRepo,
// adapted to this signature by the caller.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	onChange func(ctx context.Context) error
	logger   *slog.Logger
}

// New creates a Watcher over root. onChange is invoked at most once per
// debounce window, however many events arrived within it.
func New(root string, debounce time.Duration, onChange func(ctx context.Context) error, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addRecursive(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{root: root, debounce: debounce, fsw: fsw, onChange: onChange, logger: logger}, nil
}

// Run blocks, debouncing filesystem events into onChange calls, until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if shouldIgnore(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				_ = addRecursive(w.fsw, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("reindex after watch event failed", slog.String("error", err.Error()))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// ignoredDirs are skipped when walking the tree for fsnotify registration:
// VCS metadata, Argus's own index directory, and node_modules.
var ignoredDirs = map[string]bool{
	".git":         true,
	".argus":       true,
	"node_modules": true,
}

func shouldIgnore(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	return strings.HasPrefix(base, ".") && base != "."
}

// addRecursive registers path and, if it is a directory, every
// subdirectory underneath it; fsnotify only watches one level per call.
func addRecursive(fsw *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(path) && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
}
