// Package watcher monitors RTT capture files for appended data using
// OS-level notifications.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event represents a change to a matching capture file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher monitors capture files matching a set of glob patterns. It
// watches the parent directories rather than the files themselves, so a
// rotated or freshly created file that matches a pattern starts producing
// events without anyone re-arming a watch.
type Watcher struct {
	fsw      *fsnotify.Watcher
	Events   chan Event
	patterns []string

	mu    sync.Mutex
	paths []string

	logger *zap.Logger
}

// New creates a Watcher for the given glob patterns (doublestar, so
// recursive captures/**/*.rtt works). The directories holding current
// matches are watched, plus each pattern's static base directory so files
// that appear later are picked up too.
func New(patterns []string, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan Event, 256),
		logger: logger,
	}

	dirs := make(map[string]struct{})
	for _, pattern := range patterns {
		abs, err := filepath.Abs(pattern)
		if err != nil {
			logger.Warn("cannot resolve pattern", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		w.patterns = append(w.patterns, abs)

		base, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
		dirs[filepath.FromSlash(base)] = struct{}{}

		matches, err := expandGlob(abs)
		if err != nil {
			logger.Warn("failed to expand pattern", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		for _, m := range matches {
			w.paths = append(w.paths, m)
			dirs[filepath.Dir(m)] = struct{}{}
		}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	return w, nil
}

// Start begins listening for file events. It blocks until the context is
// cancelled, then closes Events.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// fsnotify does not recurse, so new directories under a
				// recursive pattern need their own watch.
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.fsw.Add(ev.Name); err != nil {
						w.logger.Warn("cannot watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.matches(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				w.track(ev.Name)
			}
			w.Events <- Event{Path: ev.Name, Op: ev.Op}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// matches reports whether path is a known capture file or fits one of the
// patterns.
func (w *Watcher) matches(path string) bool {
	w.mu.Lock()
	for _, p := range w.paths {
		if p == path {
			w.mu.Unlock()
			return true
		}
	}
	w.mu.Unlock()

	slashed := filepath.ToSlash(path)
	for _, pattern := range w.patterns {
		if ok, err := doublestar.Match(filepath.ToSlash(pattern), slashed); err == nil && ok {
			return true
		}
	}
	return false
}

// track records a matching file that appeared after startup.
func (w *Watcher) track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.paths {
		if p == path {
			return
		}
	}
	w.paths = append(w.paths, path)
}

// Paths returns the matching files known to the watcher.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

func expandGlob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
}
