// Package watch reports when the habits file is changed on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/idilsaglam/habits/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a change
// is reported. It also lets a writer finish its overwrite first.
const DefaultDebounce = 250 * time.Millisecond

// Watcher follows a single file by watching its directory, which survives
// editors that replace the file instead of writing it in place.
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	changes  chan struct{}
	debounce time.Duration
	logger   *slog.Logger
}

// New starts watching path's directory, creating it when absent.
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch directory %s: %w", dir, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     abs,
		fw:       fw,
		changes:  make(chan struct{}, 1),
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Changes delivers at most one pending notification; it is closed when Run
// returns.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !relevant(ev.Op) {
				continue
			}
			w.logger.Debug("Habits file event", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", logfields.Error(err))
		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default: // a notification is already pending
			}
		}
	}
}

func (w *Watcher) Close() error { return w.fw.Close() }

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
