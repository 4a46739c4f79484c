// ABOUTME: Watches an inbox directory for newly dropped audio files
// ABOUTME: Debounces filesystem events into batches of paths

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Next after Close
var ErrWatcherClosed = errors.New("inbox watcher closed")

// DefaultDebounce waits for copies to settle before a batch is reported
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports files created in a directory
type Watcher struct {
	dir      string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *log.Logger
	seen     map[string]struct{} // Paths already reported
}

// NewWatcher starts watching dir, creating it if needed
func NewWatcher(dir string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch inbox: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}, nil
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Next blocks until new files have settled and returns their paths sorted.
// Must be called from one goroutine at a time.
func (w *Watcher) Next(ctx context.Context) ([]string, error) {
	pending := make(map[string]struct{})

	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil, ErrWatcherClosed
			}

			name := filepath.Clean(ev.Name)

			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(w.seen, name)
				delete(pending, name)

				continue
			}

			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}

			if strings.HasPrefix(filepath.Base(name), ".") {
				continue
			}

			if _, done := w.seen[name]; done {
				continue
			}

			pending[name] = struct{}{}
			settle = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil, ErrWatcherClosed
			}

			w.logger.Warn("inbox watcher error", "err", err)

		case <-settle:
			settle = nil

			var paths []string

			for p := range pending {
				if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
					paths = append(paths, p)
					w.seen[p] = struct{}{}
				}
			}

			clear(pending)

			if len(paths) > 0 {
				slices.Sort(paths)
				w.logger.Debug("inbox batch", "files", len(paths))

				return paths, nil
			}
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
