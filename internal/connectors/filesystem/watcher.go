package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
	"github.com/veldt-labs/grantrag-cli/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ProjectWatcher = (*Watcher)(nil)

// DefaultDebounce is how long the watcher waits after the last write to
// a file before emitting an event. Editors and office suites typically
// produce bursts of writes per save.
const DefaultDebounce = 2 * time.Second

// Watcher emits file events for project folders using inotify-style
// filesystem notifications. Nested directories are watched as they
// appear.
type Watcher struct {
	source   *Source
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before an event is emitted.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over every project folder under the
// source's root.
func NewWatcher(source *Source, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem: create watcher: %w", err)
	}

	w := &Watcher{
		source:   source,
		watcher:  fsw,
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addRecursive(source.Root()); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("filesystem: watch %s: %w", path, err)
		}
		return nil
	})
}

// Watch returns a channel of debounced file events. The channel closes
// when the context is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.FileEvent, error) {
	events := make(chan domain.FileEvent, 16)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handle(ctx, ev, events)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error: %v", err)
			}
		}
	}()

	return events, nil
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event, out chan<- domain.FileEvent) {
	if ev.Op.Has(fsnotify.Create) {
		// New directories need their own watch.
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
			return
		}
	}

	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}

	project := w.projectFor(ev.Name)
	if project == "" || strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	path := ev.Name
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- domain.FileEvent{Project: project, Path: path}:
		case <-ctx.Done():
		}
	})
}

// projectFor maps an absolute path back to the project folder it lives
// under, or "" for paths directly in the root.
func (w *Watcher) projectFor(path string) string {
	rel, err := filepath.Rel(w.source.Root(), path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// Close stops the watcher and cancels pending timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
