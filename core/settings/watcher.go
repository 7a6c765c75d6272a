package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last file event before a
// reload is attempted. Editors tend to write a file in several steps.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a FileStore when its file changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file via rename keep triggering reloads.
type Watcher struct {
	store     *FileStore
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	logger    *slog.Logger
	fileName  string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce interval.
func WithDebounce(interval time.Duration) WatcherOption {
	return func(w *Watcher) {
		if interval > 0 {
			w.debouncer = newDebouncer(interval)
		}
	}
}

// WithLogger sets the logger used for reload diagnostics.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher for store's file.
func NewWatcher(store *FileStore, opts ...WatcherOption) (*Watcher, error) {
	if store == nil || store.Path() == "" {
		return nil, errors.New("settings watcher requires a file-backed store")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		store:     store,
		watcher:   fsw,
		debouncer: newDebouncer(DefaultDebounce),
		logger:    slog.Default(),
		fileName:  filepath.Base(store.Path()),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir := filepath.Dir(store.Path())
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	return w, nil
}

// Watch blocks until ctx is done or Stop is called. After each debounced
// change the store is reloaded and onChange receives the new snapshot.
// Reload failures are logged and the previous snapshot stays in effect.
func (w *Watcher) Watch(ctx context.Context, onChange func(Settings)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("settings watcher is already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	reload := func() {
		updated, err := w.store.Reload()
		if err != nil {
			w.logger.Error("Settings reload failed", "path", w.store.Path(), "error", err)
			return
		}
		w.logger.Info("Settings reloaded", "path", w.store.Path())
		if onChange != nil {
			onChange(updated)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("Settings file changed", "path", event.Name, "op", event.Op.String())
			w.debouncer.trigger(reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Settings watcher error", "error", err)
		}
	}
}

// Stop ends Watch and releases the underlying watcher. It is safe to call
// when Watch was never started.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	select {
	case <-w.stopCh:
		w.mu.Unlock()
		return nil
	default:
		close(w.stopCh)
	}
	w.mu.Unlock()

	if running {
		<-w.doneCh
	}
	w.debouncer.stop()
	return w.watcher.Close()
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Base(event.Name) == w.fileName
}

// debouncer collapses bursts of events into one callback after a quiet period.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			callback()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
