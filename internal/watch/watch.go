// Package watch triggers a recompute whenever the task database changes on
// disk, so a long-running view follows edits made by other processes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 250 * time.Millisecond

// Change is one filesystem event on the database or its sidecar files.
type Change struct {
	Path string
	Op   fsnotify.Op
	At   time.Time
}

// Handler receives a debounced batch of changes.
type Handler func(ctx context.Context, changes []Change)

type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending []Change
	timer   *time.Timer
	stopped bool
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New watches dbPath. SQLite writes through -wal and -journal files next to
// the database, so the parent directory is watched and events are filtered
// by file name.
func New(dbPath string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dbPath, err)
	}
	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(ctx)
	w.logger.Info("watching database", zap.String("path", w.path))
	return nil
}

// Stop ends the watch and drops any batch that has not fired yet. A handler
// call already in progress finishes before Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(ev.Name) && ev.Op != fsnotify.Chmod {
				w.add(ctx, Change{Path: ev.Name, Op: ev.Op, At: time.Now()})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	return strings.HasPrefix(filepath.Base(name), filepath.Base(w.path))
}

func (w *Watcher) add(ctx context.Context, change Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.pending = append(w.pending, change)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.flush(ctx) })
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	if w.stopped || len(batch) == 0 || w.handler == nil || ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	// Stop waits for a handler that is already running.
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	w.logger.Debug("database changed", zap.Int("events", len(batch)))
	w.handler(ctx, batch)
}
