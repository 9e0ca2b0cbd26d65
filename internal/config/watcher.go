package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/logging"
)

// Watcher caches a config snapshot and reloads it when config.json changes.
// The directory is watched rather than the file so editors that replace the
// file via rename are still picked up.
type Watcher struct {
	dir     string
	path    string
	getenv  func(string) string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	current atomic.Pointer[Config]

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a Watcher for dir and loads the initial snapshot.
func NewWatcher(dir string, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:     dir,
		path:    filepath.Join(dir, FileName),
		getenv:  os.Getenv,
		logger:  logging.OrNop(logger),
		watcher: fw,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	w.Reload()
	return w, nil
}

// Current returns the latest snapshot.
func (w *Watcher) Current() *Config {
	return w.current.Load()
}

// Reload re-reads the config file immediately.
func (w *Watcher) Reload() {
	cfg, err := Load(w.dir)
	w.current.Store(Resolve(cfg, err, w.getenv, w.logger))
}

// Start begins watching. It is non-blocking; the event loop stops when ctx is
// done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	w.running = true

	go w.run(ctx)
	return nil
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.Reload()
			w.logger.Info("config reloaded", zap.String("path", w.path), zap.String("op", event.Op.String()))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
