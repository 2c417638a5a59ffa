package cliconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/hostbeat/pkg/log"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads configuration when the config file changes.
// The parent directory is watched so editors that replace the file on save
// are picked up too.
type Watcher struct {
	path     string
	load     func() (Config, error)
	logger   log.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for path. load produces the fully resolved
// configuration after a change.
func NewWatcher(path string, load func() (Config, error), logger log.Logger) *Watcher {
	return &Watcher{
		path:     path,
		load:     load,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Run watches until ctx is done, calling onChange with each successfully
// reloaded Config. Reload errors are logged and the change is skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer w.stopTimer()

	w.logger.Info("watching config file", log.String("path", w.path))

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(ctx, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, onChange func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		cfg, err := w.load()
		if err != nil {
			w.logger.Warn("config reload failed, keeping previous settings",
				log.String("path", w.path),
				log.Err(err),
			)
			return
		}
		w.logger.Info("config reloaded", log.String("path", w.path))
		onChange(cfg)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
