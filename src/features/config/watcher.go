package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceSecs = 2

// Watcher reloads the configuration when its file changes on disk.
// Editors tend to fire several events per save, so reloads are
// debounced.
type Watcher struct {
	watcher       *fsnotify.Watcher
	manager       *Manager
	path          string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
}

// NewWatcher creates a watcher for the given config file feeding the
// given manager.
func NewWatcher(manager *Manager, path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		manager:  manager,
		path:     path,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching the config file's directory. Watching the
// directory rather than the file survives rename-based saves.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	slog.Info("Starting config watcher", "path", w.path)

	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	return nil
}

// Stop stops the config watcher
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping config watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent debounces write/create events for the config file itself.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceSecs*time.Second, w.reload)
}

// reload re-parses the config file and swaps it into the manager. A
// bad file keeps the running configuration.
func (w *Watcher) reload() {
	manager, err := Load(w.path)
	if err != nil {
		slog.Error("Config reload failed, keeping current configuration", "path", w.path, "error", err)
		return
	}
	w.manager.Update(manager.Get())
	slog.Info("Configuration reloaded", "path", w.path)
}
