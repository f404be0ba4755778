package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"patchbay/domain/catalog"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CatalogWatcher watches the catalog overlay file and reloads the node
// type catalog on change. A reload that fails to parse keeps the
// current catalog, so a half-saved file never takes the editor down.
type CatalogWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *catalog.Catalog
	mu       sync.RWMutex
	onChange []func(*catalog.Catalog)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewCatalogWatcher loads the catalog once and prepares the watcher
func NewCatalogWatcher(path string, logger *zap.Logger) (*CatalogWatcher, error) {
	current, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial catalog: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch catalog file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("failed to watch catalog directory", zap.Error(err))
	}

	return &CatalogWatcher{
		path:    path,
		watcher: watcher,
		current: current,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for catalog changes
func (w *CatalogWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("catalog watcher started", zap.String("path", w.path))
}

// Stop stops watching
func (w *CatalogWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("catalog watcher stopped")
}

func (w *CatalogWatcher) watchLoop() {
	// Debounce so an editor writing in chunks triggers one reload
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("catalog watcher error", zap.Error(err))
		}
	}
}

func (w *CatalogWatcher) reload() {
	w.logger.Info("catalog file changed, reloading", zap.String("path", w.path))

	next, err := catalog.LoadFile(w.path)
	if err != nil {
		w.logger.Error("failed to reload catalog, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = next
	handlers := w.onChange
	w.mu.Unlock()

	for _, handler := range handlers {
		go handler(next)
	}
	w.logger.Info("catalog reloaded", zap.Int("nodeTypes", len(next.Types())))
}

// OnChange registers a callback invoked after a successful reload
func (w *CatalogWatcher) OnChange(handler func(*catalog.Catalog)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the most recently loaded catalog
func (w *CatalogWatcher) Current() *catalog.Catalog {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
