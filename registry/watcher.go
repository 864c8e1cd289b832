package registry

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-installs a flag config file into a cache whenever the
// file changes on disk. It watches the containing directory rather
// than the file itself so editors that replace the file atomically
// still trigger a reload.
type Watcher struct {
	path    string
	cache   *Cache
	formats *FormatRegistry
	logger  *slog.Logger

	fw   *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher creates a watcher for the given flag config file.
func NewWatcher(path string, cache *Cache, formats *FormatRegistry, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve flag config path: %w", err)
	}
	return &Watcher{
		path:    abs,
		cache:   cache,
		formats: formats,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. Reloads happen on a background goroutine
// until Close is called.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fw = fw

	go w.loop()
	return nil
}

// Close stops watching and releases the underlying watcher.
func (w *Watcher) Close() error {
	close(w.done)
	if w.fw != nil {
		return w.fw.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Flag config watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == w.path
}

func (w *Watcher) reload() {
	reg, err := w.formats.ParseFile(w.path)
	if err != nil {
		w.logger.Warn("Failed to reload flag config",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}
	w.cache.Replace(reg, w.path)
	w.logger.Info("Reloaded flag config",
		slog.String("path", w.path),
		slog.Int("flags", len(reg.Flags)),
		slog.Int("patterns", len(reg.Patterns)))
}
