package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/food"
)

// Watch reloads the catalog at path whenever it is written or replaced and
// passes each successfully parsed catalog to onChange. The parent directory
// is watched so editors that replace the file by rename are still seen.
// Watch blocks until ctx is done.
func (l *Loader) Watch(ctx context.Context, path string, onChange func(food.Catalog)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	l.logger.Info("watching catalog", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isReloadEvent(abs, event) {
				continue
			}
			catalog, err := l.LoadFile(abs)
			if err != nil {
				l.logger.Warn("catalog reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			onChange(catalog)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// isReloadEvent reports whether event changes the contents of the file at path.
func isReloadEvent(path string, event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
