// Package reload watches the configuration file and triggers reloads when it
// changes.
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "go.uber.org/zap"
)

// Func applies the configuration stored at path.
type Func func(ctx context.Context, path string) error

// Watcher calls a reload function when the watched file changes. A series
// of rapid file events is reduced to a single reload.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   Func
	logger   *log.Logger
}

func New(path string, config *Config, reload Func, logger *log.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: config.Debounce,
		reload:   reload,
		logger:   logger.With(log.String("event_type", "reload"), log.String("path", path)),
	}
}

// Run watches the file until ctx is done.
func (m *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched, editors and config management replace the
	// file instead of writing into it.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.path, err)
	}

	timer := time.NewTimer(m.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != m.path || event.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(m.debounce)

		case <-timer.C:
			if err := m.reload(ctx, m.path); err != nil {
				m.logger.Error("failed to reload config", log.Error(err))
				continue
			}
			m.logger.Info("config reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Error("watcher error", log.Error(err))
		}
	}
}
