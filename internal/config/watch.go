package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of events an editor save produces.
const debounceDelay = 100 * time.Millisecond

// Watch monitors the config file at path and sends each successfully
// reloaded configuration on the returned channel until ctx is cancelled.
// Reload failures are logged and skipped; the previous configuration stays
// in effect. The directory is watched rather than the file so atomic
// rename-style saves keep working.
func Watch(ctx context.Context, path string, log *slog.Logger) (<-chan *Config, error) {
	if log == nil {
		log = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", dir, err)
	}

	out := make(chan *Config, 1)
	go func() {
		defer watcher.Close()
		defer close(out)

		var debounce *time.Timer
		reload := func() {
			cfg, err := Load(path)
			if err != nil {
				log.Warn("config reload failed", "path", path, "error", err)
				return
			}
			// Drop the stale pending config if the consumer is behind.
			select {
			case out <- cfg:
			default:
				select {
				case <-out:
				default:
				}
				out <- cfg
			}
			log.Info("config reloaded", "path", path)
		}

		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, reload)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "error", err)
			}
		}
	}()
	return out, nil
}
