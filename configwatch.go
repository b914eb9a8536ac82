package svcbot

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// ConfigWatchCleanupFunc stops a config watch and waits for its goroutine
type ConfigWatchCleanupFunc func() error

// WatchConfig watches the config file at path and invokes onChange after
// writes settle for the debounce interval. Editors and orchestration tools
// replace files rather than rewriting them, so the watch is on the parent
// directory and rename/create of the path count as changes.
//
// The bot's own restart-on-config-change behavior hangs off onChange: the
// daemon stops gracefully and lets its supervisor bring it back up with the
// fresh settings.
func WatchConfig(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) (ConfigWatchCleanupFunc, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
	})

	var mu sync.Mutex
	var debouncer *time.Timer

	sctx.Go(func(sctx *stopper.Context) error {
		sctx.Defer(func() {
			mu.Lock()
			if debouncer != nil {
				debouncer.Stop()
			}
			mu.Unlock()
		})

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(debounce, func() {
					if !sctx.IsStopping() {
						logger.Info("config file changed", "path", path)
						onChange()
					}
				})
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !sctx.IsStopping() {
					logger.Warn("config watch error", "path", path, "error", err)
				}
			}
		}
		return nil
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}
	return cleanup, nil
}
