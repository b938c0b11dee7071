// Package watch reports changes to a single file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leandrodaf/midikit/sdk/contracts"
)

// DefaultDebounce collapses the burst of events an editor or exporter
// produces for one save.
const DefaultDebounce = 200 * time.Millisecond

// File calls onChange each time path is written, created or replaced, once
// per burst of events within debounce. The parent directory is watched so
// that atomic replace-by-rename is seen. File blocks until ctx is done and
// returns nil then; a watcher failure is returned at once.
func File(ctx context.Context, path string, debounce time.Duration, logger contracts.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Debug("Watching file", logger.Field().String("path", abs))

	timer := time.NewTimer(debounce)
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
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", logger.Field().Error("error", err))
		case <-timer.C:
			logger.Info("File changed", logger.Field().String("path", abs))
			onChange()
		}
	}
}
