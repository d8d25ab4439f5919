/**
 * Config watcher - notices when monitors.conf is changed behind our back
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ln64-git/hyprarrange/src/utility"
)

const defaultWatchDebounce = 150 * time.Millisecond

// ConfigWatcher watches the directory holding monitors.conf. Editors and
// our own writer replace the file by rename, so the file itself cannot be
// watched directly.
type ConfigWatcher struct {
	logger   *utility.Logger
	path     string
	debounce time.Duration

	mu       sync.Mutex
	skipNext bool
}

// NewConfigWatcher creates a watcher for path
func NewConfigWatcher(logger *utility.Logger, path string) *ConfigWatcher {
	return &ConfigWatcher{logger: logger, path: path, debounce: defaultWatchDebounce}
}

// SkipNext ignores the next change, used right before we write the file ourselves
func (w *ConfigWatcher) SkipNext() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.skipNext = true
}

// CancelSkip withdraws a pending SkipNext when our own write did not happen
func (w *ConfigWatcher) CancelSkip() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.skipNext = false
}

func (w *ConfigWatcher) consumeSkip() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	skip := w.skipNext
	w.skipNext = false
	return skip
}

// Watch calls onChange after each burst of writes to the file, until ctx is done
func (w *ConfigWatcher) Watch(ctx context.Context, onChange func(fsnotify.Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("Watching %s", w.path)

	target := filepath.Clean(w.path)
	var (
		timer   *time.Timer
		pending fsnotify.Event
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			pending = event
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if w.consumeSkip() {
				w.logger.Debug("Skipping own write to %s", w.path)
				continue
			}
			w.logger.Info("%s changed (%s)", w.path, pending.Op)
			onChange(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error: %v", err)
		}
	}
}
