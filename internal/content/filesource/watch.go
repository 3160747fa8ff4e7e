package filesource

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// Watch reloads the source whenever a file in its directory changes and then
// calls onChange. It blocks until ctx is done.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := func() {
		if err := s.Reload(); err != nil {
			s.logger.Error("failed to reload content dir", "dir", s.dir, "error", err)
			return
		}
		s.logger.Info("content dir reloaded", "dir", s.dir)
		if onChange != nil {
			onChange()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug("content change detected", "file", event.Name, "op", event.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("content watcher error", "error", err)
		}
	}
}
