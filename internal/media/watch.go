package media

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"sigtui/internal/conv"
	"sigtui/internal/logging"
)

// WaitFor blocks until the attachment's payload file exists, the timeout
// passes, or ctx is cancelled. signal-cli announces attachments in the
// envelope before the payload finishes writing, so a reveal right after
// receipt can race the download; this closes that window.
func (s *Store) WaitFor(ctx context.Context, att conv.Attachment, timeout time.Duration) (string, error) {
	if path, ok := s.Locate(att); ok {
		return path, nil
	}
	if s.dir == "" {
		return "", fmt.Errorf("media: no attachment directory configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("media: watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return "", fmt.Errorf("media: watch %s: %w", s.dir, err)
	}

	// Re-check after the watch is in place; the file may have landed in
	// between.
	if path, ok := s.Locate(att); ok {
		return path, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", fmt.Errorf("media: attachment %s not materialized within %s", att.ID, timeout)
		case event, ok := <-watcher.Events:
			if !ok {
				return "", fmt.Errorf("media: watcher closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if path, ok := s.Locate(att); ok {
				return path, nil
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return "", fmt.Errorf("media: watcher closed")
			}
			logging.Get(logging.CategoryMedia).Warn("watcher error: %v", werr)
		}
	}
}
