package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/umactually/internal/model"
)

// ChangeSource tells where a change notification originated
type ChangeSource string

const (
	ChangeLocal    ChangeSource = "local"    // Insert or Remove in this process
	ChangeExternal ChangeSource = "external" // The file changed underneath us
)

// Change carries a freshly re-read list after the history changed
type Change struct {
	Source  ChangeSource
	Entries []model.HistoryEntry
}

// Subscribe registers for change notifications. Only the latest change is
// kept for a slow subscriber. Call the returned func to unsubscribe.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	unsubscribe := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// refresh re-reads the file under the write lock and notifies subscribers
func (s *Store) refresh(source ChangeSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publish(source, s.List())
}

// publish delivers entries to every subscriber. Callers hold s.mu, so
// snapshots go out in the order they were written.
func (s *Store) publish(source ChangeSource, entries []model.HistoryEntry) {
	change := Change{Source: source, Entries: append([]model.HistoryEntry(nil), entries...)}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			// Drop the stale pending change and deliver the latest one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- change:
			default:
			}
		}
	}
}

// Watch refreshes subscribers whenever another process rewrites the history
// file. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: atomic renames replace the file inode
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				s.logger.Debug("history file changed", "op", event.Op.String())
				s.refresh(ChangeExternal)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("history watcher error", "error", err)
		}
	}
}
