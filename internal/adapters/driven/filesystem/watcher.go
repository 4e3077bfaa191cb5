package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/reshelve/internal/core/domain"
	"github.com/custodia-labs/reshelve/internal/core/ports/driven"
	"github.com/custodia-labs/reshelve/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher reports files created or written under a root, recursively.
// fsnotify watches single directories, so every directory is added
// on start and new ones are added as they appear.
type Watcher struct {
	includeHidden bool

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// NewWatcher creates a change watcher.
func NewWatcher(includeHidden bool) *Watcher {
	return &Watcher{includeHidden: includeHidden}
}

// Watch starts watching root. The returned channel is closed when ctx is
// cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, root string) (<-chan string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, domain.ErrWatcherClosed
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: not a directory: %s", absRoot)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if _, err := w.addTree(fsw, absRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	w.watchers = append(w.watchers, fsw)

	changes := make(chan string)
	go w.run(ctx, fsw, changes)

	return changes, nil
}

// Close stops every active watch.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var firstErr error
	for _, fsw := range w.watchers {
		if err := fsw.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	w.watchers = nil
	return firstErr
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- string) {
	defer close(changes)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			for _, path := range w.handleFsEvent(fsw, event) {
				select {
				case changes <- path:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleFsEvent maps one fsnotify event to the file paths worth processing.
// A new directory is watched and its existing files are reported, since
// they may have been written before the watch was in place.
func (w *Watcher) handleFsEvent(fsw *fsnotify.Watcher, event fsnotify.Event) []string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}
	if !w.includeHidden && isHidden(filepath.Base(event.Name)) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return nil
	}

	if info.IsDir() {
		if !event.Has(fsnotify.Create) {
			return nil
		}
		files, err := w.addTree(fsw, event.Name)
		if err != nil {
			logger.Warn("Could not watch %s: %v", event.Name, err)
		}
		return files
	}

	if !info.Mode().IsRegular() {
		return nil
	}
	return []string{event.Name}
}

// addTree watches dir and every non-hidden directory below it,
// returning the regular files found along the way.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && !w.includeHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if isRegularFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
