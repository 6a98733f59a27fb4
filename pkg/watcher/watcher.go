// Package watcher reloads model files when they change on disk. A change
// parses the file again and hands the fresh mesh to the registered reload
// callback, which typically swaps it into a scene body and invalidates its
// cached slice result.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the path of a changed model file
type ReloadFunc func(path string)

// ModelWatcher watches model files and debounces change events. Editors
// often emit several writes per save; only the last one within the debounce
// window triggers a reload.
type ModelWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	reloads  map[string]ReloadFunc
	debounce time.Duration
	timers   map[string]*time.Timer
	done     chan struct{}
}

// NewModelWatcher creates a watcher with the given debounce window
func NewModelWatcher(debounce time.Duration) (*ModelWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: failed to create: %w", err)
	}
	return &ModelWatcher{
		watcher:  w,
		reloads:  make(map[string]ReloadFunc),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Watch registers a model file. The reload callback fires after the file is
// written and the debounce window passes.
func (mw *ModelWatcher) Watch(path string, reload ReloadFunc) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watcher: failed to resolve %s: %w", path, err)
	}

	mw.mu.Lock()
	defer mw.mu.Unlock()

	// Watch the parent directory: editors that save via rename replace the
	// inode, which silently drops a per-file watch.
	dir := filepath.Dir(absPath)
	if err := mw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watcher: failed to watch %s: %w", dir, err)
	}
	mw.reloads[absPath] = reload
	return nil
}

// Start begins dispatching change events until Close is called
func (mw *ModelWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-mw.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					mw.handleChange(event.Name)
				}
			case err, ok := <-mw.watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "watcher: %v\n", err)
			case <-mw.done:
				return
			}
		}
	}()
}

func (mw *ModelWatcher) handleChange(path string) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	reload, ok := mw.reloads[path]
	if !ok {
		return
	}

	if timer, exists := mw.timers[path]; exists {
		timer.Stop()
	}
	mw.timers[path] = time.AfterFunc(mw.debounce, func() {
		reload(path)
	})
}

// Close stops event dispatch and releases the underlying watcher
func (mw *ModelWatcher) Close() error {
	close(mw.done)

	mw.mu.Lock()
	for _, timer := range mw.timers {
		timer.Stop()
	}
	mw.timers = make(map[string]*time.Timer)
	mw.mu.Unlock()

	return mw.watcher.Close()
}
