// Package watch reports changes to the Regolith config file and the
// wallpapers folder so the picker can reload them.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 150 * time.Millisecond

// Watcher calls OnChange with the watched path after it was written, created,
// removed or renamed. Bursts of events for the same path are folded into one call.
type Watcher struct {
	OnChange func(path string)
	Debounce time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	targets map[string]bool // watched path -> is a directory
	timers  map[string]*time.Timer
}

func New(onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		OnChange: onChange,
		Debounce: DefaultDebounce,
		fsw:      fsw,
		targets:  map[string]bool{},
		timers:   map[string]*time.Timer{},
	}, nil
}

// AddFile watches a single file. The parent directory is watched instead of
// the file itself, so editors that replace the file are still noticed.
func (w *Watcher) AddFile(path string) error {
	path = filepath.Clean(path)
	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.targets[path] = false
	w.mu.Unlock()
	log.Debug("Watching file", "path", path)
	return nil
}

// AddDir watches the direct children of a directory.
func (w *Watcher) AddDir(path string) error {
	path = filepath.Clean(path)
	if err := w.fsw.Add(path); err != nil {
		return err
	}

	w.mu.Lock()
	w.targets[path] = true
	w.mu.Unlock()
	log.Debug("Watching directory", "path", path)
	return nil
}

// Remove stops reporting changes for path. The underlying directory watch is
// kept while another target still lives in it.
func (w *Watcher) Remove(path string) {
	path = filepath.Clean(path)

	w.mu.Lock()
	isDir, ok := w.targets[path]
	delete(w.targets, path)
	dir := path
	if !isDir {
		dir = filepath.Dir(path)
	}
	inUse := w.watchesDir(dir)
	w.mu.Unlock()

	if ok && !inUse {
		w.fsw.Remove(dir)
	}
}

// watchesDir reports whether any target needs dir watched. w.mu must be held.
func (w *Watcher) watchesDir(dir string) bool {
	for target, isDir := range w.targets {
		if isDir && target == dir {
			return true
		}
		if !isDir && filepath.Dir(target) == dir {
			return true
		}
	}
	return false
}

// match returns the watched path an event belongs to.
func (w *Watcher) match(name string) (string, bool) {
	name = filepath.Clean(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.targets[name]; ok {
		return name, true
	}
	parent := filepath.Dir(name)
	if isDir, ok := w.targets[parent]; ok && isDir {
		return parent, true
	}
	return "", false
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if w.OnChange != nil {
			w.OnChange(path)
		}
	})
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if path, ok := w.match(event.Name); ok {
				log.Debug("File change detected", "path", path, "op", event.Op.String())
				w.schedule(path)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("File watcher error", "err", err)
		}
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	return w.fsw.Close()
}
