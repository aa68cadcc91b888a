package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/logger"
)

// Watcher reports writes to one local model file at a time.
//
// The parent directory is watched rather than the file so editors that save
// by rename are still seen.
type Watcher struct {
	fs      *fsnotify.Watcher
	changed chan string

	mu   sync.Mutex
	file string
	dir  string
	done chan struct{}
}

// NewWatcher starts a file watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fs:      fw,
		changed: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changed delivers the watched path after it is written. Bursts of writes
// collapse into one pending notification.
func (w *Watcher) Changed() <-chan string {
	return w.changed
}

// Watch switches the watch to path. An empty path stops watching.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs := ""
	if path != "" {
		var err error
		if abs, err = filepath.Abs(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	if abs == w.file {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dir != "" && (abs == "" || dir != w.dir) {
		if err := w.fs.Remove(w.dir); err != nil {
			logger.Debug("unwatch failed", zap.String("dir", w.dir), zap.Error(err))
		}
		w.dir = ""
	}
	w.file = abs
	if abs == "" || w.dir == dir {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		w.file = ""
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dir = dir
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			match := w.file != "" && filepath.Clean(ev.Name) == w.file
			w.mu.Unlock()
			if !match {
				continue
			}
			select {
			case w.changed <- ev.Name:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
