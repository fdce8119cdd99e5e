package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// FileWatcher reports writes to a fixed set of files. It watches their
// parent directories because the files may not exist yet and are often
// replaced rather than rewritten in place.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	targets  map[string]struct{}
	changes  chan struct{}
	debounce time.Duration
	done     chan struct{}
	once     sync.Once
}

func NewFileWatcher(paths ...string) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &FileWatcher{
		watcher:  fsw,
		targets:  map[string]struct{}{},
		changes:  make(chan struct{}, 1),
		debounce: 150 * time.Millisecond,
		done:     make(chan struct{}),
	}
	dirs := map[string]struct{}{}
	for _, p := range paths {
		clean := filepath.Clean(p)
		w.targets[clean] = struct{}{}
		dirs[filepath.Dir(clean)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("watch directory")
		}
	}
	go w.loop()
	return w, nil
}

// Changes delivers at most one pending notification at a time.
func (w *FileWatcher) Changes() <-chan struct{} { return w.changes }

func (w *FileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *FileWatcher) loop() {
	var timer *time.Timer
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if _, watched := w.targets[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.signal)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (w *FileWatcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
