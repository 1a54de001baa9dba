// Package watch reports changes below a mesh folder so the menu can rescan.
package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Folder watches a directory tree and calls onChange once a burst of
// file events has been quiet for the debounce delay.
type Folder struct {
	dir      string
	delay    time.Duration
	onChange func()
	log      *zap.Logger

	fsWatcher *fsnotify.Watcher
	stopChan  chan struct{}
	done      chan struct{}

	mutex   sync.Mutex
	timer   *time.Timer
	running bool
}

// New creates a watcher for dir. onChange runs on a timer goroutine.
func New(dir string, delay time.Duration, onChange func(), log *zap.Logger) (*Folder, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Folder{
		dir:       dir,
		delay:     delay,
		onChange:  onChange,
		log:       log.With(zap.String("directory", dir)),
		fsWatcher: fsWatcher,
	}, nil
}

// Dir returns the watched directory.
func (f *Folder) Dir() string {
	return f.dir
}

// Start watches the directory and every non-hidden subdirectory.
func (f *Folder) Start() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.running {
		return fmt.Errorf("watcher already running")
	}

	if err := f.addTree(f.dir); err != nil {
		return err
	}

	f.running = true
	f.stopChan = make(chan struct{})
	f.done = make(chan struct{})
	go f.loop(f.stopChan, f.done)

	f.log.Info("watching folder")
	return nil
}

func (f *Folder) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := f.fsWatcher.Add(p); err != nil {
			return fmt.Errorf("failed to add directory %s to watcher: %w", p, err)
		}
		return nil
	})
}

func (f *Folder) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-f.fsWatcher.Events:
			if !ok {
				return
			}
			if !f.relevant(event) {
				continue
			}
			// New subdirectories are watched too
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := f.addTree(event.Name); err != nil {
						f.log.Warn("cannot watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			f.log.Debug("folder changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			f.schedule()

		case err, ok := <-f.fsWatcher.Errors:
			if !ok {
				return
			}
			f.log.Error("fsnotify watcher error", zap.Error(err))

		case <-stop:
			return
		}
	}
}

func (f *Folder) relevant(event fsnotify.Event) bool {
	if hidden(filepath.Base(event.Name)) {
		return false
	}
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}

// schedule restarts the debounce timer.
func (f *Folder) schedule() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.running {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.delay, f.onChange)
}

// Stop halts watching. A pending change notification is dropped.
func (f *Folder) Stop() {
	f.mutex.Lock()
	if !f.running {
		f.mutex.Unlock()
		return
	}
	f.running = false
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	close(f.stopChan)
	done := f.done
	f.mutex.Unlock()

	<-done
	if err := f.fsWatcher.Close(); err != nil {
		f.log.Error("error closing fsnotify watcher", zap.Error(err))
	}
	f.log.Info("watcher stopped")
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
