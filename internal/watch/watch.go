// Package watch re-runs a callback when a watched file changes,
// backing the CLI's --watch flag.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events editors produce for
// a single save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher observes one file and invokes a callback after each change,
// debouncing rapid event sequences.
type Watcher struct {
	w        *fsnotify.Watcher
	path     string
	debounce time.Duration
	done     chan struct{}
}

// New creates a watcher for path. The watch is registered on the
// containing directory so rename-and-replace saves are still seen.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		w:        w,
		path:     abs,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Run blocks, invoking onChange after each debounced change to the
// watched file and onError for watcher failures. It returns when the
// watcher is closed.
func (fw *Watcher) Run(onChange func(), onError func(error)) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		case <-fw.done:
			return
		}
	}
}

// Close stops the watcher and unblocks Run.
func (fw *Watcher) Close() error {
	close(fw.done)
	return fw.w.Close()
}
