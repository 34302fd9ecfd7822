package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is re-run.
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-runs a batch file whenever it is written.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	run      func()
	stderr   io.Writer
}

// NewWatcher watches path and calls run after each burst of changes.
// The file's directory is watched so that editors which replace the file on
// save are still seen.
func NewWatcher(path string, debounce time.Duration, run func(), stderr io.Writer) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		debounce: debounce,
		run:      run,
		stderr:   stderr,
	}, nil
}

// Start runs the file once, then again after every change, until ctx is
// cancelled. It closes the underlying watcher before returning.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	w.run()

	// Stopped timer; armed by the first relevant event.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.run()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.stderr, "[WATCH ERROR] %v\n", err)
		}
	}
}
