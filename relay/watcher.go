package relay

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

// Watcher turns filesystem events on the album root into immediate
// detector passes, so new captures are picked up without waiting out the
// poll interval. It is an accelerator only: the polling loop remains the
// source of truth and the daemon works fine without a watcher.
type Watcher struct {
	root    string
	kick    func()
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over the album root. kick is called after
// each debounced burst of events (the detector's Kick method).
func NewWatcher(root string, kick func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{root: root, kick: kick, watcher: w}, nil
}

// Start begins watching and debouncing events. Blocks until ctx is
// cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	l := sub("watcher")
	l.Info("watching", "root", w.root)

	pending := false
	timer := time.NewTimer(debounceInterval)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			pending = true
			timer.Reset(debounceInterval)

			// New day/month/year directories appear over time and must be
			// watched too. Adding a file path is a harmless no-op.
			if event.Has(fsnotify.Create) {
				w.watcher.Add(event.Name) //nolint:errcheck
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch error", "err", err)

		case <-timer.C:
			if pending {
				pending = false
				l.Debug("kicking detector")
				w.kick()
			}
		}
	}
}

// addRecursive adds root and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible dirs
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Close closes the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
