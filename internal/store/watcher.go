package store

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of trace-file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // trace .json file written
	ChangeRemoved                    // trace .json file deleted
)

// TraceChange represents a detected change in the watched trace directory.
type TraceChange struct {
	Kind ChangeKind
	File string // Absolute path
}

// Watcher monitors a directory of exported trace files using fsnotify, so
// a long-running viewer can re-index when traces are written or removed.
type Watcher struct {
	Dir     string
	Changes <-chan TraceChange // Read-only external channel

	changes chan TraceChange // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a new watcher for the given trace directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan TraceChange, 16)
	w := &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	return w, nil
}

// Start begins watching the trace directory for changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				for file := range pending {
					w.emitChange(file)
				}
				return
			}

			if !isTraceFile(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				pending[event.Name] = time.Now()
			}

		case _, ok := <-ticker.C:
			if !ok {
				return
			}
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.emitChange(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

func isTraceFile(name string) bool {
	return strings.HasSuffix(filepath.Base(name), ".json")
}

func (w *Watcher) emitChange(file string) {
	if _, err := os.Stat(file); err != nil {
		w.changes <- TraceChange{Kind: ChangeRemoved, File: file}
		return
	}
	w.changes <- TraceChange{Kind: ChangeModified, File: file}
}
