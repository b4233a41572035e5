package monitor

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Monitor watches a single file for modification and records a one-shot
// changed flag that the polling loop consumes. The parent directory is
// watched rather than the file itself so atomic rename-replace writes
// (the way Claude Code refreshes its credentials) are still observed.
type Monitor struct {
	mu      sync.Mutex // guards watcher lifecycle
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup

	flagMu  sync.Mutex
	changed bool
}

func New() *Monitor {
	return &Monitor{}
}

// Start begins watching path. A previous watch, if any, is cancelled
// first so a settings change never leaves duplicate watches behind.
func (m *Monitor) Start(path string) error {
	path = filepath.Clean(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	m.watcher = w
	m.wg.Add(1)
	go m.run(w, path)
	return nil
}

// Stop cancels the watch and waits for the event goroutine to exit.
// Safe to call when not started.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Monitor) stopLocked() {
	if m.watcher == nil {
		return
	}
	m.watcher.Close() // closes the event channel, run exits
	m.watcher = nil
	m.wg.Wait()
}

// ConsumeChanged reports whether the watched file changed since the
// last call and clears the flag.
func (m *Monitor) ConsumeChanged() bool {
	m.flagMu.Lock()
	defer m.flagMu.Unlock()
	changed := m.changed
	m.changed = false
	return changed
}

func (m *Monitor) run(w *fsnotify.Watcher, path string) {
	defer m.wg.Done()
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				m.flagMu.Lock()
				m.changed = true
				m.flagMu.Unlock()
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}
