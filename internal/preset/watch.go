package preset

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Patterns are filepath.Glob patterns, so files created later are picked up.
type FileWatcher struct {
	Patterns  []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	stopCh    chan struct{}
	stopOnce  sync.Once
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given patterns and interval.
func NewFileWatcher(patterns []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Patterns:  patterns,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start primes the mtime cache and begins polling in a goroutine.
func (w *FileWatcher) Start() {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and invokes onChange for files that were modified,
// created or removed since the last scan.
func (w *FileWatcher) scanAll(prime bool) {
	seen := make(map[string]bool, len(w.lastMTime))
	for _, pattern := range w.Patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, p := range matches {
			fi, err := os.Stat(p)
			if err != nil {
				// vanished between glob and stat; the next scan settles it
				continue
			}
			seen[p] = true
			mt := fi.ModTime()
			last, ok := w.lastMTime[p]
			if ok && !mt.After(last) {
				continue
			}
			w.lastMTime[p] = mt
			if !prime {
				w.fire(p)
			}
		}
	}

	for p := range w.lastMTime {
		if !seen[p] {
			delete(w.lastMTime, p)
			if !prime {
				w.fire(p)
			}
		}
	}
}

func (w *FileWatcher) fire(path string) {
	if w.onChange != nil {
		w.onChange(path)
	}
}
