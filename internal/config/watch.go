package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long table edits must settle before the change
// handler fires.
const DefaultDebounce = 500 * time.Millisecond

// TableWatcher watches lookup-table files and reports each changed path
// once per burst of edits. Watching the containing directories rather
// than the files themselves keeps atomic-rename saves visible.
type TableWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	onChange func(path string)
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewTableWatcher watches the given files. onChange runs on a single
// goroutine after Start; debounce <= 0 uses DefaultDebounce.
func NewTableWatcher(files []string, debounce time.Duration, onChange func(path string)) (*TableWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tw := &TableWatcher{
		watcher:  watcher,
		files:    make(map[string]bool, len(files)),
		onChange: onChange,
		debounce: debounce,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		tw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return tw, nil
}

// Start runs the event loop until ctx is cancelled or Close is called.
func (tw *TableWatcher) Start(ctx context.Context) {
	go tw.loop(ctx)
}

// Close stops the watcher. Safe to call more than once.
func (tw *TableWatcher) Close() {
	tw.stopOnce.Do(func() {
		close(tw.done)
		tw.watcher.Close()
	})
}

func (tw *TableWatcher) loop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-tw.done:
			return

		case ev, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !tw.files[abs] {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			pending[abs] = true
			if timer == nil {
				timer = time.NewTimer(tw.debounce)
				timerC = timer.C
			} else {
				timer.Reset(tw.debounce)
			}

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("table watcher error", "error", err)

		case <-timerC:
			for path := range pending {
				slog.Info("lookup table changed", "path", path)
				tw.onChange(path)
			}
			pending = make(map[string]bool)
			timer = nil
			timerC = nil
		}
	}
}
