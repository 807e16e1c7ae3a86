package fs

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/librum-dev/librum/pkg/core"
)

// debounceWindow collapses the bursts of filesystem events a single
// logical write produces (create + write + chmod).
const debounceWindow = 50 * time.Millisecond

// Watch reports changes to entity files in the data directory until
// ctx is cancelled. pattern is a glob over file names ("*.json" when
// empty); staged temp files and the pending-transaction directory are
// always ignored.
func (e *Engine) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*.json"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, core.Invalidf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, core.StorageFailed("create filesystem watcher", err)
	}
	if err := watcher.Add(e.dir); err != nil {
		watcher.Close()
		return nil, core.StorageFailed("watch data dir", err)
	}

	events := make(chan core.Event, 16)
	deb := newDebouncer(debounceWindow)

	go func() {
		defer close(events)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case fsEvent, ok := <-watcher.Events:
				if !ok {
					return
				}
				if e.shouldIgnore(fsEvent.Name, pattern) {
					continue
				}
				eventType := mapEventType(fsEvent)
				if eventType == "" {
					continue
				}
				e.logger.Debug("file event", "file", fsEvent.Name, "op", fsEvent.Op.String())
				deb.add(core.Event{
					Type:      eventType,
					File:      filepath.Base(fsEvent.Name),
					Timestamp: time.Now().Unix(),
				}, func(out core.Event) {
					select {
					case events <- out:
					case <-ctx.Done():
					}
				})
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Error("watcher error", "error", watchErr)
			}
		}
	}()

	return events, nil
}

func (e *Engine) shouldIgnore(path, pattern string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, tempPrefix) {
		return true
	}
	if filepath.Base(filepath.Dir(path)) == pendingTxDir || base == pendingTxDir {
		return true
	}
	ok, err := doublestar.Match(pattern, base)
	return err != nil || !ok
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	}
	return ""
}

// debouncer delays each file's event and keeps only the latest one
// inside the window.
type debouncer struct {
	mu     sync.Mutex
	wait   time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{wait: wait, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(event core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[event.File]; ok {
		timer.Stop()
	}
	d.timers[event.File] = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		delete(d.timers, event.File)
		d.mu.Unlock()
		fire(event)
	})
}
