// Package watcher reports changes to individual files, settling bursts of
// filesystem events into one notification per file.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before its change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// ErrClosed is returned once the watcher has been closed.
var ErrClosed = errors.New("watcher closed")

// Op is the kind of change seen on a file.
type Op uint8

const (
	OpWrite Op = iota
	OpCreate
	OpRemove
	OpRename
)

var opNames = [...]string{"write", "create", "remove", "rename"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Event is one settled change to a watched file.
type Event struct {
	Path string // absolute
	Op   Op
	Time time.Time // last raw event in the burst
}

// Handler receives settled events on the goroutine running Run.
type Handler func(Event)

// Option customizes New.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero delivers every raw event as it
// arrives; negative values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// Watcher follows a set of files. It subscribes to their parent
// directories, so a file may be created after Watch and editors that
// replace the file by rename are still noticed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	files    map[string]bool
	dirRefs  map[string]int
	handlers []Handler
	pending  map[string]Event
	closed   bool
}

// New starts an fsnotify watcher with no files.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		files:    map[string]bool{},
		dirRefs:  map[string]int{},
		pending:  map[string]Event{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts following path. Its directory must exist.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return ErrClosed
	case w.files[abs]:
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirRefs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirRefs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch stops following path. Unknown paths are ignored.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	delete(w.pending, abs)

	dir := filepath.Dir(abs)
	if w.dirRefs[dir]--; w.dirRefs[dir] > 0 {
		return nil
	}
	delete(w.dirRefs, dir)
	if w.closed {
		return nil
	}
	return w.fsw.Remove(dir)
}

// OnChange adds a handler. A handler that panics is skipped for that event.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// WatchedFiles lists the followed files in no particular order.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Run pumps fsnotify until ctx is done, returning nil, or the watcher is
// closed, returning ErrClosed. fsnotify errors go to onError if set.
func (w *Watcher) Run(ctx context.Context, onError func(error)) error {
	var tick <-chan time.Time
	if w.debounce > 0 {
		t := time.NewTicker(w.debounce)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			ev, ok := w.filter(raw)
			switch {
			case !ok:
			case w.debounce == 0:
				w.deliver(ev)
			default:
				w.hold(ev)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			if onError != nil {
				onError(err)
			}
		case now := <-tick:
			for _, ev := range w.settled(now) {
				w.deliver(ev)
			}
		}
	}
}

// Close releases the fsnotify watcher. Further calls are no-ops.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// filter maps a raw event on a followed file to an Event.
func (w *Watcher) filter(raw fsnotify.Event) (Event, bool) {
	abs, err := filepath.Abs(raw.Name)
	if err != nil {
		return Event{}, false
	}
	w.mu.Lock()
	followed := w.files[abs]
	w.mu.Unlock()
	if !followed {
		return Event{}, false
	}

	ev := Event{Path: abs, Time: time.Now()}
	// Strongest first: a burst that ends in removal is a removal.
	for _, m := range []struct {
		bit fsnotify.Op
		op  Op
	}{
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
	} {
		if raw.Has(m.bit) {
			ev.Op = m.op
			return ev, true
		}
	}
	return Event{}, false
}

// hold merges ev into the pending burst for its file. A write never
// downgrades an earlier create, remove or rename; anything else replaces it.
func (w *Watcher) hold(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.pending[ev.Path]; ok && ev.Op == OpWrite {
		ev.Op = prev.Op
	}
	w.pending[ev.Path] = ev
}

// settled removes and returns the bursts that have been quiet for a full
// debounce period as of now.
func (w *Watcher) settled(now time.Time) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []Event
	for path, ev := range w.pending {
		if now.Sub(ev.Time) >= w.debounce {
			ready = append(ready, ev)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) deliver(ev Event) {
	w.mu.Lock()
	hs := append([]Handler(nil), w.handlers...)
	w.mu.Unlock()
	for _, h := range hs {
		invoke(h, ev)
	}
}

func invoke(h Handler, ev Event) {
	defer func() { _ = recover() }()
	h(ev)
}
