// Package terminal is a reference host for the autoplay engine built on a
// tcell screen.
//
// Terminals report key presses only, so the host synthesizes the release of
// every key after it has been held for a configurable number of ticks. A
// repeated press while the key is still held extends the hold.
package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/autoplay/internal/input/key"
)

// DefaultEventBuffer is the capacity of the event channel between the poll
// goroutine and the tick goroutine.
const DefaultEventBuffer = 256

// Options configures a Host.
type Options struct {
	// HoldTicks is how many ticks a key stays down before its release is
	// synthesized. Values below 1 mean 1.
	HoldTicks int

	// QuitKey ends the session. Defaults to Ctrl-C.
	QuitKey tcell.Key
}

// Host adapts a tcell screen to the engine's per-tick input model.
//
// BeginTick, EndTick, Draw and the accessors must be called from the tick
// goroutine. Poll runs on its own goroutine.
type Host struct {
	screen tcell.Screen
	opts   Options

	events chan tcell.Event
	state  *key.State

	// held counts the ticks left before each terminal-pressed key is
	// released.
	held map[key.Key]int

	width, height int
	quit          bool
}

// New wraps screen. The screen is initialized by Init.
func New(screen tcell.Screen, opts Options) *Host {
	if opts.HoldTicks < 1 {
		opts.HoldTicks = 1
	}
	if opts.QuitKey == 0 {
		opts.QuitKey = tcell.KeyCtrlC
	}
	return &Host{
		screen: screen,
		opts:   opts,
		events: make(chan tcell.Event, DefaultEventBuffer),
		state:  key.NewState(),
		held:   make(map[key.Key]int),
	}
}

// NewScreen creates the platform terminal screen.
func NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

// Init initializes the screen.
func (h *Host) Init() error {
	if err := h.screen.Init(); err != nil {
		return err
	}
	h.screen.HideCursor()
	h.width, h.height = h.screen.Size()
	h.screen.Clear()
	return nil
}

// Shutdown restores the terminal.
func (h *Host) Shutdown() {
	h.screen.Fini()
}

// Input returns the live input state.
func (h *Host) Input() *key.State {
	return h.state
}

// Quit reports whether the quit key was pressed.
func (h *Host) Quit() bool {
	return h.quit
}

// Poll forwards screen events to the tick goroutine until ctx is done or
// the screen is finalized.
func (h *Host) Poll(ctx context.Context) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case h.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// BeginTick folds queued terminal events into the input state, then
// releases keys whose hold expired. A press that arrives for a key that is
// still held only extends the hold, so a key is never released and pressed
// again within one tick. It returns the state for the engine.
func (h *Host) BeginTick() *key.State {
	for drained := false; !drained; {
		select {
		case ev := <-h.events:
			h.HandleEvent(ev)
		default:
			drained = true
		}
	}

	for k, left := range h.held {
		if left <= 0 {
			delete(h.held, k)
			h.state.Release(k)
		}
	}
	return h.state
}

// EndTick ages the synthesized holds and clears the per-tick lists.
func (h *Host) EndTick() {
	for k := range h.held {
		h.held[k]--
	}
	h.state.EndTick()
}

// HandleEvent applies one terminal event immediately.
func (h *Host) HandleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if e.Key() == h.opts.QuitKey {
			h.quit = true
			return
		}
		for _, k := range convertKey(e) {
			h.press(k)
		}
	case *tcell.EventResize:
		h.width, h.height = e.Size()
		h.screen.Sync()
	}
}

func (h *Host) press(k key.Key) {
	h.held[k] = h.opts.HoldTicks
	h.state.Press(k)
}

// ReleaseAll lets go of every held key, synthesized or played back.
func (h *Host) ReleaseAll() {
	clear(h.held)
	h.state.ReleaseAll()
}

// SetHoldTicks changes the synthesized hold for later presses.
func (h *Host) SetHoldTicks(n int) {
	h.opts.HoldTicks = max(n, 1)
}
