package autoplay

import (
	"fmt"
	"strings"
)

// State is the engine mode. Exactly one is active at a time.
type State uint8

const (
	// Stopped runs neither the Recorder nor the Player.
	Stopped State = iota
	// Recording runs the Recorder.
	Recording
	// Playing runs the Player.
	Playing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ParseState parses a state name.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stopped":
		return Stopped, nil
	case "recording":
		return Recording, nil
	case "playing":
		return Playing, nil
	default:
		return 0, fmt.Errorf("unknown state %q", s)
	}
}

// NextOnToggleRecord returns the state reached from s by the record toggle.
func NextOnToggleRecord(s State) State {
	if s == Recording {
		return Stopped
	}
	return Recording
}

// NextOnTogglePlay returns the state reached from s by the play toggle.
// Recording moves straight to Playing.
func NextOnTogglePlay(s State) State {
	if s == Playing {
		return Stopped
	}
	return Playing
}

// Hooks are run when a state is entered or left.
type Hooks struct {
	// Enter is called after the previous state's Exit, with that state.
	Enter func(from State)
	// Exit is called before the next state's Enter, with that state.
	Exit func(to State)
}

// ChangeCallback is called after a transition completes.
type ChangeCallback func(from, to State)

// Controller is the Stopped/Recording/Playing state machine.
//
// Like the rest of the engine it is driven from the tick goroutine only.
type Controller struct {
	current   State
	hooks     map[State]Hooks
	callbacks []ChangeCallback
}

// NewController creates a controller in the Stopped state.
func NewController() *Controller {
	return &Controller{
		current: Stopped,
		hooks:   make(map[State]Hooks),
	}
}

// Handle registers the hooks for s, replacing any earlier ones.
func (c *Controller) Handle(s State, h Hooks) {
	c.hooks[s] = h
}

// State returns the current state.
func (c *Controller) State() State {
	return c.current
}

// Is reports whether the current state is s.
func (c *Controller) Is(s State) bool {
	return c.current == s
}

// Set moves to s, running the old state's Exit hook, the new state's Enter
// hook, then the change callbacks. Setting the current state is a no-op and
// returns false.
func (c *Controller) Set(s State) bool {
	if s == c.current {
		return false
	}

	from := c.current
	if h, ok := c.hooks[from]; ok && h.Exit != nil {
		h.Exit(s)
	}

	c.current = s

	if h, ok := c.hooks[s]; ok && h.Enter != nil {
		h.Enter(from)
	}

	for _, cb := range c.callbacks {
		if cb != nil {
			cb(from, s)
		}
	}
	return true
}

// ToggleRecord applies the record toggle and returns the new state.
func (c *Controller) ToggleRecord() State {
	c.Set(NextOnToggleRecord(c.current))
	return c.current
}

// TogglePlay applies the play toggle and returns the new state.
func (c *Controller) TogglePlay() State {
	c.Set(NextOnTogglePlay(c.current))
	return c.current
}

// Finish ends playback. It only has an effect while Playing.
func (c *Controller) Finish() bool {
	if c.current != Playing {
		return false
	}
	return c.Set(Stopped)
}

// OnChange registers a callback for state changes.
// Returns a function to unregister the callback.
func (c *Controller) OnChange(cb ChangeCallback) func() {
	c.callbacks = append(c.callbacks, cb)
	index := len(c.callbacks) - 1

	return func() {
		// Remove callback by setting to nil (preserves indices)
		if index < len(c.callbacks) {
			c.callbacks[index] = nil
		}
	}
}
