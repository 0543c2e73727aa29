package key

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKey is returned when a key name or code does not map to a Key.
var ErrUnknownKey = errors.New("unknown key")

// Action is the direction of a key signal.
type Action uint8

const (
	// Down is a key press.
	Down Action = iota
	// Up is a key release.
	Up
)

// String returns "down" or "up".
func (a Action) String() string {
	switch a {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Event represents a single raw key signal from the host.
type Event struct {
	// Key identifies the key.
	Key Key

	// Action is Down for a press and Up for a release.
	Action Action

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(k Key, action Action) Event {
	return Event{
		Key:       k,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// PressEvent creates a press event for k.
func PressEvent(k Key) Event {
	return NewEvent(k, Down)
}

// ReleaseEvent creates a release event for k.
func ReleaseEvent(k Key) Event {
	return NewEvent(k, Up)
}

// IsDown returns true for press events.
func (e Event) IsDown() bool {
	return e.Action == Down
}

// Equals returns true if two events carry the same key and action.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key && e.Action == other.Action
}

// String returns a compact form such as "A down".
func (e Event) String() string {
	return e.Key.String() + " " + e.Action.String()
}
