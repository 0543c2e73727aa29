package autoplay

import (
	"fmt"

	"github.com/dshills/autoplay/internal/input/key"
)

// Edge is the direction of a recorded key transition. The numeric values
// are the tag bytes written to session files.
type Edge uint8

const (
	// EdgePress marks a key going down.
	EdgePress Edge = 0
	// EdgeRelease marks a key going up.
	EdgeRelease Edge = 1
)

// String returns "press" or "release".
func (e Edge) String() string {
	switch e {
	case EdgePress:
		return "press"
	case EdgeRelease:
		return "release"
	default:
		return fmt.Sprintf("Edge(%d)", uint8(e))
	}
}

// Transition is one recorded press or release of a key.
type Transition struct {
	Edge Edge
	Key  key.Key
}

// Press returns the transition for k going down.
func Press(k key.Key) Transition {
	return Transition{Edge: EdgePress, Key: k}
}

// Release returns the transition for k going up.
func Release(k key.Key) Transition {
	return Transition{Edge: EdgeRelease, Key: k}
}

// String returns a form such as "Press(A)".
func (t Transition) String() string {
	switch t.Edge {
	case EdgePress:
		return "Press(" + t.Key.String() + ")"
	case EdgeRelease:
		return "Release(" + t.Key.String() + ")"
	default:
		return fmt.Sprintf("%s(%s)", t.Edge, t.Key)
	}
}

// Apply replays the transition onto sink.
func (t Transition) Apply(sink Sink) {
	switch t.Edge {
	case EdgePress:
		sink.Press(t.Key)
	case EdgeRelease:
		sink.Release(t.Key)
	}
}
