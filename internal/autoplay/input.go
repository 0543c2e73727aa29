package autoplay

import "github.com/dshills/autoplay/internal/input/key"

// Snapshot exposes the keys that changed during the current tick and
// whether a key is held at the end of it.
type Snapshot interface {
	JustPressed() []key.Key
	JustReleased() []key.Key
	Pressed(k key.Key) bool
}

// Sink receives synthesized key transitions during playback.
type Sink interface {
	Press(k key.Key)
	Release(k key.Key)
}

// Input is the host's live input state as seen by the Engine. *key.State
// implements it.
type Input interface {
	Snapshot
	Sink

	// ConsumePressed hides a just-pressed key from the rest of the tick.
	ConsumePressed(k key.Key) bool
	// ConsumeReleased hides a just-released key from the rest of the tick.
	ConsumeReleased(k key.Key) bool
}

var _ Input = (*key.State)(nil)
