package autoplay

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/autoplay/internal/input/key"
)

// Recorder appends an entry to the session for every tick in which at least
// one key changed. It is active only while the engine is Recording.
type Recorder struct {
	logger  zerolog.Logger
	metrics *Metrics
}

// NewRecorder creates a recorder. metrics may be nil.
func NewRecorder(logger zerolog.Logger, metrics *Metrics) *Recorder {
	return &Recorder{logger: logger, metrics: metrics}
}

// Enter clears the session and starts the run clock at now.
func (r *Recorder) Enter(ctx *Context, now time.Duration) {
	ctx.Session.Clear()
	ctx.StartTime = now
	r.logger.Info().Dur("start", now).Msg("Started recording")
}

// Tick records the keys that changed this tick. Idle ticks produce no entry.
// Presses are stored before releases. A released key that is held again at
// the end of the tick gets a trailing press, so replaying the entry leaves
// every key in the state it had when the tick ended.
func (r *Recorder) Tick(ctx *Context, now time.Duration, input Snapshot) bool {
	pressed := input.JustPressed()
	released := input.JustReleased()
	if len(pressed) == 0 && len(released) == 0 {
		return false
	}

	transitions := make([]Transition, 0, len(pressed)+2*len(released))
	for _, k := range pressed {
		transitions = append(transitions, Press(k))
	}
	var repressed []key.Key
	for _, k := range released {
		transitions = append(transitions, Release(k))
		if input.Pressed(k) {
			repressed = append(repressed, k)
		}
	}
	for _, k := range repressed {
		transitions = append(transitions, Press(k))
	}

	entry := NewEntry(ctx.Since(now), transitions...)
	ctx.Session.PushBack(entry)
	r.metrics.entryRecorded(len(transitions))

	r.logger.Debug().
		Dur("offset", entry.Offset).
		Int("transitions", len(transitions)).
		Msg("Recorded entry")
	return true
}

// Exit marks the end of the run. The session is complete and is not touched.
func (r *Recorder) Exit(ctx *Context) {
	r.logger.Info().
		Int("entries", ctx.Session.Len()).
		Dur("duration", ctx.Session.Duration()).
		Msg("Stopped recording")
}
