package autoplay

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CatchUp decides how many due entries the Player applies in one tick.
type CatchUp uint8

const (
	// CatchUpOnePerTick applies at most one entry per tick. Overdue entries
	// are applied on the following ticks, in order.
	CatchUpOnePerTick CatchUp = iota
	// CatchUpDrain applies every due entry in the same tick.
	CatchUpDrain
)

// String returns "one" or "drain".
func (c CatchUp) String() string {
	switch c {
	case CatchUpOnePerTick:
		return "one"
	case CatchUpDrain:
		return "drain"
	default:
		return fmt.Sprintf("CatchUp(%d)", uint8(c))
	}
}

// ParseCatchUp parses "one" or "drain".
func ParseCatchUp(s string) (CatchUp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "one", "one-per-tick":
		return CatchUpOnePerTick, nil
	case "drain", "all":
		return CatchUpDrain, nil
	default:
		return 0, fmt.Errorf("unknown catch-up policy %q (want one or drain)", s)
	}
}

// Player replays session entries once their offset has elapsed. It is active
// only while the engine is Playing.
type Player struct {
	catchUp CatchUp
	logger  zerolog.Logger
	metrics *Metrics
}

// NewPlayer creates a player. metrics may be nil.
func NewPlayer(catchUp CatchUp, logger zerolog.Logger, metrics *Metrics) *Player {
	return &Player{catchUp: catchUp, logger: logger, metrics: metrics}
}

// CatchUp returns the active catch-up policy.
func (p *Player) CatchUp() CatchUp {
	return p.catchUp
}

// SetCatchUp changes the catch-up policy.
func (p *Player) SetCatchUp(c CatchUp) {
	p.catchUp = c
}

// Enter starts the run clock at now. The session is left as loaded.
func (p *Player) Enter(ctx *Context, now time.Duration) {
	ctx.StartTime = now
	p.logger.Info().
		Dur("start", now).
		Int("entries", ctx.Session.Len()).
		Msg("Started playing")
}

// Tick applies due entries to sink and returns how many were applied. done
// is true when the session was already empty at the start of the tick.
func (p *Player) Tick(ctx *Context, now time.Duration, sink Sink) (applied int, done bool) {
	if ctx.Session.IsEmpty() {
		return 0, true
	}

	elapsed := ctx.Since(now)
	for {
		entry, ok := ctx.Session.Front()
		if !ok || elapsed < entry.Offset {
			return applied, false
		}

		for _, t := range entry.Transitions {
			t.Apply(sink)
		}
		ctx.Session.PopFront()
		applied++
		p.metrics.entryPlayed(len(entry.Transitions))

		p.logger.Debug().
			Dur("offset", entry.Offset).
			Dur("late", elapsed-entry.Offset).
			Int("transitions", len(entry.Transitions)).
			Msg("Applied entry")

		if p.catchUp == CatchUpOnePerTick {
			return applied, false
		}
	}
}

// Exit marks the end of playback.
func (p *Player) Exit(ctx *Context) {
	p.logger.Info().Int("remaining", ctx.Session.Len()).Msg("Stopped playing")
}
