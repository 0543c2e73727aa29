// Package autoplaytest drives recorded sessions against a condition so that
// a session file can serve as an end-to-end test script.
package autoplaytest

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/clock"
	"github.com/dshills/autoplay/internal/input/key"
)

// DefaultTick is the tick length used when Options.Tick is zero.
const DefaultTick = time.Second / 60

// ErrPlaybackStopped is returned when the session ran out before the
// condition held.
var ErrPlaybackStopped = errors.New("playback stopped before the condition held")

// ErrTickBudget is returned when MaxTicks elapsed before the condition held.
var ErrTickBudget = errors.New("tick budget exhausted")

// Condition inspects the input state after each tick.
type Condition func(input *key.State) bool

// Options configures a run.
type Options struct {
	// Until is checked after every tick. Required.
	Until Condition

	// Tick is the simulated time between ticks.
	Tick time.Duration

	// MaxTicks bounds the run. Zero means no bound beyond the session end.
	MaxTicks int

	// CatchUp is the playback catch-up policy.
	CatchUp autoplay.CatchUp

	// Observe, when set, is called after every tick with the input state.
	// Hosts use it to run their own per-tick systems.
	Observe func(tick int, input *key.State)

	Logger *zerolog.Logger
}

// Result describes a finished run.
type Result struct {
	Ticks   int
	Elapsed time.Duration
	Applied int
}

// Run plays the session file at path until opts.Until holds. It returns
// ErrPlaybackStopped or ErrTickBudget when the condition never held, and the
// load error when the file cannot be read.
func Run(path string, opts Options) (Result, error) {
	if opts.Until == nil {
		return Result{}, errors.New("autoplaytest: Until is required")
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	clk := clock.NewManual(0)
	input := key.NewState()

	engineOpts := autoplay.DefaultOptions()
	engineOpts.ToggleRecord = key.KeyNone
	engineOpts.TogglePlay = key.KeyNone
	engineOpts.AutoSave = false
	engineOpts.CatchUp = opts.CatchUp
	engine := autoplay.New(engineOpts, clk, logger)

	total := 0
	engine.LoadAndPlay(path)
	if err := engine.Tick(input); err != nil {
		return Result{}, err
	}
	total += len(input.JustPressed()) + len(input.JustReleased())

	res := Result{Ticks: 1}
	for {
		if opts.Observe != nil {
			opts.Observe(res.Ticks, input)
		}
		if opts.Until(input) {
			res.Elapsed = clk.Elapsed()
			res.Applied = total
			return res, nil
		}
		if engine.State() != autoplay.Playing {
			res.Elapsed = clk.Elapsed()
			res.Applied = total
			return res, ErrPlaybackStopped
		}
		if opts.MaxTicks > 0 && res.Ticks >= opts.MaxTicks {
			res.Elapsed = clk.Elapsed()
			res.Applied = total
			return res, ErrTickBudget
		}

		input.EndTick()
		clk.Advance(opts.Tick)
		if err := engine.Tick(input); err != nil {
			return res, err
		}
		total += len(input.JustPressed()) + len(input.JustReleased())
		res.Ticks++
	}
}

// Play is Run for tests: it fails t unless the condition held.
func Play(t testing.TB, path string, opts Options) Result {
	t.Helper()
	res, err := Run(path, opts)
	if err != nil {
		t.Fatalf("autoplaytest: %s after %d ticks (%v): %v", path, res.Ticks, res.Elapsed, err)
	}
	return res
}

// Record builds a session file from a list of timed transitions, for tests
// that need a fixture on disk.
func Record(t testing.TB, path string, entries ...autoplay.Entry) {
	t.Helper()
	if err := autoplay.NewSession(entries...).Save(path); err != nil {
		t.Fatalf("autoplaytest: write fixture: %v", err)
	}
}
