// Package app wires the configuration, logger, metrics, virtual clock,
// autoplay engine and terminal host together and runs the tick loop.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/clock"
	"github.com/dshills/autoplay/internal/config"
	"github.com/dshills/autoplay/internal/host/terminal"
	"github.com/dshills/autoplay/internal/input/key"
)

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Required.
	Config *config.Config

	// ConfigPath is watched for changes when set.
	ConfigPath string

	// Logger receives all log output.
	Logger zerolog.Logger

	// Screen is the terminal. Nil creates the platform screen.
	Screen tcell.Screen

	// Registerer receives the metrics. Optional.
	Registerer prometheus.Registerer

	// PlayFile is loaded and played on the first tick.
	PlayFile string

	// ExitWhenStopped ends Run once playback has started and stopped again.
	ExitWhenStopped bool

	// Now replaces the wall clock behind the virtual clock.
	Now func() time.Time
}

// Application runs the engine against the terminal host.
//
// Everything except Run's helper goroutines happens on the goroutine that
// called Run.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger zerolog.Logger

	clock   *clock.Virtual
	engine  *autoplay.Engine
	host    *terminal.Host
	metrics *Metrics

	pauseKey key.Key
	interval time.Duration
	ticker   *time.Ticker
	reloads  chan *config.Config

	message string
	played  bool
	running atomic.Bool
}

// New builds the application. The screen is not touched until Run.
func New(opts Options) (*Application, error) {
	if opts.Config == nil {
		return nil, ErrNoConfig
	}
	cfg := opts.Config

	metrics, err := NewMetrics(opts.Registerer)
	if err != nil {
		return nil, &InitError{Component: "metrics", Err: err}
	}

	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return nil, &InitError{Component: "engine", Err: err}
	}
	engineOpts.Metrics = metrics.Engine

	bindings, err := cfg.Bindings.Resolve()
	if err != nil {
		return nil, &InitError{Component: "bindings", Err: err}
	}

	screen := opts.Screen
	if screen == nil {
		if screen, err = terminal.NewScreen(); err != nil {
			return nil, &InitError{Component: "screen", Err: err}
		}
	}

	clockOpts := []clock.VirtualOption{clock.WithSpeed(cfg.Loop.Speed)}
	if opts.Now != nil {
		clockOpts = append(clockOpts, clock.WithSource(opts.Now))
	}
	clk := clock.NewVirtual(clockOpts...)

	a := &Application{
		opts:     opts,
		cfg:      cfg,
		logger:   WithComponent(opts.Logger, "app"),
		clock:    clk,
		engine:   autoplay.New(engineOpts, clk, opts.Logger),
		host:     terminal.New(screen, terminal.Options{HoldTicks: cfg.Loop.HoldTicks}),
		metrics:  metrics,
		pauseKey: bindings.Pause,
		interval: cfg.Loop.Interval(),
		reloads:  make(chan *config.Config, 1),
	}

	a.engine.OnSaved(func(path string) {
		a.message = "saved " + path
	})
	a.engine.OnChange(func(from, to autoplay.State) {
		if to == autoplay.Playing {
			a.played = true
		}
		if from == autoplay.Playing && to == autoplay.Stopped {
			// Keys pressed by an interrupted playback would otherwise stay down.
			a.host.ReleaseAll()
		}
	})

	if opts.PlayFile != "" {
		a.engine.LoadAndPlay(opts.PlayFile)
	}
	return a, nil
}

// Engine returns the autoplay engine.
func (a *Application) Engine() *autoplay.Engine {
	return a.engine
}

// Clock returns the virtual clock.
func (a *Application) Clock() *clock.Virtual {
	return a.clock
}

// Run initializes the screen and ticks until ctx is cancelled, the quit key
// is pressed, or, with ExitWhenStopped, playback ends.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if err := a.host.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer a.host.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.host.Poll(ctx)

	if a.opts.ConfigPath != "" {
		go a.watchConfig(ctx)
	}

	a.ticker = time.NewTicker(a.interval)
	defer a.ticker.Stop()

	a.logger.Info().
		Dur("interval", a.interval).
		Str("state", a.engine.State().String()).
		Msg("Starting tick loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-a.reloads:
			a.applyConfig(cfg)
		case <-a.ticker.C:
			done, err := a.step()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

// step runs one tick. It reports whether the loop should end; the error is
// set only for a failure that ends it.
func (a *Application) step() (bool, error) {
	start := time.Now()
	defer func() { a.metrics.observeTick(time.Since(start)) }()

	input := a.host.BeginTick()
	defer a.host.EndTick()

	if a.pauseKey.Valid() {
		input.ConsumeReleased(a.pauseKey)
		if input.ConsumePressed(a.pauseKey) {
			paused := a.clock.Toggle()
			a.logger.Debug().Bool("paused", paused).Msg("Virtual clock toggled")
		}
	}

	if err := a.engine.Tick(input); err != nil {
		a.logger.Error().Err(err).Msg("Engine command failed")
		a.message = err.Error()
		if a.opts.ExitWhenStopped && !a.played {
			return true, err
		}
	}

	a.host.Draw(a.status())

	if a.host.Quit() {
		a.logger.Info().Msg("Quit requested")
		return true, nil
	}
	if a.opts.ExitWhenStopped && a.played && a.engine.State() == autoplay.Stopped {
		return true, nil
	}
	return false, nil
}

func (a *Application) status() terminal.Status {
	elapsed := a.clock.Elapsed()
	if a.engine.State() != autoplay.Stopped {
		elapsed -= a.engine.StartTime()
	}
	return terminal.Status{
		State:   a.engine.State(),
		Entries: a.engine.Session().Len(),
		Elapsed: elapsed,
		Paused:  a.clock.Paused(),
		Message: a.message,
		Help:    a.help(),
	}
}

func (a *Application) help() string {
	opts := a.engine.Options()
	var parts []string
	add := func(k key.Key, what string) {
		if k.Valid() {
			parts = append(parts, fmt.Sprintf("%s %s", k, what))
		}
	}
	add(opts.ToggleRecord, "record")
	add(opts.TogglePlay, "play")
	add(a.pauseKey, "pause")
	parts = append(parts, "^C quit")
	return strings.Join(parts, "  ")
}

func (a *Application) watchConfig(ctx context.Context) {
	err := config.Watch(ctx, a.opts.ConfigPath, func(cfg *config.Config, err error) {
		a.metrics.reload(err)
		if err != nil {
			problems := config.ValidationErrors(err)
			if len(problems) == 0 {
				a.logger.Warn().Err(err).Str("path", a.opts.ConfigPath).Msg("Config reload failed")
			}
			for _, p := range problems {
				a.logger.Warn().
					Str("path", a.opts.ConfigPath).
					Str("setting", p.Setting).
					Stringer("problem", p.Problem).
					Interface("value", p.Value).
					Msg(p.Reason)
			}
			return
		}
		// Keep only the newest pending configuration.
		select {
		case <-a.reloads:
		default:
		}
		select {
		case a.reloads <- cfg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		a.logger.Error().Err(err).Str("path", a.opts.ConfigPath).Msg("Config watcher stopped")
	}
}

// applyConfig takes over the settings that can change while running.
// Logging, session directory and auto-save need a restart.
func (a *Application) applyConfig(cfg *config.Config) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Ignoring reloaded config")
		return
	}
	bindings, err := cfg.Bindings.Resolve()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Ignoring reloaded config")
		return
	}

	a.engine.SetBindings(opts.ToggleRecord, opts.TogglePlay)
	a.engine.SetCatchUp(opts.CatchUp)
	a.engine.SetPlayPath(opts.PlayPath)
	a.pauseKey = bindings.Pause
	a.clock.SetRelativeSpeed(cfg.Loop.Speed)
	a.host.SetHoldTicks(cfg.Loop.HoldTicks)

	if interval := cfg.Loop.Interval(); interval != a.interval {
		a.interval = interval
		if a.ticker != nil {
			a.ticker.Reset(interval)
		}
	}

	a.cfg = cfg
	a.message = "config reloaded"
	a.logger.Info().
		Stringer("toggle_record", opts.ToggleRecord).
		Stringer("toggle_play", opts.TogglePlay).
		Stringer("catch_up", opts.CatchUp).
		Float64("speed", cfg.Loop.Speed).
		Msg("Config reloaded")
}
