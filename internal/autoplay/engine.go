package autoplay

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/autoplay/internal/clock"
	"github.com/dshills/autoplay/internal/input/key"
)

// Options configures an Engine.
type Options struct {
	// ToggleRecord is the key that toggles recording. KeyNone disables it.
	ToggleRecord key.Key

	// TogglePlay is the key that toggles playback. KeyNone disables it.
	TogglePlay key.Key

	// PlayPath is loaded when playback is toggled on from Stopped. When
	// empty, the last saved or loaded file is used, and failing that the
	// in-memory session.
	PlayPath string

	// SessionDir is where auto-saved sessions are written.
	SessionDir string

	// AutoSave writes the session to SessionDir when recording stops.
	AutoSave bool

	// CatchUp is the playback catch-up policy.
	CatchUp CatchUp

	// Metrics is optional.
	Metrics *Metrics

	// Now is the wall clock used for auto-save file names. Defaults to
	// time.Now.
	Now func() time.Time
}

// DefaultOptions returns F12 to record, F11 to play, auto-save into
// "sessions" and one entry per tick.
func DefaultOptions() Options {
	return Options{
		ToggleRecord: key.KeyF12,
		TogglePlay:   key.KeyF11,
		SessionDir:   "sessions",
		AutoSave:     true,
		CatchUp:      CatchUpOnePerTick,
	}
}

// CommandKind identifies a queued file command.
type CommandKind uint8

const (
	// CommandSave writes the current session to a file.
	CommandSave CommandKind = iota
	// CommandLoad replaces the current session with a file.
	CommandLoad
	// CommandLoadAndPlay loads a file and starts playback.
	CommandLoadAndPlay
)

// String returns the command name.
func (k CommandKind) String() string {
	switch k {
	case CommandSave:
		return "save"
	case CommandLoad:
		return "load"
	case CommandLoadAndPlay:
		return "load-and-play"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
}

// Command is a file operation processed at the start of the next tick.
type Command struct {
	Kind CommandKind
	Path string
}

// SavedCallback is called after the session was written to path.
type SavedCallback func(path string)

// Engine drives recording and playback from a host's per-tick loop.
//
// All methods must be called from the tick goroutine.
type Engine struct {
	opts    Options
	clock   clock.Clock
	logger  zerolog.Logger
	metrics *Metrics

	ctx        *Context
	recorder   *Recorder
	player     *Player
	controller *Controller

	pending []Command

	// now is the engine time of the operation in progress.
	now time.Duration

	// exitErr holds a failed auto-save until the caller collects it.
	exitErr error

	// source is the last file saved or loaded.
	source    string
	lastSaved string
	saved     []SavedCallback
}

// New creates an engine in the Stopped state with an empty session.
func New(opts Options, clk clock.Clock, logger zerolog.Logger) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger = logger.With().Str("component", "autoplay").Logger()

	e := &Engine{
		opts:       opts,
		clock:      clk,
		logger:     logger,
		metrics:    opts.Metrics,
		ctx:        NewContext(),
		recorder:   NewRecorder(logger.With().Str("system", "recorder").Logger(), opts.Metrics),
		player:     NewPlayer(opts.CatchUp, logger.With().Str("system", "player").Logger(), opts.Metrics),
		controller: NewController(),
	}

	e.controller.Handle(Recording, Hooks{
		Enter: func(State) { e.recorder.Enter(e.ctx, e.now) },
		Exit: func(State) {
			e.recorder.Exit(e.ctx)
			if !e.opts.AutoSave {
				return
			}
			if _, err := e.autoSave(); err != nil {
				e.exitErr = errors.Join(e.exitErr, err)
			}
		},
	})
	e.controller.Handle(Playing, Hooks{
		Enter: func(State) { e.player.Enter(e.ctx, e.now) },
		Exit:  func(State) { e.player.Exit(e.ctx) },
	})
	e.controller.OnChange(func(from, to State) {
		e.metrics.state(to)
		e.logger.Debug().Stringer("from", from).Stringer("to", to).Msg("State changed")
	})

	return e
}

// State returns the current engine state.
func (e *Engine) State() State {
	return e.controller.State()
}

// Session returns the live session. Callers must not modify it while the
// engine is Recording or Playing.
func (e *Engine) Session() *Session {
	return e.ctx.Session
}

// StartTime returns the engine time at which the current run began.
func (e *Engine) StartTime() time.Duration {
	return e.ctx.StartTime
}

// LastSaved returns the path of the most recent successful save.
func (e *Engine) LastSaved() string {
	return e.lastSaved
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// SetBindings replaces the toggle keys.
func (e *Engine) SetBindings(record, play key.Key) {
	e.opts.ToggleRecord = record
	e.opts.TogglePlay = play
}

// SetCatchUp replaces the playback catch-up policy.
func (e *Engine) SetCatchUp(c CatchUp) {
	e.opts.CatchUp = c
	e.player.SetCatchUp(c)
}

// SetPlayPath replaces the file loaded when playback is toggled on.
func (e *Engine) SetPlayPath(path string) {
	e.opts.PlayPath = path
}

// OnChange registers a callback for state changes.
// Returns a function to unregister the callback.
func (e *Engine) OnChange(cb ChangeCallback) func() {
	return e.controller.OnChange(cb)
}

// OnSaved registers a callback for successful saves.
// Returns a function to unregister the callback.
func (e *Engine) OnSaved(cb SavedCallback) func() {
	e.saved = append(e.saved, cb)
	index := len(e.saved) - 1
	return func() {
		if index < len(e.saved) {
			e.saved[index] = nil
		}
	}
}

// Save queues a save of the current session to path.
func (e *Engine) Save(path string) {
	e.pending = append(e.pending, Command{Kind: CommandSave, Path: path})
}

// Load queues a load of path into the session.
func (e *Engine) Load(path string) {
	e.pending = append(e.pending, Command{Kind: CommandLoad, Path: path})
}

// LoadAndPlay queues a load of path followed by playback.
func (e *Engine) LoadAndPlay(path string) {
	e.pending = append(e.pending, Command{Kind: CommandLoadAndPlay, Path: path})
}

// Pending returns the number of queued commands.
func (e *Engine) Pending() int {
	return len(e.pending)
}

// ToggleRecord applies the record toggle immediately. The error reports a
// failed auto-save when recording stops.
func (e *Engine) ToggleRecord() (State, error) {
	e.now = e.clock.Elapsed()
	state := e.controller.ToggleRecord()
	return state, e.takeExitErr()
}

// TogglePlay applies the play toggle immediately. When playback starts from
// Stopped the play source is loaded first; if that fails the engine stays
// Stopped and the error is returned.
func (e *Engine) TogglePlay() error {
	e.now = e.clock.Elapsed()
	err := e.togglePlay()
	return errors.Join(err, e.takeExitErr())
}

// Stop moves to Stopped. The error reports a failed auto-save when a
// recording ends.
func (e *Engine) Stop() error {
	e.now = e.clock.Elapsed()
	e.controller.Set(Stopped)
	return e.takeExitErr()
}

// Tick runs one engine step against the host input: toggle keys, queued
// commands, then the Recorder or the Player. Errors come from file
// commands and auto-saves; the engine keeps running.
func (e *Engine) Tick(input Input) error {
	e.now = e.clock.Elapsed()

	var errs []error

	if e.consumeToggle(input, e.opts.ToggleRecord) {
		e.controller.ToggleRecord()
	}
	if e.consumeToggle(input, e.opts.TogglePlay) {
		if err := e.togglePlay(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := e.runCommands(); err != nil {
		errs = append(errs, err)
	}

	switch e.controller.State() {
	case Recording:
		e.recorder.Tick(e.ctx, e.now, input)
	case Playing:
		if _, done := e.player.Tick(e.ctx, e.now, input); done {
			e.controller.Finish()
		}
	}

	if err := e.takeExitErr(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) takeExitErr() error {
	err := e.exitErr
	e.exitErr = nil
	return err
}

// consumeToggle hides the binding from the rest of the tick and reports
// whether it was just pressed.
func (e *Engine) consumeToggle(input Input, k key.Key) bool {
	if !k.Valid() {
		return false
	}
	input.ConsumeReleased(k)
	return input.ConsumePressed(k)
}

func (e *Engine) togglePlay() error {
	switch e.controller.State() {
	case Playing:
		e.controller.Set(Stopped)
		return nil
	case Recording:
		// The session just recorded is played back as is.
		e.controller.Set(Playing)
		return nil
	}

	if path := e.playSource(); path != "" {
		if err := e.loadFile(path); err != nil {
			return err
		}
	}
	e.controller.Set(Playing)
	return nil
}

func (e *Engine) playSource() string {
	if e.opts.PlayPath != "" {
		return e.opts.PlayPath
	}
	return e.source
}

func (e *Engine) runCommands() error {
	if len(e.pending) == 0 {
		return nil
	}
	cmds := e.pending
	e.pending = nil

	var errs []error
	for _, cmd := range cmds {
		if err := e.runCommand(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runCommand applies one queued file command. A load ends any active run
// first, so a recording is finished and auto-saved before the session is
// replaced and a playback never continues into a different session.
func (e *Engine) runCommand(cmd Command) error {
	switch cmd.Kind {
	case CommandSave:
		return e.saveFile(cmd.Path)
	case CommandLoad:
		e.controller.Set(Stopped)
		return e.loadFile(cmd.Path)
	case CommandLoadAndPlay:
		e.controller.Set(Stopped)
		if err := e.loadFile(cmd.Path); err != nil {
			return err
		}
		e.controller.Set(Playing)
		return nil
	default:
		return fmt.Errorf("unknown command %v", cmd.Kind)
	}
}

func (e *Engine) saveFile(path string) error {
	if err := e.ctx.Session.Save(path); err != nil {
		e.metrics.fileError("save", err)
		e.logger.Error().Err(err).Str("path", path).Msg("Failed to save session")
		return err
	}

	e.metrics.saved()
	e.source = path
	e.lastSaved = path
	e.logger.Info().
		Str("path", path).
		Int("entries", e.ctx.Session.Len()).
		Msg("Saved session")

	for _, cb := range e.saved {
		if cb != nil {
			cb(path)
		}
	}
	return nil
}

func (e *Engine) loadFile(path string) error {
	if err := e.ctx.Session.Load(path); err != nil {
		e.metrics.fileError("load", err)
		e.logger.Error().Err(err).Str("path", path).Msg("Failed to load session")
		return err
	}

	e.metrics.loaded()
	e.source = path
	e.logger.Info().
		Str("path", path).
		Int("entries", e.ctx.Session.Len()).
		Dur("duration", e.ctx.Session.Duration()).
		Msg("Loaded session")
	return nil
}

// autoSave writes a non-empty session to a fresh file under SessionDir.
func (e *Engine) autoSave() (string, error) {
	if e.ctx.Session.IsEmpty() {
		e.logger.Debug().Msg("Nothing recorded, skipping auto-save")
		return "", nil
	}
	name := fmt.Sprintf("%d-%s%s", e.opts.Now().UnixMilli(), uuid.NewString(), FileExtension)
	path := filepath.Join(e.opts.SessionDir, name)
	if err := e.saveFile(path); err != nil {
		return "", err
	}
	return path, nil
}
