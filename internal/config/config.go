package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/config/loader"
	"github.com/dshills/autoplay/internal/input/key"
)

// Config is the complete autoplay configuration.
type Config struct {
	Logging  LoggingConfig  `toml:"logging" yaml:"logging" envPrefix:"LOG_"`
	Bindings BindingsConfig `toml:"bindings" yaml:"bindings" envPrefix:"BINDINGS_"`
	Session  SessionConfig  `toml:"session" yaml:"session" envPrefix:"SESSION_"`
	Loop     LoopConfig     `toml:"loop" yaml:"loop" envPrefix:"LOOP_"`
	Metrics  MetricsConfig  `toml:"metrics" yaml:"metrics" envPrefix:"METRICS_"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level" env:"LEVEL"`

	// Format is json or text.
	Format string `toml:"format" yaml:"format" env:"FORMAT"`

	// File is an optional log file. Empty logs to stderr.
	File string `toml:"file" yaml:"file" env:"FILE"`
}

// BindingsConfig names the control keys. An empty name disables the binding.
type BindingsConfig struct {
	ToggleRecord string `toml:"toggle_record" yaml:"toggle_record" env:"TOGGLE_RECORD"`
	TogglePlay   string `toml:"toggle_play" yaml:"toggle_play" env:"TOGGLE_PLAY"`
	Pause        string `toml:"pause" yaml:"pause" env:"PAUSE"`
}

// SessionConfig controls session files and playback.
type SessionConfig struct {
	// Dir receives auto-saved sessions.
	Dir string `toml:"dir" yaml:"dir" env:"DIR"`

	// PlayPath is loaded when playback is toggled on.
	PlayPath string `toml:"play_path" yaml:"play_path" env:"PLAY_PATH"`

	// AutoSave writes a session file whenever recording stops.
	AutoSave bool `toml:"auto_save" yaml:"auto_save" env:"AUTO_SAVE"`

	// CatchUp is "one" or "drain".
	CatchUp string `toml:"catch_up" yaml:"catch_up" env:"CATCH_UP"`
}

// LoopConfig controls the host tick loop.
type LoopConfig struct {
	// TickRate is the number of ticks per second.
	TickRate int `toml:"tick_rate" yaml:"tick_rate" env:"TICK_RATE"`

	// Speed scales virtual time. 1 is real time.
	Speed float64 `toml:"speed" yaml:"speed" env:"SPEED"`

	// HoldTicks is how long the terminal host holds a key before it
	// synthesizes the release. Terminals only report presses.
	HoldTicks int `toml:"hold_ticks" yaml:"hold_ticks" env:"HOLD_TICKS"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables it.
	Addr string `toml:"addr" yaml:"addr" env:"ADDR"`
}

// Bindings are the resolved control keys.
type Bindings struct {
	ToggleRecord key.Key
	TogglePlay   key.Key
	Pause        key.Key
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Bindings: BindingsConfig{
			ToggleRecord: "F12",
			TogglePlay:   "F11",
			Pause:        "F10",
		},
		Session: SessionConfig{
			Dir:      "sessions",
			AutoSave: true,
			CatchUp:  "one",
		},
		Loop: LoopConfig{
			TickRate:  60,
			Speed:     1.0,
			HoldTicks: 1,
		},
	}
}

// Load builds a configuration from the defaults, the file at path (skipped
// when path is empty) and AUTOPLAY_* environment variables, then validates
// it.
func Load(path string) (*Config, error) {
	return LoadWith(nil, path)
}

// LoadWith is Load reading the file through read.
func LoadWith(read loader.ReadFunc, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loader.LoadFile(read, path, cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, err
		}
	}

	if err := loader.LoadEnv(loader.EnvPrefix, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvVars lists the environment variables Load reads.
func EnvVars() ([]string, error) {
	return loader.EnvNames(loader.EnvPrefix, Default())
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	add := func(setting string, value any, problem Problem, reason string) {
		errs = append(errs, &ValidationError{Setting: setting, Value: value, Reason: reason, Problem: problem})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level", c.Logging.Level, ProblemChoice, "must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		add("logging.format", c.Logging.Format, ProblemChoice, "must be json or text")
	}

	for _, b := range []struct{ setting, name string }{
		{"bindings.toggle_record", c.Bindings.ToggleRecord},
		{"bindings.toggle_play", c.Bindings.TogglePlay},
		{"bindings.pause", c.Bindings.Pause},
	} {
		if _, err := parseBinding(b.name); err != nil {
			add(b.setting, b.name, ProblemChoice, "unknown key")
		}
	}
	if b, err := c.Bindings.Resolve(); err == nil {
		if b.ToggleRecord != key.KeyNone && b.ToggleRecord == b.TogglePlay {
			add("bindings.toggle_play", c.Bindings.TogglePlay, ProblemConflict, "must differ from toggle_record")
		}
		if b.Pause != key.KeyNone && (b.Pause == b.ToggleRecord || b.Pause == b.TogglePlay) {
			add("bindings.pause", c.Bindings.Pause, ProblemConflict, "must differ from the toggle keys")
		}
	}

	if _, err := autoplay.ParseCatchUp(c.Session.CatchUp); err != nil {
		add("session.catch_up", c.Session.CatchUp, ProblemChoice, "must be one or drain")
	}
	if c.Session.AutoSave && c.Session.Dir == "" {
		add("session.dir", c.Session.Dir, ProblemMissing, "required when auto_save is on")
	}

	if c.Loop.TickRate < 1 || c.Loop.TickRate > 1000 {
		add("loop.tick_rate", c.Loop.TickRate, ProblemRange, "must be between 1 and 1000")
	}
	if c.Loop.Speed <= 0 {
		add("loop.speed", c.Loop.Speed, ProblemRange, "must be positive")
	}
	if c.Loop.HoldTicks < 1 {
		add("loop.hold_ticks", c.Loop.HoldTicks, ProblemRange, "must be at least 1")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, errors.Join(errs...))
}

// Resolve parses the binding names.
func (b BindingsConfig) Resolve() (Bindings, error) {
	var out Bindings
	var err error
	if out.ToggleRecord, err = parseBinding(b.ToggleRecord); err != nil {
		return Bindings{}, fmt.Errorf("toggle_record: %w", err)
	}
	if out.TogglePlay, err = parseBinding(b.TogglePlay); err != nil {
		return Bindings{}, fmt.Errorf("toggle_play: %w", err)
	}
	if out.Pause, err = parseBinding(b.Pause); err != nil {
		return Bindings{}, fmt.Errorf("pause: %w", err)
	}
	return out, nil
}

func parseBinding(name string) (key.Key, error) {
	if strings.TrimSpace(name) == "" {
		return key.KeyNone, nil
	}
	return key.Parse(name)
}

// Interval returns the time between ticks.
func (l LoopConfig) Interval() time.Duration {
	if l.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(l.TickRate)
}

// EngineOptions converts the configuration to engine options. Metrics are
// left for the caller to attach.
func (c *Config) EngineOptions() (autoplay.Options, error) {
	b, err := c.Bindings.Resolve()
	if err != nil {
		return autoplay.Options{}, err
	}
	catchUp, err := autoplay.ParseCatchUp(c.Session.CatchUp)
	if err != nil {
		return autoplay.Options{}, err
	}

	opts := autoplay.DefaultOptions()
	opts.ToggleRecord = b.ToggleRecord
	opts.TogglePlay = b.TogglePlay
	opts.PlayPath = c.Session.PlayPath
	opts.SessionDir = c.Session.Dir
	opts.AutoSave = c.Session.AutoSave
	opts.CatchUp = catchUp
	return opts, nil
}
