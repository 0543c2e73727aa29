package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/input/key"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Bindings.ToggleRecord != "F12" {
		t.Errorf("ToggleRecord = %q, want F12", cfg.Bindings.ToggleRecord)
	}
	if cfg.Loop.TickRate != 60 {
		t.Errorf("TickRate = %d, want 60", cfg.Loop.TickRate)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load(missing) = %v, want ErrFileNotFound", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "autoplay.toml", `
[bindings]
toggle_record = "r"
toggle_play = "p"

[session]
dir = "/tmp/sessions"
auto_save = false
catch_up = "drain"

[loop]
tick_rate = 30
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.Dir != "/tmp/sessions" {
		t.Errorf("Session.Dir = %q", cfg.Session.Dir)
	}
	if cfg.Session.AutoSave {
		t.Error("Session.AutoSave = true, want false")
	}
	if cfg.Loop.TickRate != 30 {
		t.Errorf("TickRate = %d, want 30", cfg.Loop.TickRate)
	}
	// Untouched settings keep their defaults.
	if cfg.Bindings.Pause != "F10" {
		t.Errorf("Pause = %q, want F10", cfg.Bindings.Pause)
	}
	if cfg.Loop.Speed != 1.0 {
		t.Errorf("Speed = %v, want 1", cfg.Loop.Speed)
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error = %v", err)
	}
	if opts.ToggleRecord != key.KeyR || opts.TogglePlay != key.KeyP {
		t.Errorf("bindings = %v/%v, want R/P", opts.ToggleRecord, opts.TogglePlay)
	}
	if opts.CatchUp != autoplay.CatchUpDrain {
		t.Errorf("CatchUp = %v, want drain", opts.CatchUp)
	}
	if opts.AutoSave {
		t.Error("opts.AutoSave = true, want false")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "autoplay.yaml", `
logging:
  level: debug
  format: json
session:
  play_path: demo.gsi
loop:
  speed: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Session.PlayPath != "demo.gsi" {
		t.Errorf("PlayPath = %q", cfg.Session.PlayPath)
	}
	if cfg.Loop.Speed != 0.5 {
		t.Errorf("Speed = %v, want 0.5", cfg.Loop.Speed)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad toml", "a.toml", "[session\ndir = 1"},
		{"unknown toml key", "a.toml", "[session]\ndirectory = \"x\"\n"},
		{"bad yaml", "a.yml", "session: [\n"},
		{"unknown yaml key", "a.yaml", "session:\n  directory: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Load() = %v, want *ParseError", err)
			}
			if perr.Path == "" {
				t.Error("ParseError.Path is empty")
			}
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("AUTOPLAY_LOG_LEVEL", "warn")
	t.Setenv("AUTOPLAY_SESSION_DIR", "/var/autoplay")
	t.Setenv("AUTOPLAY_SESSION_AUTO_SAVE", "false")
	t.Setenv("AUTOPLAY_BINDINGS_TOGGLE_PLAY", "F9")
	t.Setenv("AUTOPLAY_LOOP_TICK_RATE", "120")

	path := writeFile(t, "autoplay.toml", "[logging]\nlevel = \"debug\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override file: Level = %q", cfg.Logging.Level)
	}
	if cfg.Session.Dir != "/var/autoplay" {
		t.Errorf("Session.Dir = %q", cfg.Session.Dir)
	}
	if cfg.Session.AutoSave {
		t.Error("AutoSave = true, want false")
	}
	if cfg.Bindings.TogglePlay != "F9" {
		t.Errorf("TogglePlay = %q", cfg.Bindings.TogglePlay)
	}
	if cfg.Loop.TickRate != 120 {
		t.Errorf("TickRate = %d", cfg.Loop.TickRate)
	}
}

func TestEnvVars(t *testing.T) {
	names, err := EnvVars()
	if err != nil {
		t.Fatalf("EnvVars() error = %v", err)
	}
	for _, want := range []string{"AUTOPLAY_LOG_LEVEL", "AUTOPLAY_SESSION_CATCH_UP", "AUTOPLAY_METRICS_ADDR"} {
		if !slices.Contains(names, want) {
			t.Errorf("EnvVars() missing %s", want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		setting string
		problem Problem
	}{
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level", ProblemChoice},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format", ProblemChoice},
		{"unknown key", func(c *Config) { c.Bindings.ToggleRecord = "Hyper" }, "bindings.toggle_record", ProblemChoice},
		{"same toggles", func(c *Config) { c.Bindings.TogglePlay = "F12" }, "bindings.toggle_play", ProblemConflict},
		{"pause clash", func(c *Config) { c.Bindings.Pause = "F11" }, "bindings.pause", ProblemConflict},
		{"catch up", func(c *Config) { c.Session.CatchUp = "some" }, "session.catch_up", ProblemChoice},
		{"session dir", func(c *Config) { c.Session.Dir = "" }, "session.dir", ProblemMissing},
		{"tick rate", func(c *Config) { c.Loop.TickRate = 0 }, "loop.tick_rate", ProblemRange},
		{"speed", func(c *Config) { c.Loop.Speed = -1 }, "loop.speed", ProblemRange},
		{"hold ticks", func(c *Config) { c.Loop.HoldTicks = 0 }, "loop.hold_ticks", ProblemRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Setting != tt.setting {
				t.Errorf("Setting = %q, want %q", verr.Setting, tt.setting)
			}
			if verr.Problem != tt.problem {
				t.Errorf("Problem = %v, want %v", verr.Problem, tt.problem)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Loop.TickRate = 5000
	cfg.Loop.HoldTicks = 0

	got := ValidationErrors(cfg.Validate())
	var settings []string
	for _, v := range got {
		settings = append(settings, v.Setting)
	}
	want := []string{"logging.format", "loop.tick_rate", "loop.hold_ticks"}
	if !slices.Equal(settings, want) {
		t.Errorf("ValidationErrors() settings = %v, want %v", settings, want)
	}
	if msg := got[1].Error(); msg != "loop.tick_rate = 5000: must be between 1 and 1000" {
		t.Errorf("Error() = %q", msg)
	}
	if ValidationErrors(nil) != nil {
		t.Error("ValidationErrors(nil) should be nil")
	}
}

func TestProblemString(t *testing.T) {
	if got := ProblemConflict.String(); got != "conflict" {
		t.Errorf("String() = %q", got)
	}
	if got := Problem(0).String(); got != "problem(0)" {
		t.Errorf("String() = %q", got)
	}
}

func TestValidate_DisabledBindings(t *testing.T) {
	cfg := Default()
	cfg.Bindings = BindingsConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	b, err := cfg.Bindings.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if b != (Bindings{}) {
		t.Errorf("Resolve() = %+v, want all KeyNone", b)
	}
}

func TestLoopInterval(t *testing.T) {
	if got := (LoopConfig{TickRate: 50}).Interval(); got != 20*time.Millisecond {
		t.Errorf("Interval() = %v, want 20ms", got)
	}
	if got := (LoopConfig{}).Interval(); got != time.Second/60 {
		t.Errorf("Interval() = %v, want 1/60s", got)
	}
}

func TestWatch_Reloads(t *testing.T) {
	path := writeFile(t, "autoplay.toml", "[loop]\ntick_rate = 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 4)
	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err != nil {
				errs <- err
				return
			}
			reloads <- cfg
		})
	}()

	// The watcher may not be registered yet, so the write is repeated. Each
	// retry waits longer than the 100ms debounce so the change can settle.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(400 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, []byte("[loop]\ntick_rate = 90\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case cfg := <-reloads:
			if cfg.Loop.TickRate != 90 {
				t.Errorf("reloaded TickRate = %d, want 90", cfg.Loop.TickRate)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() = %v", err)
			}
			return
		case err := <-errs:
			t.Fatalf("reload error = %v", err)
		case <-deadline:
			t.Fatal("no reload observed")
		case <-tick.C:
		}
	}
}
