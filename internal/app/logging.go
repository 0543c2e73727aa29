package app

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/autoplay/internal/config"
)

// ParseLevel maps a configured level name to a zerolog level. Unknown names
// mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger builds the process logger. Output goes to cfg.File when set and
// to fallback otherwise. The returned close function releases the file.
func NewLogger(cfg config.LoggingConfig, fallback io.Writer) (zerolog.Logger, func() error, error) {
	out := fallback
	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, &InitError{Component: "logger", Err: err}
		}
		out = f
		closeFn = f.Close
	}
	if out == nil {
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "text") {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.File != ""}
	}

	logger := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return logger, closeFn, nil
}

// WithComponent tags a logger with the component it belongs to.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
