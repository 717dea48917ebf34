// Package telemetry is the single place that knows how the streaming
// core's structured logging is wired up. Every other package uses the
// global github.com/rs/zerolog/log logger this package configures;
// nothing outside telemetry imports
// zerolog's console/level-parsing setup directly, mirroring how the
// teacher's internal/profiling is the one place that knows how frame
// timing is tracked.
package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the global logger's output format and minimum level.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to
	// "info" for an empty string.
	Level string
	// Pretty switches to zerolog's human-readable console writer.
	// Production/headless runs should leave this false for plain JSON
	// lines; the CLI harness turns it on by default for a human at a
	// terminal.
	Pretty bool
	// Writer overrides the output sink. Defaults to os.Stderr.
	Writer io.Writer
}

// Init configures the package-level logger (github.com/rs/zerolog/log)
// used throughout the core and returns the same logger for callers that
// want to thread it explicitly instead of relying on the global.
func Init(cfg Config) zerolog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
	log.Logger = logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
