// Package logging provides structured logging for eventmap using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Int("events", 12).Msg("Catalog refreshed")
//
//	ctx := logging.WithOperation(context.Background(), "refresh")
//	logging.FromContext(ctx).Debug().Msg("Fetching events")
package logging

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger atomic.Pointer[zerolog.Logger]

func init() {
	SetDefault(fromEnvironment())
}

// fromEnvironment reads LOG_LEVEL, LOG_FORMAT and DEBUG.
func fromEnvironment() zerolog.Logger {
	cfg := DefaultConfig()
	cfg.Level = os.Getenv("LOG_LEVEL")
	if cfg.Level == "" && os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	return NewLoggerFromConfig(cfg)
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger.Store(&logger)
	log.Logger = logger
}

// New returns a timestamped logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	return build(w, zerolog.GlobalLevel(), false, nil)
}

// Debug starts a debug entry on the default logger.
func Debug() *zerolog.Event { return Default().Debug() }

// Info starts an info entry on the default logger.
func Info() *zerolog.Event { return Default().Info() }

// Warn starts a warning entry on the default logger.
func Warn() *zerolog.Event { return Default().Warn() }

// Error starts an error entry on the default logger.
func Error() *zerolog.Event { return Default().Error() }

// OrNop returns logger, or a disabled logger when it is nil. Library
// types take an optional logger and stay silent unless given one.
func OrNop(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}

func terminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
