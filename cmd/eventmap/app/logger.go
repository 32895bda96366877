package app

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/logging"
)

// NewLogger builds the CLI logger. An explicit --log-level (or
// EVENTMAP_LOG_LEVEL) beats --quiet, which beats --verbose.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
		Fields:    map[string]any{"app": "eventmap"},
	})
	if config.LogLevel != "" && level != strings.ToLower(config.LogLevel) {
		logger.Warn().Str("log_level", config.LogLevel).Msg("Unknown log level, using info")
	}
	if config.Verbose && config.Quiet {
		logger.Debug().Msg("Both --verbose and --quiet given, --quiet wins")
	}
	return logger
}

func determineLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		if logging.ValidLevel(config.LogLevel) {
			return strings.ToLower(config.LogLevel)
		}
		return "info"
	case config.Quiet:
		return "warn"
	case config.Verbose:
		return "debug"
	default:
		return "info"
	}
}
