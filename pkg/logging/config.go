package logging

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/eventmap/pkg/constants"
)

// Config describes how a logger is built. The CLI fills it from flags,
// the environment and the config file.
type Config struct {
	Level      string         // trace, debug, info, warn, error or off
	Format     string         // auto, json or console
	Output     string         // stderr, stdout, discard or a file path
	TimeFormat string         // kitchen, rfc3339, rfc3339nano, unix or a Go layout
	NoColor    bool           // plain console output
	AddCaller  bool           // file:line on every entry
	Fields     map[string]any // attached to every entry
}

// DefaultConfig returns info-level logging to stderr in the auto format.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     map[string]any{},
	}
}

var levelNames = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"panic":    zerolog.PanicLevel,
	"off":      zerolog.Disabled,
	"none":     zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

var timeLayouts = map[string]string{
	"":            time.Kitchen,
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"unix":        "",
	"epoch":       "",
}

// ValidLevel reports whether level is a recognized level name.
func ValidLevel(level string) bool {
	_, ok := levelNames[strings.ToLower(level)]
	return ok
}

// parseLevel maps a level name to a zerolog level, defaulting to info.
func parseLevel(level string) zerolog.Level {
	if l, ok := levelNames[strings.ToLower(level)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

func timeLayout(format string) string {
	if layout, ok := timeLayouts[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

// NewLoggerFromConfig builds a logger and sets the global zerolog level to
// match. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	w, term := openOutput(cfg.Output)
	if useConsole(cfg.Format, term) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: timeLayout(cfg.TimeFormat), NoColor: cfg.NoColor}
	}
	return build(w, level, cfg.AddCaller, cfg.Fields)
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// openOutput resolves the output name and reports whether it is a terminal.
// A file that cannot be opened falls back to stderr.
func openOutput(name string) (io.Writer, bool) {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, terminal(os.Stderr)
	case "stdout":
		return os.Stdout, terminal(os.Stdout)
	case "discard", "none":
		return io.Discard, false
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, terminal(os.Stderr)
	}
	return f, false
}

func useConsole(format string, term bool) bool {
	switch strings.ToLower(format) {
	case "console", "pretty", "text":
		return true
	case "json":
		return false
	default:
		return term
	}
}

// build assembles a timestamped logger; debug and below always carry the caller.
func build(w io.Writer, level zerolog.Level, caller bool, fields map[string]any) zerolog.Logger {
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if caller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ctx = addField(ctx, k, fields[k])
	}
	return ctx.Logger()
}

func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case bool:
		return ctx.Bool(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	case error:
		return ctx.AnErr(key, v)
	default:
		return ctx.Interface(key, v)
	}
}
