package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{ name string }

var (
	loggerKey    = ctxKey{"logger"}
	requestIDKey = ctxKey{"request_id"}
)

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// With derives the context logger through fn and stores the result.
func With(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	l := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &l)
}

// WithRequestID records the HTTP request ID and tags the logger with it.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return With(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", id) })
}

// RequestID returns the request ID recorded by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithEvent tags the logger with an event ID.
func WithEvent(ctx context.Context, id string) context.Context {
	return With(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("event_id", id) })
}

// WithSource tags the logger with the catalog source.
func WithSource(ctx context.Context, source string) context.Context {
	return With(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("source", source) })
}

// WithOperation tags the logger with the running operation.
func WithOperation(ctx context.Context, op string) context.Context {
	return With(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("operation", op) })
}
