package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	rideIDKey    ctxKey = "ride_id"
)

// New returns a JSON logger tagged with the service name and installs it as
// the slog default.
func New(service string) *slog.Logger {
	l := newLogger(os.Stdout, service, slog.LevelInfo)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return newLogger(io.Discard, "test", slog.LevelError)
}

func newLogger(w io.Writer, service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	})
	return slog.New(handler).With(slog.String("service", service))
}

// WithRequestID stores the HTTP request id on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id stored on ctx, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithRideID stores the ride being operated on.
func WithRideID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, rideIDKey, id)
}

// RideID returns the ride id stored on ctx, or "".
func RideID(ctx context.Context) string {
	v, _ := ctx.Value(rideIDKey).(string)
	return v
}

// Info logs an action with the request and ride ids found on ctx.
func Info(ctx context.Context, log *slog.Logger, action, msg string, args ...any) {
	log.InfoContext(ctx, msg, append(contextAttrs(ctx, action), args...)...)
}

// Warn is Info at warning level.
func Warn(ctx context.Context, log *slog.Logger, action, msg string, args ...any) {
	log.WarnContext(ctx, msg, append(contextAttrs(ctx, action), args...)...)
}

// Error logs a failed action. err may be nil.
func Error(ctx context.Context, log *slog.Logger, action, msg string, err error, args ...any) {
	attrs := contextAttrs(ctx, action)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	log.ErrorContext(ctx, msg, append(attrs, args...)...)
}

func contextAttrs(ctx context.Context, action string) []any {
	attrs := []any{slog.String("action", action)}
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id := RideID(ctx); id != "" {
		attrs = append(attrs, slog.String("ride_id", id))
	}
	return attrs
}
