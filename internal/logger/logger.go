package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextKey is a type for context keys used by the logger
type ContextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey ContextKey = "request_id"
	// TickKey is the context key for the layout tick number
	TickKey ContextKey = "tick"
)

var defaultLogger *slog.Logger

// Init initializes the global logger with the specified log level.
// Output is JSON when ENV=production and text otherwise.
func Init(levelStr string) {
	defaultLogger = New(os.Stdout, levelStr, os.Getenv("ENV") == "production")
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w without touching the global one.
func New(w io.Writer, levelStr string, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(levelStr)}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLevel converts a string log level to slog.Level
func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the default logger
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}

// FromContext returns a logger carrying the request ID and tick found in ctx.
func FromContext(ctx context.Context) *slog.Logger {
	l := Get()
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		l = l.With("request_id", reqID)
	}
	if tick, ok := ctx.Value(TickKey).(uint64); ok {
		l = l.With("tick", tick)
	}
	return l
}

// WithComponent returns a logger with a component label
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

func Info(msg string, args ...any) { Get().Info(msg, args...) }

func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

func Error(msg string, args ...any) { Get().Error(msg, args...) }

// InfoContext logs an info message with request and tick attributes from ctx
func InfoContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

// WarnContext logs a warning with request and tick attributes from ctx
func WarnContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs an error with request and tick attributes from ctx
func ErrorContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}
