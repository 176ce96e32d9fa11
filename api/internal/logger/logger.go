package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger: JSON in production, text otherwise.
func New(environment, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment, level)
}

func NewWithWriter(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level, environment)}
	if IsProduction(environment) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func IsProduction(environment string) bool {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "prod", "production":
		return true
	}
	return false
}

// ParseLevel falls back to info in production and debug elsewhere.
func ParseLevel(level, environment string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if IsProduction(environment) {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// LogRequest logs one HTTP exchange at a level picked from the status code.
func LogRequest(l *slog.Logger, method, path string, status int, duration string, args ...any) {
	args = append([]any{"method", method, "path", path, "status", status, "duration", duration}, args...)
	switch {
	case status >= 500:
		l.Error("http request", args...)
	case status >= 400:
		l.Warn("http request", args...)
	default:
		l.Info("http request", args...)
	}
}
