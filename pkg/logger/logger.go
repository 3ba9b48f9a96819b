package logger

import (
	"io"
	"log/slog"
)

// New builds a JSON slog logger writing to w.
// Every entry carries a permanent "service" field.
func New(w io.Writer, serviceName string) *slog.Logger {
	return NewWithLevel(w, serviceName, slog.LevelInfo)
}

// NewWithLevel is New with an explicit minimum level.
func NewWithLevel(w io.Writer, serviceName string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(w, opts).
		WithAttrs([]slog.Attr{
			slog.String("service", serviceName),
		})

	return slog.New(handler)
}

// Setup installs a JSON logger for serviceName as the slog default and returns it
// so callers can inject it explicitly.
func Setup(w io.Writer, serviceName string) *slog.Logger {
	l := New(w, serviceName)
	slog.SetDefault(l)
	return l
}
