// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting, lifts tracing values out of the
// context and can ship records to Better Stack without blocking callers.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
	remote *AsyncHandler // nil unless a remote sink is configured
}

// Options configures optional log sinks.
type Options struct {
	// BetterStackToken enables shipping logs to Better Stack when non-empty.
	BetterStackToken string

	// Async tunes the buffer in front of the remote sink.
	Async AsyncOptions
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(level, w, Options{})
}

// NewWithOptions creates a logger writing JSON to w and, when configured,
// fanning out to a Better Stack sink behind an async buffer.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	logLevel := ParseLevel(level)

	local := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: renameStandardKeys,
	})

	var remote *AsyncHandler
	var handler slog.Handler = local
	if opts.BetterStackToken != "" {
		remote = NewAsyncHandler(slogbetterstack.Option{
			Level: logLevel,
			Token: opts.BetterStackToken,
		}.NewBetterstackHandler(), opts.Async)
		handler = NewMultiHandler(local, remote)
	}

	return &Logger{
		Logger: slog.New(NewContextHandler(handler)),
		remote: remote,
	}
}

// ParseLevel maps a configuration string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func renameStandardKeys(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "level"
		level := a.Value.String()
		if level == "WARN" {
			level = "warning"
		} else {
			level = strings.ToLower(level)
		}
		a.Value = slog.StringValue(level)
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

func (l *Logger) derive(next *slog.Logger) *Logger {
	return &Logger{Logger: next, remote: l.remote}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.derive(l.With("module", module))
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.derive(l.With("request_id", requestID))
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.With("error", err))
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value))
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.derive(l.With(args...))
}

// Dropped returns how many records the remote sink discarded because its
// buffer was full. It is zero without a remote sink.
func (l *Logger) Dropped() uint64 {
	if l == nil || l.remote == nil {
		return 0
	}
	return l.remote.Dropped()
}

// Shutdown flushes the remote sink, if any.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l == nil || l.remote == nil {
		return nil
	}
	return l.remote.Shutdown(ctx)
}
