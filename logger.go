package beamgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with beamgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSession adds a session field to the logger.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", id),
	}
}

// WithSpan adds the chart span fields to the logger.
func (l *Logger) WithSpan(span Span) *Logger {
	return &Logger{
		Logger: l.Logger.With("start", span.Start, "end", span.End),
	}
}

// LogSessionOpen logs the start of a decoding session.
func (l *Logger) LogSessionOpen(ctx context.Context) {
	l.DebugContext(ctx, "session opened")
}

// LogSessionClose logs the end of a decoding session.
func (l *Logger) LogSessionClose(ctx context.Context, stats SessionStats, duration time.Duration) {
	l.DebugContext(ctx, "session closed",
		"stacks", stats.Stacks,
		"live", stats.Live,
		"admitted", stats.Admitted,
		"recombined", stats.Recombined,
		"discarded", stats.Discarded,
		"arcs", stats.Arcs,
		"slots", stats.Arena.Slots,
		"duration", duration,
	)
}

// LogSessionError logs a failed session operation.
func (l *Logger) LogSessionError(ctx context.Context, op string, err error) {
	l.ErrorContext(ctx, "session operation failed",
		"op", op,
		"error", err,
	)
}

// LogBatch logs a batch decode.
func (l *Logger) LogBatch(ctx context.Context, count, failed int, duration time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch decode completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
			"duration", duration,
		)
	} else {
		l.InfoContext(ctx, "batch decode completed",
			"count", count,
			"duration", duration,
		)
	}
}
