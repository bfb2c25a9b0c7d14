package nodestore

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with nodestore-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithArena adds an arena name field to the logger.
func (l *Logger) WithArena(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", name),
	}
}

// WithCount adds a count field to the logger. Store collections use it for
// the number of roots.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAllocate logs an allocation.
func (l *Logger) LogAllocate(ctx context.Context, id NodeID, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocate failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "allocate completed",
			"id", id.String(),
		)
	}
}

// LogCollect logs a collection cycle.
func (l *Logger) LogCollect(ctx context.Context, report CollectionReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "collection failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "collection completed",
			"before", report.NodesBefore,
			"after", report.NodesAfter,
			"collected", report.NodesCollected,
			"fragmentation", report.FragmentationAfter,
			"duration", report.Duration,
		)
	}
}

// LogCompact logs a compaction.
func (l *Logger) LogCompact(ctx context.Context, trimmed int, fragmentation float64) {
	l.DebugContext(ctx, "compaction completed",
		"trimmed", trimmed,
		"fragmentation", fragmentation,
	)
}
