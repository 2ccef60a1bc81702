package csrgraph

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with csrgraph-specific helpers.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogLoadEdges logs an edge load.
func (l *Logger) LogLoadEdges(vertices, edges int, err error) {
	if err != nil {
		l.Error("edge load failed",
			"vertices", vertices,
			"edges", edges,
			"error", err,
		)
	} else {
		l.Info("edge load completed",
			"vertices", vertices,
			"edges", edges,
		)
	}
}

// LogLoadVertices logs a vertex value load.
func (l *Logger) LogLoadVertices(count int, err error) {
	if err != nil {
		l.Error("vertex load failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("vertex load completed",
			"count", count,
		)
	}
}

// LogSnapshotSave logs a snapshot write. dest is a file path or blob name.
func (l *Logger) LogSnapshotSave(dest string, bytes int64, err error) {
	if err != nil {
		l.Error("snapshot save failed",
			"dest", dest,
			"error", err,
		)
	} else {
		l.Info("snapshot saved",
			"dest", dest,
			"bytes", bytes,
		)
	}
}

// LogSnapshotLoad logs a snapshot read. src is a file path or blob name.
func (l *Logger) LogSnapshotLoad(src string, bytes int64, err error) {
	if err != nil {
		l.Error("snapshot load failed",
			"src", src,
			"error", err,
		)
	} else {
		l.Info("snapshot loaded",
			"src", src,
			"bytes", bytes,
		)
	}
}
