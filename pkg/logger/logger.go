// Package logger provides structured file logging for the enforcer hook.
//
// The hook owns stdout and stderr for its wire protocol, so log output only
// ever goes to a file or an explicitly supplied writer.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	// LogFilePermissions defines the file permissions for log files (owner read/write only).
	LogFilePermissions = 0o600

	logDirPermissions = 0o700
)

// Logger provides structured logging interface.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...any)

	// With returns a new logger with additional key-value pairs.
	With(keysAndValues ...any) Logger
}

// SlogAdapter implements Logger on top of log/slog.
type SlogAdapter struct {
	log    *slog.Logger
	closer io.Closer
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(w io.Writer, level Level) *SlogAdapter {
	return &SlogAdapter{log: slog.New(newLineHandler(w, level))}
}

// NewFileLogger opens (or creates) the log file at path and returns a logger
// appending to it. The parent directory is created if missing.
func NewFileLogger(path string, level Level) (*SlogAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), logDirPermissions); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	//nolint:gosec // log path comes from the user's own environment
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}

	adapter := NewWriterLogger(file, level)
	adapter.closer = file

	return adapter, nil
}

// Debug logs debug-level messages.
func (l *SlogAdapter) Debug(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

// Info logs info-level messages.
func (l *SlogAdapter) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, keysAndValues...)
}

// Error logs error-level messages.
func (l *SlogAdapter) Error(msg string, keysAndValues ...any) {
	l.log.Error(msg, keysAndValues...)
}

// With returns a new logger with additional base key-value pairs.
//
//nolint:ireturn // With is intended to return an interface for chaining
func (l *SlogAdapter) With(keysAndValues ...any) Logger {
	return &SlogAdapter{log: l.log.With(keysAndValues...), closer: l.closer}
}

// Close closes the underlying log file, if any.
func (l *SlogAdapter) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}

// NoOpLogger is a logger that does nothing.
type NoOpLogger struct{}

// NewNoOpLogger creates a new NoOpLogger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug does nothing.
func (*NoOpLogger) Debug(string, ...any) {}

// Info does nothing.
func (*NoOpLogger) Info(string, ...any) {}

// Error does nothing.
func (*NoOpLogger) Error(string, ...any) {}

// With returns the same NoOpLogger.
//
//nolint:ireturn // With is intended to return an interface for chaining
func (n *NoOpLogger) With(...any) Logger {
	return n
}

// Open returns a file logger at path, or a NoOpLogger if the file cannot be
// opened. The returned close function is always safe to call.
//
//nolint:ireturn // callers only depend on the interface
func Open(path string, level Level) (Logger, func() error) {
	if path == "" {
		return NewNoOpLogger(), func() error { return nil }
	}

	l, err := NewFileLogger(path, level)
	if err != nil {
		return NewNoOpLogger(), func() error { return nil }
	}

	return l, l.Close
}
