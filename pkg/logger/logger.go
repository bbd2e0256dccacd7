// Package logger provides structured logging for the ADRI assessment engine.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

// Logger is the logging interface used throughout the engine.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger carrying additional key/value attributes.
	With(args ...any) Logger
}

// SlogLogger adapts log/slog to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing slog.Logger.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: l}
}

// Debug logs a debug message.
func (s *SlogLogger) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }

// Info logs an info message.
func (s *SlogLogger) Info(msg string, args ...any) { s.logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogLogger) Warn(msg string, args ...any) { s.logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogLogger) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// With returns a new logger with additional attributes.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: s.logger.With(args...)}
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
)

// SetupLogger configures the global logger.
func SetupLogger(debug bool, format string) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	SetGlobalLogger(NewSlogLogger(slog.New(handler)))
}

// GetGlobalLogger returns the process-wide logger.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// WithSource returns a logger with data source context.
func WithSource(source string) Logger {
	return GetGlobalLogger().With("source", source)
}

// WithDimension returns a logger with dimension context.
func WithDimension(dimension string) Logger {
	return GetGlobalLogger().With("dimension", dimension)
}
