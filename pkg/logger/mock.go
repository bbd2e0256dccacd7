package logger

import (
	"fmt"
	"sync"
)

// MockLogger is a logger implementation for testing.
type MockLogger struct {
	Messages *[]LogMessage
	attrs    []any
	mu       sync.Mutex
}

// LogMessage represents a logged message for testing.
type LogMessage struct {
	Level string
	Msg   string
	Args  []any
}

// NewMockLogger creates a new mock logger for testing.
func NewMockLogger() *MockLogger {
	messages := make([]LogMessage, 0)
	return &MockLogger{
		Messages: &messages,
	}
}

// Debug logs a debug message.
func (m *MockLogger) Debug(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.Messages = append(*m.Messages, LogMessage{Level: "DEBUG", Msg: msg, Args: m.mergeAttrs(args)})
}

// Info logs an info message.
func (m *MockLogger) Info(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.Messages = append(*m.Messages, LogMessage{Level: "INFO", Msg: msg, Args: m.mergeAttrs(args)})
}

// Warn logs a warning message.
func (m *MockLogger) Warn(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.Messages = append(*m.Messages, LogMessage{Level: "WARN", Msg: msg, Args: m.mergeAttrs(args)})
}

// Error logs an error message.
func (m *MockLogger) Error(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.Messages = append(*m.Messages, LogMessage{Level: "ERROR", Msg: msg, Args: m.mergeAttrs(args)})
}

// With returns a new logger with additional attributes.
// The returned logger shares the Messages slice with its parent.
func (m *MockLogger) With(args ...any) Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &MockLogger{
		Messages: m.Messages,
		attrs:    append(append([]any{}, m.attrs...), args...),
	}
}

// HasMessage reports whether a message at the given level was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, logged := range *m.Messages {
		if logged.Level == level && logged.Msg == msg {
			return true
		}
	}
	return false
}

func (m *MockLogger) mergeAttrs(args []any) []any {
	if len(m.attrs) == 0 {
		return args
	}
	merged := make([]any, 0, len(m.attrs)+len(args))
	merged = append(merged, m.attrs...)
	merged = append(merged, args...)
	return merged
}

// String renders all captured messages, useful in test failure output.
func (m *MockLogger) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := ""
	for _, msg := range *m.Messages {
		out += fmt.Sprintf("[%s] %s %v\n", msg.Level, msg.Msg, msg.Args)
	}
	return out
}
