package logging

import "github.com/vvka-141/retrier/pkg/retrier"

var (
	_ retrier.Logger = (*ConsoleLogger)(nil)
	_ retrier.Logger = (*NullLogger)(nil)
)

// NullLogger is a no-op logger that discards all log messages.
// Useful for testing and when logging is not desired.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}

func (l *NullLogger) Info(format string, args ...interface{}) {}

func (l *NullLogger) Error(format string, args ...interface{}) {}
