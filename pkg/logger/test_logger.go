package logger

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// NewTestLogger returns a logger that writes through t.Log so output is
// attached to the right test. It also installs itself as the global logger.
func NewTestLogger(t *testing.T) *Logger {
	l := &Logger{Logger: zaptest.NewLogger(t)}
	SetGlobalLogger(l)
	return l
}
