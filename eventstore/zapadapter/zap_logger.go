// Package zapadapter provides a zap-backed implementation of the eventstore
// Logger interface, for applications that already log with zap and do not run
// an OpenTelemetry logging pipeline.
package zapadapter

import (
	"go.uber.org/zap"

	"github.com/leaseworks/rentledger/eventstore"
)

// Logger implements eventstore.Logger on a zap.SugaredLogger. The slog-style
// alternating key-value args map directly onto zap's *w logging methods.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates an eventstore logger on the given zap logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{sugar: logger.Sugar()}
}

// Debug logs a debug message with key-value args.
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

// Info logs an info message with key-value args.
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

// Warn logs a warning message with key-value args.
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

// Error logs an error message with key-value args.
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

var _ eventstore.Logger = (*Logger)(nil)
