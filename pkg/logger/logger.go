// Package logger defines the structured logging interface used across the
// service. The production implementation lives in
// internal/infrastructure/monitoring and is backed by zap.
package logger

import (
	"context"
	"time"
)

// Logger is the context-aware structured logging interface.
type Logger interface {
	Debug(ctx context.Context, message string, fields ...Field)
	Info(ctx context.Context, message string, fields ...Field)
	Warn(ctx context.Context, message string, fields ...Field)
	Error(ctx context.Context, message string, err error, fields ...Field)
	Fatal(ctx context.Context, message string, err error, fields ...Field)

	// WithComponent returns a logger annotating every entry with a component name.
	WithComponent(component string) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with an arbitrary value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Masked partially masks a sensitive string value so that credentials never
// land in log output in full.
func Masked(key, value string) Field {
	return Field{Key: key, Value: mask(value)}
}

func mask(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

// ================================================================================
// Nop Logger
// ================================================================================

type nopLogger struct{}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...Field)        {}
func (nopLogger) Info(context.Context, string, ...Field)         {}
func (nopLogger) Warn(context.Context, string, ...Field)         {}
func (nopLogger) Error(context.Context, string, error, ...Field) {}
func (nopLogger) Fatal(context.Context, string, error, ...Field) {}
func (n nopLogger) WithComponent(string) Logger                  { return n }
