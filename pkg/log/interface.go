// Package log provides the structured logging interface used across salaryforest.
//
// The interface is slog-shaped so call sites read the same regardless of the
// backend. The default backend is zerolog (see zerolog.go); tests use
// TestLogger, which captures JSON lines in memory.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("ensemble.forest").With(
//	    log.ModelNameKey, "RandomForestRegressor",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 80,
//	    log.FeaturesKey, 4,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Error additionally accepts an error
// as the first field, which backends render with its stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop the run.
	Warn(msg string, fields ...any)

	// Error logs a failure. If the first field is an error it is attached as
	// the error of the record.
	//
	// Example:
	//   logger.Error("Model training failed", err, log.OperationKey, "fit")
	Error(msg string, fields ...any)

	// With returns a Logger that includes fields in every record.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers. It allows tests to swap the backend.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for all loggers created by this provider.
	SetLevel(level Level)
}
