// Package log provides a structured logging interface for the metaboost
// training pipeline.
//
// This package defines a minimal, slog-compatible logging interface that
// decouples pipeline components from any concrete logging backend. The
// default provider is backed by zerolog; a buffered implementation is
// available for tests. The interface integrates with Go's standard
// log/slog package so that code logging through slog and code logging
// through a Logger end up with the same field vocabulary.
//
// Key features:
//   - slog-compatible levels and field semantics
//   - pipeline-specific structured attributes (stages, folds, metrics)
//   - context loggers with field chaining via With
//   - test-friendly with configurable output destinations
//
// Example usage:
//
//	logger := log.GetLoggerWithName("boost").With(
//	    log.ModelNameKey, "Classifier",
//	    log.EstimatorIDKey, "gbdt-001",
//	)
//	logger.Info("Training started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 30,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// The interface provides the four conventional levels with structured
// key-value fields, and supports creation of contextual loggers through
// With. Implementations must be safe for concurrent use; grid search
// workers share a single logger.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Debug output carries per-row and per-fold detail that is normally
	// disabled outside of troubleshooting.
	//
	// Example:
	//
	//	logger.Debug("Dropped row with empty outcome",
	//	    "row", 42,
	//	)
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	// Info output traces the normal flow of a pipeline run.
	//
	// Example:
	//
	//	logger.Info("Training completed",
	//	    log.DurationMsKey, 5432,
	//	    log.AccuracyKey, 0.95,
	//	)
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// Warnings indicate situations that do not stop the run, such as a
	// cross-validation fold that failed to fit.
	//
	// Example:
	//
	//	logger.Warn("Fold fit failed",
	//	    log.FoldKey, 3,
	//	    log.ErrorCodeKey, log.ErrorFoldFailure,
	//	)
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If an error value is provided as the first field, implementations
	// attach it under the standard error key and may include stack trace
	// information extracted from it.
	//
	// Example:
	//
	//	logger.Error("Model training failed",
	//	    err,
	//	    log.OperationKey, log.OperationFit,
	//	    log.SamplesKey, 1000,
	//	)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	// Contextual loggers automatically include the fields in all
	// subsequent log messages.
	//
	// Example:
	//
	//	foldLogger := logger.With(
	//	    log.FoldKey, fold,
	//	    log.RepeatKey, repeat,
	//	)
	//	foldLogger.Info("Fold scored")
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given
	// level. Use it to avoid building expensive field values that would
	// be discarded.
	//
	// Example:
	//
	//	if logger.Enabled(ctx, log.LevelDebug) {
	//	    logger.Debug("Importance detail", "scores", scores)
	//	}
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
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

// LoggerProvider defines an interface for creating and configuring loggers.
// Providers own the output destination and the minimum level; components
// obtain loggers from a provider rather than constructing them directly.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
