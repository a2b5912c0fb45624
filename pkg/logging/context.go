package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

// loggerKey is the context key for the logger.
const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// WithProcessor adds the processor name to the logger in the context.
func WithProcessor(ctx context.Context, processor string) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Str("processor", processor).Logger()
	return WithLogger(ctx, &newLogger)
}

// WithSeason adds the season to the logger in the context.
func WithSeason(ctx context.Context, season int) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Int("season", season).Logger()
	return WithLogger(ctx, &newLogger)
}

// WithRun adds the run id to the logger in the context.
func WithRun(ctx context.Context, runID string) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Str("run_id", runID).Logger()
	return WithLogger(ctx, &newLogger)
}
