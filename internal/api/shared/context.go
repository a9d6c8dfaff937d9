package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type of context keys set by the api packages.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// RunIDKey is the key for the generation run ID in the request context
	RunIDKey ContextKey = "runID"
)

// SetTraceID adds a new random trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, uuid.NewString())
}

// WithTraceID adds the given trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithRunID adds a generation run ID to the context.
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID returns the run ID stored in ctx and whether one was present.
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(RunIDKey).(uuid.UUID)
	if !ok || runID == uuid.Nil {
		return uuid.Nil, false
	}
	return runID, true
}
