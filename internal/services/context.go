package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	epochKey contextKey = "epoch"
)

// WithRunID annotates context with the sorting run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithEpoch annotates context with the index of the epoch being clustered.
func WithEpoch(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, epochKey, index)
}

// EpochFromContext extracts the epoch index if present.
func EpochFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(epochKey).(int)
	return v, ok
}
