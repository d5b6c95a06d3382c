package ctxutil

import "context"

type runKey struct{}

type phaseKey struct{}

// WithRunID returns a context tagged with a batch run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runID)
}

// RunIDFromContext returns the batch run ID, or empty string outside a batch.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runKey{}).(string); ok {
		return v
	}
	return ""
}

// WithPhase returns a context tagged with the running phase.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

// PhaseFromContext returns the running phase, or empty string outside a batch.
func PhaseFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(phaseKey{}).(string); ok {
		return v
	}
	return ""
}
