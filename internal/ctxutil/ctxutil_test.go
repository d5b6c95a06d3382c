package ctxutil

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if ActorFromContext(ctx) != "" || RunIDFromContext(ctx) != "" || PhaseFromContext(ctx) != "" {
		t.Fatal("expected empty values on a bare context")
	}

	ctx = WithActorID(ctx, "user-alice")
	ctx = WithRunID(ctx, "run-1")
	ctx = WithPhase(ctx, "hunger")

	if got := ActorFromContext(ctx); got != "user-alice" {
		t.Errorf("ActorFromContext() = %q", got)
	}
	if got := RunIDFromContext(ctx); got != "run-1" {
		t.Errorf("RunIDFromContext() = %q", got)
	}
	if got := PhaseFromContext(ctx); got != "hunger" {
		t.Errorf("PhaseFromContext() = %q", got)
	}
}
