package primary

import (
	"context"
	"time"
)

// DailyOrchestrator defines the primary port the scheduler drives.
type DailyOrchestrator interface {
	// RunMidnightPhases runs hunger, contagion, regeneration, directions,
	// locking and upkeep, in that order.
	RunMidnightPhases(ctx context.Context, now time.Time) (*BatchReport, error)

	// RunMorningPhases runs emergency returns, scheduled returns and departures.
	RunMorningPhases(ctx context.Context, now time.Time) (*BatchReport, error)
}
