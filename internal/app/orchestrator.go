// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/bastion/internal/core/gameday"
	"github.com/example/bastion/internal/ctxutil"
	"github.com/example/bastion/internal/ports/primary"
)

// DailyOrchestratorImpl implements the DailyOrchestrator interface.
//
// Each sequence runs its phases strictly in order, every phase over its
// whole population before the next one starts. A sequence is
// non-reentrant: a call made while the same sequence is running returns a
// report marked Skipped.
type DailyOrchestratorImpl struct {
	vitals      primary.VitalsService
	contagion   primary.ContagionService
	expeditions primary.ExpeditionService
	catalog     *ResourceCatalog
	loc         *time.Location
	logger      *log.Logger

	midnightMu sync.Mutex
	morningMu  sync.Mutex
}

// NewDailyOrchestrator creates a new DailyOrchestrator with injected dependencies.
func NewDailyOrchestrator(
	vitals primary.VitalsService,
	contagion primary.ContagionService,
	expeditions primary.ExpeditionService,
	catalog *ResourceCatalog,
	loc *time.Location,
	logger *log.Logger,
) *DailyOrchestratorImpl {
	return &DailyOrchestratorImpl{
		vitals:      vitals,
		contagion:   contagion,
		expeditions: expeditions,
		catalog:     catalog,
		loc:         loc,
		logger:      logger,
	}
}

type phaseFunc func(ctx context.Context, now time.Time) primary.PhaseReport

// RunMidnightPhases runs the nightly sequence:
//  1. hunger decay
//  2. depression contagion
//  3. PA regeneration with death and agony checks
//  4. expedition path extension
//  5. locking of PLANNING expeditions created before today
//  6. PA upkeep of LOCKED and DEPARTED crews
//
// Regeneration completes for everyone before upkeep charges anyone, and
// locking completes before upkeep so freshly locked crews pay the same night.
func (o *DailyOrchestratorImpl) RunMidnightPhases(ctx context.Context, now time.Time) (*primary.BatchReport, error) {
	return o.runSequence(ctx, &o.midnightMu, primary.BatchMidnight, now, []phaseFunc{
		o.vitals.DecayHungerAll,
		o.contagion.SpreadDepression,
		o.vitals.RegenerateAll,
		o.expeditions.AppendDailyDirections,
		o.expeditions.LockDue,
		o.expeditions.DeductDailyCosts,
	})
}

// RunMorningPhases runs emergency returns, then scheduled returns, then
// departures.
func (o *DailyOrchestratorImpl) RunMorningPhases(ctx context.Context, now time.Time) (*primary.BatchReport, error) {
	return o.runSequence(ctx, &o.morningMu, primary.BatchMorning, now, []phaseFunc{
		o.expeditions.ForceEmergencyReturns,
		o.expeditions.ReturnDue,
		o.expeditions.DepartLocked,
	})
}

func (o *DailyOrchestratorImpl) runSequence(ctx context.Context, mu *sync.Mutex, kind primary.BatchKind, now time.Time, phases []phaseFunc) (*primary.BatchReport, error) {
	report := &primary.BatchReport{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Day:       gameday.Key(now, o.loc),
		StartedAt: time.Now(),
	}

	if !mu.TryLock() {
		o.logger.Printf("run=%s %s sequence already in progress, skipping", report.RunID, kind)
		report.Skipped = true
		report.FinishedAt = time.Now()
		return report, nil
	}
	defer mu.Unlock()

	ctx = ctxutil.WithRunID(ctx, report.RunID)
	o.catalog.Invalidate()
	if err := o.catalog.Load(ctx); err != nil {
		o.logger.Printf("run=%s failed to load resource types: %v", report.RunID, err)
	}

	o.logger.Printf("run=%s %s sequence for %s started", report.RunID, kind, report.Day)
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}
		p := phase(ctx, now)
		report.AddPhase(p)
		o.logger.Printf("run=%s phase=%s processed=%d succeeded=%d failed=%d skipped=%d",
			report.RunID, p.Phase, p.Processed, p.Succeeded, p.Failed, p.Skipped)
	}
	report.FinishedAt = time.Now()
	return report, nil
}

var _ primary.DailyOrchestrator = (*DailyOrchestratorImpl)(nil)
