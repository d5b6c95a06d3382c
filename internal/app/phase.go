package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/bastion/internal/core/events"
	"github.com/example/bastion/internal/core/gameday"
	"github.com/example/bastion/internal/ctxutil"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/ports/secondary"
)

// Phase names. They double as phase_progress keys, so renaming one makes a
// replay of the same day run that phase again.
const (
	PhaseHunger           = "hunger"
	PhaseContagion        = "contagion"
	PhaseRegeneration     = "regeneration"
	PhaseDirections       = "directions"
	PhaseLock             = "lock"
	PhaseUpkeep           = "upkeep"
	PhaseEmergencyReturns = "emergency_returns"
	PhaseScheduledReturns = "scheduled_returns"
	PhaseDepartures       = "departures"
)

// outcome is what one entity step reports back to the runner.
type outcome struct {
	events  []events.Event
	skipped bool
}

func done(evs ...events.Event) outcome {
	return outcome{events: evs}
}

func skip(evs ...events.Event) outcome {
	return outcome{events: evs, skipped: true}
}

// entityStep mutates one entity inside its own transaction.
type entityStep func(ctx context.Context, uow secondary.UnitOfWork, key string) (outcome, error)

// phaseRunner applies a step to every entity of a phase, one committed
// transaction per entity. A failing entity is logged and counted; it never
// stops the others. Entities already recorded in phase_progress for the same
// game day are skipped.
type phaseRunner struct {
	store  secondary.Store
	logger *log.Logger
	loc    *time.Location
}

func (r phaseRunner) run(ctx context.Context, phase string, now time.Time, keys []string, step entityStep) primary.PhaseReport {
	day := gameday.Key(now, r.loc)
	runID := ctxutil.RunIDFromContext(ctx)
	ctx = ctxutil.WithPhase(ctx, phase)

	report := primary.PhaseReport{Phase: phase}
	for _, key := range keys {
		report.Processed++

		var (
			out      outcome
			replayed bool
		)
		err := r.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
			seen, err := uow.Progress().IsDone(ctx, day, phase, key)
			if err != nil {
				return err
			}
			if seen {
				replayed = true
				return nil
			}

			out, err = step(ctx, uow, key)
			if err != nil {
				return err
			}
			for i := range out.events {
				out.events[i].Phase = phase
			}
			if err := uow.Events().Append(ctx, day, out.events...); err != nil {
				return err
			}
			return uow.Progress().MarkDone(ctx, day, phase, key, runID)
		})

		switch {
		case err != nil:
			report.Failed++
			report.Failures = append(report.Failures, primary.EntityFailure{EntityKey: key, Error: err.Error()})
			r.logf(ctx, " entity=%s: %v", key, err)
			continue
		case replayed:
			report.Skipped++
			continue
		case out.skipped:
			report.Skipped++
		default:
			report.Succeeded++
		}
		report.Events = append(report.Events, out.events...)
	}
	return report
}

// failedListing reports a phase whose population could not even be read.
func (r phaseRunner) failedListing(ctx context.Context, phase string, err error) primary.PhaseReport {
	r.logf(ctxutil.WithPhase(ctx, phase), ": failed to list population: %v", err)
	return primary.PhaseReport{
		Phase:    phase,
		Failed:   1,
		Failures: []primary.EntityFailure{{EntityKey: "*", Error: err.Error()}},
	}
}

// logf prefixes a line with the run and phase carried by ctx.
func (r phaseRunner) logf(ctx context.Context, format string, args ...any) {
	r.logger.Print(fmt.Sprintf("run=%s phase=%s", ctxutil.RunIDFromContext(ctx), ctxutil.PhaseFromContext(ctx)) + fmt.Sprintf(format, args...))
}

// recordEvents appends events raised by a same-day action to the outbox.
func recordEvents(ctx context.Context, uow secondary.UnitOfWork, now time.Time, loc *time.Location, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	return uow.Events().Append(ctx, gameday.Key(now, loc), evs...)
}
