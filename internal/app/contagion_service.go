package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/bastion/internal/core/contagion"
	"github.com/example/bastion/internal/core/events"
	coreexpedition "github.com/example/bastion/internal/core/expedition"
	"github.com/example/bastion/internal/core/gameday"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/ports/secondary"
)

// ContagionServiceImpl implements the ContagionService interface.
type ContagionServiceImpl struct {
	store  secondary.Store
	rng    contagion.Random
	loc    *time.Location
	phases phaseRunner
}

// NewContagionService creates a new ContagionService with injected dependencies.
func NewContagionService(
	store secondary.Store,
	rng contagion.Random,
	loc *time.Location,
	logger *log.Logger,
) *ContagionServiceImpl {
	return &ContagionServiceImpl{
		store:  store,
		rng:    rng,
		loc:    loc,
		phases: phaseRunner{store: store, logger: logger, loc: loc},
	}
}

// SpreadDepression plans one victim per depressed character from a snapshot
// of the living population, then applies each transfer in its own
// transaction, keyed by the source character. A replay of the same day
// plans from the population as it stood before that day's transfers.
func (s *ContagionServiceImpl) SpreadDepression(ctx context.Context, now time.Time) primary.PhaseReport {
	subjects, err := s.snapshot(ctx, gameday.Key(now, s.loc))
	if err != nil {
		return s.phases.failedListing(ctx, PhaseContagion, err)
	}

	victims := make(map[string]string)
	var sources []string
	for _, t := range contagion.Plan(subjects, s.rng) {
		victims[t.SourceID] = t.VictimID
		sources = append(sources, t.SourceID)
	}

	return s.phases.run(ctx, PhaseContagion, now, sources, func(ctx context.Context, uow secondary.UnitOfWork, sourceID string) (outcome, error) {
		victimID := victims[sourceID]
		changed, err := uow.Characters().DecrementPM(ctx, victimID, now)
		if err != nil {
			return outcome{}, fmt.Errorf("failed to lower pm of %s: %w", victimID, err)
		}
		if !changed {
			// victim died or already reached 0 earlier in the pass
			return skip(), nil
		}
		return done(events.PMContagion(sourceID, victimID, now)), nil
	})
}

func (s *ContagionServiceImpl) snapshot(ctx context.Context, day string) ([]contagion.Subject, error) {
	characters, err := s.store.Characters().List(ctx, secondary.CharacterFilters{AliveOnly: true})
	if err != nil {
		return nil, err
	}
	members, err := s.store.Expeditions().ListMembersByStatus(ctx, string(coreexpedition.StatusDeparted))
	if err != nil {
		return nil, err
	}

	// PM already taken today is given back, so a character depressed by
	// this day's pass does not spread on a replay of it.
	spread, err := s.store.Events().List(ctx, secondary.EventFilters{Day: day, Kind: events.KindPMContagion})
	if err != nil {
		return nil, err
	}
	lost := make(map[string]int, len(spread))
	for _, r := range spread {
		lost[r.Event.CharacterID]++
	}

	away := make(map[string]string, len(members))
	for _, m := range members {
		away[m.CharacterID] = m.ExpeditionID
	}

	subjects := make([]contagion.Subject, len(characters))
	for i, c := range characters {
		key := contagion.TownKey(c.TownID)
		if expID, ok := away[c.ID]; ok {
			key = contagion.ExpeditionKey(expID)
		}
		subjects[i] = contagion.Subject{
			CharacterID: c.ID,
			PM:          c.PM + lost[c.ID],
			IsDead:      c.IsDead,
			LocationKey: key,
		}
	}
	return subjects, nil
}

var _ primary.ContagionService = (*ContagionServiceImpl)(nil)
