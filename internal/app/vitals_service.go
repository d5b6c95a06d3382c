package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/bastion/internal/core/events"
	"github.com/example/bastion/internal/core/vitals"
	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/ports/secondary"
)

// VitalsServiceImpl implements the VitalsService interface.
type VitalsServiceImpl struct {
	store  secondary.Store
	limits vitals.Limits
	loc    *time.Location
	phases phaseRunner
}

// NewVitalsService creates a new VitalsService with injected dependencies.
func NewVitalsService(
	store secondary.Store,
	limits vitals.Limits,
	loc *time.Location,
	logger *log.Logger,
) *VitalsServiceImpl {
	return &VitalsServiceImpl{
		store:  store,
		limits: limits,
		loc:    loc,
		phases: phaseRunner{store: store, logger: logger, loc: loc},
	}
}

// startingPA is the action budget of a brand new character.
const startingPA = 2

// CreateCharacter creates a character at full health in a town.
func (s *VitalsServiceImpl) CreateCharacter(ctx context.Context, req primary.CreateCharacterRequest) (*primary.CreateCharacterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainerr.New(domainerr.CodeValidation, "character name is required")
	}
	if req.UserID == "" {
		return nil, domainerr.New(domainerr.CodeValidation, "user id is required")
	}

	pa := startingPA
	if pa > s.limits.MaxPA {
		pa = s.limits.MaxPA
	}

	var rec *secondary.CharacterRecord
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		if _, err := uow.Towns().GetByID(ctx, req.TownID); err != nil {
			return err
		}

		nextID, err := uow.Characters().GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate character ID: %w", err)
		}

		rec = &secondary.CharacterRecord{
			ID:           nextID,
			UserID:       req.UserID,
			TownID:       req.TownID,
			Name:         name,
			HP:           s.limits.MaxHP,
			PM:           s.limits.MaxPM,
			Hunger:       s.limits.MaxHunger,
			PA:           pa,
			LastPAUpdate: req.Now,
			CreatedAt:    req.Now,
			UpdatedAt:    req.Now,
		}
		if err := uow.Characters().Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to create character: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &primary.CreateCharacterResponse{
		CharacterID: rec.ID,
		Character:   recordToCharacter(rec),
	}, nil
}

// GetCharacter retrieves a character by ID.
func (s *VitalsServiceImpl) GetCharacter(ctx context.Context, characterID string) (*primary.Character, error) {
	record, err := s.store.Characters().GetByID(ctx, characterID)
	if err != nil {
		return nil, err
	}
	return recordToCharacter(record), nil
}

// ListCharacters lists characters with optional filters.
func (s *VitalsServiceImpl) ListCharacters(ctx context.Context, filters primary.CharacterFilters) ([]*primary.Character, error) {
	records, err := s.store.Characters().List(ctx, secondary.CharacterFilters{
		TownID:    filters.TownID,
		UserID:    filters.UserID,
		AliveOnly: filters.AliveOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	characters := make([]*primary.Character, len(records))
	for i, r := range records {
		characters[i] = recordToCharacter(r)
	}
	return characters, nil
}

// ApplyVitals applies a proposed hp/hunger change under the agony rules.
func (s *VitalsServiceImpl) ApplyVitals(ctx context.Context, req primary.ApplyVitalsRequest) (*primary.VitalsChange, error) {
	if req.HP == nil && req.Hunger == nil {
		return nil, domainerr.New(domainerr.CodeValidation, "nothing to apply: hp or hunger is required")
	}

	var change *primary.VitalsChange
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Characters().GetByID(ctx, req.CharacterID)
		if err != nil {
			return err
		}
		if rec.IsDead {
			return domainerr.New(domainerr.CodeInvalidState, "character %s is dead", rec.ID)
		}

		tr := vitals.ApplyTransition(stateOf(rec), req.HP, req.Hunger, req.Now, s.limits)
		rec.HP = tr.HP
		rec.Hunger = tr.Hunger
		rec.AgonySince = tr.AgonySince
		rec.UpdatedAt = req.Now
		if err := uow.Characters().UpdateVitals(ctx, rec); err != nil {
			return fmt.Errorf("failed to update vitals: %w", err)
		}

		change = &primary.VitalsChange{
			Character:    recordToCharacter(rec),
			EnteredAgony: tr.EnteredAgony,
			LeftAgony:    tr.LeftAgony,
		}
		if tr.EnteredAgony {
			change.Events = append(change.Events, events.AgonyEntered(rec.ID, req.Now))
		}
		if tr.LeftAgony {
			change.Events = append(change.Events, events.AgonyLeft(rec.ID, req.Now))
		}
		return recordEvents(ctx, uow, req.Now, s.loc, change.Events)
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// RegenerateDaily runs one character's full daily update outside the batch.
func (s *VitalsServiceImpl) RegenerateDaily(ctx context.Context, characterID string, now time.Time) (*primary.VitalsChange, error) {
	var change *primary.VitalsChange
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Characters().GetByID(ctx, characterID)
		if err != nil {
			return err
		}
		if rec.IsDead {
			change = &primary.VitalsChange{Character: recordToCharacter(rec)}
			return nil
		}

		prior := stateOf(rec)
		result := vitals.RegenerateDaily(prior, now, s.loc, s.limits)
		if err := s.save(ctx, uow, rec, result.State, now); err != nil {
			return err
		}

		change = &primary.VitalsChange{
			Character:    recordToCharacter(rec),
			Died:         result.Died,
			EnteredAgony: result.EnteredAgony,
			LeftAgony:    result.LeftAgony,
			PAGained:     result.PAGained,
			Healed:       result.Healed,
			HungerLost:   result.HungerLost,
			Events:       dailyEvents(rec.ID, prior, result, now),
		}
		return recordEvents(ctx, uow, now, s.loc, change.Events)
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// DecayHungerAll runs the daily hunger decrease over every living character.
func (s *VitalsServiceImpl) DecayHungerAll(ctx context.Context, now time.Time) primary.PhaseReport {
	ids, err := s.livingIDs(ctx)
	if err != nil {
		return s.phases.failedListing(ctx, PhaseHunger, err)
	}

	return s.phases.run(ctx, PhaseHunger, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Characters().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if rec.IsDead {
			return skip(), nil
		}

		prior := stateOf(rec)
		result := vitals.DecayHunger(prior, now, s.limits)
		if err := s.save(ctx, uow, rec, result.State, now); err != nil {
			return outcome{}, err
		}
		return done(dailyEvents(rec.ID, prior, result, now)...), nil
	})
}

// RegenerateAll runs the death checks and PA regeneration over every living character.
func (s *VitalsServiceImpl) RegenerateAll(ctx context.Context, now time.Time) primary.PhaseReport {
	ids, err := s.livingIDs(ctx)
	if err != nil {
		return s.phases.failedListing(ctx, PhaseRegeneration, err)
	}

	return s.phases.run(ctx, PhaseRegeneration, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Characters().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if rec.IsDead {
			return skip(), nil
		}

		prior := stateOf(rec)
		result := vitals.Regenerate(prior, now, s.loc, s.limits)
		if err := s.save(ctx, uow, rec, result.State, now); err != nil {
			return outcome{}, err
		}
		return done(dailyEvents(rec.ID, prior, result, now)...), nil
	})
}

func (s *VitalsServiceImpl) livingIDs(ctx context.Context) ([]string, error) {
	records, err := s.store.Characters().List(ctx, secondary.CharacterFilters{AliveOnly: true})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *VitalsServiceImpl) save(ctx context.Context, uow secondary.UnitOfWork, rec *secondary.CharacterRecord, state vitals.State, now time.Time) error {
	if broken := vitals.CheckInvariants(state, s.limits); len(broken) > 0 {
		return domainerr.New(domainerr.CodeInvalidState, "character %s: %s", rec.ID, strings.Join(broken, "; "))
	}
	applyState(rec, state)
	rec.UpdatedAt = now
	if err := uow.Characters().UpdateVitals(ctx, rec); err != nil {
		return fmt.Errorf("failed to update vitals: %w", err)
	}
	return nil
}

// dailyEvents turns a daily result into engine events. A character that
// reached the pass at hp 0 died of its wounds; any other death is agony.
func dailyEvents(id string, prior vitals.State, r vitals.DailyResult, now time.Time) []events.Event {
	var evs []events.Event
	if r.Died {
		cause := "agony"
		if prior.HP <= 0 {
			cause = "hp"
		}
		return append(evs, events.CharacterDied(id, cause, now))
	}
	if r.EnteredAgony {
		evs = append(evs, events.AgonyEntered(id, now))
	}
	if r.LeftAgony {
		evs = append(evs, events.AgonyLeft(id, now))
	}
	return evs
}

func stateOf(r *secondary.CharacterRecord) vitals.State {
	return vitals.State{
		HP:           r.HP,
		PM:           r.PM,
		Hunger:       r.Hunger,
		PA:           r.PA,
		IsDead:       r.IsDead,
		AgonySince:   r.AgonySince,
		LastPAUpdate: r.LastPAUpdate,
	}
}

func applyState(r *secondary.CharacterRecord, s vitals.State) {
	r.HP = s.HP
	r.PM = s.PM
	r.Hunger = s.Hunger
	r.PA = s.PA
	r.IsDead = s.IsDead
	r.AgonySince = s.AgonySince
	r.LastPAUpdate = s.LastPAUpdate
}

func recordToCharacter(r *secondary.CharacterRecord) *primary.Character {
	return &primary.Character{
		ID:           r.ID,
		UserID:       r.UserID,
		TownID:       r.TownID,
		Name:         r.Name,
		HP:           r.HP,
		PM:           r.PM,
		Hunger:       r.Hunger,
		PA:           r.PA,
		IsDead:       r.IsDead,
		AgonySince:   r.AgonySince,
		LastPAUpdate: r.LastPAUpdate,
		CreatedAt:    r.CreatedAt,
	}
}

var _ primary.VitalsService = (*VitalsServiceImpl)(nil)
