package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/bastion/internal/config"
	"github.com/example/bastion/internal/core/events"
	coreexpedition "github.com/example/bastion/internal/core/expedition"
	"github.com/example/bastion/internal/core/ledger"
	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/ports/secondary"
)

// Return reasons carried by expedition_returned events.
const (
	ReturnScheduled = "scheduled"
	ReturnRecalled  = "recalled"
	ReturnCancelled = "cancelled"
	ReturnAbandoned = "abandoned"
	ReturnNoCrew    = "no_crew"
	ReturnEmergency = "emergency"
)

// ExpeditionServiceImpl implements the ExpeditionService interface.
type ExpeditionServiceImpl struct {
	store   secondary.Store
	tuning  config.Tuning
	loc     *time.Location
	rng     ledger.Random
	catalog *ResourceCatalog
	phases  phaseRunner
}

// NewExpeditionService creates a new ExpeditionService with injected dependencies.
func NewExpeditionService(
	store secondary.Store,
	tuning config.Tuning,
	loc *time.Location,
	rng ledger.Random,
	catalog *ResourceCatalog,
	logger *log.Logger,
) *ExpeditionServiceImpl {
	return &ExpeditionServiceImpl{
		store:   store,
		tuning:  tuning,
		loc:     loc,
		rng:     rng,
		catalog: catalog,
		phases:  phaseRunner{store: store, logger: logger, loc: loc},
	}
}

// CreateExpedition creates a PLANNING expedition led by its creator and
// moves the provisions from the town into the expedition's stock.
func (s *ExpeditionServiceImpl) CreateExpedition(ctx context.Context, req primary.CreateExpeditionRequest) (*primary.CreateExpeditionResponse, error) {
	// 1. Validate input
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainerr.New(domainerr.CodeValidation, "expedition name is required")
	}
	if err := coreexpedition.ValidateDuration(req.DurationDays, s.tuning.MaxExpeditionDays); err != nil {
		return nil, err
	}
	initial := ""
	if strings.TrimSpace(req.InitialDirection) != "" {
		d, err := coreexpedition.ParseDirection(req.InitialDirection)
		if err != nil {
			return nil, err
		}
		initial = string(d)
	}

	// 2. Resolve provision names before opening the transaction
	provisions, err := s.resolveProvisions(ctx, req.Provisions)
	if err != nil {
		return nil, err
	}

	var view *primary.Expedition
	err = s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		// 3. Check the creator may lead an expedition from this town
		if _, err := uow.Towns().GetByID(ctx, req.TownID); err != nil {
			return err
		}
		creator, err := uow.Characters().GetByID(ctx, req.CreatorID)
		if err != nil {
			return err
		}
		active, err := uow.Expeditions().ActiveExpeditionFor(ctx, creator.ID)
		if err != nil {
			return err
		}
		guard := coreexpedition.CanJoin(coreexpedition.RosterContext{
			Status:             coreexpedition.InitialStatus(),
			CharacterID:        creator.ID,
			CharacterDead:      creator.IsDead,
			CharacterTownID:    creator.TownID,
			ExpeditionTownID:   req.TownID,
			ActiveExpeditionID: active,
		})
		if !guard.Allowed {
			return guard.Error()
		}

		// 4. Create the expedition with its creator on the roster
		nextID, err := uow.Expeditions().GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate expedition ID: %w", err)
		}
		rec := &secondary.ExpeditionRecord{
			ID:               nextID,
			TownID:           req.TownID,
			Name:             name,
			CreatedBy:        creator.ID,
			Status:           string(coreexpedition.InitialStatus()),
			DurationDays:     req.DurationDays,
			InitialDirection: initial,
			Path:             []string{},
			CreatedAt:        req.Now,
			UpdatedAt:        req.Now,
		}
		if err := uow.Expeditions().Create(ctx, rec); err != nil {
			return fmt.Errorf("failed to create expedition: %w", err)
		}
		if err := uow.Expeditions().AddMember(ctx, rec.ID, creator.ID, req.Now); err != nil {
			return err
		}

		// 5. Escrow provisions
		for _, p := range provisions {
			if err := uow.Stocks().Transfer(ctx, ledger.City(req.TownID), ledger.Expedition(rec.ID), p.rt.ID, p.quantity); err != nil {
				return err
			}
		}

		view, err = expeditionView(ctx, uow, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &primary.CreateExpeditionResponse{
		ExpeditionID: view.ID,
		Expedition:   view,
	}, nil
}

type provision struct {
	rt       *secondary.ResourceTypeRecord
	quantity int
}

// resolveProvisions maps names to resource types and merges duplicates.
func (s *ExpeditionServiceImpl) resolveProvisions(ctx context.Context, in []primary.Provision) ([]provision, error) {
	var out []provision
	index := make(map[string]int)
	for _, p := range in {
		if err := ledger.ValidateAmount(p.Quantity); err != nil {
			return nil, fmt.Errorf("provision %s: %w", p.Resource, err)
		}
		rt, err := s.catalog.Resolve(ctx, p.Resource)
		if err != nil {
			return nil, err
		}
		if i, ok := index[rt.ID]; ok {
			out[i].quantity += p.Quantity
			continue
		}
		index[rt.ID] = len(out)
		out = append(out, provision{rt: rt, quantity: p.Quantity})
	}
	return out, nil
}

// GetExpedition retrieves an expedition with its roster and stock.
func (s *ExpeditionServiceImpl) GetExpedition(ctx context.Context, expeditionID string) (*primary.Expedition, error) {
	rec, err := s.store.Expeditions().GetByID(ctx, expeditionID)
	if err != nil {
		return nil, err
	}
	return expeditionView(ctx, s.store, rec)
}

// ListExpeditions lists expeditions with optional filters.
func (s *ExpeditionServiceImpl) ListExpeditions(ctx context.Context, filters primary.ExpeditionFilters) ([]*primary.Expedition, error) {
	f := secondary.ExpeditionFilters{TownID: filters.TownID}
	if filters.Status != "" {
		f.Statuses = []string{strings.ToUpper(filters.Status)}
	}
	records, err := s.store.Expeditions().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list expeditions: %w", err)
	}

	views := make([]*primary.Expedition, 0, len(records))
	for _, rec := range records {
		v, err := expeditionView(ctx, s.store, rec)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// JoinExpedition adds a character to a PLANNING expedition.
func (s *ExpeditionServiceImpl) JoinExpedition(ctx context.Context, expeditionID, characterID string, now time.Time) error {
	return s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		char, err := uow.Characters().GetByID(ctx, characterID)
		if err != nil {
			return err
		}
		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return err
		}
		active, err := uow.Expeditions().ActiveExpeditionFor(ctx, char.ID)
		if err != nil {
			return err
		}

		guard := coreexpedition.CanJoin(coreexpedition.RosterContext{
			ExpeditionID:       rec.ID,
			Status:             coreexpedition.Status(rec.Status),
			CharacterID:        char.ID,
			CharacterDead:      char.IsDead,
			CharacterTownID:    char.TownID,
			ExpeditionTownID:   rec.TownID,
			AlreadyMember:      hasMember(members, char.ID),
			ActiveExpeditionID: active,
		})
		if !guard.Allowed {
			return guard.Error()
		}
		return uow.Expeditions().AddMember(ctx, rec.ID, char.ID, now)
	})
}

// LeaveExpedition removes a character from a PLANNING expedition. The last
// member leaving sends the expedition home with its provisions.
func (s *ExpeditionServiceImpl) LeaveExpedition(ctx context.Context, expeditionID, characterID string, now time.Time) (*primary.LeaveResult, error) {
	result := &primary.LeaveResult{}
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return err
		}

		guard := coreexpedition.CanLeave(coreexpedition.RosterContext{
			ExpeditionID:  rec.ID,
			Status:        coreexpedition.Status(rec.Status),
			CharacterID:   characterID,
			AlreadyMember: hasMember(members, characterID),
		})
		if !guard.Allowed {
			return guard.Error()
		}
		if err := uow.Expeditions().RemoveMember(ctx, rec.ID, characterID); err != nil {
			return err
		}

		if len(members) > 1 {
			return nil
		}
		if _, _, err := s.closeExpedition(ctx, uow, rec, now); err != nil {
			return err
		}
		result.Terminated = true
		result.Events = []events.Event{events.ExpeditionReturned(rec.ID, rec.TownID, ReturnAbandoned, now)}
		return recordEvents(ctx, uow, now, s.loc, result.Events)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetDirection records today's heading for a DEPARTED expedition.
// The last choice of the day wins; the midnight pass appends it to the path.
func (s *ExpeditionServiceImpl) SetDirection(ctx context.Context, expeditionID, characterID, direction string, now time.Time) error {
	d, err := coreexpedition.ParseDirection(direction)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return err
		}

		guard := coreexpedition.CanSetDirection(coreexpedition.CrewActionContext{
			ExpeditionID: rec.ID,
			Status:       coreexpedition.Status(rec.Status),
			ActorID:      characterID,
			IsMember:     hasMember(members, characterID),
		})
		if !guard.Allowed {
			return guard.Error()
		}

		rec.CurrentDayDirection = string(d)
		rec.DirectionSetBy = characterID
		rec.UpdatedAt = now
		return uow.Expeditions().Update(ctx, rec)
	})
}

// Lock moves a PLANNING expedition to LOCKED.
func (s *ExpeditionServiceImpl) Lock(ctx context.Context, expeditionID string, now time.Time) (*primary.Expedition, error) {
	var view *primary.Expedition
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		evs, err := s.lock(ctx, uow, rec, now)
		if err != nil {
			return err
		}
		if err := recordEvents(ctx, uow, now, s.loc, evs); err != nil {
			return err
		}
		view, err = expeditionView(ctx, uow, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *ExpeditionServiceImpl) lock(ctx context.Context, uow secondary.UnitOfWork, rec *secondary.ExpeditionRecord, now time.Time) ([]events.Event, error) {
	members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	guard := coreexpedition.CanLock(coreexpedition.LockContext{
		ExpeditionID: rec.ID,
		Status:       coreexpedition.Status(rec.Status),
		MemberCount:  len(members),
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}
	if err := s.transition(rec, coreexpedition.StatusLocked, now); err != nil {
		return nil, err
	}
	if err := uow.Expeditions().Update(ctx, rec); err != nil {
		return nil, err
	}
	return []events.Event{events.ExpeditionLocked(rec.ID, rec.TownID, now)}, nil
}

// Depart moves a LOCKED expedition to DEPARTED and schedules its return.
func (s *ExpeditionServiceImpl) Depart(ctx context.Context, expeditionID string, now time.Time) (*primary.Expedition, error) {
	var view *primary.Expedition
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		evs, err := s.depart(ctx, uow, rec, now)
		if err != nil {
			return err
		}
		if err := recordEvents(ctx, uow, now, s.loc, evs); err != nil {
			return err
		}
		view, err = expeditionView(ctx, uow, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *ExpeditionServiceImpl) depart(ctx context.Context, uow secondary.UnitOfWork, rec *secondary.ExpeditionRecord, now time.Time) ([]events.Event, error) {
	guard := coreexpedition.CanDepart(coreexpedition.StatusContext{
		ExpeditionID: rec.ID,
		Status:       coreexpedition.Status(rec.Status),
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}
	if err := s.transition(rec, coreexpedition.StatusDeparted, now); err != nil {
		return nil, err
	}

	returnAt := coreexpedition.ComputeReturnAt(now, rec.DurationDays, s.loc)
	rec.ReturnAt = &returnAt
	rec.Path = pathStrings(coreexpedition.AppendDirection(pathDirections(rec.Path), coreexpedition.Direction(rec.InitialDirection)))
	rec.CurrentDayDirection = ""
	rec.DirectionSetBy = ""
	if err := uow.Expeditions().Update(ctx, rec); err != nil {
		return nil, err
	}
	return []events.Event{events.ExpeditionDeparted(rec.ID, rec.TownID, returnAt, now)}, nil
}

// ReturnNormal brings a DEPARTED or LOCKED expedition home with all its stock.
func (s *ExpeditionServiceImpl) ReturnNormal(ctx context.Context, expeditionID string, now time.Time) (*primary.ReturnResult, error) {
	return s.returnWith(ctx, expeditionID, now, ReturnRecalled, coreexpedition.CanReturn)
}

// Cancel is the admin escape hatch for a LOCKED expedition: it returns
// before departure with all its stock.
func (s *ExpeditionServiceImpl) Cancel(ctx context.Context, expeditionID string, now time.Time) (*primary.ReturnResult, error) {
	return s.returnWith(ctx, expeditionID, now, ReturnCancelled, coreexpedition.CanCancel)
}

func (s *ExpeditionServiceImpl) returnWith(
	ctx context.Context,
	expeditionID string,
	now time.Time,
	reason string,
	guardFn func(coreexpedition.StatusContext) coreexpedition.GuardResult,
) (*primary.ReturnResult, error) {
	result := &primary.ReturnResult{}
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		guard := guardFn(coreexpedition.StatusContext{
			ExpeditionID: rec.ID,
			Status:       coreexpedition.Status(rec.Status),
		})
		if !guard.Allowed {
			return guard.Error()
		}

		moved, crew, err := s.closeExpedition(ctx, uow, rec, now)
		if err != nil {
			return err
		}
		result.Returned = recordsToStockLines(moved)
		result.Events = []events.Event{events.ExpeditionReturned(rec.ID, rec.TownID, reason, now, crew...)}
		if err := recordEvents(ctx, uow, now, s.loc, result.Events); err != nil {
			return err
		}
		result.Expedition, err = expeditionView(ctx, uow, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// closeExpedition moves an expedition to RETURNED: its stock goes back to
// the town, votes and roster are cleared and the return time is stamped.
// The crew it had is returned for the event record.
func (s *ExpeditionServiceImpl) closeExpedition(ctx context.Context, uow secondary.UnitOfWork, rec *secondary.ExpeditionRecord, now time.Time) ([]*secondary.StockRecord, []string, error) {
	if err := s.transition(rec, coreexpedition.StatusReturned, now); err != nil {
		return nil, nil, err
	}

	moved, err := uow.Stocks().ReturnAllToCity(ctx, rec.ID, rec.TownID)
	if err != nil {
		return nil, nil, err
	}
	if err := uow.Votes().Clear(ctx, rec.ID); err != nil {
		return nil, nil, err
	}

	members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
	if err != nil {
		return nil, nil, err
	}
	crew := make([]string, 0, len(members))
	for _, m := range members {
		crew = append(crew, m.CharacterID)
	}
	if err := uow.Expeditions().ClearMembers(ctx, rec.ID); err != nil {
		return nil, nil, err
	}

	returned := now
	rec.ReturnAt = &returned
	rec.PendingEmergencyReturn = false
	rec.CurrentDayDirection = ""
	rec.DirectionSetBy = ""
	if err := uow.Expeditions().Update(ctx, rec); err != nil {
		return nil, nil, err
	}
	return moved, crew, nil
}

func (s *ExpeditionServiceImpl) transition(rec *secondary.ExpeditionRecord, to coreexpedition.Status, now time.Time) error {
	if guard := coreexpedition.CanTransition(coreexpedition.Status(rec.Status), to); !guard.Allowed {
		return domainerr.New(domainerr.CodeInvalidState, "%s: %s", rec.ID, guard.Reason)
	}
	rec.Status = string(to)
	rec.UpdatedAt = now
	return nil
}

// ToggleEmergencyVote adds the user's vote, or withdraws it when present.
// Reaching the threshold flags the expedition for the morning emergency
// return; falling below it clears the flag.
func (s *ExpeditionServiceImpl) ToggleEmergencyVote(ctx context.Context, expeditionID, userID string, now time.Time) (*primary.VoteResult, error) {
	var result *primary.VoteResult
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		rec, err := uow.Expeditions().GetByID(ctx, expeditionID)
		if err != nil {
			return err
		}
		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return err
		}
		isMember := false
		for _, m := range members {
			char, err := uow.Characters().GetByID(ctx, m.CharacterID)
			if err != nil {
				return err
			}
			if char.UserID == userID {
				isMember = true
				break
			}
		}

		guard := coreexpedition.CanVote(coreexpedition.CrewActionContext{
			ExpeditionID: rec.ID,
			Status:       coreexpedition.Status(rec.Status),
			ActorID:      userID,
			IsMember:     isMember,
		})
		if !guard.Allowed {
			return guard.Error()
		}

		voted, err := uow.Votes().Exists(ctx, rec.ID, userID)
		if err != nil {
			return err
		}
		if voted {
			err = uow.Votes().Remove(ctx, rec.ID, userID)
		} else {
			err = uow.Votes().Add(ctx, rec.ID, userID)
		}
		if err != nil {
			return err
		}

		votes, err := uow.Votes().Count(ctx, rec.ID)
		if err != nil {
			return err
		}
		pending := coreexpedition.VotesReachThreshold(votes, len(members), s.tuning.EmergencyVoteRatio)
		if pending != rec.PendingEmergencyReturn {
			rec.PendingEmergencyReturn = pending
			rec.UpdatedAt = now
			if err := uow.Expeditions().Update(ctx, rec); err != nil {
				return err
			}
		}

		result = &primary.VoteResult{
			ExpeditionID:           rec.ID,
			Voted:                  !voted,
			Votes:                  votes,
			Members:                len(members),
			Threshold:              coreexpedition.EmergencyThreshold(len(members), s.tuning.EmergencyVoteRatio),
			PendingEmergencyReturn: pending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AppendDailyDirections extends every DEPARTED expedition's path with the
// direction chosen today, or UNKNOWN when nobody chose.
func (s *ExpeditionServiceImpl) AppendDailyDirections(ctx context.Context, now time.Time) primary.PhaseReport {
	ids, err := s.expeditionIDs(ctx, coreexpedition.StatusDeparted)
	if err != nil {
		return s.phases.failedListing(ctx, PhaseDirections, err)
	}

	return s.phases.run(ctx, PhaseDirections, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Expeditions().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if coreexpedition.Status(rec.Status) != coreexpedition.StatusDeparted {
			return skip(), nil
		}

		rec.Path = pathStrings(coreexpedition.AppendDirection(pathDirections(rec.Path), coreexpedition.Direction(rec.CurrentDayDirection)))
		rec.CurrentDayDirection = ""
		rec.DirectionSetBy = ""
		rec.UpdatedAt = now
		return done(), uow.Expeditions().Update(ctx, rec)
	})
}

// LockDue locks every PLANNING expedition created before today.
// One left without crew is abandoned instead.
func (s *ExpeditionServiceImpl) LockDue(ctx context.Context, now time.Time) primary.PhaseReport {
	ids, err := s.expeditionIDs(ctx, coreexpedition.StatusPlanning)
	if err != nil {
		return s.phases.failedListing(ctx, PhaseLock, err)
	}

	return s.phases.run(ctx, PhaseLock, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Expeditions().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if !coreexpedition.ShouldLock(coreexpedition.Status(rec.Status), rec.CreatedAt, now, s.loc) {
			return skip(), nil
		}

		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return outcome{}, err
		}
		if len(members) == 0 {
			if _, _, err := s.closeExpedition(ctx, uow, rec, now); err != nil {
				return outcome{}, err
			}
			return done(events.ExpeditionReturned(rec.ID, rec.TownID, ReturnAbandoned, now)), nil
		}

		evs, err := s.lock(ctx, uow, rec, now)
		if err != nil {
			return outcome{}, err
		}
		return done(evs...), nil
	})
}

// DeductDailyCosts charges the daily PA upkeep to every member of a LOCKED
// or DEPARTED expedition. Keys are "expeditionID:characterID".
func (s *ExpeditionServiceImpl) DeductDailyCosts(ctx context.Context, now time.Time) primary.PhaseReport {
	members, err := s.store.Expeditions().ListMembersByStatus(ctx,
		string(coreexpedition.StatusLocked), string(coreexpedition.StatusDeparted))
	if err != nil {
		return s.phases.failedListing(ctx, PhaseUpkeep, err)
	}
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = upkeepKey(m.ExpeditionID, m.CharacterID)
	}

	return s.phases.run(ctx, PhaseUpkeep, now, keys, func(ctx context.Context, uow secondary.UnitOfWork, key string) (outcome, error) {
		expID, charID, ok := strings.Cut(key, ":")
		if !ok {
			return outcome{}, domainerr.New(domainerr.CodeValidation, "malformed upkeep key %q", key)
		}
		return s.chargeMember(ctx, uow, expID, charID, now)
	})
}

func upkeepKey(expeditionID, characterID string) string {
	return expeditionID + ":" + characterID
}

func (s *ExpeditionServiceImpl) chargeMember(ctx context.Context, uow secondary.UnitOfWork, expID, charID string, now time.Time) (outcome, error) {
	rec, err := uow.Expeditions().GetByID(ctx, expID)
	if err != nil {
		return outcome{}, err
	}
	members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
	if err != nil {
		return outcome{}, err
	}
	if !hasMember(members, charID) {
		return skip(), nil
	}
	char, err := uow.Characters().GetByID(ctx, charID)
	if err != nil {
		return outcome{}, err
	}

	decision := coreexpedition.DecideUpkeep(coreexpedition.UpkeepInput{
		Status:                 coreexpedition.Status(rec.Status),
		PendingEmergencyReturn: rec.PendingEmergencyReturn,
		MemberDead:             char.IsDead,
		PA:                     char.PA,
		Cost:                   s.tuning.DailyExpeditionCost,
	})

	switch decision.Outcome {
	case coreexpedition.UpkeepSkipped:
		return skip(), nil

	case coreexpedition.UpkeepPaid:
		char.PA = decision.NewPA
		char.UpdatedAt = now
		return done(), uow.Characters().UpdateVitals(ctx, char)

	case coreexpedition.UpkeepCannotDepart:
		if err := uow.Expeditions().RemoveMember(ctx, rec.ID, char.ID); err != nil {
			return outcome{}, err
		}
		evs := []events.Event{events.CannotDepart(rec.ID, char.ID, now)}
		if len(members) == 1 {
			if _, _, err := s.closeExpedition(ctx, uow, rec, now); err != nil {
				return outcome{}, err
			}
			evs = append(evs, events.ExpeditionReturned(rec.ID, rec.TownID, ReturnNoCrew, now))
		} else if err := s.dropMemberVote(ctx, uow, rec, char, now); err != nil {
			return outcome{}, err
		}
		return done(evs...), nil

	case coreexpedition.UpkeepCatastrophicReturn:
		char.PA = decision.NewPA
		char.UpdatedAt = now
		if err := uow.Characters().UpdateVitals(ctx, char); err != nil {
			return outcome{}, err
		}
		if err := uow.Expeditions().RemoveMember(ctx, rec.ID, char.ID); err != nil {
			return outcome{}, err
		}
		if err := s.dropMemberVote(ctx, uow, rec, char, now); err != nil {
			return outcome{}, err
		}
		return done(events.CatastrophicReturn(rec.ID, char.ID, decision.Paid, now)), nil
	}

	return outcome{}, fmt.Errorf("unhandled upkeep outcome %q", decision.Outcome)
}

// dropMemberVote follows a member's removal: the user's vote goes unless
// another of their characters is still aboard, and the emergency flag is
// re-evaluated against the smaller crew.
func (s *ExpeditionServiceImpl) dropMemberVote(ctx context.Context, uow secondary.UnitOfWork, rec *secondary.ExpeditionRecord, removed *secondary.CharacterRecord, now time.Time) error {
	remaining, err := uow.Expeditions().ListMembers(ctx, rec.ID)
	if err != nil {
		return err
	}
	stillAboard := false
	for _, m := range remaining {
		char, err := uow.Characters().GetByID(ctx, m.CharacterID)
		if err != nil {
			return err
		}
		if char.UserID == removed.UserID {
			stillAboard = true
			break
		}
	}
	if !stillAboard {
		if err := uow.Votes().Remove(ctx, rec.ID, removed.UserID); err != nil {
			return err
		}
	}

	votes, err := uow.Votes().Count(ctx, rec.ID)
	if err != nil {
		return err
	}
	pending := coreexpedition.VotesReachThreshold(votes, len(remaining), s.tuning.EmergencyVoteRatio)
	if pending == rec.PendingEmergencyReturn {
		return nil
	}
	rec.PendingEmergencyReturn = pending
	rec.UpdatedAt = now
	return uow.Expeditions().Update(ctx, rec)
}

// ForceEmergencyReturns brings home every DEPARTED expedition flagged by its
// crew, losing part of its stock on the way. A flagged expedition without a
// living member stays out and emits emergency_return_blocked.
func (s *ExpeditionServiceImpl) ForceEmergencyReturns(ctx context.Context, now time.Time) primary.PhaseReport {
	records, err := s.store.Expeditions().List(ctx, secondary.ExpeditionFilters{
		Statuses: []string{string(coreexpedition.StatusDeparted)},
	})
	if err != nil {
		return s.phases.failedListing(ctx, PhaseEmergencyReturns, err)
	}
	var ids []string
	for _, r := range records {
		if r.PendingEmergencyReturn {
			ids = append(ids, r.ID)
		}
	}

	return s.phases.run(ctx, PhaseEmergencyReturns, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Expeditions().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if coreexpedition.Status(rec.Status) != coreexpedition.StatusDeparted || !rec.PendingEmergencyReturn {
			return skip(), nil
		}

		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return outcome{}, err
		}
		living := 0
		for _, m := range members {
			char, err := uow.Characters().GetByID(ctx, m.CharacterID)
			if err != nil {
				return outcome{}, err
			}
			if !char.IsDead {
				living++
			}
		}

		guard := coreexpedition.CanEmergencyReturn(coreexpedition.EmergencyReturnContext{
			ExpeditionID: rec.ID,
			Status:       coreexpedition.Status(rec.Status),
			MemberCount:  len(members),
			LivingCount:  living,
		})
		if !guard.Allowed {
			if guard.Code == domainerr.CodeEmptyRoster || guard.Code == domainerr.CodeAllMembersDead {
				return skip(events.EmergencyReturnBlocked(rec.ID, guard.Reason, now)), nil
			}
			return outcome{}, guard.Error()
		}

		losses, err := uow.Stocks().EmergencyReturnWithLoss(ctx, rec.ID, rec.TownID, s.rng)
		if err != nil {
			return outcome{}, err
		}
		_, crew, err := s.closeExpedition(ctx, uow, rec, now)
		if err != nil {
			return outcome{}, err
		}
		return done(events.EmergencyReturn(rec.ID, rec.TownID, s.resourceLosses(losses), now, crew...)), nil
	})
}

func (s *ExpeditionServiceImpl) resourceLosses(losses []ledger.Loss) []events.ResourceLoss {
	out := make([]events.ResourceLoss, len(losses))
	for i, l := range losses {
		out[i] = events.ResourceLoss{
			ResourceTypeID: l.ResourceTypeID,
			ResourceName:   s.catalog.NameOf(l.ResourceTypeID),
			Lost:           l.Lost,
			Remaining:      l.Remaining,
		}
	}
	return out
}

// ReturnDue brings home every DEPARTED expedition whose return time has come.
func (s *ExpeditionServiceImpl) ReturnDue(ctx context.Context, now time.Time) primary.PhaseReport {
	ids, err := s.expeditionIDs(ctx, coreexpedition.StatusDeparted)
	if err != nil {
		return s.phases.failedListing(ctx, PhaseScheduledReturns, err)
	}

	return s.phases.run(ctx, PhaseScheduledReturns, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Expeditions().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if !coreexpedition.IsDueForReturn(coreexpedition.Status(rec.Status), rec.ReturnAt, now) {
			return skip(), nil
		}
		_, crew, err := s.closeExpedition(ctx, uow, rec, now)
		if err != nil {
			return outcome{}, err
		}
		return done(events.ExpeditionReturned(rec.ID, rec.TownID, ReturnScheduled, now, crew...)), nil
	})
}

// DepartLocked departs every LOCKED expedition. One whose whole crew was
// dropped comes home instead.
func (s *ExpeditionServiceImpl) DepartLocked(ctx context.Context, now time.Time) primary.PhaseReport {
	ids, err := s.expeditionIDs(ctx, coreexpedition.StatusLocked)
	if err != nil {
		return s.phases.failedListing(ctx, PhaseDepartures, err)
	}

	return s.phases.run(ctx, PhaseDepartures, now, ids, func(ctx context.Context, uow secondary.UnitOfWork, id string) (outcome, error) {
		rec, err := uow.Expeditions().GetByID(ctx, id)
		if err != nil {
			return outcome{}, err
		}
		if coreexpedition.Status(rec.Status) != coreexpedition.StatusLocked {
			return skip(), nil
		}

		members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
		if err != nil {
			return outcome{}, err
		}
		if len(members) == 0 {
			if _, _, err := s.closeExpedition(ctx, uow, rec, now); err != nil {
				return outcome{}, err
			}
			return done(events.ExpeditionReturned(rec.ID, rec.TownID, ReturnNoCrew, now)), nil
		}

		evs, err := s.depart(ctx, uow, rec, now)
		if err != nil {
			return outcome{}, err
		}
		return done(evs...), nil
	})
}

func (s *ExpeditionServiceImpl) expeditionIDs(ctx context.Context, status coreexpedition.Status) ([]string, error) {
	records, err := s.store.Expeditions().List(ctx, secondary.ExpeditionFilters{Statuses: []string{string(status)}})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids, nil
}

func hasMember(members []*secondary.MemberRecord, characterID string) bool {
	for _, m := range members {
		if m.CharacterID == characterID {
			return true
		}
	}
	return false
}

func pathDirections(path []string) []coreexpedition.Direction {
	out := make([]coreexpedition.Direction, len(path))
	for i, p := range path {
		out[i] = coreexpedition.Direction(p)
	}
	return out
}

func pathStrings(path []coreexpedition.Direction) []string {
	out := make([]string, len(path))
	for i, d := range path {
		out[i] = string(d)
	}
	return out
}

// expeditionView assembles the port view of an expedition from uow.
func expeditionView(ctx context.Context, uow secondary.UnitOfWork, rec *secondary.ExpeditionRecord) (*primary.Expedition, error) {
	members, err := uow.Expeditions().ListMembers(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	votes, err := uow.Votes().Count(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	stock, err := uow.Stocks().ListAt(ctx, ledger.Expedition(rec.ID))
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.CharacterID
	}

	return &primary.Expedition{
		ID:                     rec.ID,
		TownID:                 rec.TownID,
		Name:                   rec.Name,
		CreatedBy:              rec.CreatedBy,
		Status:                 rec.Status,
		DurationDays:           rec.DurationDays,
		InitialDirection:       rec.InitialDirection,
		CurrentDayDirection:    rec.CurrentDayDirection,
		DirectionSetBy:         rec.DirectionSetBy,
		Path:                   rec.Path,
		ReturnAt:               rec.ReturnAt,
		PendingEmergencyReturn: rec.PendingEmergencyReturn,
		CreatedAt:              rec.CreatedAt,
		Members:                memberIDs,
		Votes:                  votes,
		Stock:                  recordsToStockLines(stock),
	}, nil
}

var _ primary.ExpeditionService = (*ExpeditionServiceImpl)(nil)
