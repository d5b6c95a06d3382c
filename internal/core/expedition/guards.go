// Package expedition contains the pure business logic for expedition operations.
// Guards are pure functions that evaluate preconditions without side effects.
package expedition

import (
	"fmt"

	"github.com/example/bastion/internal/domainerr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Code    domainerr.Code // populated when not allowed
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	code := r.Code
	if code == "" {
		code = domainerr.CodeInvalidState
	}
	return domainerr.New(code, "%s", r.Reason)
}

func allowed() GuardResult {
	return GuardResult{Allowed: true}
}

func denied(code domainerr.Code, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// LockContext provides context for the lock guard.
type LockContext struct {
	ExpeditionID string
	Status       Status
	MemberCount  int
}

// CanLock evaluates whether an expedition can be locked.
// Rules:
// - Status must be PLANNING
// - Roster must not be empty
func CanLock(ctx LockContext) GuardResult {
	if ctx.Status != StatusPlanning {
		return denied(domainerr.CodeInvalidState, "can only lock PLANNING expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	if ctx.MemberCount == 0 {
		return denied(domainerr.CodeEmptyRoster, "cannot lock %s: no members", ctx.ExpeditionID)
	}
	return allowed()
}

// StatusContext provides context for guards that depend only on status.
type StatusContext struct {
	ExpeditionID string
	Status       Status
}

// CanDepart evaluates whether an expedition can depart.
// Rule: Status must be LOCKED.
func CanDepart(ctx StatusContext) GuardResult {
	if ctx.Status != StatusLocked {
		return denied(domainerr.CodeInvalidState, "can only depart LOCKED expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	return allowed()
}

// CanReturn evaluates whether an expedition can return normally.
// Rule: Status must be DEPARTED or LOCKED.
func CanReturn(ctx StatusContext) GuardResult {
	if ctx.Status != StatusDeparted && ctx.Status != StatusLocked {
		return denied(domainerr.CodeInvalidState, "can only return DEPARTED or LOCKED expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	return allowed()
}

// CanCancel evaluates whether an admin can cancel an expedition.
// Rule: Only LOCKED expeditions can be cancelled (before departure).
func CanCancel(ctx StatusContext) GuardResult {
	if ctx.Status != StatusLocked {
		return denied(domainerr.CodeInvalidState, "can only cancel LOCKED expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	return allowed()
}

// RosterContext provides context for join/leave guards.
type RosterContext struct {
	ExpeditionID       string
	Status             Status
	CharacterID        string
	CharacterDead      bool
	CharacterTownID    string
	ExpeditionTownID   string
	AlreadyMember      bool
	ActiveExpeditionID string // other non-RETURNED expedition the character belongs to
}

// CanJoin evaluates whether a character can join an expedition.
// Rules:
// - Status must be PLANNING
// - Character must be alive, from the expedition's town
// - Character must not already be in an active expedition
func CanJoin(ctx RosterContext) GuardResult {
	if ctx.Status != StatusPlanning {
		return denied(domainerr.CodeInvalidState, "can only join PLANNING expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	if ctx.CharacterDead {
		return denied(domainerr.CodeInvalidState, "character %s is dead", ctx.CharacterID)
	}
	if ctx.CharacterTownID != ctx.ExpeditionTownID {
		return denied(domainerr.CodeValidation, "character %s does not live in %s", ctx.CharacterID, ctx.ExpeditionTownID)
	}
	if ctx.AlreadyMember {
		return denied(domainerr.CodeInvalidState, "character %s already in %s", ctx.CharacterID, ctx.ExpeditionID)
	}
	if ctx.ActiveExpeditionID != "" {
		return denied(domainerr.CodeInvalidState, "character %s is already in expedition %s", ctx.CharacterID, ctx.ActiveExpeditionID)
	}
	return allowed()
}

// CanLeave evaluates whether a character can leave an expedition voluntarily.
// Rules:
// - Status must be PLANNING
// - Character must be a member
func CanLeave(ctx RosterContext) GuardResult {
	if ctx.Status != StatusPlanning {
		return denied(domainerr.CodeInvalidState, "can only leave PLANNING expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	if !ctx.AlreadyMember {
		return denied(domainerr.CodeNotFound, "character %s is not in %s", ctx.CharacterID, ctx.ExpeditionID)
	}
	return allowed()
}

// CrewActionContext provides context for in-flight crew actions.
type CrewActionContext struct {
	ExpeditionID string
	Status       Status
	ActorID      string
	IsMember     bool
}

// CanVote evaluates whether a user may toggle an emergency vote.
// Rules:
// - Status must be DEPARTED
// - The voter must have a character on the roster
func CanVote(ctx CrewActionContext) GuardResult {
	if ctx.Status != StatusDeparted {
		return denied(domainerr.CodeInvalidState, "emergency votes only apply to DEPARTED expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	if !ctx.IsMember {
		return denied(domainerr.CodeValidation, "%s has no character in %s", ctx.ActorID, ctx.ExpeditionID)
	}
	return allowed()
}

// CanSetDirection evaluates whether a character may choose today's direction.
// Rules:
// - Status must be DEPARTED
// - The character must be on the roster
func CanSetDirection(ctx CrewActionContext) GuardResult {
	if ctx.Status != StatusDeparted {
		return denied(domainerr.CodeInvalidState, "directions can only be set on DEPARTED expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	if !ctx.IsMember {
		return denied(domainerr.CodeValidation, "%s is not in %s", ctx.ActorID, ctx.ExpeditionID)
	}
	return allowed()
}

// EmergencyReturnContext provides context for the forced emergency return.
type EmergencyReturnContext struct {
	ExpeditionID string
	Status       Status
	MemberCount  int
	LivingCount  int
}

// CanEmergencyReturn evaluates whether a flagged expedition can be brought back.
// Rules:
// - Status must be DEPARTED
// - Roster must not be empty
// - At least one member must be alive
func CanEmergencyReturn(ctx EmergencyReturnContext) GuardResult {
	if ctx.Status != StatusDeparted {
		return denied(domainerr.CodeInvalidState, "can only emergency-return DEPARTED expeditions (%s is %s)", ctx.ExpeditionID, ctx.Status)
	}
	if ctx.MemberCount == 0 {
		return denied(domainerr.CodeEmptyRoster, "emergency return of %s blocked: no members", ctx.ExpeditionID)
	}
	if ctx.LivingCount == 0 {
		return denied(domainerr.CodeAllMembersDead, "emergency return of %s blocked: all members dead", ctx.ExpeditionID)
	}
	return allowed()
}
