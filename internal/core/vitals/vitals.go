// Package vitals contains the pure business logic for character vitals.
// This is part of the Functional Core - no I/O, only pure functions.
//
// The state machine covers hunger, HP, agony, death and daily PA
// regeneration. Callers pass the current time and the reference timezone so
// every function is deterministic.
package vitals

import (
	"fmt"
	"time"

	"github.com/example/bastion/internal/core/gameday"
)

// Limits holds the balance constants the state machine runs under.
type Limits struct {
	MaxHP     int
	MaxPM     int
	MaxHunger int
	MaxPA     int

	// PARegen is the daily PA gain; PARegenStarving replaces it when
	// hunger is at or below StarvingThreshold.
	PARegen           int
	PARegenStarving   int
	StarvingThreshold int

	// AgonyDeathDays is the number of elapsed calendar days at hp==1 that kills.
	AgonyDeathDays int
}

// DefaultLimits returns the standard balance constants.
func DefaultLimits() Limits {
	return Limits{
		MaxHP:             5,
		MaxPM:             5,
		MaxHunger:         4,
		MaxPA:             4,
		PARegen:           2,
		PARegenStarving:   1,
		StarvingThreshold: 1,
		AgonyDeathDays:    2,
	}
}

// State is the vitals slice of a character record.
type State struct {
	HP           int
	PM           int
	Hunger       int
	PA           int
	IsDead       bool
	AgonySince   *time.Time
	LastPAUpdate time.Time
}

// InAgony reports whether the character is continuously in agony.
func (s State) InAgony() bool {
	return s.HP == 1 && s.AgonySince != nil
}

// TransitionResult is the outcome of ApplyTransition.
type TransitionResult struct {
	HP           int
	Hunger       int
	AgonySince   *time.Time
	EnteredAgony bool
	LeftAgony    bool
}

// ApplyTransition resolves a proposed change to hp and/or hunger into the
// final vitals, enforcing the agony rules:
//   - hunger 0 forces hp to 1 and starts agony
//   - hp 1 starts agony regardless of hunger
//   - hp above 1 clears agony
//
// Agony only starts if the character was not already continuously in agony,
// so applying the same proposal twice yields the same state.
func ApplyTransition(current State, proposedHP, proposedHunger *int, now time.Time, lim Limits) TransitionResult {
	if current.IsDead {
		return TransitionResult{HP: 0, Hunger: 0}
	}

	hp := current.HP
	if proposedHP != nil {
		hp = *proposedHP
	}
	hunger := current.Hunger
	if proposedHunger != nil {
		hunger = *proposedHunger
	}
	hp = clamp(hp, 0, lim.MaxHP)
	hunger = clamp(hunger, 0, lim.MaxHunger)

	result := TransitionResult{HP: hp, Hunger: hunger, AgonySince: current.AgonySince}

	switch {
	case hunger == 0:
		result.HP = 1
		enterAgony(current, &result, now)
	case hp == 1:
		enterAgony(current, &result, now)
	case hp > 1 && current.AgonySince != nil:
		result.AgonySince = nil
		result.LeftAgony = true
	}

	return result
}

func enterAgony(current State, result *TransitionResult, now time.Time) {
	if current.InAgony() {
		return
	}
	t := now
	result.AgonySince = &t
	result.EnteredAgony = true
}

// DailyResult is the outcome of a daily pass over one character.
type DailyResult struct {
	State        State
	Died         bool
	EnteredAgony bool
	LeftAgony    bool
	PAGained     int
	Healed       int
	HungerLost   int
}

// DecayHunger applies the daily hunger decrease.
// Satiety healing comes first: a character at full hunger heals 1 HP
// before losing a hunger level. Dead characters are left untouched.
func DecayHunger(s State, now time.Time, lim Limits) DailyResult {
	result := DailyResult{State: s}
	if s.IsDead {
		return result
	}

	hp := s.HP
	if s.Hunger >= lim.MaxHunger && hp < lim.MaxHP {
		hp++
		result.Healed = 1
	}
	hunger := s.Hunger - 1
	if hunger < 0 {
		hunger = 0
	}
	result.HungerLost = s.Hunger - hunger

	tr := ApplyTransition(s, &hp, &hunger, now, lim)
	result.State.HP = tr.HP
	result.State.Hunger = tr.Hunger
	result.State.AgonySince = tr.AgonySince
	result.EnteredAgony = tr.EnteredAgony
	result.LeftAgony = tr.LeftAgony
	return result
}

// Regenerate runs the daily death checks and PA regeneration:
//  1. clear agony left over from a character healed above 1 HP
//  2. hp 0 dies
//  3. hp 1 for AgonyDeathDays calendar days dies
//  4. PA regenerates once per elapsed calendar day, capped at MaxPA
//
// Re-running on the same day is a no-op because regeneration is guarded by
// LastPAUpdate and death is terminal.
func Regenerate(s State, now time.Time, loc *time.Location, lim Limits) DailyResult {
	result := DailyResult{State: s}
	if s.IsDead {
		return result
	}

	if s.HP > 1 && s.AgonySince != nil {
		result.State.AgonySince = nil
		result.LeftAgony = true
	}

	switch {
	case result.State.HP <= 0:
		result.State = kill(result.State)
		result.Died = true
	case result.State.HP == 1 && result.State.AgonySince == nil:
		// hp 1 outside agony breaks the invariant; start the clock now.
		t := now
		result.State.AgonySince = &t
		result.EnteredAgony = true
	case result.State.HP == 1 && gameday.DaysBetween(*result.State.AgonySince, now, loc) >= lim.AgonyDeathDays:
		result.State = kill(result.State)
		result.Died = true
	}

	if result.Died {
		return result
	}

	if gameday.DaysBetween(s.LastPAUpdate, now, loc) >= 1 && result.State.PA < lim.MaxPA {
		gain := lim.PARegen
		if result.State.Hunger <= lim.StarvingThreshold {
			gain = lim.PARegenStarving
		}
		pa := result.State.PA + gain
		if pa > lim.MaxPA {
			pa = lim.MaxPA
		}
		result.PAGained = pa - result.State.PA
		result.State.PA = pa
		result.State.LastPAUpdate = now
	}

	return result
}

// RegenerateDaily is the single-character daily update: Regenerate followed
// by DecayHunger. The batch orchestrator runs the two halves as separate
// population-wide phases instead.
func RegenerateDaily(s State, now time.Time, loc *time.Location, lim Limits) DailyResult {
	regen := Regenerate(s, now, loc, lim)
	if regen.Died {
		return regen
	}

	decay := DecayHunger(regen.State, now, lim)
	decay.PAGained = regen.PAGained
	decay.EnteredAgony = decay.EnteredAgony || regen.EnteredAgony
	decay.LeftAgony = (decay.LeftAgony || regen.LeftAgony) && decay.State.AgonySince == nil
	return decay
}

// Kill returns the dead form of s.
func Kill(s State) State {
	return kill(s)
}

func kill(s State) State {
	s.IsDead = true
	s.HP = 0
	s.PA = 0
	s.Hunger = 0
	s.AgonySince = nil
	return s
}

// CheckInvariants returns a description of every vitals invariant s breaks.
func CheckInvariants(s State, lim Limits) []string {
	var broken []string
	if s.HP < 0 || s.HP > lim.MaxHP {
		broken = append(broken, fmt.Sprintf("hp %d out of range", s.HP))
	}
	if s.PM < 0 || s.PM > lim.MaxPM {
		broken = append(broken, fmt.Sprintf("pm %d out of range", s.PM))
	}
	if s.Hunger < 0 || s.Hunger > lim.MaxHunger {
		broken = append(broken, fmt.Sprintf("hunger %d out of range", s.Hunger))
	}
	if s.PA < 0 || s.PA > lim.MaxPA {
		broken = append(broken, fmt.Sprintf("pa %d out of range", s.PA))
	}
	if s.IsDead {
		if s.HP != 0 || s.PA != 0 || s.Hunger != 0 {
			broken = append(broken, "dead character with non-zero hp/pa/hunger")
		}
		return broken
	}
	if s.Hunger == 0 && (s.HP != 1 || s.AgonySince == nil) {
		broken = append(broken, "hunger 0 without hp 1 in agony")
	}
	if s.HP == 1 && s.AgonySince == nil {
		broken = append(broken, "hp 1 without agony")
	}
	if s.HP > 1 && s.AgonySince != nil {
		broken = append(broken, "hp above 1 still in agony")
	}
	return broken
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
