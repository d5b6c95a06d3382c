// Package expedition contains the pure business logic for expedition operations.
// This file holds the status machine and the time/path rules.
package expedition

import (
	"strings"
	"time"

	"github.com/example/bastion/internal/core/gameday"
	"github.com/example/bastion/internal/domainerr"
)

// Status represents the possible states of an expedition.
type Status string

const (
	StatusPlanning Status = "PLANNING"
	StatusLocked   Status = "LOCKED"
	StatusDeparted Status = "DEPARTED"
	StatusReturned Status = "RETURNED"
)

// transitions lists every reachable status change.
// PLANNING->RETURNED (empty roster) and LOCKED->RETURNED (cancellation)
// are the only shortcuts.
var transitions = map[Status][]Status{
	StatusPlanning: {StatusLocked, StatusReturned},
	StatusLocked:   {StatusDeparted, StatusReturned},
	StatusDeparted: {StatusReturned},
	StatusReturned: nil,
}

// CanTransition reports whether from->to is a legal status change.
func CanTransition(from, to Status) GuardResult {
	for _, s := range transitions[from] {
		if s == to {
			return allowed()
		}
	}
	return denied(domainerr.CodeInvalidState, "illegal expedition transition %s -> %s", from, to)
}

// IsActive reports whether the expedition still holds its crew.
func (s Status) IsActive() bool {
	return s == StatusPlanning || s == StatusLocked || s == StatusDeparted
}

// InitialStatus returns the initial status for a new expedition.
func InitialStatus() Status {
	return StatusPlanning
}

// Direction is a compass heading chosen by the crew.
type Direction string

const (
	DirectionNorth     Direction = "N"
	DirectionNorthEast Direction = "NE"
	DirectionEast      Direction = "E"
	DirectionSouthEast Direction = "SE"
	DirectionSouth     Direction = "S"
	DirectionSouthWest Direction = "SW"
	DirectionWest      Direction = "W"
	DirectionNorthWest Direction = "NW"
	DirectionUnknown   Direction = "UNKNOWN"
)

var directions = []Direction{
	DirectionNorth, DirectionNorthEast, DirectionEast, DirectionSouthEast,
	DirectionSouth, DirectionSouthWest, DirectionWest, DirectionNorthWest,
}

// ParseDirection parses a user-supplied direction. Empty input is UNKNOWN.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == string(DirectionUnknown) {
		return DirectionUnknown, nil
	}
	for _, d := range directions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", domainerr.New(domainerr.CodeValidation, "unknown direction %q", s)
}

// OrUnknown returns d, or UNKNOWN when d is empty.
func (d Direction) OrUnknown() Direction {
	if d == "" {
		return DirectionUnknown
	}
	return d
}

// AppendDirection returns a new path with d (or UNKNOWN) appended.
// The path is append-only; the input slice is never modified.
func AppendDirection(path []Direction, d Direction) []Direction {
	out := make([]Direction, len(path), len(path)+1)
	copy(out, path)
	return append(out, d.OrUnknown())
}

// ComputeReturnAt returns the scheduled return of an expedition departing at
// now: duration calendar days later at the same hour, minutes and seconds
// zeroed, so expeditions leaving on the same morning come back together.
func ComputeReturnAt(now time.Time, durationDays int, loc *time.Location) time.Time {
	return gameday.AddDaysAtHour(now, durationDays, loc)
}

// ValidateDuration checks a requested expedition length.
func ValidateDuration(days, maxDays int) error {
	if days < 1 {
		return domainerr.New(domainerr.CodeValidation, "duration must be at least 1 day (got %d)", days)
	}
	if maxDays > 0 && days > maxDays {
		return domainerr.New(domainerr.CodeValidation, "duration must be at most %d days (got %d)", maxDays, days)
	}
	return nil
}

// ShouldLock reports whether a PLANNING expedition created at createdAt is
// due for the nightly lock at now: it must predate today's day boundary.
func ShouldLock(status Status, createdAt, now time.Time, loc *time.Location) bool {
	return status == StatusPlanning && createdAt.Before(gameday.Start(now, loc))
}

// IsDueForReturn reports whether a DEPARTED expedition should come back.
func IsDueForReturn(status Status, returnAt *time.Time, now time.Time) bool {
	return status == StatusDeparted && returnAt != nil && !returnAt.After(now)
}

// FormatPath renders a path for display.
func FormatPath(path []Direction) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, d := range path {
		parts[i] = string(d)
	}
	return strings.Join(parts, " → ")
}
