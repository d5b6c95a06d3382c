package primary

import (
	"time"

	"github.com/example/bastion/internal/core/events"
)

// BatchKind identifies which daily sequence produced a report.
type BatchKind string

const (
	BatchMidnight BatchKind = "midnight"
	BatchMorning  BatchKind = "morning"
)

// BatchReport is the outcome of one orchestrated sequence.
// Events are the only contract with the notification side.
type BatchReport struct {
	RunID      string
	Kind       BatchKind
	Day        string // game day key, YYYY-MM-DD in the reference timezone
	StartedAt  time.Time
	FinishedAt time.Time
	Skipped    bool // another run of the same sequence was in progress
	Phases     []PhaseReport
	Events     []events.Event
}

// AddPhase appends a phase result and its events.
func (r *BatchReport) AddPhase(p PhaseReport) {
	r.Phases = append(r.Phases, p)
	r.Events = append(r.Events, p.Events...)
}

// Failed returns the number of failed entities across all phases.
func (r *BatchReport) Failed() int {
	n := 0
	for _, p := range r.Phases {
		n += p.Failed
	}
	return n
}

// Phase returns the report for a named phase, or nil.
func (r *BatchReport) Phase(name string) *PhaseReport {
	for i := range r.Phases {
		if r.Phases[i].Phase == name {
			return &r.Phases[i]
		}
	}
	return nil
}

// PhaseReport counts what one phase did to its population.
// Processed = Succeeded + Failed + Skipped.
type PhaseReport struct {
	Phase     string
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
	Events    []events.Event
	Failures  []EntityFailure
}

// EntityFailure identifies an entity a phase could not process.
type EntityFailure struct {
	EntityKey string
	Error     string
}
