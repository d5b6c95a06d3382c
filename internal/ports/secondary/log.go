package secondary

import (
	"context"
	"time"

	"github.com/example/bastion/internal/core/events"
)

// EventSink defines the outbox engine events are written to.
// Implementations read run and phase from context.
type EventSink interface {
	// Append writes events for a game day.
	Append(ctx context.Context, day string, evs ...events.Event) error

	// List returns outbox entries matching the filters, oldest first.
	List(ctx context.Context, filters EventFilters) ([]*EventRecord, error)
}

// EventRecord is one outbox row.
type EventRecord struct {
	ID         int64
	RunID      string
	Day        string
	Phase      string
	Kind       string
	Event      events.Event
	OccurredAt time.Time
}

// EventFilters contains filter options for reading the outbox.
type EventFilters struct {
	Day     string
	Kind    events.Kind
	AfterID int64
	Limit   int
}
