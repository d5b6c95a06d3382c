package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/bastion/internal/core/events"
	"github.com/example/bastion/internal/ctxutil"
	"github.com/example/bastion/internal/ports/secondary"
)

// EventLog implements secondary.EventSink over the event_log table.
type EventLog struct {
	db DBTX
}

// NewEventLog creates a new SQLite event outbox.
func NewEventLog(db DBTX) *EventLog {
	return &EventLog{db: db}
}

// Append writes events for a game day, tagged with the run and phase from context.
func (l *EventLog) Append(ctx context.Context, day string, evs ...events.Event) error {
	runID := ctxutil.RunIDFromContext(ctx)
	phase := ctxutil.PhaseFromContext(ctx)

	for _, ev := range evs {
		if ev.Phase == "" {
			ev.Phase = phase
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", ev.Kind, err)
		}
		_, err = l.db.ExecContext(ctx,
			"INSERT INTO event_log (run_id, day, phase, kind, payload, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
			runID, day, ev.Phase, string(ev.Kind), string(payload), ev.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append %s event: %w", ev.Kind, err)
		}
	}
	return nil
}

// List returns outbox entries matching the filters, oldest first.
func (l *EventLog) List(ctx context.Context, filters secondary.EventFilters) ([]*secondary.EventRecord, error) {
	query := "SELECT id, run_id, day, phase, kind, payload, occurred_at FROM event_log WHERE id > ?"
	args := []any{filters.AfterID}

	if filters.Day != "" {
		query += " AND day = ?"
		args = append(args, filters.Day)
	}
	if filters.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filters.Kind))
	}
	query += " ORDER BY id"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var records []*secondary.EventRecord
	for rows.Next() {
		var (
			record  secondary.EventRecord
			payload string
		)
		if err := rows.Scan(&record.ID, &record.RunID, &record.Day, &record.Phase, &record.Kind, &payload, &record.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &record.Event); err != nil {
			return nil, fmt.Errorf("corrupt event %d: %w", record.ID, err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

var _ secondary.EventSink = (*EventLog)(nil)
