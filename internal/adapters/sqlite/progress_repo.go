package sqlite

import (
	"context"
	"fmt"

	"github.com/example/bastion/internal/ports/secondary"
)

// ProgressRepository implements secondary.ProgressRepository with SQLite.
type ProgressRepository struct {
	db DBTX
}

// NewProgressRepository creates a new SQLite phase progress repository.
func NewProgressRepository(db DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// IsDone reports whether (day, phase, entityKey) is recorded.
func (r *ProgressRepository) IsDone(ctx context.Context, day, phase, entityKey string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM phase_progress WHERE day = ? AND phase = ? AND entity_key = ?",
		day, phase, entityKey,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to read phase progress: %w", err)
	}
	return n > 0, nil
}

// MarkDone records (day, phase, entityKey). Marking twice is a no-op.
func (r *ProgressRepository) MarkDone(ctx context.Context, day, phase, entityKey, runID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO phase_progress (day, phase, entity_key, run_id) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING",
		day, phase, entityKey, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to record phase progress: %w", err)
	}
	return nil
}

var _ secondary.ProgressRepository = (*ProgressRepository)(nil)
