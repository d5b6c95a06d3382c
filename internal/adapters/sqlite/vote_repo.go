package sqlite

import (
	"context"
	"fmt"

	"github.com/example/bastion/internal/ports/secondary"
)

// VoteRepository implements secondary.VoteRepository with SQLite.
type VoteRepository struct {
	db DBTX
}

// NewVoteRepository creates a new SQLite emergency vote repository.
func NewVoteRepository(db DBTX) *VoteRepository {
	return &VoteRepository{db: db}
}

// Exists reports whether userID has voted on the expedition.
func (r *VoteRepository) Exists(ctx context.Context, expeditionID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM emergency_votes WHERE expedition_id = ? AND user_id = ?",
		expeditionID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return n > 0, nil
}

// Add records a vote. Voting twice is a no-op.
func (r *VoteRepository) Add(ctx context.Context, expeditionID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO emergency_votes (expedition_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		expeditionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add vote: %w", err)
	}
	return nil
}

// Remove withdraws a vote.
func (r *VoteRepository) Remove(ctx context.Context, expeditionID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM emergency_votes WHERE expedition_id = ? AND user_id = ?",
		expeditionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove vote: %w", err)
	}
	return nil
}

// Count returns the number of votes on the expedition.
func (r *VoteRepository) Count(ctx context.Context, expeditionID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM emergency_votes WHERE expedition_id = ?", expeditionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// Clear deletes every vote on the expedition.
func (r *VoteRepository) Clear(ctx context.Context, expeditionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM emergency_votes WHERE expedition_id = ?", expeditionID)
	if err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	return nil
}

var _ secondary.VoteRepository = (*VoteRepository)(nil)
