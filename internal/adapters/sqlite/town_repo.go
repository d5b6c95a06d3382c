package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

// TownRepository implements secondary.TownRepository with SQLite.
type TownRepository struct {
	db DBTX
}

// NewTownRepository creates a new SQLite town repository.
func NewTownRepository(db DBTX) *TownRepository {
	return &TownRepository{db: db}
}

// Create persists a new town.
func (r *TownRepository) Create(ctx context.Context, town *secondary.TownRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO towns (id, name, created_at) VALUES (?, ?, ?)",
		town.ID, town.Name, town.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create town: %w", err)
	}
	return nil
}

// GetByID retrieves a town by its ID.
func (r *TownRepository) GetByID(ctx context.Context, id string) (*secondary.TownRecord, error) {
	record := &secondary.TownRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM towns WHERE id = ?", id,
	).Scan(&record.ID, &record.Name, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerr.New(domainerr.CodeNotFound, "town %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get town: %w", err)
	}
	return record, nil
}

// List retrieves all towns.
func (r *TownRepository) List(ctx context.Context) ([]*secondary.TownRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM towns ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list towns: %w", err)
	}
	defer rows.Close()

	var towns []*secondary.TownRecord
	for rows.Next() {
		record := &secondary.TownRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan town: %w", err)
		}
		towns = append(towns, record)
	}
	return towns, rows.Err()
}

// GetNextID returns the next available town ID.
func (r *TownRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "towns", "TOWN")
}

var _ secondary.TownRepository = (*TownRepository)(nil)
