package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

// ResourceTypeRepository implements secondary.ResourceTypeRepository with SQLite.
type ResourceTypeRepository struct {
	db DBTX
}

// NewResourceTypeRepository creates a new SQLite resource type repository.
func NewResourceTypeRepository(db DBTX) *ResourceTypeRepository {
	return &ResourceTypeRepository{db: db}
}

// Create persists a new resource type.
func (r *ResourceTypeRepository) Create(ctx context.Context, rt *secondary.ResourceTypeRecord) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO resource_types (id, name) VALUES (?, ?)", rt.ID, rt.Name)
	if err != nil {
		return fmt.Errorf("failed to create resource type: %w", err)
	}
	return nil
}

// GetByID retrieves a resource type by its ID.
func (r *ResourceTypeRepository) GetByID(ctx context.Context, id string) (*secondary.ResourceTypeRecord, error) {
	record := &secondary.ResourceTypeRecord{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM resource_types WHERE id = ?", id).Scan(&record.ID, &record.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerr.New(domainerr.CodeNotFound, "resource type %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource type: %w", err)
	}
	return record, nil
}

// List retrieves every resource type ordered by name.
func (r *ResourceTypeRepository) List(ctx context.Context) ([]*secondary.ResourceTypeRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM resource_types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list resource types: %w", err)
	}
	defer rows.Close()

	var types []*secondary.ResourceTypeRecord
	for rows.Next() {
		record := &secondary.ResourceTypeRecord{}
		if err := rows.Scan(&record.ID, &record.Name); err != nil {
			return nil, fmt.Errorf("failed to scan resource type: %w", err)
		}
		types = append(types, record)
	}
	return types, rows.Err()
}

// GetNextID returns the next available resource type ID.
func (r *ResourceTypeRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "resource_types", "RES")
}

var _ secondary.ResourceTypeRepository = (*ResourceTypeRepository)(nil)
