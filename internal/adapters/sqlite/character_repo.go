package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

const characterColumns = "id, user_id, town_id, name, hp, pm, hunger_level, pa_total, is_dead, agony_since, last_pa_update, created_at, updated_at"

// CharacterRepository implements secondary.CharacterRepository with SQLite.
type CharacterRepository struct {
	db DBTX
}

// NewCharacterRepository creates a new SQLite character repository.
func NewCharacterRepository(db DBTX) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create persists a new character.
func (r *CharacterRepository) Create(ctx context.Context, c *secondary.CharacterRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO characters ("+characterColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.TownID, c.Name, c.HP, c.PM, c.Hunger, c.PA, c.IsDead,
		nullTime(c.AgonySince), c.LastPAUpdate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// GetByID retrieves a character by its ID.
func (r *CharacterRepository) GetByID(ctx context.Context, id string) (*secondary.CharacterRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+characterColumns+" FROM characters WHERE id = ?", id)
	record, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerr.New(domainerr.CodeNotFound, "character %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return record, nil
}

// List retrieves characters matching the given filters, ordered by ID.
func (r *CharacterRepository) List(ctx context.Context, filters secondary.CharacterFilters) ([]*secondary.CharacterRecord, error) {
	query := "SELECT " + characterColumns + " FROM characters WHERE 1=1"
	args := []any{}

	if filters.TownID != "" {
		query += " AND town_id = ?"
		args = append(args, filters.TownID)
	}
	if filters.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.AliveOnly {
		query += " AND is_dead = 0"
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var characters []*secondary.CharacterRecord
	for rows.Next() {
		record, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, record)
	}
	return characters, rows.Err()
}

// UpdateVitals writes hp, pm, hunger, pa, death and agony fields.
func (r *CharacterRepository) UpdateVitals(ctx context.Context, c *secondary.CharacterRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE characters
		 SET hp = ?, pm = ?, hunger_level = ?, pa_total = ?, is_dead = ?, agony_since = ?, last_pa_update = ?, updated_at = ?
		 WHERE id = ?`,
		c.HP, c.PM, c.Hunger, c.PA, c.IsDead, nullTime(c.AgonySince), c.LastPAUpdate, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}
	return expectRow(result, "character", c.ID)
}

// DecrementPM lowers pm by one unless the character is dead or already at 0.
func (r *CharacterRepository) DecrementPM(ctx context.Context, id string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE characters SET pm = pm - 1, updated_at = ? WHERE id = ? AND pm > 0 AND is_dead = 0",
		now, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to decrement pm: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to decrement pm: %w", err)
	}
	return n > 0, nil
}

// GetNextID returns the next available character ID.
func (r *CharacterRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "characters", "CHAR")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(s scanner) (*secondary.CharacterRecord, error) {
	var (
		record     secondary.CharacterRecord
		agonySince sql.NullTime
	)
	err := s.Scan(&record.ID, &record.UserID, &record.TownID, &record.Name,
		&record.HP, &record.PM, &record.Hunger, &record.PA, &record.IsDead,
		&agonySince, &record.LastPAUpdate, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if agonySince.Valid {
		t := agonySince.Time
		record.AgonySince = &t
	}
	return &record, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func expectRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", entity, err)
	}
	if n == 0 {
		return domainerr.New(domainerr.CodeNotFound, "%s %s not found", entity, id)
	}
	return nil
}

var _ secondary.CharacterRepository = (*CharacterRepository)(nil)
