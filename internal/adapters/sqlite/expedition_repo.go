package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

const expeditionColumns = "id, town_id, name, created_by, status, duration_days, initial_direction, current_day_direction, direction_set_by, path, return_at, pending_emergency_return, created_at, updated_at"

// ExpeditionRepository implements secondary.ExpeditionRepository with SQLite.
type ExpeditionRepository struct {
	db DBTX
}

// NewExpeditionRepository creates a new SQLite expedition repository.
func NewExpeditionRepository(db DBTX) *ExpeditionRepository {
	return &ExpeditionRepository{db: db}
}

// Create persists a new expedition.
func (r *ExpeditionRepository) Create(ctx context.Context, e *secondary.ExpeditionRecord) error {
	path, err := encodePath(e.Path)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO expeditions ("+expeditionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.TownID, e.Name, e.CreatedBy, e.Status, e.DurationDays,
		nullString(e.InitialDirection), nullString(e.CurrentDayDirection), nullString(e.DirectionSetBy),
		path, nullTime(e.ReturnAt), e.PendingEmergencyReturn, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expedition: %w", err)
	}
	return nil
}

// GetByID retrieves an expedition by its ID.
func (r *ExpeditionRepository) GetByID(ctx context.Context, id string) (*secondary.ExpeditionRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+expeditionColumns+" FROM expeditions WHERE id = ?", id)
	record, err := scanExpedition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerr.New(domainerr.CodeNotFound, "expedition %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expedition: %w", err)
	}
	return record, nil
}

// List retrieves expeditions matching the given filters, ordered by ID.
func (r *ExpeditionRepository) List(ctx context.Context, filters secondary.ExpeditionFilters) ([]*secondary.ExpeditionRecord, error) {
	query := "SELECT " + expeditionColumns + " FROM expeditions WHERE 1=1"
	args := []any{}

	if filters.TownID != "" {
		query += " AND town_id = ?"
		args = append(args, filters.TownID)
	}
	if len(filters.Statuses) > 0 {
		query += " AND status IN (" + placeholders(len(filters.Statuses)) + ")"
		for _, s := range filters.Statuses {
			args = append(args, s)
		}
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expeditions: %w", err)
	}
	defer rows.Close()

	var expeditions []*secondary.ExpeditionRecord
	for rows.Next() {
		record, err := scanExpedition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expedition: %w", err)
		}
		expeditions = append(expeditions, record)
	}
	return expeditions, rows.Err()
}

// Update writes every mutable expedition field.
func (r *ExpeditionRepository) Update(ctx context.Context, e *secondary.ExpeditionRecord) error {
	path, err := encodePath(e.Path)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE expeditions
		 SET name = ?, status = ?, duration_days = ?, initial_direction = ?, current_day_direction = ?, direction_set_by = ?,
		     path = ?, return_at = ?, pending_emergency_return = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name, e.Status, e.DurationDays,
		nullString(e.InitialDirection), nullString(e.CurrentDayDirection), nullString(e.DirectionSetBy),
		path, nullTime(e.ReturnAt), e.PendingEmergencyReturn, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expedition: %w", err)
	}
	return expectRow(result, "expedition", e.ID)
}

// GetNextID returns the next available expedition ID.
func (r *ExpeditionRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, r.db, "expeditions", "EXP")
}

// AddMember adds a character to the roster.
func (r *ExpeditionRepository) AddMember(ctx context.Context, expeditionID, characterID string, joinedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO expedition_members (expedition_id, character_id, joined_at) VALUES (?, ?, ?)",
		expeditionID, characterID, joinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember removes a character from the roster.
func (r *ExpeditionRepository) RemoveMember(ctx context.Context, expeditionID, characterID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM expedition_members WHERE expedition_id = ? AND character_id = ?",
		expeditionID, characterID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return expectRow(result, "member", expeditionID+"/"+characterID)
}

// ClearMembers empties the roster.
func (r *ExpeditionRepository) ClearMembers(ctx context.Context, expeditionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM expedition_members WHERE expedition_id = ?", expeditionID)
	if err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	return nil
}

// ListMembers returns the roster ordered by character ID.
func (r *ExpeditionRepository) ListMembers(ctx context.Context, expeditionID string) ([]*secondary.MemberRecord, error) {
	return r.queryMembers(ctx,
		"SELECT expedition_id, character_id, joined_at FROM expedition_members WHERE expedition_id = ? ORDER BY character_id",
		expeditionID,
	)
}

// ListMembersByStatus returns every roster entry of expeditions in the given statuses.
func (r *ExpeditionRepository) ListMembersByStatus(ctx context.Context, statuses ...string) ([]*secondary.MemberRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}
	return r.queryMembers(ctx,
		`SELECT m.expedition_id, m.character_id, m.joined_at
		 FROM expedition_members m
		 JOIN expeditions e ON e.id = m.expedition_id
		 WHERE e.status IN (`+placeholders(len(statuses))+`)
		 ORDER BY m.expedition_id, m.character_id`,
		args...,
	)
}

// ActiveExpeditionFor returns the non-RETURNED expedition a character belongs to.
func (r *ExpeditionRepository) ActiveExpeditionFor(ctx context.Context, characterID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id FROM expedition_members m
		 JOIN expeditions e ON e.id = m.expedition_id
		 WHERE m.character_id = ? AND e.status != 'RETURNED'
		 ORDER BY e.id LIMIT 1`,
		characterID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find active expedition: %w", err)
	}
	return id, nil
}

func (r *ExpeditionRepository) queryMembers(ctx context.Context, query string, args ...any) ([]*secondary.MemberRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*secondary.MemberRecord
	for rows.Next() {
		m := &secondary.MemberRecord{}
		if err := rows.Scan(&m.ExpeditionID, &m.CharacterID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanExpedition(s scanner) (*secondary.ExpeditionRecord, error) {
	var (
		record                           secondary.ExpeditionRecord
		initialDir, currentDir, dirSetBy sql.NullString
		path                             string
		returnAt                         sql.NullTime
	)
	err := s.Scan(&record.ID, &record.TownID, &record.Name, &record.CreatedBy, &record.Status, &record.DurationDays,
		&initialDir, &currentDir, &dirSetBy, &path, &returnAt, &record.PendingEmergencyReturn,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.InitialDirection = initialDir.String
	record.CurrentDayDirection = currentDir.String
	record.DirectionSetBy = dirSetBy.String
	if returnAt.Valid {
		t := returnAt.Time
		record.ReturnAt = &t
	}
	if err := json.Unmarshal([]byte(path), &record.Path); err != nil {
		return nil, fmt.Errorf("corrupt path on %s: %w", record.ID, err)
	}
	return &record, nil
}

func encodePath(path []string) (string, error) {
	if path == nil {
		path = []string{}
	}
	raw, err := json.Marshal(path)
	if err != nil {
		return "", fmt.Errorf("failed to encode path: %w", err)
	}
	return string(raw), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var _ secondary.ExpeditionRepository = (*ExpeditionRepository)(nil)
