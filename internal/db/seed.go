package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: two towns,
// the base resource types, a handful of characters and some city stock.
func SeedFixtures(database *sql.DB, now time.Time) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	towns := []struct{ id, name string }{
		{"TOWN-001", "Bastion"},
		{"TOWN-002", "Refuge"},
	}
	for _, t := range towns {
		if _, err := tx.Exec("INSERT INTO towns (id, name, created_at) VALUES (?, ?, ?)", t.id, t.name, now); err != nil {
			return fmt.Errorf("seed towns: %w", err)
		}
	}

	resources := []struct{ id, name string }{
		{"RES-001", "Vivres"},
		{"RES-002", "Bois"},
		{"RES-003", "Minerai"},
		{"RES-004", "Tissu"},
	}
	for _, r := range resources {
		if _, err := tx.Exec("INSERT INTO resource_types (id, name) VALUES (?, ?)", r.id, r.name); err != nil {
			return fmt.Errorf("seed resource types: %w", err)
		}
	}

	characters := []struct {
		id, user, town, name string
		hp, pm, hunger, pa   int
	}{
		{"CHAR-001", "user-alice", "TOWN-001", "Alice", 5, 5, 4, 2},
		{"CHAR-002", "user-bruno", "TOWN-001", "Bruno", 4, 0, 3, 3},
		{"CHAR-003", "user-chloe", "TOWN-001", "Chloé", 5, 3, 2, 4},
		{"CHAR-004", "user-dimitri", "TOWN-002", "Dimitri", 2, 4, 1, 1},
	}
	for _, c := range characters {
		if _, err := tx.Exec(
			`INSERT INTO characters (id, user_id, town_id, name, hp, pm, hunger_level, pa_total, last_pa_update, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.id, c.user, c.town, c.name, c.hp, c.pm, c.hunger, c.pa, now, now, now,
		); err != nil {
			return fmt.Errorf("seed characters: %w", err)
		}
	}

	stocks := []struct {
		town, resource string
		quantity       int
	}{
		{"TOWN-001", "RES-001", 40},
		{"TOWN-001", "RES-002", 25},
		{"TOWN-001", "RES-003", 8},
		{"TOWN-002", "RES-001", 12},
	}
	for _, s := range stocks {
		if _, err := tx.Exec(
			"INSERT INTO resource_stocks (location_type, location_id, resource_type_id, quantity) VALUES ('CITY', ?, ?, ?)",
			s.town, s.resource, s.quantity,
		); err != nil {
			return fmt.Errorf("seed stocks: %w", err)
		}
	}

	return tx.Commit()
}
