package db

import "database/sql"

// SchemaSQL is the complete schema for a bastion database.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); repository tests fail with "no such column"
// the moment code and schema drift apart.
//
// Times are stored as DATETIME so the sqlite3 driver scans them back into
// time.Time. Expedition paths are a JSON array of direction strings.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS towns (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS characters (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	town_id TEXT NOT NULL REFERENCES towns(id),
	name TEXT NOT NULL,
	hp INTEGER NOT NULL CHECK (hp >= 0),
	pm INTEGER NOT NULL CHECK (pm >= 0),
	hunger_level INTEGER NOT NULL CHECK (hunger_level >= 0),
	pa_total INTEGER NOT NULL CHECK (pa_total >= 0),
	is_dead INTEGER NOT NULL DEFAULT 0,
	agony_since DATETIME,
	last_pa_update DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_characters_town ON characters(town_id);
CREATE INDEX IF NOT EXISTS idx_characters_user ON characters(user_id);

CREATE TABLE IF NOT EXISTS expeditions (
	id TEXT PRIMARY KEY,
	town_id TEXT NOT NULL REFERENCES towns(id),
	name TEXT NOT NULL,
	created_by TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('PLANNING', 'LOCKED', 'DEPARTED', 'RETURNED')),
	duration_days INTEGER NOT NULL CHECK (duration_days >= 1),
	initial_direction TEXT,
	current_day_direction TEXT,
	direction_set_by TEXT,
	path TEXT NOT NULL DEFAULT '[]',
	return_at DATETIME,
	pending_emergency_return INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expeditions_status ON expeditions(status);

CREATE TABLE IF NOT EXISTS expedition_members (
	expedition_id TEXT NOT NULL REFERENCES expeditions(id),
	character_id TEXT NOT NULL REFERENCES characters(id),
	joined_at DATETIME NOT NULL,
	PRIMARY KEY (expedition_id, character_id)
);

CREATE INDEX IF NOT EXISTS idx_expedition_members_character ON expedition_members(character_id);

CREATE TABLE IF NOT EXISTS emergency_votes (
	expedition_id TEXT NOT NULL REFERENCES expeditions(id),
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (expedition_id, user_id)
);

CREATE TABLE IF NOT EXISTS resource_types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS resource_stocks (
	location_type TEXT NOT NULL CHECK (location_type IN ('CITY', 'EXPEDITION')),
	location_id TEXT NOT NULL,
	resource_type_id TEXT NOT NULL REFERENCES resource_types(id),
	quantity INTEGER NOT NULL CHECK (quantity >= 0),
	PRIMARY KEY (location_type, location_id, resource_type_id)
);

-- Replay guard: one row per entity handled by a phase on a given game day.
CREATE TABLE IF NOT EXISTS phase_progress (
	day TEXT NOT NULL,
	phase TEXT NOT NULL,
	entity_key TEXT NOT NULL,
	run_id TEXT NOT NULL,
	completed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (day, phase, entity_key)
);

-- Outbox read by the notification side.
CREATE TABLE IF NOT EXISTS event_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL DEFAULT '',
	day TEXT NOT NULL,
	phase TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	payload TEXT NOT NULL,
	occurred_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_event_log_day ON event_log(day);
`

// InitSchema creates any missing tables. Every statement is idempotent.
func InitSchema(database *sql.DB) error {
	_, err := database.Exec(SchemaSQL)
	return err
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
