// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/bastion/internal/db"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection: every ":memory:" connection is its
// own database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", db.DSN(":memory:"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTown inserts a test town and returns its ID.
func seedTown(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "TOWN-001"
	}
	if name == "" {
		name = "Bastion"
	}
	if _, err := db.Exec("INSERT INTO towns (id, name, created_at) VALUES (?, ?, ?)", id, name, testNow); err != nil {
		t.Fatalf("failed to seed town: %v", err)
	}
	return id
}

// seedCharacter inserts a healthy test character and returns its ID.
func seedCharacter(t *testing.T, db *sql.DB, id, townID string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO characters (id, user_id, town_id, name, hp, pm, hunger_level, pa_total, last_pa_update, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 5, 5, 4, 2, ?, ?, ?)`,
		id, "user-"+id, townID, "Char "+id, testNow, testNow, testNow,
	)
	if err != nil {
		t.Fatalf("failed to seed character: %v", err)
	}
	return id
}

// seedResourceType inserts a resource type and returns its ID.
func seedResourceType(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if _, err := db.Exec("INSERT INTO resource_types (id, name) VALUES (?, ?)", id, name); err != nil {
		t.Fatalf("failed to seed resource type: %v", err)
	}
	return id
}

// seedExpedition inserts an expedition with the given status and returns its ID.
func seedExpedition(t *testing.T, db *sql.DB, id, townID, status string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO expeditions (id, town_id, name, created_by, status, duration_days, created_at, updated_at)
		 VALUES (?, ?, ?, 'user-test', ?, 3, ?, ?)`,
		id, townID, "Expedition "+id, status, testNow, testNow,
	)
	if err != nil {
		t.Fatalf("failed to seed expedition: %v", err)
	}
	return id
}

// seedMember adds a character to an expedition roster.
func seedMember(t *testing.T, db *sql.DB, expeditionID, characterID string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO expedition_members (expedition_id, character_id, joined_at) VALUES (?, ?, ?)",
		expeditionID, characterID, testNow,
	)
	if err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
}
