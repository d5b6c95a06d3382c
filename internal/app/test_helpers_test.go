package app

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/bastion/internal/adapters/sqlite"
	"github.com/example/bastion/internal/config"
	"github.com/example/bastion/internal/core/ledger"
	"github.com/example/bastion/internal/db"
	"github.com/example/bastion/internal/ports/secondary"
)

// testNow is a morning in the middle of the game; midnights below are
// relative to it. Tests run in UTC so day boundaries are obvious.
var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// midnight returns the start of the n-th day after testNow's day.
func midnight(n int) time.Time {
	return time.Date(2026, 3, 10+n, 0, 0, 0, 0, time.UTC)
}

// morning returns 08:00 of the n-th day after testNow's day.
func morning(n int) time.Time {
	return time.Date(2026, 3, 10+n, 8, 0, 0, 0, time.UTC)
}

// testEnv bundles an in-memory database with fully wired services.
type testEnv struct {
	db      *sql.DB
	store   secondary.Store
	catalog *ResourceCatalog
	logs    *bytes.Buffer

	vitals       *VitalsServiceImpl
	contagion    *ContagionServiceImpl
	ledger       *LedgerServiceImpl
	expeditions  *ExpeditionServiceImpl
	orchestrator *DailyOrchestratorImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDB, err := sql.Open("sqlite3", db.DSN(":memory:"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)
	if err := db.InitSchema(testDB); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() {
		testDB.Close()
	})

	env := &testEnv{db: testDB, store: sqlite.NewStore(testDB), logs: &bytes.Buffer{}}
	env.wire(t, env.store)
	return env
}

// wire (re)builds every service over store, so a test can swap in a
// failure-injecting store.
func (e *testEnv) wire(t *testing.T, store secondary.Store) {
	t.Helper()

	tuning := config.DefaultTuning()
	logger := log.New(e.logs, "", 0)
	rng := NewRandom(42)

	e.catalog = NewResourceCatalog(store.ResourceTypes())
	e.vitals = NewVitalsService(store, tuning.Limits(), time.UTC, logger)
	e.contagion = NewContagionService(store, rng, time.UTC, logger)
	e.ledger = NewLedgerService(store, e.catalog)
	e.expeditions = NewExpeditionService(store, tuning, time.UTC, rng, e.catalog, logger)
	e.orchestrator = NewDailyOrchestrator(e.vitals, e.contagion, e.expeditions, e.catalog, time.UTC, logger)
}

func (e *testEnv) exec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := e.db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q failed: %v", query, err)
	}
}

func (e *testEnv) seedTown(t *testing.T, id string) {
	t.Helper()
	e.exec(t, "INSERT INTO towns (id, name, created_at) VALUES (?, ?, ?)", id, "Town "+id, testNow)
}

func (e *testEnv) seedResource(t *testing.T, id, name string) {
	t.Helper()
	e.exec(t, "INSERT INTO resource_types (id, name) VALUES (?, ?)", id, name)
}

// seedCharacter inserts a healthy character whose PA was last refreshed at testNow.
func (e *testEnv) seedCharacter(t *testing.T, id, townID string) {
	t.Helper()
	e.exec(t,
		`INSERT INTO characters (id, user_id, town_id, name, hp, pm, hunger_level, pa_total, last_pa_update, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 5, 5, 4, 2, ?, ?, ?)`,
		id, "user-"+id, townID, "Char "+id, testNow, testNow, testNow,
	)
}

func (e *testEnv) setVitals(t *testing.T, id string, hp, pm, hunger, pa int) {
	t.Helper()
	e.exec(t, "UPDATE characters SET hp = ?, pm = ?, hunger_level = ?, pa_total = ? WHERE id = ?", hp, pm, hunger, pa, id)
}

func (e *testEnv) setAgony(t *testing.T, id string, since time.Time) {
	t.Helper()
	e.exec(t, "UPDATE characters SET agony_since = ? WHERE id = ?", since, id)
}

func (e *testEnv) kill(t *testing.T, id string) {
	t.Helper()
	e.exec(t, "UPDATE characters SET is_dead = 1, hp = 0, pa_total = 0, hunger_level = 0, agony_since = NULL WHERE id = ?", id)
}

// seedExpedition inserts an expedition created at createdAt with the given roster.
func (e *testEnv) seedExpedition(t *testing.T, id, townID, status string, createdAt time.Time, members ...string) {
	t.Helper()
	e.exec(t,
		`INSERT INTO expeditions (id, town_id, name, created_by, status, duration_days, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 2, ?, ?)`,
		id, townID, "Expedition "+id, "CHAR-001", status, createdAt, createdAt,
	)
	for _, m := range members {
		e.exec(t, "INSERT INTO expedition_members (expedition_id, character_id, joined_at) VALUES (?, ?, ?)", id, m, createdAt)
	}
}

func (e *testEnv) setReturnAt(t *testing.T, id string, at time.Time) {
	t.Helper()
	e.exec(t, "UPDATE expeditions SET return_at = ? WHERE id = ?", at, id)
}

func (e *testEnv) deposit(t *testing.T, loc ledger.Location, resourceTypeID string, amount int) {
	t.Helper()
	if err := e.store.Stocks().Increment(context.Background(), loc, resourceTypeID, amount); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
}

func (e *testEnv) stock(t *testing.T, loc ledger.Location, resourceTypeID string) int {
	t.Helper()
	q, err := e.store.Stocks().Get(context.Background(), loc, resourceTypeID)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return q
}

func (e *testEnv) character(t *testing.T, id string) *secondary.CharacterRecord {
	t.Helper()
	c, err := e.store.Characters().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to read character %s: %v", id, err)
	}
	return c
}

func (e *testEnv) expedition(t *testing.T, id string) *secondary.ExpeditionRecord {
	t.Helper()
	x, err := e.store.Expeditions().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to read expedition %s: %v", id, err)
	}
	return x
}

func (e *testEnv) members(t *testing.T, expeditionID string) []string {
	t.Helper()
	records, err := e.store.Expeditions().ListMembers(context.Background(), expeditionID)
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.CharacterID
	}
	return ids
}

// failingStore wraps a Store so that writes to one character fail inside
// transactions.
type failingStore struct {
	secondary.Store
	characterID string
}

func (s *failingStore) InTx(ctx context.Context, fn func(ctx context.Context, uow secondary.UnitOfWork) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		return fn(ctx, &failingUnitOfWork{UnitOfWork: uow, characterID: s.characterID})
	})
}

type failingUnitOfWork struct {
	secondary.UnitOfWork
	characterID string
}

func (u *failingUnitOfWork) Characters() secondary.CharacterRepository {
	return &failingCharacters{CharacterRepository: u.UnitOfWork.Characters(), characterID: u.characterID}
}

type failingCharacters struct {
	secondary.CharacterRepository
	characterID string
}

func (c *failingCharacters) UpdateVitals(ctx context.Context, r *secondary.CharacterRecord) error {
	if r.ID == c.characterID {
		return errInjected
	}
	return c.CharacterRepository.UpdateVitals(ctx, r)
}

var errInjected = errors.New("injected failure")
