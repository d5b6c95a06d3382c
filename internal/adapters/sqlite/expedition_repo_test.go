package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/bastion/internal/adapters/sqlite"
	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

func TestExpeditionRepository_CreateGetUpdate(t *testing.T) {
	db := setupTestDB(t)
	seedTown(t, db, "", "")
	repo := sqlite.NewExpeditionRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "EXP-001" {
		t.Errorf("expected EXP-001, got %s", id)
	}

	record := &secondary.ExpeditionRecord{
		ID: id, TownID: "TOWN-001", Name: "Forêt", CreatedBy: "user-1",
		Status: "PLANNING", DurationDays: 3, InitialDirection: "N",
		CreatedAt: testNow, UpdatedAt: testNow,
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.InitialDirection != "N" || got.CurrentDayDirection != "" || got.ReturnAt != nil {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Path) != 0 {
		t.Errorf("expected empty path, got %v", got.Path)
	}

	returnAt := testNow.Add(72 * time.Hour)
	got.Status = "DEPARTED"
	got.Path = []string{"N", "UNKNOWN"}
	got.ReturnAt = &returnAt
	got.PendingEmergencyReturn = true
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, _ := repo.GetByID(ctx, id)
	if updated.Status != "DEPARTED" || !updated.PendingEmergencyReturn {
		t.Errorf("unexpected record after update: %+v", updated)
	}
	if len(updated.Path) != 2 || updated.Path[1] != "UNKNOWN" {
		t.Errorf("Path = %v", updated.Path)
	}
	if updated.ReturnAt == nil || !updated.ReturnAt.Equal(returnAt) {
		t.Errorf("ReturnAt = %v, want %v", updated.ReturnAt, returnAt)
	}
}

func TestExpeditionRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewExpeditionRepository(db)

	_, err := repo.GetByID(context.Background(), "EXP-999")
	if domainerr.CodeOf(err) != domainerr.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestExpeditionRepository_List(t *testing.T) {
	db := setupTestDB(t)
	seedTown(t, db, "", "")
	seedExpedition(t, db, "EXP-001", "TOWN-001", "PLANNING")
	seedExpedition(t, db, "EXP-002", "TOWN-001", "DEPARTED")
	seedExpedition(t, db, "EXP-003", "TOWN-001", "RETURNED")
	seedExpedition(t, db, "EXP-004", "TOWN-001", "LOCKED")
	repo := sqlite.NewExpeditionRepository(db)

	got, err := repo.List(context.Background(), secondary.ExpeditionFilters{Statuses: []string{"LOCKED", "DEPARTED"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "EXP-002" || got[1].ID != "EXP-004" {
		t.Errorf("unexpected expeditions: %v", got)
	}
}

func TestExpeditionRepository_Roster(t *testing.T) {
	db := setupTestDB(t)
	seedTown(t, db, "", "")
	seedCharacter(t, db, "CHAR-001", "TOWN-001")
	seedCharacter(t, db, "CHAR-002", "TOWN-001")
	seedExpedition(t, db, "EXP-001", "TOWN-001", "DEPARTED")
	seedExpedition(t, db, "EXP-002", "TOWN-001", "RETURNED")
	repo := sqlite.NewExpeditionRepository(db)
	ctx := context.Background()

	if err := repo.AddMember(ctx, "EXP-001", "CHAR-002", testNow); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if err := repo.AddMember(ctx, "EXP-001", "CHAR-001", testNow); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if err := repo.AddMember(ctx, "EXP-001", "CHAR-001", testNow); err == nil {
		t.Error("expected duplicate member to be rejected")
	}
	seedMember(t, db, "EXP-002", "CHAR-002")

	members, err := repo.ListMembers(ctx, "EXP-001")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 || members[0].CharacterID != "CHAR-001" {
		t.Errorf("unexpected roster: %v", members)
	}

	departed, _ := repo.ListMembersByStatus(ctx, "DEPARTED")
	if len(departed) != 2 {
		t.Errorf("expected 2 departed members, got %d", len(departed))
	}

	active, err := repo.ActiveExpeditionFor(ctx, "CHAR-002")
	if err != nil || active != "EXP-001" {
		t.Errorf("ActiveExpeditionFor = %q, %v, want EXP-001", active, err)
	}

	if err := repo.RemoveMember(ctx, "EXP-001", "CHAR-002"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if err := repo.RemoveMember(ctx, "EXP-001", "CHAR-002"); domainerr.CodeOf(err) != domainerr.CodeNotFound {
		t.Errorf("expected NOT_FOUND on second removal, got %v", err)
	}

	active, _ = repo.ActiveExpeditionFor(ctx, "CHAR-002")
	if active != "" {
		t.Errorf("expected no active expedition once only in a RETURNED one, got %q", active)
	}
	if err := repo.ClearMembers(ctx, "EXP-001"); err != nil {
		t.Fatalf("ClearMembers failed: %v", err)
	}
	if members, _ := repo.ListMembers(ctx, "EXP-001"); len(members) != 0 {
		t.Errorf("roster after clear = %d members, want 0", len(members))
	}
	if members, _ := repo.ListMembers(ctx, "EXP-002"); len(members) != 1 {
		t.Errorf("clearing EXP-001 touched EXP-002's roster: %d members", len(members))
	}
}

func TestVoteRepository(t *testing.T) {
	db := setupTestDB(t)
	seedTown(t, db, "", "")
	seedExpedition(t, db, "EXP-001", "TOWN-001", "DEPARTED")
	repo := sqlite.NewVoteRepository(db)
	ctx := context.Background()

	if err := repo.Add(ctx, "EXP-001", "user-1"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := repo.Add(ctx, "EXP-001", "user-1"); err != nil {
		t.Fatalf("repeated Add failed: %v", err)
	}
	if err := repo.Add(ctx, "EXP-001", "user-2"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if n, _ := repo.Count(ctx, "EXP-001"); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if ok, _ := repo.Exists(ctx, "EXP-001", "user-2"); !ok {
		t.Error("expected user-2 vote to exist")
	}

	if err := repo.Remove(ctx, "EXP-001", "user-2"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := repo.Exists(ctx, "EXP-001", "user-2"); ok {
		t.Error("expected user-2 vote to be gone")
	}

	if err := repo.Clear(ctx, "EXP-001"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := repo.Count(ctx, "EXP-001"); n != 0 {
		t.Errorf("Count after Clear = %d, want 0", n)
	}
}
