package sqlite_test

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"testing"

	"github.com/example/bastion/internal/adapters/sqlite"
	"github.com/example/bastion/internal/core/ledger"
	"github.com/example/bastion/internal/domainerr"
)

func setupLedger(t *testing.T) (*sql.DB, *sqlite.StockRepository) {
	t.Helper()
	db := setupTestDB(t)
	seedTown(t, db, "", "")
	seedResourceType(t, db, "RES-001", "Vivres")
	seedResourceType(t, db, "RES-002", "Bois")
	seedExpedition(t, db, "EXP-001", "TOWN-001", "PLANNING")
	return db, sqlite.NewStockRepository(db)
}

func total(t *testing.T, repo *sqlite.StockRepository, resourceTypeID string) int {
	t.Helper()
	ctx := context.Background()
	city, err := repo.Get(ctx, ledger.City("TOWN-001"), resourceTypeID)
	if err != nil {
		t.Fatalf("Get city failed: %v", err)
	}
	exp, err := repo.Get(ctx, ledger.Expedition("EXP-001"), resourceTypeID)
	if err != nil {
		t.Fatalf("Get expedition failed: %v", err)
	}
	return city + exp
}

func TestStockRepository_IncrementDecrement(t *testing.T) {
	_, repo := setupLedger(t)
	ctx := context.Background()
	city := ledger.City("TOWN-001")

	if q, _ := repo.Get(ctx, city, "RES-001"); q != 0 {
		t.Errorf("absent row should read 0, got %d", q)
	}

	if err := repo.Increment(ctx, city, "RES-001", 10); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := repo.Increment(ctx, city, "RES-001", 5); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if q, _ := repo.Get(ctx, city, "RES-001"); q != 15 {
		t.Errorf("quantity = %d, want 15", q)
	}

	if err := repo.Decrement(ctx, city, "RES-001", 15); err != nil {
		t.Fatalf("Decrement failed: %v", err)
	}
	err := repo.Decrement(ctx, city, "RES-001", 1)
	if domainerr.CodeOf(err) != domainerr.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	if q, _ := repo.Get(ctx, city, "RES-001"); q != 0 {
		t.Errorf("decrement must not clamp or go negative, got %d", q)
	}
}

func TestStockRepository_RejectsBadInput(t *testing.T) {
	_, repo := setupLedger(t)
	ctx := context.Background()
	city := ledger.City("TOWN-001")

	tests := []struct {
		name string
		err  error
	}{
		{"zero increment", repo.Increment(ctx, city, "RES-001", 0)},
		{"negative decrement", repo.Decrement(ctx, city, "RES-001", -2)},
		{"empty location", repo.Increment(ctx, ledger.Location{Type: ledger.LocationCity}, "RES-001", 1)},
		{"self transfer", repo.Transfer(ctx, city, city, "RES-001", 1)},
	}
	for _, tt := range tests {
		if domainerr.CodeOf(tt.err) != domainerr.CodeValidation {
			t.Errorf("%s: expected VALIDATION, got %v", tt.name, tt.err)
		}
	}
}

func TestStockRepository_TransferConservesTotal(t *testing.T) {
	_, repo := setupLedger(t)
	ctx := context.Background()
	city, exp := ledger.City("TOWN-001"), ledger.Expedition("EXP-001")

	if err := repo.Increment(ctx, city, "RES-001", 10); err != nil {
		t.Fatal(err)
	}

	amounts := []int{3, 4, 2}
	for _, a := range amounts {
		if err := repo.Transfer(ctx, city, exp, "RES-001", a); err != nil {
			t.Fatalf("Transfer(%d) failed: %v", a, err)
		}
		if got := total(t, repo, "RES-001"); got != 10 {
			t.Fatalf("total after transfer = %d, want 10", got)
		}
	}

	err := repo.Transfer(ctx, city, exp, "RES-001", 2)
	if domainerr.CodeOf(err) != domainerr.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	if q, _ := repo.Get(ctx, exp, "RES-001"); q != 9 {
		t.Errorf("failed transfer must not credit destination, got %d", q)
	}
	if got := total(t, repo, "RES-001"); got != 10 {
		t.Errorf("total after failed transfer = %d, want 10", got)
	}
}

func TestStockRepository_ReturnAllToCity(t *testing.T) {
	_, repo := setupLedger(t)
	ctx := context.Background()
	city, exp := ledger.City("TOWN-001"), ledger.Expedition("EXP-001")

	_ = repo.Increment(ctx, city, "RES-001", 4)
	_ = repo.Increment(ctx, exp, "RES-001", 6)
	_ = repo.Increment(ctx, exp, "RES-002", 3)

	moved, err := repo.ReturnAllToCity(ctx, "EXP-001", "TOWN-001")
	if err != nil {
		t.Fatalf("ReturnAllToCity failed: %v", err)
	}
	if len(moved) != 2 || moved[0].ResourceName != "Vivres" || moved[0].Quantity != 6 {
		t.Errorf("unexpected snapshot: %+v", moved)
	}

	if q, _ := repo.Get(ctx, city, "RES-001"); q != 10 {
		t.Errorf("city Vivres = %d, want 10", q)
	}
	if q, _ := repo.Get(ctx, city, "RES-002"); q != 3 {
		t.Errorf("city Bois = %d, want 3", q)
	}
	rows, _ := repo.ListAt(ctx, exp)
	if len(rows) != 0 {
		t.Errorf("expedition rows should be deleted, got %+v", rows)
	}
}

func TestStockRepository_EmergencyReturnWithLoss_Bounds(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		_, repo := setupLedger(t)
		ctx := context.Background()
		city, exp := ledger.City("TOWN-001"), ledger.Expedition("EXP-001")

		_ = repo.Increment(ctx, exp, "RES-001", 7)
		_ = repo.Increment(ctx, exp, "RES-002", 1)

		rng := rand.New(rand.NewPCG(seed, seed*31))
		losses, err := repo.EmergencyReturnWithLoss(ctx, "EXP-001", "TOWN-001", rng)
		if err != nil {
			t.Fatalf("seed %d: EmergencyReturnWithLoss failed: %v", seed, err)
		}
		if len(losses) != 2 {
			t.Fatalf("seed %d: expected 2 loss lines, got %d", seed, len(losses))
		}

		for _, l := range losses {
			if l.Lost < 0 || l.Lost > ledger.MaxEmergencyLoss(l.Original) {
				t.Errorf("seed %d: lost %d out of bounds for %d", seed, l.Lost, l.Original)
			}
			if l.Remaining != l.Original-l.Lost {
				t.Errorf("seed %d: remaining %d != %d - %d", seed, l.Remaining, l.Original, l.Lost)
			}
			if q, _ := repo.Get(ctx, city, l.ResourceTypeID); q != l.Remaining {
				t.Errorf("seed %d: city %s = %d, want %d", seed, l.ResourceTypeID, q, l.Remaining)
			}
		}

		rows, _ := repo.ListAt(ctx, exp)
		if len(rows) != 0 {
			t.Errorf("seed %d: expedition rows should be deleted", seed)
		}
	}
}
