package app

import (
	"context"
	"testing"
	"time"

	"github.com/example/bastion/internal/core/events"
)

func TestSpreadDepression(t *testing.T) {
	env := newTestEnv(t)
	env.seedTown(t, "TOWN-001")
	env.seedTown(t, "TOWN-002")
	env.seedCharacter(t, "CHAR-001", "TOWN-001")
	env.seedCharacter(t, "CHAR-002", "TOWN-001")
	env.seedCharacter(t, "CHAR-003", "TOWN-002")
	env.setVitals(t, "CHAR-001", 5, 0, 4, 2) // depressed
	env.setVitals(t, "CHAR-002", 5, 3, 4, 2)
	env.setVitals(t, "CHAR-003", 5, 3, 4, 2) // other town

	report := env.contagion.SpreadDepression(context.Background(), midnight(1))

	if report.Processed != 1 || report.Succeeded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if pm := env.character(t, "CHAR-002").PM; pm != 2 {
		t.Errorf("CHAR-002 pm = %d, want 2", pm)
	}
	if pm := env.character(t, "CHAR-003").PM; pm != 3 {
		t.Errorf("CHAR-003 lives elsewhere and must be spared, pm = %d", pm)
	}
	if pm := env.character(t, "CHAR-001").PM; pm != 0 {
		t.Errorf("source pm changed to %d", pm)
	}

	ev := report.Events[0]
	if ev.Kind != events.KindPMContagion || ev.SourceCharacterID != "CHAR-001" || ev.CharacterID != "CHAR-002" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestSpreadDepression_ExpeditionIsolatesCrew(t *testing.T) {
	env := newTestEnv(t)
	env.seedTown(t, "TOWN-001")
	env.seedCharacter(t, "CHAR-001", "TOWN-001")
	env.seedCharacter(t, "CHAR-002", "TOWN-001")
	env.seedCharacter(t, "CHAR-003", "TOWN-001")
	env.setVitals(t, "CHAR-001", 5, 0, 4, 2) // depressed, in town
	env.seedExpedition(t, "EXP-001", "TOWN-001", "DEPARTED", testNow, "CHAR-002")
	env.seedExpedition(t, "EXP-002", "TOWN-001", "PLANNING", testNow, "CHAR-003")

	report := env.contagion.SpreadDepression(context.Background(), midnight(1))

	if report.Succeeded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if pm := env.character(t, "CHAR-002").PM; pm != 5 {
		t.Errorf("a DEPARTED crew member is out of reach, pm = %d", pm)
	}
	// PLANNING expeditions have not left town.
	if pm := env.character(t, "CHAR-003").PM; pm != 4 {
		t.Errorf("CHAR-003 pm = %d, want 4", pm)
	}
}

func TestSpreadDepression_NoEligiblePeer(t *testing.T) {
	env := newTestEnv(t)
	env.seedTown(t, "TOWN-001")
	env.seedCharacter(t, "CHAR-001", "TOWN-001")
	env.seedCharacter(t, "CHAR-002", "TOWN-001")
	env.setVitals(t, "CHAR-001", 5, 0, 4, 2)
	env.setVitals(t, "CHAR-002", 5, 0, 4, 2)

	report := env.contagion.SpreadDepression(context.Background(), midnight(1))

	if report.Processed != 0 || len(report.Events) != 0 {
		t.Errorf("nobody left to drag down, got %+v", report)
	}
}

func TestSpreadDepression_VictimFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	env.seedTown(t, "TOWN-001")
	for _, id := range []string{"CHAR-001", "CHAR-002", "CHAR-003"} {
		env.seedCharacter(t, id, "TOWN-001")
	}
	env.setVitals(t, "CHAR-001", 5, 0, 4, 2)
	env.setVitals(t, "CHAR-002", 5, 0, 4, 2)
	env.setVitals(t, "CHAR-003", 5, 1, 4, 2) // the only possible victim

	report := env.contagion.SpreadDepression(context.Background(), midnight(1))

	if report.Processed != 2 || report.Succeeded != 1 || report.Skipped != 1 {
		t.Errorf("second hit must be a no-op, got %+v", report)
	}
	if pm := env.character(t, "CHAR-003").PM; pm != 0 {
		t.Errorf("CHAR-003 pm = %d, want 0", pm)
	}
}

// Replaying the day must not let a character depressed by that day's pass
// spread in turn.
func TestSpreadDepression_ReplayDoesNotChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTown(t, "TOWN-001")
	env.seedCharacter(t, "CHAR-001", "TOWN-001")
	env.seedCharacter(t, "CHAR-002", "TOWN-001")
	env.setVitals(t, "CHAR-001", 5, 0, 4, 2)
	env.setVitals(t, "CHAR-002", 5, 1, 4, 2)

	first := env.contagion.SpreadDepression(ctx, midnight(1))
	if first.Succeeded != 1 {
		t.Fatalf("unexpected first pass: %+v", first)
	}
	if pm := env.character(t, "CHAR-002").PM; pm != 0 {
		t.Fatalf("CHAR-002 pm = %d, want 0", pm)
	}

	// A healthy peer joins before the day's pass runs again.
	env.seedCharacter(t, "CHAR-003", "TOWN-001")

	replay := env.contagion.SpreadDepression(ctx, midnight(1).Add(10*time.Minute))
	if replay.Processed != 1 || replay.Skipped != 1 || len(replay.Events) != 0 {
		t.Errorf("replay should only revisit CHAR-001, got %+v", replay)
	}
	if pm := env.character(t, "CHAR-003").PM; pm != 5 {
		t.Errorf("CHAR-003 pm = %d, want 5", pm)
	}

	next := env.contagion.SpreadDepression(ctx, midnight(2))
	if next.Processed != 2 {
		t.Errorf("next day both depressed characters spread, got %+v", next)
	}
}
