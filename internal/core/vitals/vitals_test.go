package vitals

import (
	"testing"
	"time"
)

var (
	lim = DefaultLimits()
	loc = time.UTC
	t0  = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
)

func intp(v int) *int { return &v }

func timep(t time.Time) *time.Time { return &t }

func TestApplyTransition(t *testing.T) {
	earlier := t0.Add(-30 * time.Hour)

	tests := []struct {
		name           string
		current        State
		hp, hunger     *int
		wantHP         int
		wantHunger     int
		wantAgonySince *time.Time
		wantEntered    bool
		wantLeft       bool
	}{
		{
			name:       "no change keeps healthy character",
			current:    State{HP: 4, Hunger: 3},
			wantHP:     4,
			wantHunger: 3,
		},
		{
			name:           "hunger reaching zero forces hp 1 and enters agony",
			current:        State{HP: 4, Hunger: 1},
			hunger:         intp(0),
			wantHP:         1,
			wantHunger:     0,
			wantAgonySince: &t0,
			wantEntered:    true,
		},
		{
			name:           "hp 1 enters agony independent of hunger",
			current:        State{HP: 3, Hunger: 4},
			hp:             intp(1),
			wantHP:         1,
			wantHunger:     4,
			wantAgonySince: &t0,
			wantEntered:    true,
		},
		{
			name:           "already in agony keeps original start",
			current:        State{HP: 1, Hunger: 0, AgonySince: timep(earlier)},
			hunger:         intp(0),
			wantHP:         1,
			wantHunger:     0,
			wantAgonySince: &earlier,
		},
		{
			name:       "healing above 1 clears agony",
			current:    State{HP: 1, Hunger: 2, AgonySince: timep(earlier)},
			hp:         intp(3),
			wantHP:     3,
			wantHunger: 2,
			wantLeft:   true,
		},
		{
			name:           "eating while hp stays 1 does not leave agony",
			current:        State{HP: 1, Hunger: 0, AgonySince: timep(earlier)},
			hunger:         intp(2),
			wantHP:         1,
			wantHunger:     2,
			wantAgonySince: &earlier,
		},
		{
			name:       "values are clamped",
			current:    State{HP: 4, Hunger: 3},
			hp:         intp(9),
			hunger:     intp(12),
			wantHP:     5,
			wantHunger: 4,
		},
		{
			name:       "dead character stays dead",
			current:    State{IsDead: true},
			hp:         intp(5),
			hunger:     intp(4),
			wantHP:     0,
			wantHunger: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyTransition(tt.current, tt.hp, tt.hunger, t0, lim)
			if got.HP != tt.wantHP {
				t.Errorf("HP = %d, want %d", got.HP, tt.wantHP)
			}
			if got.Hunger != tt.wantHunger {
				t.Errorf("Hunger = %d, want %d", got.Hunger, tt.wantHunger)
			}
			switch {
			case tt.wantAgonySince == nil && got.AgonySince != nil:
				t.Errorf("AgonySince = %v, want nil", *got.AgonySince)
			case tt.wantAgonySince != nil && (got.AgonySince == nil || !got.AgonySince.Equal(*tt.wantAgonySince)):
				t.Errorf("AgonySince = %v, want %v", got.AgonySince, *tt.wantAgonySince)
			}
			if got.EnteredAgony != tt.wantEntered {
				t.Errorf("EnteredAgony = %v, want %v", got.EnteredAgony, tt.wantEntered)
			}
			if got.LeftAgony != tt.wantLeft {
				t.Errorf("LeftAgony = %v, want %v", got.LeftAgony, tt.wantLeft)
			}
		})
	}
}

func TestApplyTransition_Idempotent(t *testing.T) {
	start := State{HP: 3, Hunger: 1}
	first := ApplyTransition(start, nil, intp(0), t0, lim)

	after := start
	after.HP, after.Hunger, after.AgonySince = first.HP, first.Hunger, first.AgonySince
	second := ApplyTransition(after, nil, intp(0), t0.Add(time.Hour), lim)

	if second.EnteredAgony {
		t.Errorf("second application re-entered agony")
	}
	if second.HP != first.HP || second.Hunger != first.Hunger {
		t.Errorf("second = %+v, first = %+v", second, first)
	}
	if !second.AgonySince.Equal(*first.AgonySince) {
		t.Errorf("agony start moved from %v to %v", *first.AgonySince, *second.AgonySince)
	}
}

func TestApplyTransition_InvariantsHold(t *testing.T) {
	for hp := 0; hp <= lim.MaxHP; hp++ {
		for hunger := 0; hunger <= lim.MaxHunger; hunger++ {
			for _, agony := range []bool{false, true} {
				current := State{HP: 3, Hunger: 3, PM: 3, PA: 2}
				if agony {
					current = State{HP: 1, Hunger: 1, PM: 3, PA: 2, AgonySince: timep(t0.Add(-time.Hour))}
				}
				tr := ApplyTransition(current, intp(hp), intp(hunger), t0, lim)
				next := current
				next.HP, next.Hunger, next.AgonySince = tr.HP, tr.Hunger, tr.AgonySince
				if next.HP == 0 {
					// hp 0 is resolved to death by the next daily pass.
					continue
				}
				if broken := CheckInvariants(next, lim); len(broken) > 0 {
					t.Errorf("hp=%d hunger=%d agony=%v broke invariants: %v", hp, hunger, agony, broken)
				}
			}
		}
	}
}

func TestDecayHunger(t *testing.T) {
	tests := []struct {
		name        string
		in          State
		wantHP      int
		wantHunger  int
		wantHealed  int
		wantEntered bool
		wantLeft    bool
	}{
		{
			name:       "sated character heals before hunger drops",
			in:         State{HP: 3, Hunger: 4},
			wantHP:     4,
			wantHunger: 3,
			wantHealed: 1,
		},
		{
			name:       "healing capped at max hp",
			in:         State{HP: 5, Hunger: 4},
			wantHP:     5,
			wantHunger: 3,
		},
		{
			name:       "sated character in agony heals out of it",
			in:         State{HP: 1, Hunger: 4, AgonySince: timep(t0.Add(-time.Hour))},
			wantHP:     2,
			wantHunger: 3,
			wantHealed: 1,
			wantLeft:   true,
		},
		{
			name:        "reaching zero enters agony",
			in:          State{HP: 4, Hunger: 1},
			wantHP:      1,
			wantHunger:  0,
			wantEntered: true,
		},
		{
			name:       "starving stays at zero without re-entering",
			in:         State{HP: 1, Hunger: 0, AgonySince: timep(t0.Add(-24 * time.Hour))},
			wantHP:     1,
			wantHunger: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecayHunger(tt.in, t0, lim)
			if got.State.HP != tt.wantHP {
				t.Errorf("HP = %d, want %d", got.State.HP, tt.wantHP)
			}
			if got.State.Hunger != tt.wantHunger {
				t.Errorf("Hunger = %d, want %d", got.State.Hunger, tt.wantHunger)
			}
			if got.Healed != tt.wantHealed {
				t.Errorf("Healed = %d, want %d", got.Healed, tt.wantHealed)
			}
			if got.EnteredAgony != tt.wantEntered {
				t.Errorf("EnteredAgony = %v, want %v", got.EnteredAgony, tt.wantEntered)
			}
			if got.LeftAgony != tt.wantLeft {
				t.Errorf("LeftAgony = %v, want %v", got.LeftAgony, tt.wantLeft)
			}
		})
	}
}

func TestDecayHunger_DeadUntouched(t *testing.T) {
	dead := Kill(State{HP: 3, Hunger: 2, PA: 3})
	got := DecayHunger(dead, t0, lim)
	if got.State != dead {
		t.Errorf("dead state changed: %+v", got.State)
	}
}

func TestRegenerate(t *testing.T) {
	yesterday := t0.Add(-24 * time.Hour)

	tests := []struct {
		name         string
		in           State
		wantPA       int
		wantGained   int
		wantDied     bool
		wantLeft     bool
		wantAgonySet bool
	}{
		{
			name:       "normal regeneration adds 2",
			in:         State{HP: 5, Hunger: 3, PA: 1, LastPAUpdate: yesterday},
			wantPA:     3,
			wantGained: 2,
		},
		{
			name:       "starving regeneration adds 1",
			in:         State{HP: 4, Hunger: 1, PA: 0, LastPAUpdate: yesterday},
			wantPA:     1,
			wantGained: 1,
		},
		{
			name:       "capped at 4",
			in:         State{HP: 5, Hunger: 3, PA: 3, LastPAUpdate: yesterday},
			wantPA:     4,
			wantGained: 1,
		},
		{
			name:   "same day does not regenerate",
			in:     State{HP: 5, Hunger: 3, PA: 1, LastPAUpdate: t0.Add(2 * time.Hour)},
			wantPA: 1,
		},
		{
			name:   "full PA does not regenerate",
			in:     State{HP: 5, Hunger: 3, PA: 4, LastPAUpdate: yesterday},
			wantPA: 4,
		},
		{
			name:     "hp 0 dies",
			in:       State{HP: 0, Hunger: 2, PA: 3, LastPAUpdate: yesterday},
			wantPA:   0,
			wantDied: true,
		},
		{
			name:     "two days in agony dies without regeneration",
			in:       State{HP: 1, Hunger: 0, PA: 1, LastPAUpdate: yesterday, AgonySince: timep(t0.Add(-48 * time.Hour))},
			wantPA:   0,
			wantDied: true,
		},
		{
			name:         "one day in agony survives and regenerates",
			in:           State{HP: 1, Hunger: 0, PA: 1, LastPAUpdate: yesterday, AgonySince: timep(yesterday)},
			wantPA:       2,
			wantGained:   1,
			wantAgonySet: true,
		},
		{
			name:       "healed character leaves agony in pre-pass",
			in:         State{HP: 3, Hunger: 3, PA: 2, LastPAUpdate: yesterday, AgonySince: timep(t0.Add(-72 * time.Hour))},
			wantPA:     4,
			wantGained: 2,
			wantLeft:   true,
		},
		{
			name:         "hp 1 outside agony is repaired",
			in:           State{HP: 1, Hunger: 2, PA: 4, LastPAUpdate: yesterday},
			wantPA:       4,
			wantAgonySet: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Regenerate(tt.in, t0, loc, lim)
			if got.State.PA != tt.wantPA {
				t.Errorf("PA = %d, want %d", got.State.PA, tt.wantPA)
			}
			if got.PAGained != tt.wantGained {
				t.Errorf("PAGained = %d, want %d", got.PAGained, tt.wantGained)
			}
			if got.Died != tt.wantDied {
				t.Errorf("Died = %v, want %v", got.Died, tt.wantDied)
			}
			if got.LeftAgony != tt.wantLeft {
				t.Errorf("LeftAgony = %v, want %v", got.LeftAgony, tt.wantLeft)
			}
			if (got.State.AgonySince != nil) != tt.wantAgonySet {
				t.Errorf("AgonySince set = %v, want %v", got.State.AgonySince != nil, tt.wantAgonySet)
			}
			if tt.wantDied {
				if !got.State.IsDead || got.State.HP != 0 || got.State.Hunger != 0 {
					t.Errorf("dead state = %+v", got.State)
				}
			}
			if broken := CheckInvariants(got.State, lim); len(broken) > 0 {
				t.Errorf("invariants broken: %v", broken)
			}
		})
	}
}

func TestRegenerate_IdempotentSameDay(t *testing.T) {
	in := State{HP: 4, Hunger: 3, PA: 0, LastPAUpdate: t0.Add(-24 * time.Hour)}
	first := Regenerate(in, t0, loc, lim)
	second := Regenerate(first.State, t0.Add(5*time.Minute), loc, lim)

	if second.PAGained != 0 {
		t.Errorf("second pass gained %d PA", second.PAGained)
	}
	if second.State.PA != first.State.PA {
		t.Errorf("PA changed from %d to %d", first.State.PA, second.State.PA)
	}
}

func TestRegenerateDaily_Scenarios(t *testing.T) {
	yesterday := t0.Add(-24 * time.Hour)

	t.Run("starving member regenerates only 1", func(t *testing.T) {
		got := RegenerateDaily(State{HP: 4, Hunger: 1, PA: 0, LastPAUpdate: yesterday}, t0, loc, lim)
		if got.State.PA != 1 {
			t.Errorf("PA = %d, want 1", got.State.PA)
		}
		if got.State.Hunger != 0 || got.State.HP != 1 || !got.EnteredAgony {
			t.Errorf("expected hunger decay into agony, got %+v", got)
		}
	})

	t.Run("fed member regenerates 2", func(t *testing.T) {
		got := RegenerateDaily(State{HP: 4, Hunger: 3, PA: 0, LastPAUpdate: yesterday}, t0, loc, lim)
		if got.State.PA != 2 {
			t.Errorf("PA = %d, want 2", got.State.PA)
		}
		if got.State.Hunger != 2 {
			t.Errorf("Hunger = %d, want 2", got.State.Hunger)
		}
	})

	t.Run("starvation leads to death two days later", func(t *testing.T) {
		s := State{HP: 3, Hunger: 1, PA: 2, LastPAUpdate: yesterday}
		day0 := RegenerateDaily(s, t0, loc, lim)
		if day0.State.HP != 1 || day0.State.AgonySince == nil || !day0.EnteredAgony {
			t.Fatalf("day0 = %+v", day0)
		}
		day1 := RegenerateDaily(day0.State, t0.Add(24*time.Hour), loc, lim)
		if day1.Died {
			t.Fatalf("died after one day")
		}
		day2 := RegenerateDaily(day1.State, t0.Add(48*time.Hour), loc, lim)
		if !day2.Died || day2.State.HP != 0 || !day2.State.IsDead {
			t.Errorf("day2 = %+v, want dead", day2)
		}
	})
}
