package events

import (
	"testing"
	"time"
)

func TestSummary(t *testing.T) {
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "death",
			ev:   CharacterDied("CHAR-001", "agony", at),
			want: "CHAR-001 died (agony)",
		},
		{
			name: "emergency return sums losses",
			ev: EmergencyReturn("EXP-001", "TOWN-001", []ResourceLoss{
				{ResourceTypeID: "RES-001", Lost: 2, Remaining: 4},
				{ResourceTypeID: "RES-002", Lost: 1, Remaining: 0},
			}, at),
			want: "EXP-001 emergency return to TOWN-001, 3 unit(s) lost",
		},
		{
			name: "catastrophic return",
			ev:   CatastrophicReturn("EXP-002", "CHAR-004", 1, at),
			want: "CHAR-004 could not afford upkeep and left EXP-002 (paid 1 PA)",
		},
		{
			name: "contagion",
			ev:   PMContagion("CHAR-001", "CHAR-002", at),
			want: "CHAR-001 dragged CHAR-002's morale down",
		},
		{
			name: "departure carries return time",
			ev:   ExpeditionDeparted("EXP-003", "TOWN-001", at.Add(72*time.Hour), at),
			want: "EXP-003 departed, back 2026-05-04T08:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
