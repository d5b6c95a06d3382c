package expedition

import "testing"

func TestDecideUpkeep(t *testing.T) {
	tests := []struct {
		name string
		in   UpkeepInput
		want UpkeepDecision
	}{
		{
			name: "departed member pays",
			in:   UpkeepInput{Status: StatusDeparted, PA: 2, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepPaid, NewPA: 0, Paid: 2},
		},
		{
			name: "locked member pays",
			in:   UpkeepInput{Status: StatusLocked, PA: 4, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepPaid, NewPA: 2, Paid: 2},
		},
		{
			name: "departed member short of PA is sent home with nothing",
			in:   UpkeepInput{Status: StatusDeparted, PA: 1, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepCatastrophicReturn, NewPA: 0, Paid: 1, Remove: true},
		},
		{
			name: "departed member with zero PA",
			in:   UpkeepInput{Status: StatusDeparted, PA: 0, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepCatastrophicReturn, NewPA: 0, Paid: 0, Remove: true},
		},
		{
			name: "locked member short of PA keeps it",
			in:   UpkeepInput{Status: StatusLocked, PA: 1, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepCannotDepart, NewPA: 1, Remove: true},
		},
		{
			name: "pending emergency return is skipped",
			in:   UpkeepInput{Status: StatusDeparted, PendingEmergencyReturn: true, PA: 0, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepSkipped, NewPA: 0},
		},
		{
			name: "dead member is skipped",
			in:   UpkeepInput{Status: StatusDeparted, MemberDead: true, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepSkipped},
		},
		{
			name: "planning is not charged",
			in:   UpkeepInput{Status: StatusPlanning, PA: 3, Cost: 2},
			want: UpkeepDecision{Outcome: UpkeepSkipped, NewPA: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideUpkeep(tt.in); got != tt.want {
				t.Errorf("DecideUpkeep() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEmergencyThreshold(t *testing.T) {
	tests := []struct {
		members int
		want    int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{0, 1},
	}

	for _, tt := range tests {
		if got := EmergencyThreshold(tt.members, 0.5); got != tt.want {
			t.Errorf("EmergencyThreshold(%d) = %d, want %d", tt.members, got, tt.want)
		}
	}
}

func TestVotesReachThreshold(t *testing.T) {
	if VotesReachThreshold(1, 3, 0.5) {
		t.Errorf("1 of 3 should not reach threshold")
	}
	if !VotesReachThreshold(2, 3, 0.5) {
		t.Errorf("2 of 3 should reach threshold")
	}
	if VotesReachThreshold(0, 0, 0.5) {
		t.Errorf("empty roster never reaches threshold")
	}
}
