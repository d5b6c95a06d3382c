package expedition

import (
	"testing"

	"github.com/example/bastion/internal/domainerr"
)

func TestCanLock(t *testing.T) {
	tests := []struct {
		name        string
		ctx         LockContext
		wantAllowed bool
		wantCode    domainerr.Code
		wantReason  string
	}{
		{
			name:        "can lock planning expedition with members",
			ctx:         LockContext{ExpeditionID: "EXP-001", Status: StatusPlanning, MemberCount: 2},
			wantAllowed: true,
		},
		{
			name:        "cannot lock locked expedition",
			ctx:         LockContext{ExpeditionID: "EXP-001", Status: StatusLocked, MemberCount: 2},
			wantAllowed: false,
			wantCode:    domainerr.CodeInvalidState,
			wantReason:  "can only lock PLANNING expeditions (EXP-001 is LOCKED)",
		},
		{
			name:        "cannot lock empty roster",
			ctx:         LockContext{ExpeditionID: "EXP-002", Status: StatusPlanning, MemberCount: 0},
			wantAllowed: false,
			wantCode:    domainerr.CodeEmptyRoster,
			wantReason:  "cannot lock EXP-002: no members",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanLock(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed {
				if result.Reason != tt.wantReason {
					t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
				}
				if got := domainerr.CodeOf(result.Error()); got != tt.wantCode {
					t.Errorf("Code = %q, want %q", got, tt.wantCode)
				}
			}
		})
	}
}

func TestStatusGuards(t *testing.T) {
	tests := []struct {
		name   string
		guard  func(StatusContext) GuardResult
		status Status
		want   bool
	}{
		{"depart locked", CanDepart, StatusLocked, true},
		{"depart planning", CanDepart, StatusPlanning, false},
		{"depart departed", CanDepart, StatusDeparted, false},
		{"return departed", CanReturn, StatusDeparted, true},
		{"return locked", CanReturn, StatusLocked, true},
		{"return planning", CanReturn, StatusPlanning, false},
		{"return returned", CanReturn, StatusReturned, false},
		{"cancel locked", CanCancel, StatusLocked, true},
		{"cancel departed", CanCancel, StatusDeparted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.guard(StatusContext{ExpeditionID: "EXP-001", Status: tt.status})
			if result.Allowed != tt.want {
				t.Errorf("Allowed = %v, want %v (%s)", result.Allowed, tt.want, result.Reason)
			}
		})
	}
}

func TestCanJoin(t *testing.T) {
	base := RosterContext{
		ExpeditionID:     "EXP-001",
		Status:           StatusPlanning,
		CharacterID:      "CHAR-001",
		CharacterTownID:  "TOWN-001",
		ExpeditionTownID: "TOWN-001",
	}

	tests := []struct {
		name        string
		mutate      func(*RosterContext)
		wantAllowed bool
		wantReason  string
	}{
		{name: "can join planning expedition", mutate: func(*RosterContext) {}, wantAllowed: true},
		{
			name:       "cannot join locked expedition",
			mutate:     func(c *RosterContext) { c.Status = StatusLocked },
			wantReason: "can only join PLANNING expeditions (EXP-001 is LOCKED)",
		},
		{
			name:       "dead cannot join",
			mutate:     func(c *RosterContext) { c.CharacterDead = true },
			wantReason: "character CHAR-001 is dead",
		},
		{
			name:       "other town cannot join",
			mutate:     func(c *RosterContext) { c.CharacterTownID = "TOWN-002" },
			wantReason: "character CHAR-001 does not live in TOWN-001",
		},
		{
			name:       "cannot join twice",
			mutate:     func(c *RosterContext) { c.AlreadyMember = true },
			wantReason: "character CHAR-001 already in EXP-001",
		},
		{
			name:       "cannot be in two expeditions",
			mutate:     func(c *RosterContext) { c.ActiveExpeditionID = "EXP-007" },
			wantReason: "character CHAR-001 is already in expedition EXP-007",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := base
			tt.mutate(&ctx)
			result := CanJoin(ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanLeave(t *testing.T) {
	ok := CanLeave(RosterContext{ExpeditionID: "EXP-001", Status: StatusPlanning, CharacterID: "CHAR-001", AlreadyMember: true})
	if !ok.Allowed {
		t.Errorf("expected member to leave planning expedition: %s", ok.Reason)
	}

	notMember := CanLeave(RosterContext{ExpeditionID: "EXP-001", Status: StatusPlanning, CharacterID: "CHAR-009"})
	if notMember.Allowed || domainerr.CodeOf(notMember.Error()) != domainerr.CodeNotFound {
		t.Errorf("expected NOT_FOUND for non-member, got %+v", notMember)
	}

	departed := CanLeave(RosterContext{ExpeditionID: "EXP-001", Status: StatusDeparted, CharacterID: "CHAR-001", AlreadyMember: true})
	if departed.Allowed {
		t.Errorf("expected leave to be refused once departed")
	}
}

func TestCanVoteAndSetDirection(t *testing.T) {
	for _, guard := range []func(CrewActionContext) GuardResult{CanVote, CanSetDirection} {
		if r := guard(CrewActionContext{ExpeditionID: "EXP-001", Status: StatusDeparted, ActorID: "u1", IsMember: true}); !r.Allowed {
			t.Errorf("expected member of departed expedition to be allowed: %s", r.Reason)
		}
		if r := guard(CrewActionContext{ExpeditionID: "EXP-001", Status: StatusLocked, ActorID: "u1", IsMember: true}); r.Allowed {
			t.Errorf("expected locked expedition to be refused")
		}
		if r := guard(CrewActionContext{ExpeditionID: "EXP-001", Status: StatusDeparted, ActorID: "u2"}); r.Allowed {
			t.Errorf("expected non-member to be refused")
		}
	}
}

func TestCanEmergencyReturn(t *testing.T) {
	tests := []struct {
		name     string
		ctx      EmergencyReturnContext
		wantCode domainerr.Code
	}{
		{
			name: "living crew can return",
			ctx:  EmergencyReturnContext{ExpeditionID: "EXP-001", Status: StatusDeparted, MemberCount: 3, LivingCount: 1},
		},
		{
			name:     "empty roster blocked",
			ctx:      EmergencyReturnContext{ExpeditionID: "EXP-001", Status: StatusDeparted},
			wantCode: domainerr.CodeEmptyRoster,
		},
		{
			name:     "all dead blocked",
			ctx:      EmergencyReturnContext{ExpeditionID: "EXP-001", Status: StatusDeparted, MemberCount: 2, LivingCount: 0},
			wantCode: domainerr.CodeAllMembersDead,
		},
		{
			name:     "not departed",
			ctx:      EmergencyReturnContext{ExpeditionID: "EXP-001", Status: StatusReturned, MemberCount: 2, LivingCount: 2},
			wantCode: domainerr.CodeInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domainerr.CodeOf(CanEmergencyReturn(tt.ctx).Error())
			if got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}
