package primary

import (
	"context"
	"time"

	"github.com/example/bastion/internal/core/events"
)

// ExpeditionService defines the primary port for expedition operations.
type ExpeditionService interface {
	// CreateExpedition creates a PLANNING expedition with its creator as first
	// member and escrows the provisions out of the town stock.
	CreateExpedition(ctx context.Context, req CreateExpeditionRequest) (*CreateExpeditionResponse, error)

	// GetExpedition retrieves an expedition with its roster and stock.
	GetExpedition(ctx context.Context, expeditionID string) (*Expedition, error)

	// ListExpeditions lists expeditions with optional filters.
	ListExpeditions(ctx context.Context, filters ExpeditionFilters) ([]*Expedition, error)

	// JoinExpedition adds a character to a PLANNING expedition.
	JoinExpedition(ctx context.Context, expeditionID, characterID string, now time.Time) error

	// LeaveExpedition removes a character from a PLANNING expedition.
	// The last member leaving terminates the expedition.
	LeaveExpedition(ctx context.Context, expeditionID, characterID string, now time.Time) (*LeaveResult, error)

	// SetDirection records today's heading for a DEPARTED expedition.
	SetDirection(ctx context.Context, expeditionID, characterID, direction string, now time.Time) error

	// Lock moves a PLANNING expedition to LOCKED.
	Lock(ctx context.Context, expeditionID string, now time.Time) (*Expedition, error)

	// Depart moves a LOCKED expedition to DEPARTED and schedules its return.
	Depart(ctx context.Context, expeditionID string, now time.Time) (*Expedition, error)

	// ReturnNormal brings a DEPARTED or LOCKED expedition home with all its stock.
	ReturnNormal(ctx context.Context, expeditionID string, now time.Time) (*ReturnResult, error)

	// Cancel is the admin escape hatch for a LOCKED expedition.
	Cancel(ctx context.Context, expeditionID string, now time.Time) (*ReturnResult, error)

	// ToggleEmergencyVote adds or withdraws a user's emergency-return vote.
	ToggleEmergencyVote(ctx context.Context, expeditionID, userID string, now time.Time) (*VoteResult, error)

	// AppendDailyDirections extends every DEPARTED expedition's path.
	AppendDailyDirections(ctx context.Context, now time.Time) PhaseReport

	// LockDue locks PLANNING expeditions created before today.
	LockDue(ctx context.Context, now time.Time) PhaseReport

	// DeductDailyCosts charges the daily PA upkeep to LOCKED and DEPARTED members.
	DeductDailyCosts(ctx context.Context, now time.Time) PhaseReport

	// ForceEmergencyReturns brings home every DEPARTED expedition whose crew voted to.
	ForceEmergencyReturns(ctx context.Context, now time.Time) PhaseReport

	// ReturnDue brings home every DEPARTED expedition whose return time has come.
	ReturnDue(ctx context.Context, now time.Time) PhaseReport

	// DepartLocked departs every LOCKED expedition.
	DepartLocked(ctx context.Context, now time.Time) PhaseReport
}

// CreateExpeditionRequest contains parameters for creating an expedition.
type CreateExpeditionRequest struct {
	TownID           string
	CreatorID        string // character ID
	Name             string
	DurationDays     int
	InitialDirection string // optional
	Provisions       []Provision
	Now              time.Time
}

// Provision is a quantity of a named resource taken from the town.
type Provision struct {
	Resource string
	Quantity int
}

// CreateExpeditionResponse contains the result of creating an expedition.
type CreateExpeditionResponse struct {
	ExpeditionID string
	Expedition   *Expedition
}

// ExpeditionFilters contains filter options for listing expeditions.
type ExpeditionFilters struct {
	TownID string
	Status string
}

// LeaveResult describes a roster departure.
type LeaveResult struct {
	Terminated bool // the expedition was left empty and returned
	Events     []events.Event
}

// ReturnResult describes an expedition coming home.
type ReturnResult struct {
	Expedition *Expedition
	Returned   []*StockLine
	Events     []events.Event
}

// VoteResult describes the state of an emergency vote after a toggle.
type VoteResult struct {
	ExpeditionID           string
	Voted                  bool // the user's vote is now present
	Votes                  int
	Members                int
	Threshold              int
	PendingEmergencyReturn bool
}

// Expedition represents an expedition at the port boundary.
// Status lifecycle: PLANNING → LOCKED → DEPARTED → RETURNED
type Expedition struct {
	ID                     string
	TownID                 string
	Name                   string
	CreatedBy              string
	Status                 string
	DurationDays           int
	InitialDirection       string
	CurrentDayDirection    string
	DirectionSetBy         string
	Path                   []string
	ReturnAt               *time.Time
	PendingEmergencyReturn bool
	CreatedAt              time.Time
	Members                []string
	Votes                  int
	Stock                  []*StockLine
}
