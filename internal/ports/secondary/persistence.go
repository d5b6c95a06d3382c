// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/example/bastion/internal/core/ledger"
)

// TownRepository defines the secondary port for town persistence.
type TownRepository interface {
	// Create persists a new town.
	Create(ctx context.Context, town *TownRecord) error

	// GetByID retrieves a town by its ID.
	GetByID(ctx context.Context, id string) (*TownRecord, error)

	// List retrieves all towns.
	List(ctx context.Context) ([]*TownRecord, error)

	// GetNextID returns the next available town ID.
	GetNextID(ctx context.Context) (string, error)
}

// TownRecord represents a town as stored in persistence.
type TownRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CharacterRepository defines the secondary port for character persistence.
type CharacterRepository interface {
	// Create persists a new character.
	Create(ctx context.Context, character *CharacterRecord) error

	// GetByID retrieves a character by its ID.
	GetByID(ctx context.Context, id string) (*CharacterRecord, error)

	// List retrieves characters matching the given filters, ordered by ID.
	List(ctx context.Context, filters CharacterFilters) ([]*CharacterRecord, error)

	// UpdateVitals writes hp, pm, hunger, pa, death and agony fields.
	UpdateVitals(ctx context.Context, character *CharacterRecord) error

	// DecrementPM lowers pm by one unless the character is dead or already at 0.
	// Returns false when nothing changed.
	DecrementPM(ctx context.Context, id string, now time.Time) (bool, error)

	// GetNextID returns the next available character ID.
	GetNextID(ctx context.Context) (string, error)
}

// CharacterRecord represents a character as stored in persistence.
type CharacterRecord struct {
	ID           string
	UserID       string
	TownID       string
	Name         string
	HP           int
	PM           int
	Hunger       int
	PA           int
	IsDead       bool
	AgonySince   *time.Time // nil means not in agony
	LastPAUpdate time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CharacterFilters contains filter options for querying characters.
type CharacterFilters struct {
	TownID    string
	UserID    string
	AliveOnly bool
}

// ExpeditionRepository defines the secondary port for expedition and roster persistence.
type ExpeditionRepository interface {
	// Create persists a new expedition.
	Create(ctx context.Context, expedition *ExpeditionRecord) error

	// GetByID retrieves an expedition by its ID.
	GetByID(ctx context.Context, id string) (*ExpeditionRecord, error)

	// List retrieves expeditions matching the given filters, ordered by ID.
	List(ctx context.Context, filters ExpeditionFilters) ([]*ExpeditionRecord, error)

	// Update writes every mutable expedition field.
	Update(ctx context.Context, expedition *ExpeditionRecord) error

	// GetNextID returns the next available expedition ID.
	GetNextID(ctx context.Context) (string, error)

	// AddMember adds a character to the roster.
	AddMember(ctx context.Context, expeditionID, characterID string, joinedAt time.Time) error

	// RemoveMember removes a character from the roster.
	RemoveMember(ctx context.Context, expeditionID, characterID string) error

	// ClearMembers empties the roster.
	ClearMembers(ctx context.Context, expeditionID string) error

	// ListMembers returns the roster ordered by character ID.
	ListMembers(ctx context.Context, expeditionID string) ([]*MemberRecord, error)

	// ListMembersByStatus returns every roster entry of expeditions in the
	// given statuses, ordered by expedition then character.
	ListMembersByStatus(ctx context.Context, statuses ...string) ([]*MemberRecord, error)

	// ActiveExpeditionFor returns the non-RETURNED expedition a character
	// belongs to, or "" when none.
	ActiveExpeditionFor(ctx context.Context, characterID string) (string, error)
}

// ExpeditionRecord represents an expedition as stored in persistence.
type ExpeditionRecord struct {
	ID                     string
	TownID                 string
	Name                   string
	CreatedBy              string
	Status                 string // PLANNING, LOCKED, DEPARTED, RETURNED
	DurationDays           int
	InitialDirection       string // Empty string means null
	CurrentDayDirection    string // Empty string means null
	DirectionSetBy         string // Empty string means null
	Path                   []string
	ReturnAt               *time.Time
	PendingEmergencyReturn bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ExpeditionFilters contains filter options for querying expeditions.
type ExpeditionFilters struct {
	TownID   string
	Statuses []string
}

// MemberRecord is one roster entry.
type MemberRecord struct {
	ExpeditionID string
	CharacterID  string
	JoinedAt     time.Time
}

// VoteRepository defines the secondary port for emergency-return votes.
type VoteRepository interface {
	// Exists reports whether userID has voted on the expedition.
	Exists(ctx context.Context, expeditionID, userID string) (bool, error)

	// Add records a vote.
	Add(ctx context.Context, expeditionID, userID string) error

	// Remove withdraws a vote.
	Remove(ctx context.Context, expeditionID, userID string) error

	// Count returns the number of votes on the expedition.
	Count(ctx context.Context, expeditionID string) (int, error)

	// Clear deletes every vote on the expedition.
	Clear(ctx context.Context, expeditionID string) error
}

// StockRepository defines the secondary port for the resource ledger.
// Multi-row operations are atomic: they join the caller's transaction or
// open their own.
type StockRepository interface {
	// Get returns the quantity at a location (0 when absent).
	Get(ctx context.Context, loc ledger.Location, resourceTypeID string) (int, error)

	// Increment adds amount, creating the row when absent.
	Increment(ctx context.Context, loc ledger.Location, resourceTypeID string, amount int) error

	// Decrement removes amount. Fails with INSUFFICIENT_STOCK rather than clamping.
	Decrement(ctx context.Context, loc ledger.Location, resourceTypeID string, amount int) error

	// Transfer moves amount from one location to another.
	Transfer(ctx context.Context, from, to ledger.Location, resourceTypeID string, amount int) error

	// ListAt returns every stock row at a location, ordered by resource type.
	ListAt(ctx context.Context, loc ledger.Location) ([]*StockRecord, error)

	// ReturnAllToCity moves every expedition row into the town's city stock.
	ReturnAllToCity(ctx context.Context, expeditionID, townID string) ([]*StockRecord, error)

	// EmergencyReturnWithLoss moves expedition rows home, losing a random
	// share of each.
	EmergencyReturnWithLoss(ctx context.Context, expeditionID, townID string, rng ledger.Random) ([]ledger.Loss, error)
}

// StockRecord represents one ledger row.
type StockRecord struct {
	LocationType   string
	LocationID     string
	ResourceTypeID string
	ResourceName   string // joined from resource_types on reads
	Quantity       int
}

// ResourceTypeRepository defines the secondary port for resource types.
type ResourceTypeRepository interface {
	// Create persists a new resource type.
	Create(ctx context.Context, rt *ResourceTypeRecord) error

	// GetByID retrieves a resource type by its ID.
	GetByID(ctx context.Context, id string) (*ResourceTypeRecord, error)

	// List retrieves every resource type ordered by name.
	List(ctx context.Context) ([]*ResourceTypeRecord, error)

	// GetNextID returns the next available resource type ID.
	GetNextID(ctx context.Context) (string, error)
}

// ResourceTypeRecord represents a resource type as stored in persistence.
type ResourceTypeRecord struct {
	ID   string
	Name string
}

// ProgressRepository records which entities a phase already handled on a
// given game day, so a replayed batch skips them.
type ProgressRepository interface {
	// IsDone reports whether (day, phase, entityKey) is recorded.
	IsDone(ctx context.Context, day, phase, entityKey string) (bool, error)

	// MarkDone records (day, phase, entityKey).
	MarkDone(ctx context.Context, day, phase, entityKey, runID string) error
}
