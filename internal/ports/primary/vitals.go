package primary

import (
	"context"
	"time"

	"github.com/example/bastion/internal/core/events"
)

// VitalsService defines the primary port for character vitals.
type VitalsService interface {
	// CreateCharacter creates a character at full health in a town.
	CreateCharacter(ctx context.Context, req CreateCharacterRequest) (*CreateCharacterResponse, error)

	// GetCharacter retrieves a character by ID.
	GetCharacter(ctx context.Context, characterID string) (*Character, error)

	// ListCharacters lists characters with optional filters.
	ListCharacters(ctx context.Context, filters CharacterFilters) ([]*Character, error)

	// ApplyVitals proposes new hp and/or hunger values (nil leaves a value
	// unchanged) and applies them under the agony rules.
	ApplyVitals(ctx context.Context, req ApplyVitalsRequest) (*VitalsChange, error)

	// RegenerateDaily runs one character's full daily update: regeneration,
	// death and agony checks, then hunger decay.
	RegenerateDaily(ctx context.Context, characterID string, now time.Time) (*VitalsChange, error)

	// DecayHungerAll runs the daily hunger decrease over every living character.
	DecayHungerAll(ctx context.Context, now time.Time) PhaseReport

	// RegenerateAll runs PA regeneration and death/agony checks over every living character.
	RegenerateAll(ctx context.Context, now time.Time) PhaseReport
}

// ContagionService defines the primary port for depression spread.
type ContagionService interface {
	// SpreadDepression makes every depressed character drag one co-located peer down.
	SpreadDepression(ctx context.Context, now time.Time) PhaseReport
}

// CreateCharacterRequest contains parameters for creating a character.
type CreateCharacterRequest struct {
	UserID string
	TownID string
	Name   string
	Now    time.Time
}

// CreateCharacterResponse contains the result of creating a character.
type CreateCharacterResponse struct {
	CharacterID string
	Character   *Character
}

// ApplyVitalsRequest contains a proposed vitals change.
type ApplyVitalsRequest struct {
	CharacterID string
	HP          *int
	Hunger      *int
	Now         time.Time
}

// VitalsChange describes what a vitals operation did.
type VitalsChange struct {
	Character    *Character
	Died         bool
	EnteredAgony bool
	LeftAgony    bool
	PAGained     int
	Healed       int
	HungerLost   int
	Events       []events.Event
}

// CharacterFilters contains filter options for listing characters.
type CharacterFilters struct {
	TownID    string
	UserID    string
	AliveOnly bool
}

// Character represents a character at the port boundary.
type Character struct {
	ID           string
	UserID       string
	TownID       string
	Name         string
	HP           int
	PM           int
	Hunger       int
	PA           int
	IsDead       bool
	AgonySince   *time.Time
	LastPAUpdate time.Time
	CreatedAt    time.Time
}
