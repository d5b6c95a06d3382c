// Package ledger contains the pure business logic for the resource ledger.
// This is part of the Functional Core - no I/O, only pure functions.
package ledger

import (
	"fmt"

	"github.com/example/bastion/internal/domainerr"
)

// LocationType identifies who holds a stock row.
type LocationType string

const (
	LocationCity       LocationType = "CITY"
	LocationExpedition LocationType = "EXPEDITION"
)

// Location is a ledger location: a town's city stock or an expedition's.
type Location struct {
	Type LocationType
	ID   string
}

// City returns the city location of a town.
func City(townID string) Location {
	return Location{Type: LocationCity, ID: townID}
}

// Expedition returns the location of an expedition's escrowed stock.
func Expedition(expeditionID string) Location {
	return Location{Type: LocationExpedition, ID: expeditionID}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.Type, l.ID)
}

// ValidateLocation checks a location is well formed.
func ValidateLocation(l Location) error {
	if l.Type != LocationCity && l.Type != LocationExpedition {
		return domainerr.New(domainerr.CodeValidation, "unknown location type %q", l.Type)
	}
	if l.ID == "" {
		return domainerr.New(domainerr.CodeValidation, "location id is required")
	}
	return nil
}

// ValidateAmount checks an increment/decrement/transfer amount.
// Rule: amounts are strictly positive; the ledger never clamps.
func ValidateAmount(amount int) error {
	if amount <= 0 {
		return domainerr.New(domainerr.CodeValidation, "amount must be positive (got %d)", amount)
	}
	return nil
}

// ValidateTransfer checks a transfer request.
func ValidateTransfer(from, to Location, amount int) error {
	if err := ValidateLocation(from); err != nil {
		return err
	}
	if err := ValidateLocation(to); err != nil {
		return err
	}
	if from == to {
		return domainerr.New(domainerr.CodeValidation, "cannot transfer from %s to itself", from)
	}
	return ValidateAmount(amount)
}

// Random is the subset of a random source the loss draw needs.
type Random interface {
	IntN(n int) int
}

// Loss records what an emergency return did to one resource row.
type Loss struct {
	ResourceTypeID string
	Original       int
	Lost           int
	Remaining      int
}

// MaxEmergencyLoss returns ceil(quantity/2).
func MaxEmergencyLoss(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	return (quantity + 1) / 2
}

// DrawEmergencyLoss draws a uniform loss in [0, ceil(quantity/2)].
func DrawEmergencyLoss(resourceTypeID string, quantity int, rng Random) Loss {
	maxLoss := MaxEmergencyLoss(quantity)
	lost := 0
	if maxLoss > 0 {
		lost = rng.IntN(maxLoss + 1)
	}
	return Loss{
		ResourceTypeID: resourceTypeID,
		Original:       quantity,
		Lost:           lost,
		Remaining:      quantity - lost,
	}
}
