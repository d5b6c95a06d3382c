package primary

import (
	"context"

	"github.com/example/bastion/internal/core/ledger"
)

// LedgerService defines the primary port for resource stock operations.
// Resources are named ("Vivres"); the service resolves names to types.
type LedgerService interface {
	// Deposit adds resources at a location.
	Deposit(ctx context.Context, req StockRequest) (*StockLine, error)

	// Withdraw removes resources from a location. Never goes below zero.
	Withdraw(ctx context.Context, req StockRequest) (*StockLine, error)

	// Transfer moves resources between two locations atomically.
	Transfer(ctx context.Context, req TransferRequest) error

	// Stock returns the quantity of one resource at a location.
	Stock(ctx context.Context, loc ledger.Location, resource string) (*StockLine, error)

	// ListStock returns every resource held at a location.
	ListStock(ctx context.Context, loc ledger.Location) ([]*StockLine, error)

	// ListResourceTypes returns every known resource type.
	ListResourceTypes(ctx context.Context) ([]*ResourceType, error)

	// CreateResourceType registers a new resource name.
	CreateResourceType(ctx context.Context, name string) (*ResourceType, error)
}

// StockRequest contains parameters for a deposit or withdrawal.
type StockRequest struct {
	Location ledger.Location
	Resource string
	Amount   int
}

// TransferRequest contains parameters for a transfer.
type TransferRequest struct {
	From     ledger.Location
	To       ledger.Location
	Resource string
	Amount   int
}

// StockLine is one resource quantity at a location.
type StockLine struct {
	Location       ledger.Location
	ResourceTypeID string
	ResourceName   string
	Quantity       int
}

// ResourceType represents a resource type at the port boundary.
type ResourceType struct {
	ID   string
	Name string
}
