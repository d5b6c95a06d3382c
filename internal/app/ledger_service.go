package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/bastion/internal/core/ledger"
	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	store   secondary.Store
	catalog *ResourceCatalog
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(store secondary.Store, catalog *ResourceCatalog) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		store:   store,
		catalog: catalog,
	}
}

// Deposit adds resources at a location.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req primary.StockRequest) (*primary.StockLine, error) {
	if err := ledger.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	rt, err := s.catalog.Resolve(ctx, req.Resource)
	if err != nil {
		return nil, err
	}

	var line *primary.StockLine
	err = s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		if err := checkLocation(ctx, uow, req.Location); err != nil {
			return err
		}
		if err := uow.Stocks().Increment(ctx, req.Location, rt.ID, req.Amount); err != nil {
			return err
		}
		line, err = stockLine(ctx, uow, req.Location, rt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Withdraw removes resources from a location. Never goes below zero.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req primary.StockRequest) (*primary.StockLine, error) {
	if err := ledger.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	rt, err := s.catalog.Resolve(ctx, req.Resource)
	if err != nil {
		return nil, err
	}

	var line *primary.StockLine
	err = s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		if err := checkLocation(ctx, uow, req.Location); err != nil {
			return err
		}
		if err := uow.Stocks().Decrement(ctx, req.Location, rt.ID, req.Amount); err != nil {
			return err
		}
		line, err = stockLine(ctx, uow, req.Location, rt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Transfer moves resources between two locations atomically.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req primary.TransferRequest) error {
	if err := ledger.ValidateTransfer(req.From, req.To, req.Amount); err != nil {
		return err
	}
	rt, err := s.catalog.Resolve(ctx, req.Resource)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		if err := checkLocation(ctx, uow, req.From); err != nil {
			return err
		}
		if err := checkLocation(ctx, uow, req.To); err != nil {
			return err
		}
		return uow.Stocks().Transfer(ctx, req.From, req.To, rt.ID, req.Amount)
	})
}

// Stock returns the quantity of one resource at a location.
func (s *LedgerServiceImpl) Stock(ctx context.Context, loc ledger.Location, resource string) (*primary.StockLine, error) {
	if err := ledger.ValidateLocation(loc); err != nil {
		return nil, err
	}
	rt, err := s.catalog.Resolve(ctx, resource)
	if err != nil {
		return nil, err
	}
	return stockLine(ctx, s.store, loc, rt)
}

// ListStock returns every resource held at a location.
func (s *LedgerServiceImpl) ListStock(ctx context.Context, loc ledger.Location) ([]*primary.StockLine, error) {
	if err := ledger.ValidateLocation(loc); err != nil {
		return nil, err
	}
	records, err := s.store.Stocks().ListAt(ctx, loc)
	if err != nil {
		return nil, err
	}
	return recordsToStockLines(records), nil
}

// ListResourceTypes returns every known resource type.
func (s *LedgerServiceImpl) ListResourceTypes(ctx context.Context) ([]*primary.ResourceType, error) {
	records, err := s.store.ResourceTypes().List(ctx)
	if err != nil {
		return nil, err
	}
	types := make([]*primary.ResourceType, len(records))
	for i, r := range records {
		types[i] = &primary.ResourceType{ID: r.ID, Name: r.Name}
	}
	return types, nil
}

// CreateResourceType registers a new resource name. Names are unique
// regardless of case.
func (s *LedgerServiceImpl) CreateResourceType(ctx context.Context, name string) (*primary.ResourceType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerr.New(domainerr.CodeValidation, "resource name is required")
	}
	if existing, err := s.catalog.Resolve(ctx, name); err == nil {
		return nil, domainerr.New(domainerr.CodeValidation, "resource %s already exists as %s", name, existing.ID)
	} else if domainerr.CodeOf(err) != domainerr.CodeNotFound {
		return nil, err
	}

	var rec *secondary.ResourceTypeRecord
	err := s.store.InTx(ctx, func(ctx context.Context, uow secondary.UnitOfWork) error {
		nextID, err := uow.ResourceTypes().GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate resource type ID: %w", err)
		}
		rec = &secondary.ResourceTypeRecord{ID: nextID, Name: name}
		return uow.ResourceTypes().Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.catalog.Put(rec)
	return &primary.ResourceType{ID: rec.ID, Name: rec.Name}, nil
}

// checkLocation fails with NOT_FOUND when the town or expedition behind a
// ledger location does not exist.
func checkLocation(ctx context.Context, uow secondary.UnitOfWork, loc ledger.Location) error {
	if err := ledger.ValidateLocation(loc); err != nil {
		return err
	}
	if loc.Type == ledger.LocationCity {
		_, err := uow.Towns().GetByID(ctx, loc.ID)
		return err
	}
	_, err := uow.Expeditions().GetByID(ctx, loc.ID)
	return err
}

func stockLine(ctx context.Context, uow secondary.UnitOfWork, loc ledger.Location, rt *secondary.ResourceTypeRecord) (*primary.StockLine, error) {
	quantity, err := uow.Stocks().Get(ctx, loc, rt.ID)
	if err != nil {
		return nil, err
	}
	return &primary.StockLine{
		Location:       loc,
		ResourceTypeID: rt.ID,
		ResourceName:   rt.Name,
		Quantity:       quantity,
	}, nil
}

func recordsToStockLines(records []*secondary.StockRecord) []*primary.StockLine {
	lines := make([]*primary.StockLine, len(records))
	for i, r := range records {
		lines[i] = &primary.StockLine{
			Location:       ledger.Location{Type: ledger.LocationType(r.LocationType), ID: r.LocationID},
			ResourceTypeID: r.ResourceTypeID,
			ResourceName:   r.ResourceName,
			Quantity:       r.Quantity,
		}
	}
	return lines
}

var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
