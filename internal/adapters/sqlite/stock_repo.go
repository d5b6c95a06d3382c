package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/bastion/internal/core/ledger"
	"github.com/example/bastion/internal/domainerr"
	"github.com/example/bastion/internal/ports/secondary"
)

// StockRepository implements secondary.StockRepository with SQLite.
//
// Single-row writes are one atomic statement each: increments upsert and
// decrements are conditional on the current quantity. Multi-row operations
// run in one transaction, joining the caller's when there is one.
type StockRepository struct {
	db DBTX
}

// NewStockRepository creates a new SQLite ledger repository.
func NewStockRepository(db DBTX) *StockRepository {
	return &StockRepository{db: db}
}

// Get returns the quantity at a location (0 when absent).
func (r *StockRepository) Get(ctx context.Context, loc ledger.Location, resourceTypeID string) (int, error) {
	return getStock(ctx, r.db, loc, resourceTypeID)
}

// Increment adds amount, creating the row when absent.
func (r *StockRepository) Increment(ctx context.Context, loc ledger.Location, resourceTypeID string, amount int) error {
	if err := ledger.ValidateLocation(loc); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return incrementStock(ctx, r.db, loc, resourceTypeID, amount)
}

// Decrement removes amount. Fails with INSUFFICIENT_STOCK rather than clamping.
func (r *StockRepository) Decrement(ctx context.Context, loc ledger.Location, resourceTypeID string, amount int) error {
	if err := ledger.ValidateLocation(loc); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	return decrementStock(ctx, r.db, loc, resourceTypeID, amount)
}

// Transfer moves amount from one location to another. Either both sides
// change or neither does.
func (r *StockRepository) Transfer(ctx context.Context, from, to ledger.Location, resourceTypeID string, amount int) error {
	if err := ledger.ValidateTransfer(from, to, amount); err != nil {
		return err
	}
	return atomically(ctx, r.db, func(q DBTX) error {
		if err := decrementStock(ctx, q, from, resourceTypeID, amount); err != nil {
			return err
		}
		return incrementStock(ctx, q, to, resourceTypeID, amount)
	})
}

// ListAt returns every stock row at a location, ordered by resource type.
func (r *StockRepository) ListAt(ctx context.Context, loc ledger.Location) ([]*secondary.StockRecord, error) {
	return listStock(ctx, r.db, loc)
}

// ReturnAllToCity moves every expedition row into the town's city stock and
// returns the snapshot that was moved.
func (r *StockRepository) ReturnAllToCity(ctx context.Context, expeditionID, townID string) ([]*secondary.StockRecord, error) {
	var moved []*secondary.StockRecord
	err := atomically(ctx, r.db, func(q DBTX) error {
		snapshot, err := listStock(ctx, q, ledger.Expedition(expeditionID))
		if err != nil {
			return err
		}
		for _, s := range snapshot {
			if s.Quantity > 0 {
				if err := incrementStock(ctx, q, ledger.City(townID), s.ResourceTypeID, s.Quantity); err != nil {
					return err
				}
			}
			if err := deleteStock(ctx, q, ledger.Expedition(expeditionID), s.ResourceTypeID); err != nil {
				return err
			}
		}
		moved = snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// EmergencyReturnWithLoss moves expedition rows home, losing a random share
// of each: lost is uniform in [0, ceil(q/2)] per row.
func (r *StockRepository) EmergencyReturnWithLoss(ctx context.Context, expeditionID, townID string, rng ledger.Random) ([]ledger.Loss, error) {
	var losses []ledger.Loss
	err := atomically(ctx, r.db, func(q DBTX) error {
		snapshot, err := listStock(ctx, q, ledger.Expedition(expeditionID))
		if err != nil {
			return err
		}
		for _, s := range snapshot {
			loss := ledger.DrawEmergencyLoss(s.ResourceTypeID, s.Quantity, rng)
			if loss.Remaining > 0 {
				if err := incrementStock(ctx, q, ledger.City(townID), s.ResourceTypeID, loss.Remaining); err != nil {
					return err
				}
			}
			if err := deleteStock(ctx, q, ledger.Expedition(expeditionID), s.ResourceTypeID); err != nil {
				return err
			}
			losses = append(losses, loss)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return losses, nil
}

func getStock(ctx context.Context, q DBTX, loc ledger.Location, resourceTypeID string) (int, error) {
	var quantity int
	err := q.QueryRowContext(ctx,
		"SELECT quantity FROM resource_stocks WHERE location_type = ? AND location_id = ? AND resource_type_id = ?",
		string(loc.Type), loc.ID, resourceTypeID,
	).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get stock: %w", err)
	}
	return quantity, nil
}

func incrementStock(ctx context.Context, q DBTX, loc ledger.Location, resourceTypeID string, amount int) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO resource_stocks (location_type, location_id, resource_type_id, quantity) VALUES (?, ?, ?, ?)
		 ON CONFLICT (location_type, location_id, resource_type_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		string(loc.Type), loc.ID, resourceTypeID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}

func decrementStock(ctx context.Context, q DBTX, loc ledger.Location, resourceTypeID string, amount int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE resource_stocks SET quantity = quantity - ?
		 WHERE location_type = ? AND location_id = ? AND resource_type_id = ? AND quantity >= ?`,
		amount, string(loc.Type), loc.ID, resourceTypeID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if n == 0 {
		have, err := getStock(ctx, q, loc, resourceTypeID)
		if err != nil {
			return err
		}
		return domainerr.New(domainerr.CodeInsufficientStock,
			"%s has %d of %s, needs %d", loc, have, resourceTypeID, amount)
	}
	return nil
}

func deleteStock(ctx context.Context, q DBTX, loc ledger.Location, resourceTypeID string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM resource_stocks WHERE location_type = ? AND location_id = ? AND resource_type_id = ?",
		string(loc.Type), loc.ID, resourceTypeID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return nil
}

func listStock(ctx context.Context, q DBTX, loc ledger.Location) ([]*secondary.StockRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT s.location_type, s.location_id, s.resource_type_id, rt.name, s.quantity
		 FROM resource_stocks s
		 JOIN resource_types rt ON rt.id = s.resource_type_id
		 WHERE s.location_type = ? AND s.location_id = ?
		 ORDER BY s.resource_type_id`,
		string(loc.Type), loc.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	defer rows.Close()

	var stocks []*secondary.StockRecord
	for rows.Next() {
		s := &secondary.StockRecord{}
		if err := rows.Scan(&s.LocationType, &s.LocationID, &s.ResourceTypeID, &s.ResourceName, &s.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

var _ secondary.StockRepository = (*StockRepository)(nil)
