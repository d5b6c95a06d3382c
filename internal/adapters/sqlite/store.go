// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/bastion/internal/ports/secondary"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
// Repositories are built over a DBTX so the same code runs inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// atomically runs fn in a transaction. When db already is a transaction,
// fn joins it and the caller owns commit and rollback.
func atomically(ctx context.Context, db DBTX, fn func(q DBTX) error) error {
	beginner, ok := db.(txBeginner)
	if !ok {
		return fn(db)
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// unitOfWork binds every repository to one DBTX.
type unitOfWork struct {
	towns         *TownRepository
	characters    *CharacterRepository
	expeditions   *ExpeditionRepository
	votes         *VoteRepository
	stocks        *StockRepository
	resourceTypes *ResourceTypeRepository
	progress      *ProgressRepository
	events        *EventLog
}

func newUnitOfWork(db DBTX) *unitOfWork {
	return &unitOfWork{
		towns:         NewTownRepository(db),
		characters:    NewCharacterRepository(db),
		expeditions:   NewExpeditionRepository(db),
		votes:         NewVoteRepository(db),
		stocks:        NewStockRepository(db),
		resourceTypes: NewResourceTypeRepository(db),
		progress:      NewProgressRepository(db),
		events:        NewEventLog(db),
	}
}

func (u *unitOfWork) Towns() secondary.TownRepository                 { return u.towns }
func (u *unitOfWork) Characters() secondary.CharacterRepository       { return u.characters }
func (u *unitOfWork) Expeditions() secondary.ExpeditionRepository     { return u.expeditions }
func (u *unitOfWork) Votes() secondary.VoteRepository                 { return u.votes }
func (u *unitOfWork) Stocks() secondary.StockRepository               { return u.stocks }
func (u *unitOfWork) ResourceTypes() secondary.ResourceTypeRepository { return u.resourceTypes }
func (u *unitOfWork) Progress() secondary.ProgressRepository          { return u.progress }
func (u *unitOfWork) Events() secondary.EventSink                     { return u.events }

// Store implements secondary.Store over a *sql.DB.
type Store struct {
	*unitOfWork
	db *sql.DB
}

// NewStore creates a new SQLite store.
func NewStore(db *sql.DB) *Store {
	return &Store{unitOfWork: newUnitOfWork(db), db: db}
}

// InTx runs fn in one transaction. fn's error rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, uow secondary.UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, newUnitOfWork(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var _ secondary.Store = (*Store)(nil)
