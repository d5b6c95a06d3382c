package secondary

import "context"

// UnitOfWork groups the repositories bound to one connection or transaction.
type UnitOfWork interface {
	Towns() TownRepository
	Characters() CharacterRepository
	Expeditions() ExpeditionRepository
	Votes() VoteRepository
	Stocks() StockRepository
	ResourceTypes() ResourceTypeRepository
	Progress() ProgressRepository
	Events() EventSink
}

// Store is the application's entry point to persistence.
// Its own repositories run outside any transaction; InTx hands fn a
// UnitOfWork bound to a single transaction, committed when fn returns nil.
// Code inside fn must only use the UnitOfWork it was given.
type Store interface {
	UnitOfWork
	InTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
