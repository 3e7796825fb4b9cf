package ports

import "context"

// TxRepositories exposes the repositories bound to one atomic unit of work.
// Every write made through them commits or rolls back together.
type TxRepositories interface {
	Products() ProductRepository
	Sales() SaleRepository
	Adjustments() StockAdjustmentRepository
	Users() UserRepository
}

// UnitOfWork runs fn inside a storage transaction.
//
// If fn returns an error, or the context is cancelled before commit, nothing
// fn wrote is persisted. Session resources are released on every path. The
// transaction is not retried.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
