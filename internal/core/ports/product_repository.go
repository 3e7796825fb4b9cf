package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// ListProductsFilter carries all query parameters for listing products.
// Archived products are never listed.
type ListProductsFilter struct {
	Category string // optional: exact category match
	Search   string // optional: partial match on name, barcode or description
	Page     int    // 1-based
	Limit    int    // max rows per page (capped by the service)
}

// ProductUpdate is the set of catalog fields an update may change. Stock is
// deliberately absent: it only moves through sales and adjustments.
type ProductUpdate struct {
	Name          *string
	Barcode       *string
	Category      *string
	Description   *string
	CostPrice     *Money
	SellingPrice  *Money
	MinStockLevel *int
	MaxStockLevel *int
	Supplier      *string
}

// ProductRepository defines persistence operations for products.
//
// Every stock mutation is a single atomic storage primitive; callers never
// read a stock value and write it back.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	// FindActiveByID returns ErrProductNotFound for unknown ids and
	// ErrProductInactive for archived products.
	FindActiveByID(ctx context.Context, id string) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, int64, error)
	ListLowStock(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error)
	Archive(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)

	// DecrementStock removes qty units only if at least qty are available.
	// It reports StockInsufficient without changing anything otherwise.
	DecrementStock(ctx context.Context, id string, qty int) (domain.StockChange, error)
	// DecrementStockClamped removes up to qty units, never going below zero.
	DecrementStockClamped(ctx context.Context, id string, qty int) (domain.StockChange, error)
	// IncrementStock adds qty units.
	IncrementStock(ctx context.Context, id string, qty int) (domain.StockChange, error)
}
