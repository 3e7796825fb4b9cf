package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// CategoryRepository stores explicitly created categories.
type CategoryRepository interface {
	// Create fails with ErrCategoryExists when the name is taken.
	Create(ctx context.Context, c *domain.Category) error
	ListActiveNames(ctx context.Context) ([]string, error)
}

// SupplierUpdate is the set of supplier fields an update may change.
type SupplierUpdate struct {
	Name          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
	City          *string
	Country       *string
}

// SupplierRepository stores vendors.
type SupplierRepository interface {
	Create(ctx context.Context, s *domain.Supplier) error
	FindByID(ctx context.Context, id string) (*domain.Supplier, error)
	ListActive(ctx context.Context) ([]*domain.Supplier, error)
	Update(ctx context.Context, id string, upd SupplierUpdate) (*domain.Supplier, error)
	Archive(ctx context.Context, id string) error
}

// StockAdjustmentRepository stores the manual stock correction audit trail.
type StockAdjustmentRepository interface {
	Insert(ctx context.Context, a *domain.StockAdjustment) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]*domain.StockAdjustment, error)
}
