package ports

import (
	"context"
	"time"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// ListSalesFilter carries all query parameters for listing sales.
type ListSalesFilter struct {
	CashierID string    // optional
	Status    string    // optional
	DateFrom  time.Time // optional: created_at >= DateFrom
	DateTo    time.Time // optional: created_at < DateTo
	Page      int       // 1-based
	Limit     int
}

// SaleRepository defines persistence operations for sales.
type SaleRepository interface {
	// Insert stores s and returns its generated id. A reused sale number
	// fails with ErrDuplicateSaleNumber.
	Insert(ctx context.Context, s *domain.Sale) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Sale, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Sale, error)
	List(ctx context.Context, filter ListSalesFilter) ([]*domain.Sale, int64, error)
	// MarkFulfillment records per-line short quantities on a freshly inserted
	// sale and flags it as partially fulfilled.
	MarkFulfillment(ctx context.Context, id string, items []domain.SaleItem) error
	// UpdateStatus moves the sale from one status to another and appends a
	// history entry. It fails with ErrInvalidTransition when the sale is no
	// longer in status from.
	UpdateStatus(ctx context.Context, id string, from, to domain.SaleStatus, entry domain.SaleStatusEntry) error
}
