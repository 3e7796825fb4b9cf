package ports

import (
	"context"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// CartLineInput is one requested line of a cart.
type CartLineInput struct {
	ProductID string
	Quantity  int
}

// PaymentInput carries how the customer pays. Rates are percentages of the
// subtotal, e.g. 10 for 10%.
type PaymentInput struct {
	Method         domain.PaymentMethod
	AmountTendered Money
	TaxRate        Money
	DiscountRate   Money
}

// Cashier identifies the operator committing the sale.
type Cashier struct {
	ID   string
	Name string
}

// CommitSaleInput is the DTO passed from the transport layer to the sale engine.
type CommitSaleInput struct {
	Items          []CartLineInput
	Payment        PaymentInput
	Cashier        Cashier
	CustomerName   string
	CustomerEmail  string
	IdempotencyKey string
}

// SaleTransitionInput requests a refund or cancellation.
type SaleTransitionInput struct {
	SaleID  string
	ActorID string
	Reason  string
}

// ListSalesResult is returned by ListSales.
type ListSalesResult struct {
	Items      []*domain.Sale
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// SaleService defines use-case operations for sales.
type SaleService interface {
	CommitSale(ctx context.Context, input CommitSaleInput) (*domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, filter ListSalesFilter) (*ListSalesResult, error)
	RefundSale(ctx context.Context, input SaleTransitionInput) (*domain.Sale, error)
	CancelSale(ctx context.Context, input SaleTransitionInput) (*domain.Sale, error)
}
