package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle state of a sale.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SaleRefunded  SaleStatus = "refunded"
	SaleCancelled SaleStatus = "cancelled"
)

// saleTransitions defines the allowed state machine transitions. A completed
// sale is never edited; refunds and cancellations are terminal.
var saleTransitions = map[SaleStatus][]SaleStatus{
	SaleCompleted: {SaleRefunded, SaleCancelled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	for _, allowed := range saleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MaxLineQuantity bounds the units of one product in a single sale or stock
// adjustment, after repeated lines are merged.
const MaxLineQuantity = 10000

// PaymentMethod is how the customer settled the sale.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigital:
		return true
	}
	return false
}

// SaleItem is one line of a sale. Name, barcode, category and price are
// snapshots taken at commit time so later catalog edits never alter an invoice.
type SaleItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	// ShortQuantity is set when stock was clamped at zero and fewer units were
	// available than sold.
	ShortQuantity int `json:"short_quantity,omitempty"`
}

// SaleStatusEntry records a single status transition on a sale.
type SaleStatusEntry struct {
	Status    SaleStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	ActorID   string     `json:"actor_id,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// Sale is the aggregate root written by the commit engine.
type Sale struct {
	ID                 string            `json:"id"`
	SaleNumber         string            `json:"sale_number"`
	Items              []SaleItem        `json:"items"`
	Subtotal           decimal.Decimal   `json:"subtotal"`
	TaxRate            decimal.Decimal   `json:"tax_rate"`
	Tax                decimal.Decimal   `json:"tax"`
	DiscountRate       decimal.Decimal   `json:"discount_rate"`
	Discount           decimal.Decimal   `json:"discount"`
	Total              decimal.Decimal   `json:"total"`
	PaymentMethod      PaymentMethod     `json:"payment_method"`
	AmountTendered     decimal.Decimal   `json:"amount_tendered"`
	Change             decimal.Decimal   `json:"change"`
	CashierID          string            `json:"cashier_id"`
	CashierName        string            `json:"cashier_name"`
	CustomerName       string            `json:"customer_name,omitempty"`
	CustomerEmail      string            `json:"customer_email,omitempty"`
	Status             SaleStatus        `json:"status"`
	PartialFulfillment bool              `json:"partial_fulfillment"`
	IdempotencyKey     string            `json:"-"`
	StatusHistory      []SaleStatusEntry `json:"status_history"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ItemCount returns the number of units sold across all lines.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
