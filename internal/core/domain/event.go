package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleEventType names a sale lifecycle notification.
type SaleEventType string

const (
	EventSaleCompleted SaleEventType = "sale.completed"
	EventSaleRefunded  SaleEventType = "sale.refunded"
	EventSaleCancelled SaleEventType = "sale.cancelled"
)

// SaleEvent is published after a sale transaction has committed. It is never
// emitted from inside the transaction.
type SaleEvent struct {
	ID                 string          `json:"event_id"`
	Type               SaleEventType   `json:"event_type"`
	SaleID             string          `json:"sale_id"`
	SaleNumber         string          `json:"sale_number"`
	CashierID          string          `json:"cashier_id"`
	Total              decimal.Decimal `json:"total"`
	PaymentMethod      PaymentMethod   `json:"payment_method"`
	Items              []SaleEventItem `json:"items"`
	PartialFulfillment bool            `json:"partial_fulfillment,omitempty"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

// SaleEventItem is the stock-relevant view of a sale line.
type SaleEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// NewSaleEvent builds the notification for s.
func NewSaleEvent(t SaleEventType, s *Sale, at time.Time) SaleEvent {
	items := make([]SaleEventItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return SaleEvent{
		ID:                 uuid.NewString(),
		Type:               t,
		SaleID:             s.ID,
		SaleNumber:         s.SaleNumber,
		CashierID:          s.CashierID,
		Total:              s.Total,
		PaymentMethod:      s.PaymentMethod,
		Items:              items,
		PartialFulfillment: s.PartialFulfillment,
		OccurredAt:         at,
	}
}
