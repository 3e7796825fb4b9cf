package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry with its stock counter.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Barcode         string          `json:"barcode"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	MinStockLevel   int             `json:"min_stock_level"`
	MaxStockLevel   int             `json:"max_stock_level"`
	Supplier        string          `json:"supplier,omitempty"`
	State           LifecycleState  `json:"state"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Product) IsActive() bool { return p.State == StateActive }

// IsLowStock reports whether stock has reached the reorder threshold.
func (p *Product) IsLowStock() bool { return p.QuantityInStock <= p.MinStockLevel }

// DefaultMaxStock is used when a product is created without a maximum level.
func DefaultMaxStock(minLevel int) int { return minLevel * 5 }

// StockOutcome is the result of a guarded stock mutation.
type StockOutcome string

const (
	StockApplied      StockOutcome = "applied"
	StockInsufficient StockOutcome = "insufficient"
	StockClamped      StockOutcome = "clamped"
)

// StockChange describes what a single decrement did to one product.
// Applied can be lower than Requested only when Outcome is StockClamped.
type StockChange struct {
	ProductID string
	Requested int
	Applied   int
	Previous  int
	Outcome   StockOutcome
}

// Short returns the number of requested units that were not backed by stock.
func (c StockChange) Short() int { return c.Requested - c.Applied }

// AdjustmentType is the direction of a manual stock correction.
type AdjustmentType string

const (
	AdjustIncrease AdjustmentType = "increase"
	AdjustDecrease AdjustmentType = "decrease"
)

// StockAdjustment is the audit record written for each manual correction.
type StockAdjustment struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Type           AdjustmentType `json:"adjustment_type"`
	Quantity       int            `json:"quantity"`
	Reason         string         `json:"reason"`
	PreviousStock  int            `json:"previous_stock"`
	NewStock       int            `json:"new_stock"`
	AdjustedBy     string         `json:"adjusted_by"`
	AdjustedByName string         `json:"adjusted_by_name"`
	CreatedAt      time.Time      `json:"created_at"`
}
