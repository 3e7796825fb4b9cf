package service

import (
	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
)

var hundred = decimal.NewFromInt(100)

// Totals are the monetary amounts derived from a sale's lines.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals fills in each line total and derives subtotal, tax,
// discount and grand total. Rates are percentages of the subtotal. Amounts
// are rounded half away from zero to cents, and Total is always exactly
// Subtotal + Tax - Discount.
func CalculateTotals(items []domain.SaleItem, taxRate, discountRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].LineTotal = items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(items[i].LineTotal)
	}

	tax := subtotal.Mul(taxRate).Div(hundred).Round(2)
	discount := subtotal.Mul(discountRate).Div(hundred).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// validRate reports whether r is a percentage between 0 and 100.
func validRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(hundred)
}
