package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpos/pos-system/internal/core/domain"
)

func sampleSale() *domain.Sale {
	return &domain.Sale{
		ID:         "65f0c0ffee0000000000aa01",
		SaleNumber: "SALE-20260101-000001",
		Items: []domain.SaleItem{
			{ProductID: "p1", Name: "Coffee beans", Price: decimal.RequireFromString("10.00"), Quantity: 2, LineTotal: decimal.RequireFromString("20.00")},
			{ProductID: "p2", Name: "Filter", Price: decimal.RequireFromString("1.50"), Quantity: 3, LineTotal: decimal.RequireFromString("4.50"), ShortQuantity: 1},
		},
		Subtotal:           decimal.RequireFromString("24.50"),
		TaxRate:            decimal.NewFromInt(10),
		Tax:                decimal.RequireFromString("2.45"),
		DiscountRate:       decimal.NewFromInt(5),
		Discount:           decimal.RequireFromString("1.23"),
		Total:              decimal.RequireFromString("25.72"),
		PaymentMethod:      domain.PaymentCash,
		AmountTendered:     decimal.NewFromInt(30),
		Change:             decimal.RequireFromString("4.28"),
		CashierName:        "Jane",
		Status:             domain.SaleCompleted,
		PartialFulfillment: true,
		CreatedAt:          time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestReceiptGenerator_Generate(t *testing.T) {
	g := NewReceiptGenerator("Corner Store")

	out, err := g.Generate(context.Background(), sampleSale())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output is not a PDF document")
}

func TestReceiptGenerator_CardSaleWithoutItems(t *testing.T) {
	s := sampleSale()
	s.Items = nil
	s.PaymentMethod = domain.PaymentCard
	s.PartialFulfillment = false
	s.Status = domain.SaleRefunded

	out, err := NewReceiptGenerator("").Generate(context.Background(), s)

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestReceiptGenerator_NilSale(t *testing.T) {
	_, err := NewReceiptGenerator("x").Generate(context.Background(), nil)
	assert.Error(t, err)
}
