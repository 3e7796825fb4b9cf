package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retailpos/pos-system/internal/core/domain"
)

func TestCalculateTotals(t *testing.T) {
	type want struct{ subtotal, tax, discount, total string }
	tests := []struct {
		name          string
		items         []domain.SaleItem
		tax, discount string
		want          want
	}{
		{"single line with tax", []domain.SaleItem{{Price: dec("10.00"), Quantity: 2}}, "10", "0",
			want{"20.00", "2.00", "0.00", "22.00"}},
		{"tax and discount", []domain.SaleItem{{Price: dec("19.99"), Quantity: 3}, {Price: dec("0.50"), Quantity: 1}}, "16", "10",
			want{"60.47", "9.68", "6.05", "64.10"}},
		{"half cent rounds away from zero", []domain.SaleItem{{Price: dec("0.25"), Quantity: 1}}, "10", "0",
			want{"0.25", "0.03", "0.00", "0.28"}},
		{"full discount", []domain.SaleItem{{Price: dec("5.00"), Quantity: 1}}, "0", "100",
			want{"5.00", "0.00", "5.00", "0.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.items, dec(tt.tax), dec(tt.discount))
			assert.Equal(t, tt.want.subtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.want.tax, got.Tax.StringFixed(2))
			assert.Equal(t, tt.want.discount, got.Discount.StringFixed(2))
			assert.Equal(t, tt.want.total, got.Total.StringFixed(2))
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Sub(got.Discount)))
		})
	}
}

func TestValidRate(t *testing.T) {
	assert.True(t, validRate(dec("0")))
	assert.True(t, validRate(dec("100")))
	assert.False(t, validRate(dec("-0.01")))
	assert.False(t, validRate(dec("100.01")))
}
