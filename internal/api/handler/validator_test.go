package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
)

func TestValidator_DecimalRules(t *testing.T) {
	v := NewValidator()
	price := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }

	tests := []struct {
		name string
		req  any
		want string
	}{
		{"valid sale", &createSaleRequest{PaymentMethod: "cash", AmountTendered: decimal.RequireFromString("20.50"), TaxRate: decimal.NewFromInt(100)}, ""},
		{"negative tendered", &createSaleRequest{PaymentMethod: "cash", AmountTendered: decimal.RequireFromString("-1")}, "amount_tendered must be a non-negative amount"},
		{"sub-cent tendered", &createSaleRequest{PaymentMethod: "cash", AmountTendered: decimal.RequireFromString("1.001")}, "amount_tendered must be a non-negative amount"},
		{"trailing zero is fine", &createSaleRequest{PaymentMethod: "cash", AmountTendered: decimal.RequireFromString("1.100")}, ""},
		{"discount over 100", &createSaleRequest{PaymentMethod: "card", DiscountRate: decimal.RequireFromString("100.01")}, "discount_rate must be a percentage"},
		{"negative tax", &createSaleRequest{PaymentMethod: "card", TaxRate: decimal.NewFromInt(-5)}, "tax_rate must be a percentage"},
		{"update without prices", &updateProductRequest{}, ""},
		{"update negative price", &updateProductRequest{SellingPrice: price("-0.01")}, "selling_price must be a non-negative amount"},
		{"quantity cap", &adjustStockRequest{ProductID: "p1", AdjustmentType: "increase", Quantity: domain.MaxLineQuantity + 1, Reason: "count"}, "quantity must be at most 10000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.req)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %T", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidator_ReportsEveryField(t *testing.T) {
	err := NewValidator().Validate(&createUserRequest{Username: "al", Email: "x", Password: "123", Role: "root"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"username must be at least 3", "email must be a valid email", "first_name is required", "role must be one of"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}
