// Package pdf renders printable sale receipts.
//
// Layout:
//
//	STORE NAME                     SALE-20260101-000001
//	Cashier / customer             date + status
//	--------------------------------------------------
//	Qty | Item                      | Price | Total
//	--------------------------------------------------
//	                  Subtotal / Tax / Discount / TOTAL
//	                  Payment / Tendered / Change
//	footer
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/retailpos/pos-system/internal/core/domain"
)

var (
	colorPrimary = &props.Color{Red: 30, Green: 64, Blue: 175}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 185, Green: 28, Blue: 28}
)

// ReceiptGenerator renders a committed sale as a PDF receipt.
type ReceiptGenerator struct {
	storeName string
}

func NewReceiptGenerator(storeName string) *ReceiptGenerator {
	if storeName == "" {
		storeName = "POS"
	}
	return &ReceiptGenerator{storeName: storeName}
}

// Generate returns the PDF bytes for sale.
func (g *ReceiptGenerator) Generate(_ context.Context, sale *domain.Sale) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("pdf: nil sale")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Receipt "+sale.SaleNumber, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(partiesRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))

	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(sale)...)

	if sale.PartialFulfillment {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Partially fulfilled: some units were out of stock at checkout.", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorAlert, Top: 2, Align: align.Center,
			}),
		)))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New("Thank you for your purchase.", props.Text{
			Size: 7, Color: colorGray, Align: align.Center, Top: 1,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate receipt: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *ReceiptGenerator) headerRow(sale *domain.Sale) core.Row {
	return row.New(16).Add(
		col.New(6).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(6).Add(
			text.New(sale.SaleNumber, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New(sale.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), props.Text{
				Size: 7, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func partiesRow(sale *domain.Sale) core.Row {
	customer := nonEmpty(sale.CustomerName, "Walk-in customer")
	if sale.CustomerEmail != "" {
		customer += " <" + sale.CustomerEmail + ">"
	}
	return row.New(12).Add(
		col.New(8).Add(
			text.New("Cashier: "+nonEmpty(sale.CashierName, sale.CashierID), props.Text{Size: 7, Top: 1}),
			text.New("Customer: "+customer, props.Text{Size: 7, Top: 6}),
		),
		col.New(4).Add(
			text.New(strings.ToUpper(string(sale.Status)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Color: statusColor(sale.Status),
			}),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Qty", 1, align.Left),
		h("Item", 6, align.Left),
		h("Price", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func itemRows(items []domain.SaleItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := it.Name
		if it.ShortQuantity > 0 {
			name = fmt.Sprintf("%s (short %d)", name, it.ShortQuantity)
		}
		rows = append(rows, row.New(5).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 7, Top: 0.5})),
			col.New(6).Add(text.New(name, props.Text{Size: 7, Top: 0.5})),
			col.New(2).Add(text.New(money(it.Price), props.Text{Size: 7, Align: align.Right, Top: 0.5})),
			col.New(3).Add(text.New(money(it.LineTotal), props.Text{Size: 7, Align: align.Right, Top: 0.5})),
		))
	}
	return rows
}

func totalsRows(sale *domain.Sale) []core.Row {
	entry := func(label, value string, bold bool) core.Row {
		p := props.Text{Size: 8, Align: align.Right, Top: 0.5}
		if bold {
			p.Style = fontstyle.Bold
			p.Size = 10
			p.Color = colorPrimary
		}
		return row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label, p)),
			col.New(3).Add(text.New(value, p)),
		)
	}

	rows := []core.Row{
		entry("Subtotal", money(sale.Subtotal), false),
		entry(fmt.Sprintf("Tax (%s%%)", sale.TaxRate.String()), money(sale.Tax), false),
	}
	if sale.Discount.IsPositive() {
		rows = append(rows, entry(fmt.Sprintf("Discount (%s%%)", sale.DiscountRate.String()), "-"+money(sale.Discount), false))
	}
	rows = append(rows,
		entry("TOTAL", money(sale.Total), true),
		entry("Payment", strings.ToUpper(string(sale.PaymentMethod)), false),
	)
	if sale.PaymentMethod == domain.PaymentCash {
		rows = append(rows,
			entry("Tendered", money(sale.AmountTendered), false),
			entry("Change", money(sale.Change), false),
		)
	}
	return rows
}

func statusColor(s domain.SaleStatus) *props.Color {
	if s == domain.SaleCompleted {
		return colorPrimary
	}
	return colorAlert
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
