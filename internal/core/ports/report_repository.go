package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary aggregates completed sales for one day.
type DailySummary struct {
	Date               time.Time       `json:"date"`
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalTransactions  int64           `json:"total_transactions"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
	CashSales          decimal.Decimal `json:"cash_sales"`
	CardSales          decimal.Decimal `json:"card_sales"`
	DigitalSales       decimal.Decimal `json:"digital_sales"`
}

// TopProduct is a best seller within a time range.
type TopProduct struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"sales"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DashboardStats backs the overview widgets.
type DashboardStats struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalOrders     int64           `json:"total_orders"`
	TotalProducts   int64           `json:"total_products"`
	TotalUsers      int64           `json:"total_users"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	TodaySales      decimal.Decimal `json:"today_sales"`
	MonthSales      decimal.Decimal `json:"month_sales"`
}

// ReportRepository runs read-only aggregations. Only completed sales count.
type ReportRepository interface {
	SalesSummary(ctx context.Context, from, to time.Time) (*DailySummary, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
	DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
}
