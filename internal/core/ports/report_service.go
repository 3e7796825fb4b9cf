package ports

import "context"

// ReportService defines reporting use cases.
type ReportService interface {
	DailySummary(ctx context.Context, day string) (*DailySummary, error)
	TopProducts(ctx context.Context, day string, limit int) ([]TopProduct, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}
