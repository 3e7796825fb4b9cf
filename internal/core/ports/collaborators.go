package ports

import (
	"context"
	"time"

	"github.com/retailpos/pos-system/internal/core/domain"
)

// SaleNumberGenerator yields unique human-readable sale numbers. Numbers are
// never derived from a document count.
type SaleNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// SaleEventPublisher delivers committed sale events to other systems.
type SaleEventPublisher interface {
	Publish(ctx context.Context, event domain.SaleEvent) error
}

// ReportCache memoises report results for a short time.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ReceiptRenderer turns a sale into a printable document.
type ReceiptRenderer interface {
	Generate(ctx context.Context, sale *domain.Sale) ([]byte, error)
}
