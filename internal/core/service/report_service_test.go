package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

type stubReportRepo struct {
	summaryCalls int
	from, to     time.Time
	err          error
}

func (r *stubReportRepo) SalesSummary(_ context.Context, from, to time.Time) (*ports.DailySummary, error) {
	r.summaryCalls++
	r.from, r.to = from, to
	if r.err != nil {
		return nil, r.err
	}
	return &ports.DailySummary{TotalSales: dec("42.50"), TotalTransactions: 3, AverageTransaction: dec("14.17")}, nil
}

func (r *stubReportRepo) TopProducts(_ context.Context, _, _ time.Time, limit int) ([]ports.TopProduct, error) {
	out := make([]ports.TopProduct, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, ports.TopProduct{Name: "p", Quantity: int64(limit - i)})
	}
	return out, nil
}

func (r *stubReportRepo) DashboardStats(_ context.Context, _ time.Time) (*ports.DashboardStats, error) {
	return &ports.DashboardStats{TotalOrders: 7}, nil
}

type mapCache struct {
	data map[string][]byte
	err  error
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func TestReportService_DailySummaryUsesCache(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, &mapCache{data: map[string][]byte{}}, time.Minute, zerolog.Nop())

	first, err := svc.DailySummary(context.Background(), "2026-03-14")
	require.NoError(t, err)
	second, err := svc.DailySummary(context.Background(), "2026-03-14")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.summaryCalls)
	assert.True(t, first.TotalSales.Equal(second.TotalSales))
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), repo.to)
}

func TestReportService_CacheFailureFallsThrough(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, &mapCache{err: errors.New("redis down")}, time.Minute, zerolog.Nop())

	_, err := svc.DailySummary(context.Background(), "2026-03-14")
	require.NoError(t, err)
	_, err = svc.DailySummary(context.Background(), "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.summaryCalls)
}

func TestReportService_BadDate(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, nil, 0, zerolog.Nop())

	_, err := svc.DailySummary(context.Background(), "14/03/2026")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_StorageFailure(t *testing.T) {
	svc := NewReportService(&stubReportRepo{err: errors.New("boom")}, nil, 0, zerolog.Nop())

	_, err := svc.DailySummary(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestReportService_TopProductsLimit(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, nil, 0, zerolog.Nop())

	top, err := svc.TopProducts(context.Background(), "2026-03-14", 0)
	require.NoError(t, err)
	assert.Len(t, top, defaultTopProducts)

	top, err = svc.TopProducts(context.Background(), "2026-03-14", 500)
	require.NoError(t, err)
	assert.Len(t, top, maxTopProducts)
}
