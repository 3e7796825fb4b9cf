package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/domain"
	"github.com/retailpos/pos-system/internal/core/ports"
)

const (
	dayLayout             = "2006-01-02"
	defaultTopProducts    = 5
	maxTopProducts        = 50
	defaultReportCacheTTL = time.Minute
)

// ReportService serves read-only aggregates over completed sales. Results
// are cached for a short time when a cache is configured.
type ReportService struct {
	reports ports.ReportRepository
	cache   ports.ReportCache
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewReportService(reports ports.ReportRepository, cache ports.ReportCache, ttl time.Duration, log zerolog.Logger) *ReportService {
	if ttl <= 0 {
		ttl = defaultReportCacheTTL
	}
	return &ReportService{
		reports: reports,
		cache:   cache,
		ttl:     ttl,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// DailySummary aggregates the sales of one UTC day given as YYYY-MM-DD.
// An empty day means today.
func (s *ReportService) DailySummary(ctx context.Context, day string) (*ports.DailySummary, error) {
	from, err := s.parseDay(day)
	if err != nil {
		return nil, err
	}

	var out ports.DailySummary
	key := "pos:report:daily:" + from.Format(dayLayout)
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	summary, err := s.reports.SalesSummary(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, domain.Persistence("daily summary", err)
	}
	summary.Date = from
	s.store(ctx, key, summary)
	return summary, nil
}

// TopProducts ranks products by units sold on one day.
func (s *ReportService) TopProducts(ctx context.Context, day string, limit int) ([]ports.TopProduct, error) {
	from, err := s.parseDay(day)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	var out []ports.TopProduct
	key := fmt.Sprintf("pos:report:top:%s:%d", from.Format(dayLayout), limit)
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	top, err := s.reports.TopProducts(ctx, from, from.AddDate(0, 0, 1), limit)
	if err != nil {
		return nil, domain.Persistence("top products", err)
	}
	if top == nil {
		top = []ports.TopProduct{}
	}
	s.store(ctx, key, top)
	return top, nil
}

func (s *ReportService) DashboardStats(ctx context.Context) (*ports.DashboardStats, error) {
	var out ports.DashboardStats
	const key = "pos:report:dashboard"
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	stats, err := s.reports.DashboardStats(ctx, s.now())
	if err != nil {
		return nil, domain.Persistence("dashboard stats", err)
	}
	s.store(ctx, key, stats)
	return stats, nil
}

func (s *ReportService) parseDay(day string) (time.Time, error) {
	if day == "" {
		n := s.now()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation(dayLayout, day, time.UTC)
	if err != nil {
		return time.Time{}, domain.Invalid(nil, "date must be YYYY-MM-DD, got %q", day)
	}
	return t, nil
}

// cached and store treat cache failures as misses.
func (s *ReportService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("report cache read failed")
		return false
	}
	return ok
}

func (s *ReportService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
