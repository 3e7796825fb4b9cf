package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailpos/pos-system/internal/core/ports"
)

var _ ports.ReportCache = (*ReportCache)(nil)

// ReportCache stores JSON encoded report results with a TTL.
type ReportCache struct {
	client *redis.Client
}

func NewReportCache(client *redis.Client) *ReportCache {
	return &ReportCache{client: client}
}

// Get decodes the cached value into dst. A missing key is not an error.
func (c *ReportCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}
