package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/retailpos/pos-system/internal/core/ports"
)

const sequenceTTL = 48 * time.Hour

var _ ports.SaleNumberGenerator = (*SaleSequence)(nil)

// SaleSequence issues sale numbers of the form SALE-YYYYMMDD-NNNNNN from a
// per-day Redis counter.
// Key format: pos:sale_seq:<yyyymmdd>
//
// When Redis cannot be reached it falls back to
// SALE-YYYYMMDD-<unix millis>-<8 hex>, which is unique without coordination.
type SaleSequence struct {
	client *redis.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewSaleSequence wraps client. A nil client always uses the fallback.
func NewSaleSequence(client *redis.Client, log zerolog.Logger) *SaleSequence {
	return &SaleSequence{
		client: client,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *SaleSequence) Next(ctx context.Context) (string, error) {
	now := s.now()
	day := now.Format("20060102")

	if s.client != nil {
		n, err := s.incr(ctx, day)
		if err == nil {
			return fmt.Sprintf("SALE-%s-%06d", day, n), nil
		}
		s.log.Warn().Err(err).Msg("sale sequence unavailable, using fallback number")
	}

	suffix, err := randomHex(4)
	if err != nil {
		return "", fmt.Errorf("sale number fallback: %w", err)
	}
	return fmt.Sprintf("SALE-%s-%d-%s", day, now.UnixMilli(), suffix), nil
}

func (s *SaleSequence) incr(ctx context.Context, day string) (int64, error) {
	key := s.key(day)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("sale sequence: %w", err)
	}
	return incr.Val(), nil
}

func (s *SaleSequence) key(day string) string {
	return keyPrefix + "sale_seq:" + day
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
