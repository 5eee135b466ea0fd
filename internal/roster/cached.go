package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"demand-platform/pkg/logger"
	"demand-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps a Provider with a per-company redis cache.
//
// The roster changes rarely but is read on every approval reconciliation, so
// a short TTL trades a bounded staleness window for far fewer roster queries.
// Cache failures fall through to the source; they never fail the read.
type CachedProvider struct {
	source Provider
	rdb    *redis.Client
	ttl    time.Duration
}

func NewCachedProvider(source Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{source: source, rdb: rdb, ttl: ttl}
}

func cacheKey(companyID string) string {
	return fmt.Sprintf("roster:committee:%s", companyID)
}

func (p *CachedProvider) ActiveMembers(ctx context.Context, companyID string) ([]Member, error) {
	key := cacheKey(companyID)

	var cached []Member
	err := utils.GetJSON(ctx, p.rdb, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, utils.ErrCacheMiss) {
		logger.From(ctx).Warn("roster cache read failed", "company_id", companyID, "err", err)
	}

	members, err := p.source.ActiveMembers(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if err := utils.SetJSON(ctx, p.rdb, key, members, p.ttl); err != nil {
		logger.From(ctx).Warn("roster cache write failed", "company_id", companyID, "err", err)
	}
	return members, nil
}

// Invalidate drops the cached roster for a company, e.g. after membership
// changes.
func (p *CachedProvider) Invalidate(ctx context.Context, companyID string) error {
	return utils.InvalidateKey(ctx, p.rdb, cacheKey(companyID))
}
