package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/talentmatch/internal/infrastructure/redis"
	"github.com/yourorg/talentmatch/internal/observability/metrics"
	"github.com/yourorg/talentmatch/internal/reliability/circuitbreaker"
)

// FeedCache keeps rendered feed pages in Redis for a short TTL. It is an
// optimization only: every method degrades to a no-op when Redis is absent
// or its circuit breaker is open.
type FeedCache struct {
	redis   *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewFeedCache creates a feed cache. redisClient may be nil to disable
// caching entirely.
func NewFeedCache(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *FeedCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedCache{
		redis:   redisClient,
		breaker: circuitbreaker.New(5, 2, 30*time.Second),
		ttl:     ttl,
		logger:  logger,
	}
}

func feedCacheKey(forID string, limit, offset int, sortBy, sortDirection string) string {
	return fmt.Sprintf("feed:%s:%d:%d:%s:%s", forID, limit, offset, sortBy, sortDirection)
}

// Get returns the cached page payload and whether it was present
func (c *FeedCache) Get(ctx context.Context, key string) (string, bool) {
	if c.redis == nil || !c.breaker.Allow() {
		return "", false
	}

	payload, err := c.redis.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			c.breaker.RecordSuccess()
			metrics.ObserveFeedCache("miss")
			return "", false
		}
		c.breaker.RecordFailure()
		metrics.ObserveFeedCache("error")
		c.logger.Warn("feed cache read failed", slog.String("error", err.Error()))
		return "", false
	}

	c.breaker.RecordSuccess()
	metrics.ObserveFeedCache("hit")
	return payload, true
}

// Set stores a page payload under key for the cache TTL
func (c *FeedCache) Set(ctx context.Context, key, payload string) {
	if c.redis == nil || !c.breaker.Allow() {
		return
	}

	if err := c.redis.Set(ctx, key, payload, c.ttl); err != nil {
		c.breaker.RecordFailure()
		c.logger.Warn("feed cache write failed", slog.String("error", err.Error()))
		return
	}
	c.breaker.RecordSuccess()
}

// Invalidate drops every cached page for the given users. Called after any
// swipe or escalation so the next feed read reflects the new exclusions.
func (c *FeedCache) Invalidate(ctx context.Context, userIDs ...string) {
	if c.redis == nil || !c.breaker.Allow() {
		return
	}

	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if err := c.redis.DeleteByPattern(ctx, "feed:"+id+":*"); err != nil {
			c.breaker.RecordFailure()
			c.logger.Warn("feed cache invalidation failed",
				slog.String("user_id", id),
				slog.String("error", err.Error()),
			)
			return
		}
	}
	c.breaker.RecordSuccess()
}
