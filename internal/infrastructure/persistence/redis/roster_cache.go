package redis

import (
	"context"
	"errors"
	"time"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/circuitbreaker"
)

// RosterCache implements roster.Cache on top of Cache.
//
// When a circuit breaker is attached, calls stop reaching Redis after
// repeated connection failures and fail with circuitbreaker.ErrCircuitOpen
// until the breaker lets a probe through. Misses never trip the breaker.
type RosterCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewRosterCache creates a new RosterCache. breaker may be nil.
func NewRosterCache(cache *Cache, breaker *circuitbreaker.CircuitBreaker) *RosterCache {
	return &RosterCache{cache: cache, breaker: breaker}
}

var _ roster.Cache = (*RosterCache)(nil)

// IsMiss reports whether err means the key is simply not cached.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// GetGraded returns the cached graded roster for location or ErrCacheMiss.
func (c *RosterCache) GetGraded(ctx context.Context, location string) (roster.Roster, error) {
	var graded roster.Roster
	err := c.do(ctx, func(ctx context.Context) error {
		return c.cache.Get(ctx, GradedKey(location), &graded)
	})
	if err != nil {
		return nil, err
	}
	if graded == nil {
		graded = roster.Roster{}
	}
	return graded, nil
}

// SetGraded caches a graded roster. Empty results are cached too.
func (c *RosterCache) SetGraded(ctx context.Context, location string, graded roster.Roster, ttl time.Duration) error {
	if graded == nil {
		graded = roster.Roster{}
	}
	return c.do(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, GradedKey(location), graded, ttl)
	})
}

// Invalidate drops every cached graded roster. It bypasses the breaker:
// skipping an invalidation would leave stale entries behind.
func (c *RosterCache) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, PrefixGraded+"*")
}

func (c *RosterCache) do(ctx context.Context, fn func(context.Context) error) error {
	if c.breaker == nil {
		return fn(ctx)
	}
	return c.breaker.Execute(ctx, fn)
}
