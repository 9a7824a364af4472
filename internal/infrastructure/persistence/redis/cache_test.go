package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/circuitbreaker"
)

// unreachable returns a cache whose client points at a closed port.
func unreachable(t *testing.T) *Cache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheWithClient(client)
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "cache"
	cfg.DB = 2

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	cfg.URL = "redis://:pw@redis.internal:6380/5"
	opts, err = cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 5, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)

	cfg.URL = "http://not-redis"
	_, err = cfg.Options()
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestGradedKey(t *testing.T) {
	assert.Equal(t, "roster:graded:SF", GradedKey("SF"))
	assert.Equal(t, "roster:graded:", GradedKey(""))
}

func TestCache_ValidatesBeforeNetwork(t *testing.T) {
	c := unreachable(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, c.Get(ctx, "", new(int)), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.DeleteByPattern(ctx, ""), ErrCacheKeyEmpty)
	assert.NoError(t, c.Delete(ctx))
	assert.Equal(t, "redis", c.Name())
}

func TestCache_Set_SerializationError(t *testing.T) {
	c := unreachable(t)
	err := c.Set(context.Background(), "k", func() {}, time.Minute)
	assert.ErrorIs(t, err, ErrCacheSerialization)
}

func TestRosterCache_ConnectionErrorIsNotAMiss(t *testing.T) {
	rc := NewRosterCache(unreachable(t), nil)

	_, err := rc.GetGraded(context.Background(), "SF")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, rc.SetGraded(context.Background(), "SF", roster.Roster{{ID: 1}}, time.Minute))
}

func TestRosterCache_BreakerOpensAfterFailures(t *testing.T) {
	var transitions []string
	breaker := circuitbreaker.CacheBreaker(IsMiss, func(_ string, from, to circuitbreaker.State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})
	rc := NewRosterCache(unreachable(t), breaker)
	ctx := context.Background()

	for range 3 {
		_, err := rc.GetGraded(ctx, "SF")
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	}

	_, err := rc.GetGraded(ctx, "SF")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.ErrorIs(t, rc.SetGraded(ctx, "SF", nil, time.Minute), circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestIsMiss(t *testing.T) {
	assert.True(t, IsMiss(ErrCacheMiss))
	assert.False(t, IsMiss(ErrCacheConnection))
}
