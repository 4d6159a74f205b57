package rediscache_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futalk/Tarot-Reading/internal/adapters/cache/rediscache"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

func newCache(t *testing.T, capacity int, ttl time.Duration) (*rediscache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rediscache.New(rdb, capacity, ttl), mr
}

func TestCache_RoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, 10, time.Hour)

	want := domain.Interpretation{Text: "解读", Model: "m", UsingDefaultKey: true}
	require.NoError(t, c.Set(ctx, "k", want))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(time.Hour)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_FIFOEviction(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, 2, time.Hour)

	for i := range 3 {
		require.NoError(t, c.Set(ctx, "k"+strconv.Itoa(i), domain.Interpretation{Text: strconv.Itoa(i)}))
	}

	_, ok, err := c.Get(ctx, "k0")
	require.NoError(t, err)
	assert.False(t, ok)
	for _, k := range []string{"k1", "k2"} {
		_, ok, err := c.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
	}
}

func TestCache_OverwriteDoesNotDuplicateOrder(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, 2, time.Hour)

	require.NoError(t, c.Set(ctx, "a", domain.Interpretation{Text: "a1"}))
	require.NoError(t, c.Set(ctx, "a", domain.Interpretation{Text: "a2"}))
	require.NoError(t, c.Set(ctx, "b", domain.Interpretation{Text: "b"}))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a2", got.Text)
}

func TestCache_ReinsertAfterExpiryKeepsFIFO(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, 3, time.Hour)

	require.NoError(t, c.Set(ctx, "a", domain.Interpretation{Text: "a1"}))
	mr.FastForward(time.Hour + time.Second)

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, c.Set(ctx, k, domain.Interpretation{Text: k}))
	}
	for _, k := range []string{"a", "b", "c"} {
		_, ok, err := c.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
	}

	// The next insert evicts b, the oldest live entry, not the re-inserted a.
	require.NoError(t, c.Set(ctx, "d", domain.Interpretation{Text: "d"}))
	_, ok, err := c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok, "b should be evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok, err := c.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
	}
	assert.Equal(t, []string{"a", "c", "d"}, mustList(t, mr, "tarot:ai-cache:order"))
}

func mustList(t *testing.T, mr *miniredis.Miniredis, key string) []string {
	t.Helper()
	l, err := mr.List(key)
	require.NoError(t, err)
	return l
}
