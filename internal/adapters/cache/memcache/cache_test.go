package memcache_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futalk/Tarot-Reading/internal/adapters/cache/memcache"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)} }

func interp(text string) domain.Interpretation {
	return domain.Interpretation{Text: text, Model: "test-model"}
}

func TestCache_HitAndExpiry(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := memcache.NewWithClock(10, time.Hour, clk.now)

	require.NoError(t, c.Set(ctx, "k", interp("hello")))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Text)

	clk.advance(59 * time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.True(t, ok, "entry must live until its TTL")

	clk.advance(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok, "entry at its TTL reads as a miss")
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
}

func TestCache_FIFOEviction(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := memcache.NewWithClock(3, time.Hour, clk.now)

	for i := range 3 {
		require.NoError(t, c.Set(ctx, "k"+strconv.Itoa(i), interp(strconv.Itoa(i))))
	}

	// Reading k0 must not protect it: eviction is by insertion, not use.
	_, ok, _ := c.Get(ctx, "k0")
	require.True(t, ok)

	require.NoError(t, c.Set(ctx, "k3", interp("3")))
	assert.Equal(t, 3, c.Len())

	_, ok, _ = c.Get(ctx, "k0")
	assert.False(t, ok, "oldest insertion must be evicted")
	for _, k := range []string{"k1", "k2", "k3"} {
		_, ok, _ := c.Get(ctx, k)
		assert.True(t, ok, k)
	}
}

func TestCache_OverwriteKeepsPosition(t *testing.T) {
	ctx := context.Background()
	c := memcache.NewWithClock(2, time.Hour, newClock().now)

	require.NoError(t, c.Set(ctx, "a", interp("a1")))
	require.NoError(t, c.Set(ctx, "b", interp("b")))
	require.NoError(t, c.Set(ctx, "a", interp("a2")))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Set(ctx, "c", interp("c")))
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "a was inserted first and must go first")
	got, ok, _ := c.Get(ctx, "b")
	require.True(t, ok)
	assert.Equal(t, "b", got.Text)
}
