package redisquota_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futalk/Tarot-Reading/internal/adapters/quota/redisquota"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

func TestStore_ApplyPolicy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := redisquota.NewWithClock(rdb, func() time.Time { return now })
	policy := domain.QuotaPolicy{Hourly: 2, Daily: 30}
	ctx := context.Background()

	var decisions []domain.QuotaDecision
	for range 3 {
		var d domain.QuotaDecision
		err := store.Update(ctx, "10.0.0.1", func(rec domain.QuotaRecord, found bool) domain.QuotaRecord {
			var next domain.QuotaRecord
			next, d = policy.Apply(rec, found, now)
			return next
		})
		require.NoError(t, err)
		decisions = append(decisions, d)
	}

	assert.True(t, decisions[0].Allowed)
	assert.True(t, decisions[1].Allowed)
	assert.False(t, decisions[2].Allowed)
	assert.Greater(t, decisions[2].RetryAfter, time.Duration(0))

	ttl := mr.TTL("tarot:quota:10.0.0.1")
	assert.Equal(t, 24*time.Hour, ttl)

	mr.FastForward(24 * time.Hour)
	assert.False(t, mr.Exists("tarot:quota:10.0.0.1"))
}

func TestStore_PruneIsNoop(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	n, err := redisquota.New(rdb).Prune(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
