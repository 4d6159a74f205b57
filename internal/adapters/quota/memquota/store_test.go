package memquota_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/futalk/Tarot-Reading/internal/adapters/quota/memquota"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := memquota.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "1.2.3.4", func(rec domain.QuotaRecord, _ bool) domain.QuotaRecord {
				rec.Hourly.Count++
				return rec
			})
		}()
	}
	wg.Wait()

	var got domain.QuotaRecord
	require.NoError(t, s.Update(ctx, "1.2.3.4", func(rec domain.QuotaRecord, found bool) domain.QuotaRecord {
		assert.True(t, found)
		got = rec
		return rec
	}))
	assert.Equal(t, 50, got.Hourly.Count)
}

func TestStore_Prune(t *testing.T) {
	s := memquota.New()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	set := func(key string, hourly, daily time.Time) {
		require.NoError(t, s.Update(ctx, key, func(domain.QuotaRecord, bool) domain.QuotaRecord {
			return domain.QuotaRecord{
				Hourly: domain.Window{Count: 1, ResetAt: hourly},
				Daily:  domain.Window{Count: 1, ResetAt: daily},
			}
		}))
	}
	set("stale", now.Add(-time.Hour), now.Add(-time.Minute))
	set("live", now.Add(-time.Hour), now.Add(time.Hour))

	n, err := s.Prune(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
}
