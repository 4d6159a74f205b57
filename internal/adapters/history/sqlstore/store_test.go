package sqlstore_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futalk/Tarot-Reading/internal/adapters/history/sqlstore"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

func newStore(t *testing.T, keep int) *sqlstore.Store {
	t.Helper()
	db, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	s, err := sqlstore.New(db, keep)
	require.NoError(t, err)
	return s
}

func reading(i int, at time.Time) domain.Reading {
	return domain.Reading{
		ID:       "r-" + strconv.Itoa(i),
		Spread:   domain.SpreadTriangle,
		Question: "问题" + strconv.Itoa(i),
		Cards: []domain.DrawnCard{{
			Card:         domain.Card{ID: "major_00", Name: "愚者", Suit: domain.SuitMajor},
			Position:     1,
			PositionName: "过去",
			Aspect:       domain.AspectFuture,
			Orientation:  domain.Reversed,
		}},
		CreatedAt: at.Add(time.Duration(i) * time.Minute),
	}
}

func TestStore_AppendListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, 50)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	r := reading(1, at)
	cut := domain.DrawnCard{Card: domain.Card{Name: "星星"}, PositionName: "切牌", Orientation: domain.Upright}
	r.Cut = &cut
	require.NoError(t, s.Append(ctx, r))
	require.NoError(t, s.Append(ctx, reading(2, at)))

	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r-2", got[0].ID, "newest first")
	assert.Nil(t, got[0].Cut)

	first := got[1]
	assert.Equal(t, "问题1", first.Question)
	require.Len(t, first.Cards, 1)
	assert.Equal(t, "愚者", first.Cards[0].Name)
	assert.True(t, first.Cards[0].IsReversed())
	require.NotNil(t, first.Cut)
	assert.Equal(t, "星星", first.Cut.Name)
	assert.True(t, first.CreatedAt.Equal(r.CreatedAt))
}

func TestStore_RetainsNewest(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, 3)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, s.Append(ctx, reading(i, at)))
	}

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"r-4", "r-3", "r-2"}, ids)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, 50)
	require.NoError(t, s.Append(ctx, reading(1, time.Now())))

	require.NoError(t, s.Clear(ctx))
	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_DailyKeepsFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, 50)
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	_, ok, err := s.GetDaily(ctx, "alice", "2025-03-01")
	require.NoError(t, err)
	assert.False(t, ok)

	first := domain.DailyCard{UserID: "alice", Day: "2025-03-01", DrawnAt: at,
		Card: domain.DrawnCard{Card: domain.Card{Name: "太阳"}, Orientation: domain.Upright}}
	second := first
	second.Card = domain.DrawnCard{Card: domain.Card{Name: "月亮"}, Orientation: domain.Reversed}

	require.NoError(t, s.SaveDaily(ctx, first))
	require.NoError(t, s.SaveDaily(ctx, second))

	got, ok, err := s.GetDaily(ctx, "alice", "2025-03-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "太阳", got.Card.Name)
	assert.True(t, got.DrawnAt.Equal(at))
}
