// Package redisquota keeps rate-limit records in Redis so that every
// instance enforces the same windows. Updates use optimistic WATCH
// transactions; records expire with their daily window.
package redisquota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

const (
	defaultPrefix = "tarot:quota:"
	maxRetries    = 8
)

var ErrContention = errors.New("quota record contended, retries exhausted")

type Store struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

func New(rdb redis.UniversalClient) *Store {
	return NewWithClock(rdb, time.Now)
}

func NewWithClock(rdb redis.UniversalClient, now func() time.Time) *Store {
	return &Store{rdb: rdb, prefix: defaultPrefix, now: now}
}

func (s *Store) Update(ctx context.Context, key string, fn func(domain.QuotaRecord, bool) domain.QuotaRecord) error {
	k := s.prefix + key

	txf := func(tx *redis.Tx) error {
		var rec domain.QuotaRecord
		found := false

		raw, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode quota record: %w", err)
			}
			found = true
		}

		next := fn(rec, found)
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode quota record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, data, s.expiry(next))
			return nil
		})
		return err
	}

	for range maxRetries {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("redis quota update: %w", err)
	}
	return ErrContention
}

// expiry keeps the record until both windows have reset.
func (s *Store) expiry(rec domain.QuotaRecord) time.Duration {
	last := rec.Hourly.ResetAt
	if rec.Daily.ResetAt.After(last) {
		last = rec.Daily.ResetAt
	}
	return max(last.Sub(s.now()), time.Second)
}

// Prune is a no-op: Redis expires stale records itself.
func (s *Store) Prune(context.Context, time.Time) (int, error) {
	return 0, nil
}
