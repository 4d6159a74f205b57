// Package rediscache shares the interpretation cache across instances. Values
// expire through Redis TTLs; a list of keys in insertion order enforces the
// FIFO capacity.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

const defaultPrefix = "tarot:ai-cache:"

type Cache struct {
	rdb      redis.UniversalClient
	prefix   string
	capacity int
	ttl      time.Duration
}

func New(rdb redis.UniversalClient, capacity int, ttl time.Duration) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{rdb: rdb, prefix: defaultPrefix, capacity: capacity, ttl: ttl}
}

func (c *Cache) valueKey(key string) string { return c.prefix + "v:" + key }
func (c *Cache) orderKey() string           { return c.prefix + "order" }

func (c *Cache) Get(ctx context.Context, key string) (domain.Interpretation, bool, error) {
	raw, err := c.rdb.Get(ctx, c.valueKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Interpretation{}, false, nil
	}
	if err != nil {
		return domain.Interpretation{}, false, fmt.Errorf("redis get: %w", err)
	}
	var v domain.Interpretation
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Interpretation{}, false, fmt.Errorf("decode cached interpretation: %w", err)
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v domain.Interpretation) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode interpretation: %w", err)
	}

	created, err := c.rdb.SetNX(ctx, c.valueKey(key), data, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !created {
		if err := c.rdb.Set(ctx, c.valueKey(key), data, c.ttl).Err(); err != nil {
			return fmt.Errorf("redis set: %w", err)
		}
		return nil
	}

	// A key whose value expired by TTL still has its old slot in the order
	// list. Drop it so the fresh value is queued at the tail only once.
	var push *redis.IntCmd
	if _, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, c.orderKey(), 0, key)
		push = p.RPush(ctx, c.orderKey(), key)
		return nil
	}); err != nil {
		return fmt.Errorf("redis requeue: %w", err)
	}
	n := push.Val()
	for ; n > int64(c.capacity); n-- {
		oldest, err := c.rdb.LPop(ctx, c.orderKey()).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return fmt.Errorf("redis lpop: %w", err)
		}
		if err := c.rdb.Del(ctx, c.valueKey(oldest)).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}
