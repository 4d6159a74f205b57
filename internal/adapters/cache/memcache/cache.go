// Package memcache is a process-local interpretation cache with a fixed
// capacity, FIFO eviction and lazy TTL expiry.
package memcache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

type entry struct {
	key       string
	value     domain.Interpretation
	expiresAt time.Time
}

type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List // oldest insertion at the front
	entries  map[string]*list.Element
}

func New(capacity int, ttl time.Duration) *Cache {
	return NewWithClock(capacity, ttl, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(capacity int, ttl time.Duration, now func() time.Time) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		now:      now,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns a live entry. An expired entry is removed and reads as a miss.
func (c *Cache) Get(_ context.Context, key string) (domain.Interpretation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.Interpretation{}, false, nil
	}
	e := el.Value.(*entry)
	if !c.now().Before(e.expiresAt) {
		c.remove(el)
		return domain.Interpretation{}, false, nil
	}
	return e.value, true, nil
}

// Set stores v under key. A new key evicts the oldest-inserted entry when the
// cache is full; overwriting an existing key keeps its insertion position.
func (c *Cache) Set(_ context.Context, key string, v domain.Interpretation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = v
		e.expiresAt = expiresAt
		return nil
	}

	for len(c.entries) >= c.capacity {
		c.remove(c.order.Front())
	}
	c.entries[key] = c.order.PushBack(&entry{key: key, value: v, expiresAt: expiresAt})
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) remove(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.entries, e.key)
}
