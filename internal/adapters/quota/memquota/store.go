// Package memquota keeps rate-limit records in process memory.
package memquota

import (
	"context"
	"sync"
	"time"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

type Store struct {
	mu      sync.Mutex
	records map[string]domain.QuotaRecord
}

func New() *Store {
	return &Store{records: make(map[string]domain.QuotaRecord)}
}

func (s *Store) Update(_ context.Context, key string, fn func(domain.QuotaRecord, bool) domain.QuotaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.records[key]
	s.records[key] = fn(rec, found)
	return nil
}

// Prune drops records whose windows have all expired.
func (s *Store) Prune(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, rec := range s.records {
		if rec.Stale(now) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
