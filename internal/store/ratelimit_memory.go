package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore keeps per-client request timestamps in memory. It
// backs the limiter when no Redis address is configured; counters reset on
// restart, which is acceptable for a single-process deployment.
type RateLimitMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewRateLimitMemoryStore creates an empty in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		hits: make(map[string][]time.Time),
	}
}

// Record notes one request under key and returns how many requests the key
// has made inside the window, pruning anything older as it goes.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	kept := s.hits[key][:0]

	for _, hit := range s.hits[key] {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}

	kept = append(kept, now)
	s.hits[key] = kept

	return int64(len(kept)), nil
}
