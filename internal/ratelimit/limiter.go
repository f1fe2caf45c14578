package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed. The
// middleware applies it to every operation that does not carry its own
// endpoint limits.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// SlidingWindowLimiter allows up to limit requests per key inside one
// sliding window. Counting happens in the Store, so the same limiter works
// over the in-memory store and the Redis one.
type SlidingWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a limiter enforcing limit requests per window.
func NewSlidingWindowLimiter(store Store, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Allow records the request and reports whether the key stayed within the
// limit. The denied request still counts toward the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}
