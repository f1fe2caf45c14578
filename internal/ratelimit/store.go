package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit counters.
type Store interface {
	// Record registers a request under the key and returns the request count
	// for the current window, pruning expired entries as it goes.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
