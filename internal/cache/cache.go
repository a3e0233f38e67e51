// Package cache provides a TTL key/value store behind a small interface so
// the valuation pipeline and the rate limiter can swap between an in-process
// store and a shared Redis instance via configuration.
package cache

import (
	"context"
	"time"
)

// Store is the contract both backends satisfy. Incr exists for fixed-window
// rate counters: atomic on Redis, best-effort on the memory backend.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key. The TTL restarts from the call time.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr increments the counter at key, creating it at 1 with the given
	// TTL, and returns the count after the increment.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Close releases backend resources.
	Close() error
}
