package pagecache

import (
	"context"
	"time"
)

// Backend stores opaque values with a time-to-live.
type Backend interface {
	// Get returns the value and true on a hit. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
}
