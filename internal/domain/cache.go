package domain

import (
	"context"
	"time"
)

// CacheError is a sentinel error of the submission cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss means no retrieval response is cached under the key.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache stores encoded retrieval responses of stored submissions. The service
// treats every failure as a miss, so implementations may be unreachable.
type Cache interface {
	// Get returns the cached payload or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key for expiration; 0 keeps it until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Delete drops key. An absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping backs the cache field of the health report.
	Ping(ctx context.Context) error
}
