// Package cache provides pluggable storage for cached API responses.
//
// Three backends are available:
//   - FileCache: JSON files under a directory, for CLI usage
//   - RedisCache: shared cache for multi-process deployments
//   - NullCache: disables caching entirely
//
// Keys are arbitrary strings; [Key] derives a collision-resistant key from
// request components so that URLs with unsafe characters can be cached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the interface implemented by all cache backends.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// expired entries are reported as misses. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key builds a cache key from its components by hashing them with SHA-256.
// The full 64-character hex digest is used to prevent collisions.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:])
}
