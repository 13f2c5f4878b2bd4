// Package cache stores rendered artifacts so an unchanged diagram is not laid
// out twice.
//
// Keys come from [ArtifactKey], which hashes the DOT source together with the
// engine and output format. [FileCache] persists entries under the user cache
// directory; [NullCache] disables caching.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// ArtifactTTL is how long rendered artifacts are kept.
const ArtifactTTL = 7 * 24 * time.Hour

// ArtifactKey returns the cache key of the artifact rendered from the DOT
// source with the given hash.
func ArtifactKey(dotHash, engine, format string) string {
	return hashKey("artifact", dotHash, engine, format)
}

// DefaultDir returns the cache directory: $XDG_CACHE_HOME/valplot or the
// platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "valplot"), nil
}
