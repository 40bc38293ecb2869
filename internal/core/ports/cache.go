package ports

import (
	"context"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
)

// Cache defines a minimal key-value cache contract.
// Implementations should degrade gracefully (returning an error without crashing callers)
// so that the caller can fall back to the upstream registry.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration if supported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}

// ResultCache stores interpreted results per plate key for a fixed TTL.
// Implementations MUST be safe for concurrent use.
type ResultCache interface {
	// Get returns the result stored for key if now is not past its expiry.
	// An expired entry is evicted and reported absent.
	Get(ctx context.Context, key plate.Key, now time.Time) (*plate.Result, bool, error)
	// Put stores result for key, expiring at now+TTL, replacing any prior entry.
	Put(ctx context.Context, key plate.Key, result plate.Result, now time.Time) error
}
