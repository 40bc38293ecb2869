package ports

import (
	"context"
	"time"
)

// RateLimitRepository provides low-level atomic operations for fixed-window counters.
// It abstracts storage (memory or Redis). Implementation should be concurrency-safe.
type RateLimitRepository interface {
	// Admit applies one request for key against a fixed window of the given size.
	// A missing or elapsed bucket is reset to count=1 starting at now. A full bucket
	// rejects without incrementing. Returns the bucket count and window start after the call.
	Admit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (allowed bool, count int, windowStart time.Time, err error)
}

// RateLimiterService defines per-client rate limiting.
// Implementations encapsulate algorithm & storage and MUST be safe for concurrent use.
type RateLimiterService interface {
	// Allow consumes one request unit for the client and reports whether it is permitted.
	// remaining: number of additional requests allowed in current window after this one (>=0)
	// limit: configured max requests per window
	// reset: time when the current window resets (Unix semantics for headers)
	Allow(ctx context.Context, clientID string) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
