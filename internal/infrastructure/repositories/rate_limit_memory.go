package repositories

import (
	"context"
	"sync"
	"time"
)

type rateBucket struct {
	count       int
	windowStart time.Time
}

// MemoryRateLimitRepository keeps fixed-window counters in process memory.
// Buckets are never evicted, so memory grows with the number of distinct clients.
type MemoryRateLimitRepository struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
}

func NewMemoryRateLimitRepository() *MemoryRateLimitRepository {
	return &MemoryRateLimitRepository{buckets: make(map[string]*rateBucket)}
}

// Admit implements RateLimitRepository.Admit.
func (repo *MemoryRateLimitRepository) Admit(_ context.Context, key string, now time.Time, window time.Duration, max int) (bool, int, time.Time, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.buckets[key]
	if !ok || now.Sub(b.windowStart) >= window {
		b = &rateBucket{count: 1, windowStart: now}
		repo.buckets[key] = b
		return true, b.count, b.windowStart, nil
	}
	if b.count >= max {
		return false, b.count, b.windowStart, nil
	}
	b.count++
	return true, b.count, b.windowStart, nil
}
