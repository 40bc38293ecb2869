package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
)

type resultEntry struct {
	result    plate.Result
	expiresAt time.Time
}

// MemoryResultCache implements ports.ResultCache with a mutex-guarded map.
// Entries are evicted lazily on lookup; there is no size bound.
type MemoryResultCache struct {
	mu      sync.Mutex
	entries map[plate.Key]resultEntry
	ttl     time.Duration
}

func NewMemoryResultCache(ttl time.Duration) *MemoryResultCache {
	return &MemoryResultCache{entries: make(map[plate.Key]resultEntry), ttl: ttl}
}

// Get implements ResultCache.Get.
func (c *MemoryResultCache) Get(_ context.Context, key plate.Key, now time.Time) (*plate.Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	r := e.result
	return &r, true, nil
}

// Put implements ResultCache.Put.
func (c *MemoryResultCache) Put(_ context.Context, key plate.Key, result plate.Result, now time.Time) error {
	c.mu.Lock()
	c.entries[key] = resultEntry{result: result, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
