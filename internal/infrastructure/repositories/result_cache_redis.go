package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
)

type storedResult struct {
	Result    plate.Result `json:"result"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// CachedResultRepository implements ports.ResultCache on top of a generic ports.Cache
// (Redis in production). The backing TTL is a safety net; expiry is decided by
// the stored expires_at against the caller's clock.
type CachedResultRepository struct {
	cache  ports.Cache
	ttl    time.Duration
	prefix string
}

func NewCachedResultRepository(cache ports.Cache, ttl time.Duration) *CachedResultRepository {
	return &CachedResultRepository{cache: cache, ttl: ttl, prefix: "plate:result:"}
}

func (r *CachedResultRepository) key(k plate.Key) string { return r.prefix + k.String() }

// Get implements ResultCache.Get.
func (r *CachedResultRepository) Get(ctx context.Context, key plate.Key, now time.Time) (*plate.Result, bool, error) {
	b, ok, err := r.cache.Get(ctx, r.key(key))
	if err != nil {
		return nil, false, fmt.Errorf("get cached result: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var v storedResult
	if err := json.Unmarshal(b, &v); err != nil {
		_ = r.cache.Delete(ctx, r.key(key))
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	if now.After(v.ExpiresAt) {
		if err := r.cache.Delete(ctx, r.key(key)); err != nil {
			return nil, false, fmt.Errorf("evict cached result: %w", err)
		}
		return nil, false, nil
	}
	return &v.Result, true, nil
}

// Put implements ResultCache.Put.
func (r *CachedResultRepository) Put(ctx context.Context, key plate.Key, result plate.Result, now time.Time) error {
	b, err := json.Marshal(storedResult{Result: result, ExpiresAt: now.Add(r.ttl)})
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}
	// keep the backing entry a little past expires_at so clock skew cannot drop it early
	if err := r.cache.Set(ctx, r.key(key), b, r.ttl+time.Second); err != nil {
		return fmt.Errorf("store cached result: %w", err)
	}
	return nil
}
