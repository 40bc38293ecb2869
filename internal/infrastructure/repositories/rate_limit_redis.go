package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// admitScript starts a window on the first request (the key expires with the
// window) and refuses to count past max.
var admitScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return {0, current, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, current, redis.call('PTTL', KEYS[1])}
`)

// RateLimitRedisRepository implements fixed-window counter storage with Redis.
// Keys are used as given; RateLimiterService owns the namespace.
// Window boundaries follow the Redis server clock rather than the caller's now.
type RateLimitRedisRepository struct {
	r redis.Cmdable
}

func NewRateLimitRedisRepository(r redis.Cmdable) *RateLimitRedisRepository {
	return &RateLimitRedisRepository{r: r}
}

// Admit implements RateLimitRepository.Admit.
func (repo *RateLimitRedisRepository) Admit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, int, time.Time, error) {
	res, err := admitScript.Run(ctx, repo.r, []string{key}, max, window.Milliseconds()).Slice()
	if err != nil {
		return false, 0, now, err
	}
	if len(res) != 3 {
		return false, 0, now, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}
	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)
	pttl, _ := res[2].(int64)
	windowStart := now
	if pttl > 0 {
		windowStart = now.Add(time.Duration(pttl)*time.Millisecond - window)
	}
	return allowed == 1, int(count), windowStart, nil
}
