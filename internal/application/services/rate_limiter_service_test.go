package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/plate-checker/go/internal/application/services"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/repositories"
	tmocks "github.com/avatarctic/plate-checker/go/test/mocks"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRateLimiter_TwentyPerMinute(t *testing.T) {
	clock := newClock()
	start := clock.Now()
	svc := impl.NewRateLimiterService(repositories.NewMemoryRateLimitRepository(), &impl.RateLimiterConfig{Clock: clock.Now}, logrus.New())
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		allowed, remaining, limit, reset, err := svc.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		require.Equal(t, 20-i, remaining)
		require.Equal(t, 20, limit)
		require.Equal(t, start.Add(time.Minute), reset)
		clock.Advance(time.Second)
	}

	allowed, remaining, _, _, err := svc.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 0, remaining)

	clock.t = start.Add(60_001 * time.Millisecond)
	allowed, _, _, _, err = svc.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestRateLimiter_PassesPolicyToRepository(t *testing.T) {
	var gotKey string
	var gotWindow time.Duration
	var gotMax int
	repo := &tmocks.RateLimitRepositoryMock{AdmitFn: func(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, int, time.Time, error) {
		gotKey, gotWindow, gotMax = key, window, max
		return true, 1, now, nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerWindow: 5, Window: 30 * time.Second, KeyPrefix: "rl"}, nil)
	_, remaining, limit, _, err := svc.Allow(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "rl:abc", gotKey)
	require.Equal(t, 30*time.Second, gotWindow)
	require.Equal(t, 5, gotMax)
	require.Equal(t, 4, remaining)
	require.Equal(t, 5, limit)
}

func TestRateLimiter_FailsOpenOnStorageError(t *testing.T) {
	repo := &tmocks.RateLimitRepositoryMock{AdmitFn: func(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, int, time.Time, error) {
		return false, 0, now, errors.New("redis down")
	}}
	svc := impl.NewRateLimiterService(repo, nil, logrus.New())
	allowed, _, _, _, err := svc.Allow(context.Background(), "abc")
	require.Error(t, err)
	require.True(t, allowed)
}

func TestRateLimiter_RedisKeysCarryPrefixOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := impl.NewRateLimiterService(repositories.NewRateLimitRedisRepository(client), &impl.RateLimiterConfig{KeyPrefix: "ratelimit:client"}, logrus.New())
	allowed, remaining, _, _, err := svc.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 19, remaining)
	require.Equal(t, []string{"ratelimit:client:1.2.3.4"}, mr.Keys())
}
