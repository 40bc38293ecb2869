package health

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// staticAssetsChecker reports whether the front-end bundle can be served.
type staticAssetsChecker struct{ fs http.FileSystem }

func (s *staticAssetsChecker) Name() string { return "static_assets" }
func (s *staticAssetsChecker) Check(ctx context.Context) error {
	f, err := s.fs.Open("index.html")
	if err != nil {
		return fmt.Errorf("index.html not found: %w", err)
	}
	return f.Close()
}

// NewStaticAssetsChecker creates a health checker for the static front-end directory.
func NewStaticAssetsChecker(dir string) ports.HealthChecker {
	return &staticAssetsChecker{fs: http.Dir(dir)}
}
