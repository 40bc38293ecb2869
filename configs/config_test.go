package configs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/plate-checker/go/configs"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SERVER_PORT", "STORE_BACKEND", "CACHE_TTL", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "UPSTREAM_TIMEOUT", "DEBUG", "STATIC_DIR"} {
		t.Setenv(k, "")
	}
	cfg, err := configs.Load()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, configs.StoreBackendMemory, cfg.Store.Backend)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 20, cfg.RateLimit.RequestsPerWindow)
	require.Equal(t, time.Minute, cfg.RateLimit.Window)
	require.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	require.False(t, cfg.Log.Debug)
	require.Empty(t, cfg.Server.StaticDir, "no front-end bundle unless configured")
}

func TestLoad_PortAndDebugFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DEBUG", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg, err := configs.Load()
	require.NoError(t, err)
	require.Equal(t, "8081", cfg.Server.Port)
	require.True(t, cfg.Log.Debug)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memcached")
	_, err := configs.Load()
	require.Error(t, err)
}
