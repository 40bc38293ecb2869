package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/avatarctic/plate-checker/go/configs"
	"github.com/avatarctic/plate-checker/go/internal/application/services"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/health"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/httpserver"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/redis"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/repositories"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/upstream"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	if cfg.Log.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting plate checker...")

	var (
		resultCache    ports.ResultCache
		rateLimitRepo  ports.RateLimitRepository
		healthCheckers []ports.HealthChecker
	)
	if cfg.Server.StaticDir != "" {
		healthCheckers = append(healthCheckers, health.NewStaticAssetsChecker(cfg.Server.StaticDir))
	}

	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := redis.NewRedisClient(pingCtx, &cfg.Redis)
		cancelPing()
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.WithFields(logrus.Fields{"addr": redisClient.Options().Addr, "db": cfg.Redis.DB}).Info("Connected to Redis")

		resultCache = repositories.NewCachedResultRepository(redis.NewRedisCache(redisClient, cfg.Redis.KeyPrefix), cfg.Cache.TTL)
		rateLimitRepo = repositories.NewRateLimitRedisRepository(redisClient)
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
	default:
		resultCache = repositories.NewMemoryResultCache(cfg.Cache.TTL)
		rateLimitRepo = repositories.NewMemoryRateLimitRepository()
	}
	logger.WithFields(logrus.Fields{
		"backend":        cfg.Store.Backend,
		"cache_ttl":      cfg.Cache.TTL,
		"rate_limit":     cfg.RateLimit.RequestsPerWindow,
		"rate_window":    cfg.RateLimit.Window,
		"upstream_check": cfg.Upstream.CheckURL,
	}).Info("Result cache and rate limiter ready")

	registry := upstream.NewClient(&upstream.RegistryConfig{
		SessionURL: cfg.Upstream.SessionURL,
		CheckURL:   cfg.Upstream.CheckURL,
		Timeout:    cfg.Upstream.Timeout,
		UserAgent:  cfg.Upstream.UserAgent,
	}, nil, logger)

	rateLimiter := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}, logger)

	plateService := services.NewPlateCheckService(registry, resultCache, rateLimiter, &services.PlateCheckConfig{
		Debug: cfg.Log.Debug,
	}, logger)

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
		BodyLimit:      cfg.Server.BodyLimit,
		Debug:          cfg.Log.Debug,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		PlateCheckService: plateService,
		HealthCheckers:    healthCheckers,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
