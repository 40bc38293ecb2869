package services

import (
	"context"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// RateLimiterService implements RateLimiter using a single static fixed-window policy.
type RateLimiterService struct {
	repo      ports.RateLimitRepository
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
	logger    *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	// Apply defaults
	limit := 20
	w := time.Minute
	kp := "client"
	now := time.Now
	if cfg != nil {
		if cfg.RequestsPerWindow > 0 {
			limit = cfg.RequestsPerWindow
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
		if cfg.Clock != nil {
			now = cfg.Clock
		}
	}
	return &RateLimiterService{repo: repo, limit: limit, window: w, keyPrefix: kp, now: now, logger: logger}
}

func (s *RateLimiterService) Allow(ctx context.Context, clientID string) (bool, int, int, time.Time, error) {
	now := s.now()
	allowed, count, windowStart, err := s.repo.Admit(ctx, s.keyPrefix+":"+clientID, now, s.window, s.limit)
	reset := windowStart.Add(s.window)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"client_id": clientID}).WithError(err).Error("rate limiter: failed to admit request")
		}
		// fail open
		return true, s.limit, s.limit, now.Add(s.window), err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"client_id": clientID, "count": count, "limit": s.limit, "allowed": allowed}).Debug("rate limiter window state")
	}
	if !allowed {
		return false, 0, s.limit, reset, nil
	}
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, s.limit, reset, nil
}
