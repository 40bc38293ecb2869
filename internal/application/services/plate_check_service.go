package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxLoggedPayload = 500

// PlateCheckService sequences validation, rate limiting, the result cache and
// the upstream registry for a single check.
type PlateCheckService struct {
	registry ports.PlateRegistry
	cache    ports.ResultCache
	limiter  ports.RateLimiterService
	now      func() time.Time
	debug    bool
	logger   *logrus.Logger
}

// PlateCheckConfig groups optional settings for PlateCheckService.
type PlateCheckConfig struct {
	// Debug logs truncated upstream payloads when a response cannot be interpreted.
	Debug bool
	Clock func() time.Time
}

func NewPlateCheckService(registry ports.PlateRegistry, cache ports.ResultCache, limiter ports.RateLimiterService, cfg *PlateCheckConfig, logger *logrus.Logger) *PlateCheckService {
	s := &PlateCheckService{registry: registry, cache: cache, limiter: limiter, now: time.Now, logger: logger}
	if cfg != nil {
		s.debug = cfg.Debug
		if cfg.Clock != nil {
			s.now = cfg.Clock
		}
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	return s
}

func (s *PlateCheckService) Check(ctx context.Context, req ports.CheckRequest) (*plate.CheckResult, *ports.RateLimitState, error) {
	key, err := plate.Normalize(req.Plate)
	if err != nil {
		return nil, nil, err
	}

	// Allow fails open on storage errors and has already logged them.
	allowed, remaining, limit, reset, _ := s.limiter.Allow(ctx, req.ClientID)
	state := &ports.RateLimitState{Limit: limit, Remaining: remaining, Reset: reset}
	if !allowed {
		s.logger.WithFields(logrus.Fields{"client_id": req.ClientID, "plate": key}).Info("plate check rate limited")
		return nil, state, plate.NewRateLimitedError()
	}

	log := s.logger.WithFields(logrus.Fields{"check_id": uuid.NewString(), "plate": key, "client_id": req.ClientID})

	cached, ok, err := s.cache.Get(ctx, key, s.now())
	if err != nil {
		log.WithError(err).Warn("result cache lookup failed; querying registry")
	} else if ok {
		log.WithField("status", cached.Status).Debug("plate check served from cache")
		return plate.NewCheckResult(*cached, true), state, nil
	}

	resp, err := s.queryRegistry(ctx, key)
	var statusErr *ports.SessionStatusError
	if errors.As(err, &statusErr) {
		log.WithField("upstream_status", statusErr.Status).Warn("plate registry refused a session")
		message := plate.MessageUnexpected
		if statusErr.Status >= 500 {
			message = plate.MessageServiceUnavailable
		}
		return nil, state, plate.NewUpstreamUnavailableError(message, fmt.Sprintf("upstream session status %d", statusErr.Status))
	}
	if err != nil {
		log.WithError(err).Error("plate registry unreachable")
		return nil, state, plate.NewUpstreamUnreachableError(err)
	}

	result, decision := plate.Explain(resp.Payload, resp.Status)
	if !result.Status.Cacheable() {
		fields := logrus.Fields{"upstream_status": resp.Status, "content_type": resp.ContentType, "decision": decision}
		if s.debug {
			fields["payload"] = truncate(resp.Raw, maxLoggedPayload)
		}
		log.WithFields(fields).Warn("plate registry response not usable")
		return nil, state, plate.NewUpstreamUnavailableError(result.Message, fmt.Sprintf("upstream status %d (%s)", resp.Status, decision))
	}

	if err := s.cache.Put(ctx, key, result, s.now()); err != nil {
		log.WithError(err).Warn("failed to cache plate result")
	}
	log.WithFields(logrus.Fields{"status": result.Status, "decision": decision}).Debug("plate checked with registry")
	return plate.NewCheckResult(result, false), state, nil
}

func (s *PlateCheckService) queryRegistry(ctx context.Context, key plate.Key) (*ports.RegistryResponse, error) {
	session, err := s.registry.StartSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("start registry session: %w", err)
	}
	resp, err := s.registry.Check(ctx, session, key)
	if err != nil {
		return nil, fmt.Errorf("check plate with registry: %w", err)
	}
	return resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
