package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
)

// CacheMock is a lightweight mock for ports.Cache
type CacheMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// MapCache is an in-memory ports.Cache that records the TTL of every Set.
type MapCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMapCache() *MapCache {
	return &MapCache{Data: map[string][]byte{}, TTLs: map[string]time.Duration{}}
}

func (m *MapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Data[key]
	return b, ok, nil
}
func (m *MapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	m.TTLs[key] = ttl
	return nil
}
func (m *MapCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	delete(m.TTLs, key)
	return nil
}

// ResultCacheMock is a mock for ports.ResultCache
type ResultCacheMock struct {
	GetFn func(ctx context.Context, key plate.Key, now time.Time) (*plate.Result, bool, error)
	PutFn func(ctx context.Context, key plate.Key, result plate.Result, now time.Time) error
}

func (m *ResultCacheMock) Get(ctx context.Context, key plate.Key, now time.Time) (*plate.Result, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key, now)
	}
	return nil, false, nil
}
func (m *ResultCacheMock) Put(ctx context.Context, key plate.Key, result plate.Result, now time.Time) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, result, now)
	}
	return nil
}

// RateLimitRepositoryMock is a mock for ports.RateLimitRepository
type RateLimitRepositoryMock struct {
	AdmitFn func(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, int, time.Time, error)
}

func (m *RateLimitRepositoryMock) Admit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (bool, int, time.Time, error) {
	if m.AdmitFn != nil {
		return m.AdmitFn(ctx, key, now, window, max)
	}
	return true, 1, now, nil
}

// RateLimiterServiceMock is a mock for ports.RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, clientID string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, clientID string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, clientID)
	}
	return true, 19, 20, time.Now().Add(time.Minute), nil
}

// PlateRegistryMock is a mock for ports.PlateRegistry that counts calls.
type PlateRegistryMock struct {
	StartSessionFn func(ctx context.Context) (*ports.RegistrySession, error)
	CheckFn        func(ctx context.Context, session *ports.RegistrySession, key plate.Key) (*ports.RegistryResponse, error)

	mu            sync.Mutex
	SessionCalls  int
	CheckCalls    int
	CheckedPlates []plate.Key
}

func (m *PlateRegistryMock) StartSession(ctx context.Context) (*ports.RegistrySession, error) {
	m.mu.Lock()
	m.SessionCalls++
	m.mu.Unlock()
	if m.StartSessionFn != nil {
		return m.StartSessionFn(ctx)
	}
	return &ports.RegistrySession{StartedAt: time.Now()}, nil
}
func (m *PlateRegistryMock) Check(ctx context.Context, session *ports.RegistrySession, key plate.Key) (*ports.RegistryResponse, error) {
	m.mu.Lock()
	m.CheckCalls++
	m.CheckedPlates = append(m.CheckedPlates, key)
	m.mu.Unlock()
	if m.CheckFn != nil {
		return m.CheckFn(ctx, session, key)
	}
	return nil, fmt.Errorf("no check response configured")
}

// Calls returns the session and check call counts.
func (m *PlateRegistryMock) Calls() (sessions, checks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SessionCalls, m.CheckCalls
}

// PlateCheckServiceMock is a mock for ports.PlateCheckService
type PlateCheckServiceMock struct {
	CheckFn func(ctx context.Context, req ports.CheckRequest) (*plate.CheckResult, *ports.RateLimitState, error)
}

func (m *PlateCheckServiceMock) Check(ctx context.Context, req ports.CheckRequest) (*plate.CheckResult, *ports.RateLimitState, error) {
	if m.CheckFn != nil {
		return m.CheckFn(ctx, req)
	}
	return nil, nil, fmt.Errorf("not configured")
}

// RegistryPayload builds a 200 response with the given payload.
func RegistryPayload(payload any) *ports.RegistryResponse {
	return &ports.RegistryResponse{Status: 200, ContentType: "application/json", Payload: payload}
}
