package ports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
)

// RegistrySession is the short-lived session the registry hands out before a check.
type RegistrySession struct {
	Cookies   []*http.Cookie
	StartedAt time.Time
}

// RegistryResponse is the raw answer to a check call. Payload is nil, a string,
// or a decoded JSON value; Raw holds the body as received.
type RegistryResponse struct {
	Status      int
	ContentType string
	Payload     any
	Raw         []byte
}

// SessionStatusError reports a session call the registry answered with an
// error status, as opposed to one that never got an answer.
type SessionStatusError struct {
	Status int
}

func (e *SessionStatusError) Error() string {
	return fmt.Sprintf("session request returned status %d", e.Status)
}

// PlateRegistry is the upstream availability service.
// A non-2xx check answer is not an error. StartSession returns a
// *SessionStatusError for an error status; anything else is a transport failure.
type PlateRegistry interface {
	StartSession(ctx context.Context) (*RegistrySession, error)
	Check(ctx context.Context, session *RegistrySession, key plate.Key) (*RegistryResponse, error)
}

// CheckRequest is one caller's availability question.
type CheckRequest struct {
	Plate    any
	ClientID string
}

// RateLimitState is the limiter's view after admitting (or rejecting) a request.
type RateLimitState struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// PlateCheckService runs the full check pipeline.
// Errors are *plate.CheckError values.
type PlateCheckService interface {
	Check(ctx context.Context, req CheckRequest) (*plate.CheckResult, *RateLimitState, error)
}
