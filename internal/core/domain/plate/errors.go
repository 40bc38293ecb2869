package plate

import "errors"

// Error kinds for a plate check. Each one is terminal for the request.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// CheckError carries the kind of failure, a message that is safe to show the
// caller, and optional diagnostic details.
type CheckError struct {
	Kind    error
	Message string
	Details string
	Err     error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

// Is lets errors.Is match a CheckError against its kind sentinel.
func (e *CheckError) Is(target error) bool { return e.Kind == target }

func (e *CheckError) Unwrap() error { return e.Err }

func NewRateLimitedError() *CheckError {
	return &CheckError{Kind: ErrRateLimited, Message: "Too many requests. Please wait a minute and try again."}
}

func NewUpstreamUnavailableError(message, details string) *CheckError {
	return &CheckError{Kind: ErrUpstreamUnavailable, Message: message, Details: details}
}

func NewUpstreamUnreachableError(err error) *CheckError {
	ce := &CheckError{Kind: ErrUpstreamUnreachable, Message: "The plate registry could not be reached. Please try again later.", Err: err}
	if err != nil {
		ce.Details = err.Error()
	}
	return ce
}
