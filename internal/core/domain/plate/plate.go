package plate

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinLength = 2
	MaxLength = 7
	// MaxCharacters is the number of indexed character slots the registry form accepts.
	MaxCharacters = 14
)

// Key is a validated, canonical license plate: uppercase, 2-7 characters of A-Z0-9, slash or space.
type Key string

func (k Key) String() string { return string(k) }

// Characters splits the key into the registry's indexed single-character slots.
// Positions past the end of the key are empty.
func (k Key) Characters() [MaxCharacters]string {
	var out [MaxCharacters]string
	for i, r := range []rune(string(k)) {
		if i >= MaxCharacters {
			break
		}
		out[i] = string(r)
	}
	return out
}

type Status string

const (
	StatusAvailable   Status = "available"
	StatusTaken       Status = "taken"
	StatusInvalid     Status = "invalid"
	StatusUnavailable Status = "unavailable"
)

// Cacheable reports whether results with this status may be stored.
// Unavailable results describe transient upstream trouble and are never cached.
func (s Status) Cacheable() bool {
	switch s {
	case StatusAvailable, StatusTaken, StatusInvalid:
		return true
	}
	return false
}

type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// CheckResult is what a caller receives for a successful check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Cached  bool   `json:"cached"`
}

func NewCheckResult(r Result, cached bool) *CheckResult {
	return &CheckResult{Status: r.Status, Message: r.Message, Cached: cached}
}

// Normalize trims and uppercases raw input and validates it as a plate key.
// Every failure wraps ErrInvalidInput.
func Normalize(raw any) (Key, error) {
	s, ok := raw.(string)
	if !ok {
		return "", invalidInput("plate must be a string")
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", invalidInput("plate is required")
	}
	if n := len([]rune(s)); n < MinLength || n > MaxLength {
		return "", invalidInput(fmt.Sprintf("plate must be between %d and %d characters", MinLength, MaxLength))
	}
	for _, r := range s {
		if !allowedRune(r) {
			return "", invalidInput("plate may only contain letters, digits, spaces and slashes")
		}
	}
	return Key(s), nil
}

func allowedRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '/' || r == ' '
}

func invalidInput(msg string) error {
	return &CheckError{Kind: ErrInvalidInput, Message: msg}
}

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
