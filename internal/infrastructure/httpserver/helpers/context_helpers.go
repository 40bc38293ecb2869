package helpers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/plate-checker/go/internal/core/ports"
)

// GetClientIDFromContext returns the client identifier resolved by the client
// middleware, falling back to echo's RealIP when the middleware did not run.
func GetClientIDFromContext(c echo.Context) string {
	if id, ok := GetClientIDRaw(c); ok && id != "" {
		return id
	}
	return c.RealIP()
}

// SetRateLimitHeaders writes the standard X-RateLimit-* headers. A nil state writes nothing.
func SetRateLimitHeaders(c echo.Context, state *ports.RateLimitState) {
	if state == nil {
		return
	}
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(state.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(state.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(state.Reset.Unix(), 10))
}
