package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/plate-checker/go/internal/infrastructure/httpserver/helpers"
)

// ClientMiddleware resolves the identifier rate limiting is keyed on.
type ClientMiddleware struct {
	logger *logrus.Logger
}

func NewClientMiddleware(logger *logrus.Logger) *ClientMiddleware {
	return &ClientMiddleware{logger: logger}
}

// ResolveClient stores the caller's address in the context: the first
// X-Forwarded-For hop, else X-Real-IP, else the connection's remote address.
func (m *ClientMiddleware) ResolveClient() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.RealIP()
			if id == "" {
				id = "unknown"
			}
			helpers.SetClientID(c, id)
			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{
					"client_id":       id,
					"x_forwarded_for": c.Request().Header.Get(echo.HeaderXForwardedFor),
					"remote_addr":     c.Request().RemoteAddr,
				}).Debug("resolved client")
			}
			return next(c)
		}
	}
}
