package httpserver

import (
	"context"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Start serves the check API, health, metrics and (when configured) the
// front-end bundle. It blocks until the server stops.
func (s *Server) Start() error {
	s.LogMetricsInitialization()

	addr := net.JoinHostPort(s.config.Host, s.config.Port)
	tls := s.config.TLSCertFile != "" && s.config.TLSKeyFile != ""

	s.logger.WithFields(logrus.Fields{
		"addr":            addr,
		"tls":             tls,
		"static_dir":      s.config.StaticDir,
		"allowed_origins": s.config.AllowedOrigins,
		"body_limit":      s.config.BodyLimit,
		"health_checkers": len(s.healthCheckers),
		"debug":           s.config.Debug,
	}).Info("plate checker listening")

	if tls {
		return s.echo.StartTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	return s.echo.StartServer(&http.Server{
		Addr:         addr,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	})
}

// Shutdown stops accepting requests and waits for in-flight checks, which are
// bounded by the upstream timeouts, until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("draining in-flight plate checks")
	return s.echo.Shutdown(ctx)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
