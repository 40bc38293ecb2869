package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/avatarctic/plate-checker/go/internal/infrastructure/httpserver/helpers"
)

type checkPlateRequest struct {
	Plate any `json:"plate"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) checkPlate(c echo.Context) error {
	var req checkPlateRequest
	if err := c.Bind(&req); err != nil {
		plateChecksTotal.WithLabelValues("invalid_input", "false").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Plate == nil {
		plateChecksTotal.WithLabelValues("invalid_input", "false").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "plate is required"})
	}

	res, state, err := s.plateSvc.Check(c.Request().Context(), ports.CheckRequest{
		Plate:    req.Plate,
		ClientID: helpers.GetClientIDFromContext(c),
	})
	helpers.SetRateLimitHeaders(c, state)
	if err != nil {
		return s.writeCheckError(c, err)
	}

	plateChecksTotal.WithLabelValues(string(res.Status), strconv.FormatBool(res.Cached)).Inc()
	return c.JSON(http.StatusOK, res)
}

// writeCheckError maps a check failure onto the API's error contract.
func (s *Server) writeCheckError(c echo.Context, err error) error {
	var ce *plate.CheckError
	if !errors.As(err, &ce) {
		if s.logger != nil {
			s.logger.WithError(err).Error("unexpected plate check failure")
		}
		plateChecksTotal.WithLabelValues("error", "false").Inc()
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "The plate registry could not be queried."})
	}

	body := errorResponse{Error: ce.Message}
	var code int
	switch ce.Kind {
	case plate.ErrInvalidInput:
		code = http.StatusBadRequest
		plateChecksTotal.WithLabelValues("invalid_input", "false").Inc()
	case plate.ErrRateLimited:
		code = http.StatusTooManyRequests
		plateChecksTotal.WithLabelValues("rate_limited", "false").Inc()
	case plate.ErrUpstreamUnreachable:
		code = http.StatusBadGateway
		plateChecksTotal.WithLabelValues("upstream_unreachable", "false").Inc()
	default:
		code = http.StatusBadGateway
		plateChecksTotal.WithLabelValues(string(plate.StatusUnavailable), "false").Inc()
	}
	// transport failures carry their cause; upstream content only leaves in debug mode
	if ce.Kind == plate.ErrUpstreamUnreachable || (code == http.StatusBadGateway && s.config.Debug) {
		body.Details = ce.Details
	}
	return c.JSON(code, body)
}
