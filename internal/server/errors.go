package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rgehrsitz/flipcalc/internal/backend"
	"github.com/rgehrsitz/flipcalc/internal/breakeven"
	"github.com/rgehrsitz/flipcalc/internal/calculation"
	"github.com/rgehrsitz/flipcalc/internal/domain"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
	Op    string `json:"op,omitempty"`
}

// badRequest marks malformed client input.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// statusFor maps an error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var apiErr *backend.APIError
	var beErr *breakeven.BreakEvenError
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, calculation.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoActiveAnalysis):
		return http.StatusBadRequest
	case errors.As(err, &beErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, errBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	logger := LoggerFrom(r.Context(), s.logger)
	fields := []zap.Field{zap.String("op", op), zap.Int("status", status), zap.Error(err)}
	if status >= 500 {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Op: op})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
