package api

import (
	"errors"
	"net/http"

	"github.com/podiumd/podium/internal/adapters/repository"
	"github.com/podiumd/podium/internal/coordinator"
	"github.com/podiumd/podium/internal/ledger"
	"github.com/podiumd/podium/internal/registry"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("too many score submissions")
)

// statusFor maps engine sentinels to HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrUnauthorizedJudge):
		return http.StatusForbidden, "unauthorized_judge"
	case errors.Is(err, ledger.ErrNotScoreable):
		return http.StatusConflict, "not_scoreable"
	case errors.Is(err, ledger.ErrUnknownCriterion):
		return http.StatusBadRequest, "unknown_criterion"
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, registry.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, registry.ErrCriteriaFrozen):
		return http.StatusConflict, "criteria_frozen"
	case errors.Is(err, registry.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, registry.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_limit"
	case errors.Is(err, coordinator.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, coordinator.ErrStopped):
		return http.StatusServiceUnavailable, "shutting_down"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeEngineError translates an engine error into a response.
func writeEngineError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
