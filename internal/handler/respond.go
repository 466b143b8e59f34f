package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/reliability/retry"
)

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy to HTTP status codes. Anything
// outside the taxonomy is a storage or infrastructure failure and surfaces
// as a plain 500.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidParty):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrDuplicateSwipe):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		log.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// isDomainError reports whether an error belongs to the taxonomy and is
// therefore deterministic: retrying it can only repeat the same answer.
func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidParty) ||
		errors.Is(err, domain.ErrDuplicateSwipe)
}

// withRetry runs a service call, retrying transient storage failures once
func withRetry[T any](ctx context.Context, log *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg := retry.DefaultConfig()
	cfg.Retryable = func(err error) bool { return !isDomainError(err) }
	return retry.Do(ctx, cfg, log, op, fn)
}
