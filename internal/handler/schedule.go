package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/service"
)

// ScheduleRequest carries interview scheduling metadata
type ScheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt"`
	InterviewStatus string    `json:"interviewStatus,omitempty"`
}

// ScheduleHandler handles interview scheduling on a match
type ScheduleHandler struct {
	matchService *service.MatchService
	logger       *slog.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(matchService *service.MatchService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		matchService: matchService,
		logger:       logger,
	}
}

// ServeHTTP handles POST /api/matches/{matchId}/schedule requests
func (h *ScheduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	matchID := r.PathValue("matchId")

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	match, err := withRetry(r.Context(), h.logger, "schedule_interview",
		func(ctx context.Context) (*domain.Match, error) {
			return h.matchService.ScheduleInterview(ctx, claims.UserID, matchID, req.ScheduledAt, req.InterviewStatus)
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toMatchPayload(match))
}
