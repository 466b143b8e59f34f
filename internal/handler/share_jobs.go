package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/service"
)

// ShareJobsRequest carries the postings an employer shares into a match
type ShareJobsRequest struct {
	JobPostingIDs []string `json:"jobPostingIds"`
}

// ShareJobsHandler handles job sharing into an existing match
type ShareJobsHandler struct {
	jobService *service.JobService
	logger     *slog.Logger
}

// NewShareJobsHandler creates a new share-jobs handler
func NewShareJobsHandler(jobService *service.JobService, logger *slog.Logger) *ShareJobsHandler {
	return &ShareJobsHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// ServeHTTP handles POST /api/matches/{matchId}/share-jobs requests
func (h *ShareJobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var req ShareJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	match, err := withRetry(r.Context(), h.logger, "share_jobs",
		func(ctx context.Context) (*domain.Match, error) {
			return h.jobService.ShareJobs(ctx, claims.UserID, matchID, req.JobPostingIDs)
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toMatchPayload(match))
}
