package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/service"
)

// JobInterestRequest carries a jobseeker's decision about a posting
type JobInterestRequest struct {
	Interested *bool `json:"interested"`
}

// JobInterestResponse represents the recorded interest and, on a positive
// decision, the escalated match. Warning reports a tolerated partial
// outcome instead of an error.
type JobInterestResponse struct {
	JobInterest       *JobInterestPayload `json:"jobInterest"`
	Match             *MatchPayload       `json:"match,omitempty"`
	SchedulingEnabled bool                `json:"schedulingEnabled"`
	Warning           string              `json:"warning,omitempty"`
}

// JobInterestHandler handles interest declarations on shared postings
type JobInterestHandler struct {
	jobService *service.JobService
	logger     *slog.Logger
}

// NewJobInterestHandler creates a new job interest handler
func NewJobInterestHandler(jobService *service.JobService, logger *slog.Logger) *JobInterestHandler {
	return &JobInterestHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// ServeHTTP handles POST /api/jobs/{jobPostingId}/interest requests
func (h *JobInterestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	jobPostingID := r.PathValue("jobPostingId")

	var req JobInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Interested == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "interested is required"})
		return
	}

	result, err := withRetry(r.Context(), h.logger, "express_job_interest",
		func(ctx context.Context) (*service.InterestResult, error) {
			return h.jobService.ExpressJobInterest(ctx, claims.UserID, jobPostingID, *req.Interested)
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, JobInterestResponse{
		JobInterest:       toJobInterestPayload(result.Interest),
		Match:             toMatchPayload(result.Match),
		SchedulingEnabled: result.SchedulingEnabled,
		Warning:           result.Warning,
	})
}
