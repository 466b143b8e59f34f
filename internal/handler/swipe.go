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

// SwipeRequest represents one party's decision about a counterpart.
// hideUntilHours is accepted for backward compatibility and ignored:
// decisions are immutable, so there is nothing to re-surface.
type SwipeRequest struct {
	JobseekerID    string `json:"jobseekerId,omitempty"`
	EmployerID     string `json:"employerId,omitempty"`
	Interested     *bool  `json:"interested"`
	HideUntilHours int    `json:"hideUntilHours,omitempty"`
}

// SwipeResponse represents the recorded swipe and, when the decision
// completed a mutual pair, the resulting match
type SwipeResponse struct {
	Swipe         *SwipePayload `json:"swipe"`
	Match         *MatchPayload `json:"match,omitempty"`
	IsMutualMatch bool          `json:"isMutualMatch"`
}

// SwipeHandler handles swipe submissions for one side of the marketplace
type SwipeHandler struct {
	swipeService *service.SwipeService
	role         domain.Role
	logger       *slog.Logger
}

// NewSwipeHandler creates a swipe handler bound to the acting role
func NewSwipeHandler(swipeService *service.SwipeService, role domain.Role, logger *slog.Logger) *SwipeHandler {
	return &SwipeHandler{
		swipeService: swipeService,
		role:         role,
		logger:       logger,
	}
}

// ServeHTTP handles POST /api/swipe/{jobseeker|employer} requests
func (h *SwipeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Interested == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "interested is required"})
		return
	}

	counterpartID := req.EmployerID
	if h.role == domain.RoleEmployer {
		counterpartID = req.JobseekerID
	}
	if counterpartID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "counterpart id is required"})
		return
	}

	result, err := withRetry(r.Context(), h.logger, "record_swipe",
		func(ctx context.Context) (*service.SwipeResult, error) {
			return h.swipeService.RecordSwipe(ctx, h.role, claims.UserID, counterpartID, *req.Interested)
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, SwipeResponse{
		Swipe:         toSwipePayload(result.Swipe),
		Match:         toMatchPayload(result.Match),
		IsMutualMatch: result.IsMutualMatch,
	})
}
