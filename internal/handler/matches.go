package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/service"
)

// MatchListResponse wraps the caller's matches
type MatchListResponse struct {
	Matches []*MatchPayload `json:"matches"`
}

// MatchesHandler lists the matches the authenticated user participates in
type MatchesHandler struct {
	matchService *service.MatchService
	logger       *slog.Logger
}

// NewMatchesHandler creates a new matches handler
func NewMatchesHandler(matchService *service.MatchService, logger *slog.Logger) *MatchesHandler {
	return &MatchesHandler{
		matchService: matchService,
		logger:       logger,
	}
}

// ServeHTTP handles GET /api/matches requests
func (h *MatchesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	matches, err := withRetry(r.Context(), h.logger, "list_matches",
		func(ctx context.Context) ([]*domain.Match, error) {
			return h.matchService.ListMatches(ctx, domain.Role(claims.Role), claims.UserID)
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	payload := make([]*MatchPayload, 0, len(matches))
	for _, m := range matches {
		payload = append(payload, toMatchPayload(m))
	}
	writeJSON(w, http.StatusOK, MatchListResponse{Matches: payload})
}
