package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/service"
)

// FeedHandler handles feed requests for the authenticated party
type FeedHandler struct {
	feedService *service.FeedService
	logger      *slog.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *service.FeedService, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		logger:      logger,
	}
}

// ServeHTTP handles GET /api/matches/feed requests
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	role := domain.Role(claims.Role)
	opts := service.FeedOptions{
		Limit:         queryInt(r, "limit"),
		Offset:        queryInt(r, "offset"),
		SortBy:        r.URL.Query().Get("sortBy"),
		SortDirection: r.URL.Query().Get("sortDirection"),
	}

	page, err := withRetry(r.Context(), h.logger, "get_feed",
		func(ctx context.Context) (*service.FeedPage, error) {
			return h.feedService.GetFeed(ctx, role, claims.UserID, opts)
		})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// queryInt parses an integer query parameter, treating absence or garbage
// as zero so the service applies its defaults.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
