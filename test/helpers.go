package test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/handler"
	"github.com/yourorg/talentmatch/internal/infrastructure/logger"
	"github.com/yourorg/talentmatch/internal/notify"
	"github.com/yourorg/talentmatch/internal/security"
	"github.com/yourorg/talentmatch/internal/security/audit"
	"github.com/yourorg/talentmatch/internal/security/auth"
	"github.com/yourorg/talentmatch/internal/security/middleware"
	"github.com/yourorg/talentmatch/internal/security/ratelimit"
	"github.com/yourorg/talentmatch/internal/service"
	"github.com/yourorg/talentmatch/pkg/database"
)

const testJWTSecret = "test-secret"

// memStore is an in-memory implementation of the domain stores, backing a
// full HTTP stack without PostgreSQL.
type memStore struct {
	users     map[string]*domain.User
	companies map[string]*domain.Company
	postings  map[string]*domain.JobPosting
	swipes    map[string]*domain.Swipe
	interests map[string]*domain.JobInterest
	matches   map[string]*domain.Match
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*domain.User{},
		companies: map[string]*domain.Company{},
		postings:  map[string]*domain.JobPosting{},
		swipes:    map[string]*domain.Swipe{},
		interests: map[string]*domain.JobInterest{},
		matches:   map[string]*domain.Match{},
	}
}

func swipeKey(jobseekerID, employerID string, by domain.Role) string {
	return jobseekerID + "|" + employerID + "|" + string(by)
}

func pairKey(jobseekerID, employerID string) string {
	return jobseekerID + "|" + employerID
}

func (m *memStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memStore) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
}

func (m *memStore) GetEmployerForCompany(ctx context.Context, companyID string) (*domain.User, error) {
	var found *domain.User
	for _, u := range m.users {
		if u.CompanyID == companyID && u.UserType == domain.RoleEmployer && u.IsActive {
			if found == nil || u.ID < found.ID {
				found = u
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no employer on company %s: %w", companyID, domain.ErrNotFound)
	}
	return found, nil
}

func (m *memStore) eligible(candidateRole domain.Role, forID string) []*domain.User {
	var out []*domain.User
	for _, u := range m.users {
		if u.UserType != candidateRole || !u.IsActive {
			continue
		}
		jobseekerID, employerID := u.ID, forID
		if candidateRole == domain.RoleEmployer {
			jobseekerID, employerID = forID, u.ID
		}
		excluded := false
		for _, by := range []domain.Role{domain.RoleJobseeker, domain.RoleEmployer} {
			if s, ok := m.swipes[swipeKey(jobseekerID, employerID, by)]; ok && !s.Interested {
				excluded = true
			}
		}
		if !excluded {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListCandidates(ctx context.Context, candidateRole domain.Role, forID string, limit, offset int) ([]*domain.User, int, error) {
	all := m.eligible(candidateRole, forID)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memStore) ListCandidatesForRanking(ctx context.Context, candidateRole domain.Role, forID string, scanLimit int) ([]*domain.User, error) {
	all := m.eligible(candidateRole, forID)
	if len(all) > scanLimit {
		all = all[:scanLimit]
	}
	return all, nil
}

func (m *memStore) Insert(ctx context.Context, swipe *domain.Swipe) error {
	key := swipeKey(swipe.JobseekerID, swipe.EmployerID, swipe.SwipedBy)
	if _, ok := m.swipes[key]; ok {
		return domain.ErrDuplicateSwipe
	}
	swipe.CreatedAt = time.Now()
	m.swipes[key] = swipe
	return nil
}

func (m *memStore) InsertIfAbsent(ctx context.Context, swipe *domain.Swipe) (bool, error) {
	key := swipeKey(swipe.JobseekerID, swipe.EmployerID, swipe.SwipedBy)
	if _, ok := m.swipes[key]; ok {
		return false, nil
	}
	swipe.CreatedAt = time.Now()
	m.swipes[key] = swipe
	return true, nil
}

func (m *memStore) Get(ctx context.Context, jobseekerID, employerID string, swipedBy domain.Role) (*domain.Swipe, error) {
	if s, ok := m.swipes[swipeKey(jobseekerID, employerID, swipedBy)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("swipe: %w", domain.ErrNotFound)
}

func (m *memStore) UnmatchedMutualPairs(ctx context.Context, limit int) ([]domain.Pair, error) {
	var out []domain.Pair
	for _, s := range m.swipes {
		if s.SwipedBy != domain.RoleJobseeker || !s.Interested {
			continue
		}
		other, ok := m.swipes[swipeKey(s.JobseekerID, s.EmployerID, domain.RoleEmployer)]
		if !ok || !other.Interested {
			continue
		}
		if _, ok := m.matches[pairKey(s.JobseekerID, s.EmployerID)]; ok {
			continue
		}
		out = append(out, domain.Pair{
			JobseekerID: s.JobseekerID,
			EmployerID:  s.EmployerID,
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Upsert(ctx context.Context, match *domain.Match) (*domain.Match, bool, error) {
	key := pairKey(match.JobseekerID, match.EmployerID)
	if existing, ok := m.matches[key]; ok {
		return existing, false, nil
	}
	match.LastActivityAt = time.Now()
	match.UpdatedAt = match.LastActivityAt
	m.matches[key] = match
	return match, true, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	for _, match := range m.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
}

func (m *memStore) GetByPair(ctx context.Context, jobseekerID, employerID string) (*domain.Match, error) {
	if match, ok := m.matches[pairKey(jobseekerID, employerID)]; ok {
		return match, nil
	}
	return nil, fmt.Errorf("match: %w", domain.ErrNotFound)
}

func (m *memStore) Update(ctx context.Context, match *domain.Match) error {
	key := pairKey(match.JobseekerID, match.EmployerID)
	if _, ok := m.matches[key]; !ok {
		return fmt.Errorf("match %s: %w", match.ID, domain.ErrNotFound)
	}
	match.LastActivityAt = time.Now()
	match.UpdatedAt = match.LastActivityAt
	m.matches[key] = match
	return nil
}

func (m *memStore) ListForUser(ctx context.Context, role domain.Role, userID string) ([]*domain.Match, error) {
	var out []*domain.Match
	for _, match := range m.matches {
		if (role == domain.RoleJobseeker && match.JobseekerID == userID) ||
			(role == domain.RoleEmployer && match.EmployerID == userID) {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetJobPosting(ctx context.Context, id string) (*domain.JobPosting, error) {
	if p, ok := m.postings[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("job posting %s: %w", id, domain.ErrNotFound)
}

func (m *memStore) GetJobPostings(ctx context.Context, ids []string) ([]*domain.JobPosting, error) {
	var out []*domain.JobPosting
	for _, id := range ids {
		p, ok := m.postings[id]
		if !ok {
			return nil, fmt.Errorf("job posting %s: %w", id, domain.ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) InsertInterest(ctx context.Context, interest *domain.JobInterest) error {
	key := interest.JobseekerID + "|" + interest.JobPostingID
	if _, ok := m.interests[key]; ok {
		return nil
	}
	interest.CreatedAt = time.Now()
	m.interests[key] = interest
	return nil
}

func (m *memStore) GetInterest(ctx context.Context, jobseekerID, jobPostingID string) (*domain.JobInterest, error) {
	if i, ok := m.interests[jobseekerID+"|"+jobPostingID]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("job interest: %w", domain.ErrNotFound)
}

type memTx struct{}

func (memTx) WithinTx(ctx context.Context, fn func(q database.Queryer) error) error {
	return fn(nil)
}

// TestServerHelper wires the full HTTP stack over in-memory stores
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
	Store  *memStore
	Tokens *auth.TokenManager
	Hub    *notify.Hub

	cancel context.CancelFunc
}

func NewTestServer(t *testing.T) *TestServerHelper {
	log := logger.NewLogger("debug")
	store := newMemStore()

	bundle := service.Stores{Users: store, Swipes: store, Matches: store, Jobs: store}
	factory := func(q database.Queryer) service.Stores { return bundle }

	hub := notify.NewHub(nil, log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	swipeService := service.NewSwipeService(memTx{}, factory, bundle, hub, nil, log)
	feedService := service.NewFeedService(bundle, nil, service.FeedLimits{DefaultLimit: 20, MaxLimit: 100, RankingScan: 1000}, log)
	jobService := service.NewJobService(memTx{}, factory, bundle, hub, nil, log)
	matchService := service.NewMatchService(memTx{}, factory, bundle, log)

	mux := http.NewServeMux()
	mux.Handle("POST /api/swipe/jobseeker", handler.NewSwipeHandler(swipeService, domain.RoleJobseeker, log))
	mux.Handle("POST /api/swipe/employer", handler.NewSwipeHandler(swipeService, domain.RoleEmployer, log))
	mux.Handle("GET /api/matches/feed", handler.NewFeedHandler(feedService, log))
	mux.Handle("GET /api/matches", handler.NewMatchesHandler(matchService, log))
	mux.Handle("POST /api/matches/{matchId}/share-jobs", handler.NewShareJobsHandler(jobService, log))
	mux.Handle("POST /api/matches/{matchId}/schedule", handler.NewScheduleHandler(matchService, log))
	mux.Handle("POST /api/jobs/{jobPostingId}/interest", handler.NewJobInterestHandler(jobService, log))
	mux.Handle("GET /ws/matches", handler.NewMatchStreamHandler(hub, log, nil))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	tokenManager := auth.NewTokenManager(testJWTSecret, "talentmatch")
	rateLimiter := ratelimit.NewLimiter(1000, time.Minute)
	auditLogger := audit.NewLogger(log)
	authzService := security.NewAuthorizationService(log)

	root := middleware.ValidateJSONContentType(log)(
		middleware.JWTMiddleware(tokenManager, log)(
			middleware.AuthorizationMiddleware(authzService, auditLogger)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(mux),
				),
			),
		),
	)

	server := httptest.NewServer(root)
	t.Cleanup(func() {
		server.Close()
		rateLimiter.Stop()
		cancel()
	})

	return &TestServerHelper{
		Server: server,
		Logger: log,
		Store:  store,
		Tokens: tokenManager,
		Hub:    hub,
		cancel: cancel,
	}
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// Token mints a bearer token for the given user
func (h *TestServerHelper) Token(t *testing.T, userID, role string) string {
	token, err := h.Tokens.GenerateToken(userID, role, userID+"@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

// Seed helpers

func (h *TestServerHelper) AddJobseeker(id string, sliders map[string]float64) {
	h.Store.users[id] = &domain.User{
		ID:           id,
		UserType:     domain.RoleJobseeker,
		Name:         "Jobseeker " + id,
		Email:        id + "@example.com",
		SliderValues: sliders,
		IsActive:     true,
	}
}

func (h *TestServerHelper) AddEmployer(id, companyID string) {
	h.Store.users[id] = &domain.User{
		ID:        id,
		UserType:  domain.RoleEmployer,
		Name:      "Employer " + id,
		Email:     id + "@example.com",
		CompanyID: companyID,
		IsActive:  true,
	}
}

func (h *TestServerHelper) AddCompany(id string, prefs []domain.SliderPreference) {
	h.Store.companies[id] = &domain.Company{
		ID:                id,
		Name:              "Company " + id,
		SliderPreferences: prefs,
	}
}

func (h *TestServerHelper) AddPosting(id, companyID string) {
	h.Store.postings[id] = &domain.JobPosting{
		ID:        id,
		CompanyID: companyID,
		Title:     "Posting " + id,
		Status:    domain.JobStatusActive,
	}
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}
