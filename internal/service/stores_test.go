package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/pkg/database"
)

// memStores is an in-memory implementation of every domain store, shared by
// the service tests.
type memStores struct {
	users     map[string]*domain.User
	companies map[string]*domain.Company
	postings  map[string]*domain.JobPosting
	swipes    map[string]*domain.Swipe      // key: jobseeker|employer|swipedBy
	interests map[string]*domain.JobInterest // key: jobseeker|posting
	matches   map[string]*domain.Match       // key: jobseeker|employer
}

func newMemStores() *memStores {
	return &memStores{
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

// ── UserStore ──────────────────────────────────────────────────────────────

func (m *memStores) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (m *memStores) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
}

func (m *memStores) GetEmployerForCompany(ctx context.Context, companyID string) (*domain.User, error) {
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

func (m *memStores) eligible(candidateRole domain.Role, forID string) []*domain.User {
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

func (m *memStores) ListCandidates(ctx context.Context, candidateRole domain.Role, forID string, limit, offset int) ([]*domain.User, int, error) {
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

func (m *memStores) ListCandidatesForRanking(ctx context.Context, candidateRole domain.Role, forID string, scanLimit int) ([]*domain.User, error) {
	all := m.eligible(candidateRole, forID)
	if len(all) > scanLimit {
		all = all[:scanLimit]
	}
	return all, nil
}

// ── SwipeStore ─────────────────────────────────────────────────────────────

func (m *memStores) Insert(ctx context.Context, swipe *domain.Swipe) error {
	key := swipeKey(swipe.JobseekerID, swipe.EmployerID, swipe.SwipedBy)
	if _, ok := m.swipes[key]; ok {
		return fmt.Errorf("%s already swiped: %w", swipe.SwipedBy, domain.ErrDuplicateSwipe)
	}
	swipe.CreatedAt = time.Now()
	m.swipes[key] = swipe
	return nil
}

func (m *memStores) InsertIfAbsent(ctx context.Context, swipe *domain.Swipe) (bool, error) {
	key := swipeKey(swipe.JobseekerID, swipe.EmployerID, swipe.SwipedBy)
	if _, ok := m.swipes[key]; ok {
		return false, nil
	}
	swipe.CreatedAt = time.Now()
	m.swipes[key] = swipe
	return true, nil
}

func (m *memStores) Get(ctx context.Context, jobseekerID, employerID string, swipedBy domain.Role) (*domain.Swipe, error) {
	if s, ok := m.swipes[swipeKey(jobseekerID, employerID, swipedBy)]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("swipe: %w", domain.ErrNotFound)
}

func (m *memStores) UnmatchedMutualPairs(ctx context.Context, limit int) ([]domain.Pair, error) {
	seen := map[string]bool{}
	var pairs []domain.Pair
	for _, s := range m.swipes {
		key := pairKey(s.JobseekerID, s.EmployerID)
		if seen[key] {
			continue
		}
		seen[key] = true

		a, aok := m.swipes[swipeKey(s.JobseekerID, s.EmployerID, domain.RoleJobseeker)]
		b, bok := m.swipes[swipeKey(s.JobseekerID, s.EmployerID, domain.RoleEmployer)]
		if !aok || !bok || !a.Interested || !b.Interested {
			continue
		}
		if _, ok := m.matches[key]; ok {
			continue
		}
		pairs = append(pairs, domain.Pair{JobseekerID: s.JobseekerID, EmployerID: s.EmployerID})
		if len(pairs) == limit {
			break
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].JobseekerID+pairs[i].EmployerID < pairs[j].JobseekerID+pairs[j].EmployerID
	})
	return pairs, nil
}

// ── MatchStore ─────────────────────────────────────────────────────────────

func (m *memStores) Upsert(ctx context.Context, match *domain.Match) (*domain.Match, bool, error) {
	key := pairKey(match.JobseekerID, match.EmployerID)
	if existing, ok := m.matches[key]; ok {
		return existing, false, nil
	}
	match.LastActivityAt = time.Now()
	match.UpdatedAt = match.LastActivityAt
	m.matches[key] = match
	return match, true, nil
}

func (m *memStores) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	for _, match := range m.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
}

func (m *memStores) GetByPair(ctx context.Context, jobseekerID, employerID string) (*domain.Match, error) {
	if match, ok := m.matches[pairKey(jobseekerID, employerID)]; ok {
		return match, nil
	}
	return nil, fmt.Errorf("match: %w", domain.ErrNotFound)
}

func (m *memStores) Update(ctx context.Context, match *domain.Match) error {
	key := pairKey(match.JobseekerID, match.EmployerID)
	if _, ok := m.matches[key]; !ok {
		return fmt.Errorf("match %s: %w", match.ID, domain.ErrNotFound)
	}
	match.LastActivityAt = time.Now()
	match.UpdatedAt = match.LastActivityAt
	m.matches[key] = match
	return nil
}

func (m *memStores) ListForUser(ctx context.Context, role domain.Role, userID string) ([]*domain.Match, error) {
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

// ── JobStore ───────────────────────────────────────────────────────────────

func (m *memStores) GetJobPosting(ctx context.Context, id string) (*domain.JobPosting, error) {
	if p, ok := m.postings[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("job posting %s: %w", id, domain.ErrNotFound)
}

func (m *memStores) GetJobPostings(ctx context.Context, ids []string) ([]*domain.JobPosting, error) {
	var out []*domain.JobPosting
	var missing []string
	for _, id := range ids {
		p, ok := m.postings[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, p)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("job postings %s: %w", strings.Join(missing, ", "), domain.ErrNotFound)
	}
	return out, nil
}

func (m *memStores) InsertInterest(ctx context.Context, interest *domain.JobInterest) error {
	key := interest.JobseekerID + "|" + interest.JobPostingID
	if _, ok := m.interests[key]; ok {
		return nil
	}
	interest.CreatedAt = time.Now()
	m.interests[key] = interest
	return nil
}

func (m *memStores) GetInterest(ctx context.Context, jobseekerID, jobPostingID string) (*domain.JobInterest, error) {
	if i, ok := m.interests[jobseekerID+"|"+jobPostingID]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("job interest: %w", domain.ErrNotFound)
}

// ── harness ────────────────────────────────────────────────────────────────

// memTx satisfies database.TxRunner without a database; the fakes apply
// writes immediately, so fn just runs against them.
type memTx struct{}

func (memTx) WithinTx(ctx context.Context, fn func(q database.Queryer) error) error {
	return fn(nil)
}

func (m *memStores) bundle() Stores {
	return Stores{Users: m, Swipes: m, Matches: m, Jobs: m}
}

func (m *memStores) factory() StoreFactory {
	return func(q database.Queryer) Stores { return m.bundle() }
}

// capturingPublisher records published events for assertions
type capturingPublisher struct {
	events []domain.MatchEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, event domain.MatchEvent) {
	p.events = append(p.events, event)
}

func (m *memStores) addJobseeker(id string, sliders map[string]float64) *domain.User {
	u := &domain.User{
		ID:           id,
		UserType:     domain.RoleJobseeker,
		Name:         "seeker " + id,
		Email:        id + "@example.com",
		SliderValues: sliders,
		IsActive:     true,
	}
	m.users[id] = u
	return u
}

func (m *memStores) addEmployer(id, companyID string) *domain.User {
	u := &domain.User{
		ID:        id,
		UserType:  domain.RoleEmployer,
		Name:      "employer " + id,
		Email:     id + "@example.com",
		CompanyID: companyID,
		IsActive:  true,
	}
	m.users[id] = u
	return u
}

func (m *memStores) addCompany(id string, prefs []domain.SliderPreference) *domain.Company {
	c := &domain.Company{ID: id, Name: "company " + id, SliderPreferences: prefs}
	m.companies[id] = c
	return c
}

func (m *memStores) addPosting(id, companyID string) *domain.JobPosting {
	p := &domain.JobPosting{ID: id, CompanyID: companyID, Title: "posting " + id, Status: domain.JobStatusActive}
	m.postings[id] = p
	return p
}
