package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/matching"
	"github.com/yourorg/talentmatch/internal/observability/metrics"
	"github.com/yourorg/talentmatch/pkg/cache"
)

// SortByMatch requests preference-based ranking of the feed
const SortByMatch = "match"

// companyCacheTTL bounds how long slider preferences may lag a profile edit
const companyCacheTTL = 5 * time.Minute

// FeedOptions controls pagination and ranking of a feed request
type FeedOptions struct {
	Limit         int
	Offset        int
	SortBy        string
	SortDirection string // "asc" or "desc"; ranked feeds default to "desc"
}

// FeedCandidate is one entry of the feed shown to a party
type FeedCandidate struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	UserType   domain.Role `json:"userType"`
	CompanyID  string      `json:"companyId,omitempty"`
	MatchScore *float64    `json:"matchScore,omitempty"`
}

// FeedPage is one page of candidates plus pagination info
type FeedPage struct {
	Candidates []FeedCandidate `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// FeedLimits bounds feed pagination and ranking cost
type FeedLimits struct {
	DefaultLimit int
	MaxLimit     int
	RankingScan  int
}

// FeedService computes the set of candidates eligible to be shown next to
// one party, optionally ranked by slider-preference fit.
type FeedService struct {
	reads     Stores
	feedCache *FeedCache
	// companies memoizes company lookups; preferences change rarely and
	// every ranked request needs them.
	companies *cache.Cache
	limits    FeedLimits
	logger    *slog.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(reads Stores, feedCache *FeedCache, limits FeedLimits, logger *slog.Logger) *FeedService {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = 20
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 100
	}
	if limits.RankingScan <= 0 {
		limits.RankingScan = 1000
	}
	return &FeedService{
		reads:     reads,
		feedCache: feedCache,
		companies: cache.New(),
		limits:    limits,
		logger:    logger,
	}
}

// GetFeed returns one page of candidates for the requester. A candidate is
// excluded only when either party recorded a negative swipe on the other;
// positive swipes keep the candidate visible until matched or rejected.
func (s *FeedService) GetFeed(ctx context.Context, forRole domain.Role, forID string, opts FeedOptions) (*FeedPage, error) {
	if !forRole.Valid() || forID == "" {
		return nil, domain.ErrValidation
	}

	opts = s.clampOptions(opts)
	ranked := opts.SortBy == SortByMatch

	start := time.Now()
	defer func() {
		metrics.ObserveFeedRequest(ranked, time.Since(start))
	}()

	key := feedCacheKey(forID, opts.Limit, opts.Offset, opts.SortBy, opts.SortDirection)
	if s.feedCache != nil {
		if payload, ok := s.feedCache.Get(ctx, key); ok {
			page := &FeedPage{}
			if err := json.Unmarshal([]byte(payload), page); err == nil {
				return page, nil
			}
			s.logger.Warn("discarding undecodable cached feed page", slog.String("key", key))
		}
	}

	var page *FeedPage
	var err error
	if ranked {
		page, err = s.rankedPage(ctx, forRole, forID, opts)
	} else {
		page, err = s.plainPage(ctx, forRole, forID, opts)
	}
	if err != nil {
		return nil, err
	}

	if s.feedCache != nil {
		if payload, err := json.Marshal(page); err == nil {
			s.feedCache.Set(ctx, key, string(payload))
		}
	}
	return page, nil
}

func (s *FeedService) clampOptions(opts FeedOptions) FeedOptions {
	if opts.Limit <= 0 {
		opts.Limit = s.limits.DefaultLimit
	}
	if opts.Limit > s.limits.MaxLimit {
		opts.Limit = s.limits.MaxLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

// plainPage pages candidates directly in SQL, ordered by id for a stable,
// deterministic sequence.
func (s *FeedService) plainPage(ctx context.Context, forRole domain.Role, forID string, opts FeedOptions) (*FeedPage, error) {
	users, total, err := s.reads.Users.ListCandidates(ctx, forRole.Opposite(), forID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}

	candidates := make([]FeedCandidate, 0, len(users))
	for _, u := range users {
		candidates = append(candidates, FeedCandidate{
			ID:        u.ID,
			Name:      u.Name,
			UserType:  u.UserType,
			CompanyID: u.CompanyID,
		})
	}

	return &FeedPage{
		Candidates: candidates,
		Pagination: Pagination{Limit: opts.Limit, Offset: opts.Offset, Total: total},
	}, nil
}

// rankedPage loads eligible candidates with their slider values, scores
// them against the requester's company preferences and pages in memory.
func (s *FeedService) rankedPage(ctx context.Context, forRole domain.Role, forID string, opts FeedOptions) (*FeedPage, error) {
	prefs, err := s.requesterPreferences(ctx, forID)
	if err != nil {
		return nil, err
	}

	users, err := s.reads.Users.ListCandidatesForRanking(ctx, forRole.Opposite(), forID, s.limits.RankingScan)
	if err != nil {
		return nil, err
	}

	candidates := make([]FeedCandidate, 0, len(users))
	for _, u := range users {
		score := matching.Score(prefs, u.SliderValues)
		candidates = append(candidates, FeedCandidate{
			ID:         u.ID,
			Name:       u.Name,
			UserType:   u.UserType,
			CompanyID:  u.CompanyID,
			MatchScore: &score,
		})
	}

	ascending := opts.SortDirection == "asc"
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := *candidates[i].MatchScore, *candidates[j].MatchScore
		if si != sj {
			if ascending {
				return si < sj
			}
			return si > sj
		}
		return candidates[i].ID < candidates[j].ID
	})

	total := len(candidates)
	lo := opts.Offset
	if lo > total {
		lo = total
	}
	hi := lo + opts.Limit
	if hi > total {
		hi = total
	}

	return &FeedPage{
		Candidates: candidates[lo:hi],
		Pagination: Pagination{Limit: opts.Limit, Offset: opts.Offset, Total: total},
	}, nil
}

// requesterPreferences resolves the slider preferences of the requester's
// company, if any. A requester without a company ranks every candidate at
// the neutral score.
func (s *FeedService) requesterPreferences(ctx context.Context, forID string) ([]domain.SliderPreference, error) {
	requester, err := s.reads.Users.GetUser(ctx, forID)
	if err != nil {
		return nil, err
	}
	if requester.CompanyID == "" {
		return nil, nil
	}

	if cached, ok := s.companies.Get("company:" + requester.CompanyID); ok {
		if company, ok := cached.(*domain.Company); ok {
			return company.SliderPreferences, nil
		}
	}

	company, err := s.reads.Users.GetCompany(ctx, requester.CompanyID)
	if err != nil {
		return nil, err
	}
	s.companies.Set("company:"+requester.CompanyID, company, companyCacheTTL)
	return company.SliderPreferences, nil
}
