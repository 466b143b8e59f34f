package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/matching"
	"github.com/yourorg/talentmatch/internal/observability/metrics"
	"github.com/yourorg/talentmatch/pkg/database"
)

// SwipeService records directional swipes and detects mutual matches
type SwipeService struct {
	tx     database.TxRunner
	stores StoreFactory
	reads  Stores
	events EventPublisher
	cache  *FeedCache
	logger *slog.Logger
}

// NewSwipeService creates a new swipe service. reads is a pool-bound
// bundle for plain lookups; stores binds bundles to transactions.
func NewSwipeService(
	tx database.TxRunner,
	stores StoreFactory,
	reads Stores,
	events EventPublisher,
	cache *FeedCache,
	logger *slog.Logger,
) *SwipeService {
	if events == nil {
		events = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SwipeService{
		tx:     tx,
		stores: stores,
		reads:  reads,
		events: events,
		cache:  cache,
		logger: logger,
	}
}

// SwipeResult is the outcome of recording one swipe
type SwipeResult struct {
	Swipe         *domain.Swipe
	Match         *domain.Match
	IsMutualMatch bool
}

// RecordSwipe appends the actor's decision about the counterpart and, when
// the decision is positive and reciprocated, creates the match. The swipe
// insert and the conditional match insert run in one transaction: a crash
// between them leaves either both persisted or neither.
func (s *SwipeService) RecordSwipe(ctx context.Context, actorRole domain.Role, actorID, counterpartID string, interested bool) (*SwipeResult, error) {
	if !actorRole.Valid() {
		return nil, domain.ErrValidation
	}
	if actorID == "" || counterpartID == "" {
		return nil, domain.ErrValidation
	}
	if actorID == counterpartID {
		return nil, domain.ErrInvalidParty
	}

	actor, err := s.reads.Users.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	counterpart, err := s.reads.Users.GetUser(ctx, counterpartID)
	if err != nil {
		return nil, err
	}
	if actor.UserType != actorRole || counterpart.UserType != actorRole.Opposite() {
		return nil, domain.ErrInvalidParty
	}

	jobseekerID, employerID := actorID, counterpartID
	employer := counterpart
	if actorRole == domain.RoleEmployer {
		jobseekerID, employerID = counterpartID, actorID
		employer = actor
	}

	swipe := &domain.Swipe{
		ID:          uuid.NewString(),
		JobseekerID: jobseekerID,
		EmployerID:  employerID,
		Interested:  interested,
		SwipedBy:    actorRole,
		CompanyID:   employer.CompanyID,
	}

	var match *domain.Match
	err = s.tx.WithinTx(ctx, func(q database.Queryer) error {
		st := s.stores(q)

		if err := st.Swipes.Insert(ctx, swipe); err != nil {
			return err
		}
		if !interested {
			// A rejection only affects future feed eligibility.
			return nil
		}

		reciprocal, err := st.Swipes.Get(ctx, jobseekerID, employerID, actorRole.Opposite())
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		if !reciprocal.Interested {
			return nil
		}

		match, _, err = st.Matches.Upsert(ctx, &domain.Match{
			ID:               uuid.NewString(),
			JobseekerID:      jobseekerID,
			EmployerID:       employerID,
			CompanyID:        employer.CompanyID,
			Status:           string(matching.StatusNew),
			MessagingEnabled: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveSwipe(string(actorRole), interested)
	if s.cache != nil {
		s.cache.Invalidate(ctx, jobseekerID, employerID)
	}

	if match == nil && interested {
		// Two opposite-direction swipes committing concurrently can each
		// miss the other's row under read-committed isolation. Re-check
		// mutuality now that ours is committed; the upsert keyed on the
		// pair makes a second detection a no-op.
		match, _, err = s.detectMutual(ctx, jobseekerID, employerID, employer.CompanyID)
		if err != nil {
			s.logger.Warn("post-commit mutuality check failed",
				slog.String("jobseeker_id", jobseekerID),
				slog.String("employer_id", employerID),
				slog.String("error", err.Error()),
			)
			err = nil
		}
	}

	if match != nil {
		metrics.ObserveMatchCreated("swipe")
		s.events.Publish(ctx, domain.MatchEvent{
			Type:        "match_created",
			MatchID:     match.ID,
			JobseekerID: match.JobseekerID,
			EmployerID:  match.EmployerID,
			Status:      match.Status,
			Source:      "swipe",
			OccurredAt:  time.Now(),
		})
		s.logger.Info("mutual match created",
			slog.String("match_id", match.ID),
			slog.String("jobseeker_id", jobseekerID),
			slog.String("employer_id", employerID),
		)
	}

	return &SwipeResult{
		Swipe:         swipe,
		Match:         match,
		IsMutualMatch: match != nil,
	}, nil
}

// detectMutual re-runs mutuality detection for one pair and creates the
// match if both directions are positive. Returns a nil match when the pair
// is not (yet) mutual, and whether this call created the match.
func (s *SwipeService) detectMutual(ctx context.Context, jobseekerID, employerID, companyID string) (*domain.Match, bool, error) {
	var match *domain.Match
	var created bool

	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		st := s.stores(q)

		for _, direction := range []domain.Role{domain.RoleJobseeker, domain.RoleEmployer} {
			swipe, err := st.Swipes.Get(ctx, jobseekerID, employerID, direction)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return err
			}
			if !swipe.Interested {
				return nil
			}
		}

		var err error
		match, created, err = st.Matches.Upsert(ctx, &domain.Match{
			ID:               uuid.NewString(),
			JobseekerID:      jobseekerID,
			EmployerID:       employerID,
			CompanyID:        companyID,
			Status:           string(matching.StatusNew),
			MessagingEnabled: true,
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return match, created, nil
}

// Reconcile finds pairs whose mutual positive swipes never produced a match
// and repairs them. It returns how many matches were created. Safe to run
// concurrently with live traffic: creation is idempotent per pair.
func (s *SwipeService) Reconcile(ctx context.Context, limit int) (int, error) {
	pairs, err := s.reads.Swipes.UnmatchedMutualPairs(ctx, limit)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, pair := range pairs {
		employer, err := s.reads.Users.GetUser(ctx, pair.EmployerID)
		if err != nil {
			s.logger.Warn("reconcile: employer lookup failed",
				slog.String("employer_id", pair.EmployerID),
				slog.String("error", err.Error()),
			)
			continue
		}

		match, created, err := s.detectMutual(ctx, pair.JobseekerID, pair.EmployerID, employer.CompanyID)
		if err != nil {
			s.logger.Warn("reconcile: match repair failed",
				slog.String("jobseeker_id", pair.JobseekerID),
				slog.String("employer_id", pair.EmployerID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if match == nil || !created {
			continue
		}

		repaired++
		metrics.ObserveReconcilerRepair()
		metrics.ObserveMatchCreated("reconciler")
		s.events.Publish(ctx, domain.MatchEvent{
			Type:        "match_created",
			MatchID:     match.ID,
			JobseekerID: match.JobseekerID,
			EmployerID:  match.EmployerID,
			Status:      match.Status,
			Source:      "reconciler",
			OccurredAt:  time.Now(),
		})
	}

	return repaired, nil
}
