package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/matching"
	"github.com/yourorg/talentmatch/internal/observability/metrics"
	"github.com/yourorg/talentmatch/pkg/database"
)

// WarningNoEmployer is returned when a job interest cannot escalate because
// the posting's company has no employer account to stand in as the
// counterpart. The interest itself is still recorded.
const WarningNoEmployer = "no employer available for this job posting"

// JobService handles job sharing and the interest-to-match escalation
type JobService struct {
	tx     database.TxRunner
	stores StoreFactory
	reads  Stores
	events EventPublisher
	cache  *FeedCache
	logger *slog.Logger
}

// NewJobService creates a new job service
func NewJobService(
	tx database.TxRunner,
	stores StoreFactory,
	reads Stores,
	events EventPublisher,
	cache *FeedCache,
	logger *slog.Logger,
) *JobService {
	if events == nil {
		events = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		tx:     tx,
		stores: stores,
		reads:  reads,
		events: events,
		cache:  cache,
		logger: logger,
	}
}

// ShareJobs attaches postings to a match and advances it to jobs_shared.
// Every id must resolve; one unknown posting fails the whole share. When
// actorID is non-empty it must be the employer side of the match.
func (s *JobService) ShareJobs(ctx context.Context, actorID, matchID string, jobPostingIDs []string) (*domain.Match, error) {
	if matchID == "" || len(jobPostingIDs) == 0 {
		return nil, fmt.Errorf("matchId and jobPostingIds are required: %w", domain.ErrValidation)
	}

	var match *domain.Match
	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		st := s.stores(q)

		var err error
		match, err = st.Matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if actorID != "" && match.EmployerID != actorID {
			return fmt.Errorf("match %s: %w", matchID, domain.ErrNotFound)
		}

		// All-or-nothing: resolve the full batch before touching the match.
		if _, err := st.Jobs.GetJobPostings(ctx, jobPostingIDs); err != nil {
			return err
		}

		match.JobsShared = jobPostingIDs
		match.Status = advanceStatus(match.Status, matching.StatusJobsShared)
		return st.Matches.Update(ctx, match)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("jobs shared into match",
		slog.String("match_id", match.ID),
		slog.Int("count", len(jobPostingIDs)),
	)
	return match, nil
}

// InterestResult is the outcome of expressing interest in a job posting
type InterestResult struct {
	Interest          *domain.JobInterest
	Match             *domain.Match
	SchedulingEnabled bool
	// Warning is set on a tolerated partial outcome, e.g. when the posting
	// has no employer to match against.
	Warning string
}

// ExpressJobInterest records a jobseeker's decision about a posting. A
// positive decision escalates: the employer side is treated as implicitly
// consenting once they have posted a job the jobseeker wants, so missing
// swipes in either direction are synthesized and the match is created or
// advanced to job_interested with scheduling enabled. Steps run in one
// transaction; any failure rolls the whole escalation back.
func (s *JobService) ExpressJobInterest(ctx context.Context, jobseekerID, jobPostingID string, interested bool) (*InterestResult, error) {
	if jobseekerID == "" || jobPostingID == "" {
		return nil, domain.ErrValidation
	}

	jobseeker, err := s.reads.Users.GetUser(ctx, jobseekerID)
	if err != nil {
		return nil, err
	}
	if jobseeker.UserType != domain.RoleJobseeker {
		return nil, domain.ErrInvalidParty
	}

	posting, err := s.reads.Jobs.GetJobPosting(ctx, jobPostingID)
	if err != nil {
		return nil, err
	}

	result := &InterestResult{}
	var matchCreated bool
	err = s.tx.WithinTx(ctx, func(q database.Queryer) error {
		st := s.stores(q)

		if err := st.Jobs.InsertInterest(ctx, &domain.JobInterest{
			ID:           uuid.NewString(),
			JobseekerID:  jobseekerID,
			JobPostingID: jobPostingID,
			Interested:   interested,
		}); err != nil {
			return err
		}

		// The stored fact is authoritative: interest is append-only, so a
		// repeated call sees the first decision.
		interest, err := st.Jobs.GetInterest(ctx, jobseekerID, jobPostingID)
		if err != nil {
			return err
		}
		result.Interest = interest

		if !interest.Interested {
			return nil
		}

		employer, err := st.Users.GetEmployerForCompany(ctx, posting.CompanyID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				result.Warning = WarningNoEmployer
				return nil
			}
			return err
		}

		for _, swipedBy := range []domain.Role{domain.RoleEmployer, domain.RoleJobseeker} {
			if _, err := st.Swipes.InsertIfAbsent(ctx, &domain.Swipe{
				ID:           uuid.NewString(),
				JobseekerID:  jobseekerID,
				EmployerID:   employer.ID,
				Interested:   true,
				SwipedBy:     swipedBy,
				CompanyID:    posting.CompanyID,
				JobPostingID: posting.ID,
			}); err != nil {
				return err
			}
		}

		match, created, err := st.Matches.Upsert(ctx, &domain.Match{
			ID:               uuid.NewString(),
			JobseekerID:      jobseekerID,
			EmployerID:       employer.ID,
			CompanyID:        posting.CompanyID,
			Status:           string(matching.StatusNew),
			MessagingEnabled: true,
		})
		if err != nil {
			return err
		}
		matchCreated = created

		match.Status = advanceStatus(match.Status, matching.StatusJobInterested)
		match.SchedulingEnabled = true
		match.MessagingEnabled = true
		match.JobPostingID = posting.ID
		if err := st.Matches.Update(ctx, match); err != nil {
			return err
		}

		result.Match = match
		result.SchedulingEnabled = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case result.Warning != "":
		metrics.ObserveEscalation("no_employer")
	case result.Match == nil:
		metrics.ObserveEscalation("declined")
	case matchCreated:
		metrics.ObserveEscalation("match_created")
		metrics.ObserveMatchCreated("job_interest")
	default:
		metrics.ObserveEscalation("match_updated")
	}

	if result.Match != nil {
		if s.cache != nil {
			s.cache.Invalidate(ctx, result.Match.JobseekerID, result.Match.EmployerID)
		}
		eventType := "status_changed"
		if matchCreated {
			eventType = "match_created"
		}
		s.events.Publish(ctx, domain.MatchEvent{
			Type:        eventType,
			MatchID:     result.Match.ID,
			JobseekerID: result.Match.JobseekerID,
			EmployerID:  result.Match.EmployerID,
			Status:      result.Match.Status,
			Source:      "job_interest",
			OccurredAt:  time.Now(),
		})
		s.logger.Info("job interest escalated",
			slog.String("match_id", result.Match.ID),
			slog.String("job_posting_id", posting.ID),
			slog.Bool("match_created", matchCreated),
		)
	}

	return result, nil
}

// advanceStatus applies the monotonic state machine to a persisted status
// string, keeping the current value when the target would move backward.
func advanceStatus(current string, target matching.Status) string {
	parsed, err := matching.ParseStatus(current)
	if err != nil {
		// Unknown persisted status: treat as new so the action still lands.
		parsed = matching.StatusNew
	}
	next, _ := matching.Advance(parsed, target)
	return string(next)
}
