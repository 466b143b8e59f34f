package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/matching"
	"github.com/yourorg/talentmatch/pkg/database"
)

// MatchService covers match-level actions outside the swipe path:
// interview scheduling and listing a party's matches.
type MatchService struct {
	tx     database.TxRunner
	stores StoreFactory
	reads  Stores
	logger *slog.Logger
}

// NewMatchService creates a new match service
func NewMatchService(tx database.TxRunner, stores StoreFactory, reads Stores, logger *slog.Logger) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchService{
		tx:     tx,
		stores: stores,
		reads:  reads,
		logger: logger,
	}
}

// DefaultInterviewStatus is used when the caller does not name one
const DefaultInterviewStatus = "scheduled"

// ScheduleInterview records scheduling metadata on an existing match and
// advances it to interview_scheduled. When actorID is non-empty it must be
// one of the match's two parties.
func (s *MatchService) ScheduleInterview(ctx context.Context, actorID, matchID string, scheduledAt time.Time, interviewStatus string) (*domain.Match, error) {
	if matchID == "" || scheduledAt.IsZero() {
		return nil, fmt.Errorf("matchId and scheduledAt are required: %w", domain.ErrValidation)
	}
	if scheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("scheduledAt must be in the future: %w", domain.ErrValidation)
	}
	if interviewStatus == "" {
		interviewStatus = DefaultInterviewStatus
	}

	var match *domain.Match
	err := s.tx.WithinTx(ctx, func(q database.Queryer) error {
		st := s.stores(q)

		var err error
		match, err = st.Matches.GetByID(ctx, matchID)
		if err != nil {
			return err
		}
		if actorID != "" && match.JobseekerID != actorID && match.EmployerID != actorID {
			return fmt.Errorf("match %s: %w", matchID, domain.ErrNotFound)
		}

		match.InterviewScheduledAt = &scheduledAt
		match.InterviewStatus = interviewStatus
		match.Status = advanceStatus(match.Status, matching.StatusInterviewScheduled)
		return st.Matches.Update(ctx, match)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("interview scheduled",
		slog.String("match_id", match.ID),
		slog.Time("scheduled_at", scheduledAt),
		slog.String("interview_status", interviewStatus),
	)
	return match, nil
}

// ListMatches returns every match the user participates in
func (s *MatchService) ListMatches(ctx context.Context, role domain.Role, userID string) ([]*domain.Match, error) {
	if !role.Valid() || userID == "" {
		return nil, domain.ErrValidation
	}
	return s.reads.Matches.ListForUser(ctx, role, userID)
}
