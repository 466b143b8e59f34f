package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/pkg/database"
)

// PostgresMatchRepository implements domain.MatchStore using PostgreSQL
type PostgresMatchRepository struct {
	q      database.Queryer
	logger *slog.Logger
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(q database.Queryer, logger *slog.Logger) *PostgresMatchRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMatchRepository{
		q:      q,
		logger: logger,
	}
}

const matchColumns = `
	id, jobseeker_id, employer_id, company_id, status, messaging_enabled, scheduling_enabled,
	jobs_shared, job_posting_id, interview_scheduled_at, interview_status, last_activity_at, updated_at
`

// Upsert creates the match for its pair unless one already exists. The
// unique (jobseeker_id, employer_id) constraint plus DO NOTHING makes a
// second detection attempt a no-op, which is what keeps mutual-match
// creation idempotent under concurrent swipes.
func (r *PostgresMatchRepository) Upsert(ctx context.Context, match *domain.Match) (*domain.Match, bool, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO matches (id, jobseeker_id, employer_id, company_id, status, messaging_enabled, scheduling_enabled, job_posting_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (jobseeker_id, employer_id) DO NOTHING`,
		match.ID,
		match.JobseekerID,
		match.EmployerID,
		nullable(match.CompanyID),
		match.Status,
		match.MessagingEnabled,
		match.SchedulingEnabled,
		nullable(match.JobPostingID),
	)
	if err != nil {
		r.logger.Error("failed to upsert match",
			slog.String("jobseeker_id", match.JobseekerID),
			slog.String("employer_id", match.EmployerID),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("failed to upsert match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	persisted, err := r.GetByPair(ctx, match.JobseekerID, match.EmployerID)
	if err != nil {
		return nil, false, err
	}
	return persisted, rows > 0, nil
}

// GetByID retrieves a match by ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

// GetByPair retrieves the match for a jobseeker/employer pair
func (r *PostgresMatchRepository) GetByPair(ctx context.Context, jobseekerID, employerID string) (*domain.Match, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE jobseeker_id = $1 AND employer_id = $2`,
		jobseekerID, employerID,
	)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match for pair (%s, %s): %w", jobseekerID, employerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match by pair: %w", err)
	}
	return match, nil
}

// Update persists the mutable fields of a match
func (r *PostgresMatchRepository) Update(ctx context.Context, match *domain.Match) error {
	err := r.q.QueryRowContext(ctx, `
		UPDATE matches
		SET status = $1,
		    messaging_enabled = $2,
		    scheduling_enabled = $3,
		    jobs_shared = $4,
		    job_posting_id = $5,
		    interview_scheduled_at = $6,
		    interview_status = $7,
		    last_activity_at = NOW(),
		    updated_at = NOW()
		WHERE id = $8
		RETURNING last_activity_at, updated_at`,
		match.Status,
		match.MessagingEnabled,
		match.SchedulingEnabled,
		pq.Array(match.JobsShared),
		nullable(match.JobPostingID),
		match.InterviewScheduledAt,
		nullable(match.InterviewStatus),
		match.ID,
	).Scan(&match.LastActivityAt, &match.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("match %s: %w", match.ID, domain.ErrNotFound)
		}
		r.logger.Error("failed to update match",
			slog.String("id", match.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update match: %w", err)
	}

	return nil
}

// ListForUser returns every match the user participates in, most recently
// active first.
func (r *PostgresMatchRepository) ListForUser(ctx context.Context, role domain.Role, userID string) ([]*domain.Match, error) {
	column := "jobseeker_id"
	if role == domain.RoleEmployer {
		column = "employer_id"
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE `+column+` = $1 ORDER BY last_activity_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// rowScanner lets scanMatch work with both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	match := &domain.Match{}
	var companyID, jobPostingID, interviewStatus sql.NullString
	var interviewAt sql.NullTime
	var jobsShared pq.StringArray

	err := row.Scan(
		&match.ID,
		&match.JobseekerID,
		&match.EmployerID,
		&companyID,
		&match.Status,
		&match.MessagingEnabled,
		&match.SchedulingEnabled,
		&jobsShared,
		&jobPostingID,
		&interviewAt,
		&interviewStatus,
		&match.LastActivityAt,
		&match.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	match.CompanyID = fromNullable(companyID)
	match.JobPostingID = fromNullable(jobPostingID)
	match.InterviewStatus = fromNullable(interviewStatus)
	match.JobsShared = []string(jobsShared)
	if interviewAt.Valid {
		t := interviewAt.Time
		match.InterviewScheduledAt = &t
	}
	return match, nil
}
