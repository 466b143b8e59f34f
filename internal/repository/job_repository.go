package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/pkg/database"
)

// PostgresJobRepository implements domain.JobStore using PostgreSQL
type PostgresJobRepository struct {
	q      database.Queryer
	logger *slog.Logger
}

// NewPostgresJobRepository creates a new job repository
func NewPostgresJobRepository(q database.Queryer, logger *slog.Logger) *PostgresJobRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobRepository{
		q:      q,
		logger: logger,
	}
}

// GetJobPosting retrieves a posting by ID
func (r *PostgresJobRepository) GetJobPosting(ctx context.Context, id string) (*domain.JobPosting, error) {
	posting := &domain.JobPosting{}

	query := `
		SELECT id, company_id, title, status, created_at, updated_at
		FROM job_postings
		WHERE id = $1
	`

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&posting.ID,
		&posting.CompanyID,
		&posting.Title,
		&posting.Status,
		&posting.CreatedAt,
		&posting.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job posting %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}

	return posting, nil
}

// GetJobPostings resolves every id, failing with ErrNotFound naming the
// missing ids when any do not resolve. Sharing is all-or-nothing, so one
// bad id invalidates the whole batch.
func (r *PostgresJobRepository) GetJobPostings(ctx context.Context, ids []string) ([]*domain.JobPosting, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, company_id, title, status, created_at, updated_at
		FROM job_postings
		WHERE id = ANY($1)
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get job postings: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	var postings []*domain.JobPosting
	for rows.Next() {
		posting := &domain.JobPosting{}
		err := rows.Scan(
			&posting.ID,
			&posting.CompanyID,
			&posting.Title,
			&posting.Status,
			&posting.CreatedAt,
			&posting.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		found[posting.ID] = true
		postings = append(postings, posting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("job postings %s: %w", strings.Join(missing, ", "), domain.ErrNotFound)
	}

	return postings, nil
}

// InsertInterest appends a job-interest fact unless the jobseeker already
// decided on this posting. The first decision stands; a repeated call is a
// no-op rather than an overwrite.
func (r *PostgresJobRepository) InsertInterest(ctx context.Context, interest *domain.JobInterest) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO job_interests (id, jobseeker_id, job_posting_id, interested)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jobseeker_id, job_posting_id) DO NOTHING`,
		interest.ID,
		interest.JobseekerID,
		interest.JobPostingID,
		interest.Interested,
	)
	if err != nil {
		r.logger.Error("failed to insert job interest",
			slog.String("jobseeker_id", interest.JobseekerID),
			slog.String("job_posting_id", interest.JobPostingID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to insert job interest: %w", err)
	}
	return nil
}

// GetInterest retrieves the recorded interest fact for the pair
func (r *PostgresJobRepository) GetInterest(ctx context.Context, jobseekerID, jobPostingID string) (*domain.JobInterest, error) {
	interest := &domain.JobInterest{}

	query := `
		SELECT id, jobseeker_id, job_posting_id, interested, created_at
		FROM job_interests
		WHERE jobseeker_id = $1 AND job_posting_id = $2
	`

	err := r.q.QueryRowContext(ctx, query, jobseekerID, jobPostingID).Scan(
		&interest.ID,
		&interest.JobseekerID,
		&interest.JobPostingID,
		&interest.Interested,
		&interest.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job interest for (%s, %s): %w", jobseekerID, jobPostingID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job interest: %w", err)
	}

	return interest, nil
}
