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

// uniqueViolation is the PostgreSQL error code raised when an insert hits a
// unique constraint.
const uniqueViolation = "23505"

// PostgresSwipeRepository implements domain.SwipeStore using PostgreSQL
type PostgresSwipeRepository struct {
	q      database.Queryer
	logger *slog.Logger
}

// NewPostgresSwipeRepository creates a new swipe repository
func NewPostgresSwipeRepository(q database.Queryer, logger *slog.Logger) *PostgresSwipeRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSwipeRepository{
		q:      q,
		logger: logger,
	}
}

const insertSwipeQuery = `
	INSERT INTO swipes (id, jobseeker_id, employer_id, interested, swiped_by, company_id, job_posting_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert appends a swipe. The (jobseeker_id, employer_id, swiped_by) unique
// constraint turns a repeated decision into ErrDuplicateSwipe rather than an
// overwrite: decisions are immutable once made.
func (r *PostgresSwipeRepository) Insert(ctx context.Context, swipe *domain.Swipe) error {
	err := r.q.QueryRowContext(ctx, insertSwipeQuery+` RETURNING created_at`,
		swipe.ID,
		swipe.JobseekerID,
		swipe.EmployerID,
		swipe.Interested,
		swipe.SwipedBy,
		nullable(swipe.CompanyID),
		nullable(swipe.JobPostingID),
	).Scan(&swipe.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s already swiped on this pair: %w", swipe.SwipedBy, domain.ErrDuplicateSwipe)
		}
		r.logger.Error("failed to insert swipe",
			slog.String("jobseeker_id", swipe.JobseekerID),
			slog.String("employer_id", swipe.EmployerID),
			slog.String("swiped_by", string(swipe.SwipedBy)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to insert swipe: %w", err)
	}

	return nil
}

// InsertIfAbsent appends a swipe unless the direction already holds a
// decision, reporting whether a row was written. Used when the escalation
// path synthesizes consent swipes.
func (r *PostgresSwipeRepository) InsertIfAbsent(ctx context.Context, swipe *domain.Swipe) (bool, error) {
	result, err := r.q.ExecContext(ctx,
		insertSwipeQuery+` ON CONFLICT (jobseeker_id, employer_id, swiped_by) DO NOTHING`,
		swipe.ID,
		swipe.JobseekerID,
		swipe.EmployerID,
		swipe.Interested,
		swipe.SwipedBy,
		nullable(swipe.CompanyID),
		nullable(swipe.JobPostingID),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert swipe: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows > 0, nil
}

// Get retrieves the swipe recorded by swipedBy for the pair
func (r *PostgresSwipeRepository) Get(ctx context.Context, jobseekerID, employerID string, swipedBy domain.Role) (*domain.Swipe, error) {
	swipe := &domain.Swipe{}
	var companyID, jobPostingID sql.NullString

	query := `
		SELECT id, jobseeker_id, employer_id, interested, swiped_by, company_id, job_posting_id, created_at
		FROM swipes
		WHERE jobseeker_id = $1 AND employer_id = $2 AND swiped_by = $3
	`

	err := r.q.QueryRowContext(ctx, query, jobseekerID, employerID, swipedBy).Scan(
		&swipe.ID,
		&swipe.JobseekerID,
		&swipe.EmployerID,
		&swipe.Interested,
		&swipe.SwipedBy,
		&companyID,
		&jobPostingID,
		&swipe.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("swipe by %s on pair (%s, %s): %w", swipedBy, jobseekerID, employerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get swipe: %w", err)
	}

	swipe.CompanyID = fromNullable(companyID)
	swipe.JobPostingID = fromNullable(jobPostingID)
	return swipe, nil
}

// UnmatchedMutualPairs returns pairs with two positive swipes and no match
// row. Under read-committed isolation two opposite-direction swipes can
// commit without either transaction seeing the other; this query is how the
// reconciler finds and repairs those pairs.
func (r *PostgresSwipeRepository) UnmatchedMutualPairs(ctx context.Context, limit int) ([]domain.Pair, error) {
	query := `
		SELECT a.jobseeker_id, a.employer_id
		FROM swipes a
		JOIN swipes b
		  ON b.jobseeker_id = a.jobseeker_id
		 AND b.employer_id = a.employer_id
		 AND b.swiped_by = 'employer'
		WHERE a.swiped_by = 'jobseeker'
		  AND a.interested = true
		  AND b.interested = true
		  AND NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE m.jobseeker_id = a.jobseeker_id AND m.employer_id = a.employer_id
		  )
		LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched mutual pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.Pair
	for rows.Next() {
		var p domain.Pair
		if err := rows.Scan(&p.JobseekerID, &p.EmployerID); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}

	return pairs, rows.Err()
}
