package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/pkg/database"
)

// PostgresUserRepository implements domain.UserStore using PostgreSQL
type PostgresUserRepository struct {
	q      database.Queryer
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(q database.Queryer, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		q:      q,
		logger: logger,
	}
}

// GetUser retrieves a user by ID
func (r *PostgresUserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	var companyID sql.NullString
	var sliderValues []byte

	query := `
		SELECT id, user_type, name, email, company_id, slider_values, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.UserType,
		&user.Name,
		&user.Email,
		&companyID,
		&sliderValues,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Error("failed to get user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CompanyID = fromNullable(companyID)
	if err := json.Unmarshal(sliderValues, &user.SliderValues); err != nil {
		return nil, fmt.Errorf("failed to decode slider values: %w", err)
	}

	return user, nil
}

// GetCompany retrieves a company by ID
func (r *PostgresUserRepository) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company := &domain.Company{}
	var prefs []byte

	query := `
		SELECT id, name, slider_preferences, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&prefs,
		&company.CreatedAt,
		&company.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if err := json.Unmarshal(prefs, &company.SliderPreferences); err != nil {
		return nil, fmt.Errorf("failed to decode slider preferences: %w", err)
	}

	return company, nil
}

// GetEmployerForCompany returns any active employer on the company's team.
// Oldest account first so repeated calls pick the same user.
func (r *PostgresUserRepository) GetEmployerForCompany(ctx context.Context, companyID string) (*domain.User, error) {
	var id string

	query := `
		SELECT id
		FROM users
		WHERE company_id = $1 AND user_type = 'employer' AND is_active = true
		ORDER BY created_at
		LIMIT 1
	`

	err := r.q.QueryRowContext(ctx, query, companyID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no employer on company %s: %w", companyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find employer for company: %w", err)
	}

	return r.GetUser(ctx, id)
}

// candidateFilter builds the eligibility predicate for forID's feed: a
// candidate is excluded only when a negative swipe exists in either
// direction for the pair. Swipe rows are keyed (jobseeker_id, employer_id)
// regardless of who swiped, so a single anti-join covers both directions.
func candidateFilter(candidateRole domain.Role) string {
	if candidateRole == domain.RoleJobseeker {
		// requester is the employer, candidates are jobseekers
		return `
			u.user_type = 'jobseeker' AND u.is_active = true
			AND NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.jobseeker_id = u.id AND s.employer_id = $1 AND s.interested = false
			)`
	}
	// requester is the jobseeker, candidates are employers
	return `
		u.user_type = 'employer' AND u.is_active = true
		AND NOT EXISTS (
			SELECT 1 FROM swipes s
			WHERE s.jobseeker_id = $1 AND s.employer_id = u.id AND s.interested = false
		)`
}

// ListCandidates returns one deterministic page of eligible candidates plus
// the total eligible count.
func (r *PostgresUserRepository) ListCandidates(ctx context.Context, candidateRole domain.Role, forID string, limit, offset int) ([]*domain.User, int, error) {
	filter := candidateFilter(candidateRole)

	var total int
	countQuery := `SELECT COUNT(*) FROM users u WHERE ` + filter
	if err := r.q.QueryRowContext(ctx, countQuery, forID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	query := `
		SELECT u.id, u.user_type, u.name, u.email, u.company_id, u.slider_values, u.is_active, u.created_at, u.updated_at
		FROM users u
		WHERE ` + filter + `
		ORDER BY u.id
		LIMIT $2 OFFSET $3
	`

	users, err := r.scanCandidates(ctx, query, forID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListCandidatesForRanking returns eligible candidates for in-memory
// scoring, capped at scanLimit.
func (r *PostgresUserRepository) ListCandidatesForRanking(ctx context.Context, candidateRole domain.Role, forID string, scanLimit int) ([]*domain.User, error) {
	query := `
		SELECT u.id, u.user_type, u.name, u.email, u.company_id, u.slider_values, u.is_active, u.created_at, u.updated_at
		FROM users u
		WHERE ` + candidateFilter(candidateRole) + `
		ORDER BY u.id
		LIMIT $2
	`

	return r.scanCandidates(ctx, query, forID, scanLimit)
}

func (r *PostgresUserRepository) scanCandidates(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list candidates", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		var companyID sql.NullString
		var sliderValues []byte

		err := rows.Scan(
			&user.ID,
			&user.UserType,
			&user.Name,
			&user.Email,
			&companyID,
			&sliderValues,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}

		user.CompanyID = fromNullable(companyID)
		if err := json.Unmarshal(sliderValues, &user.SliderValues); err != nil {
			return nil, fmt.Errorf("failed to decode slider values: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
