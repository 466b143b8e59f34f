package database

import (
	"context"
	"fmt"
	"log/slog"
)

// Migration is one ordered, idempotently-applied schema change
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations is the ordered schema history. Never reorder or edit an
// applied entry; append a new version instead.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_users_and_companies",
		SQL: `
CREATE TABLE IF NOT EXISTS companies (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	slider_preferences JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	user_type TEXT NOT NULL CHECK (user_type IN ('jobseeker', 'employer')),
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	company_id UUID REFERENCES companies(id),
	slider_values JSONB NOT NULL DEFAULT '{}',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_company ON users(company_id) WHERE company_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_users_type ON users(user_type) WHERE is_active;
`,
	},
	{
		Version: 2,
		Name:    "create_job_postings",
		SQL: `
CREATE TABLE IF NOT EXISTS job_postings (
	id UUID PRIMARY KEY,
	company_id UUID NOT NULL REFERENCES companies(id),
	title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'paused', 'closed')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_job_postings_company ON job_postings(company_id);
`,
	},
	{
		Version: 3,
		Name:    "create_swipes_matches_interests",
		SQL: `
CREATE TABLE IF NOT EXISTS swipes (
	id UUID PRIMARY KEY,
	jobseeker_id UUID NOT NULL REFERENCES users(id),
	employer_id UUID NOT NULL REFERENCES users(id),
	interested BOOLEAN NOT NULL,
	swiped_by TEXT NOT NULL CHECK (swiped_by IN ('jobseeker', 'employer')),
	company_id UUID REFERENCES companies(id),
	job_posting_id UUID REFERENCES job_postings(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (jobseeker_id, employer_id, swiped_by)
);

CREATE INDEX IF NOT EXISTS idx_swipes_employer ON swipes(employer_id);

CREATE TABLE IF NOT EXISTS matches (
	id UUID PRIMARY KEY,
	jobseeker_id UUID NOT NULL REFERENCES users(id),
	employer_id UUID NOT NULL REFERENCES users(id),
	company_id UUID REFERENCES companies(id),
	status TEXT NOT NULL DEFAULT 'new' CHECK (status IN
		('new', 'jobs_shared', 'job_interested', 'interview_scheduled', 'rejected', 'archived', 'hired')),
	messaging_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	scheduling_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	jobs_shared UUID[] NOT NULL DEFAULT '{}',
	job_posting_id UUID REFERENCES job_postings(id),
	interview_scheduled_at TIMESTAMPTZ,
	interview_status TEXT,
	last_activity_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (jobseeker_id, employer_id)
);

CREATE INDEX IF NOT EXISTS idx_matches_jobseeker ON matches(jobseeker_id);
CREATE INDEX IF NOT EXISTS idx_matches_employer ON matches(employer_id);

CREATE TABLE IF NOT EXISTS job_interests (
	id UUID PRIMARY KEY,
	jobseeker_id UUID NOT NULL REFERENCES users(id),
	job_posting_id UUID NOT NULL REFERENCES job_postings(id),
	interested BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (jobseeker_id, job_posting_id)
);
`,
	},
}

// Migrate applies every migration that has not been applied yet, recording
// each in schema_migrations so a rerun is a no-op. Each migration runs in
// its own transaction together with its version bookkeeping.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	_, err := cp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range Migrations {
		applied, err := cp.migrationApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = cp.WithinTx(ctx, func(q Queryer) error {
			if _, err := q.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
			}
			if _, err := q.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				m.Version, m.Name,
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		cp.logger.Info("migration applied",
			slog.Int("version", m.Version),
			slog.String("name", m.Name),
		)
	}
	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := cp.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}
	return exists, nil
}
