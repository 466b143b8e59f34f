package domain

import (
	"context"
	"time"
)

// Role discriminates the two sides of the marketplace
type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
)

// Opposite returns the counterpart role
func (r Role) Opposite() Role {
	if r == RoleJobseeker {
		return RoleEmployer
	}
	return RoleJobseeker
}

// Valid reports whether r is one of the two marketplace roles
func (r Role) Valid() bool {
	return r == RoleJobseeker || r == RoleEmployer
}

// User represents a marketplace participant
type User struct {
	ID        string // UUID
	UserType  Role
	Name      string
	Email     string
	CompanyID string // UUID of owning company, employers only (empty otherwise)
	// SliderValues holds trait slider positions 0-100, keyed by slider ID.
	// Missing sliders are treated as 50 when scoring.
	SliderValues map[string]float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsActive     bool
}

// SliderPreference is one preferred trait slider of a company, with an
// optional preferred side of the scale.
type SliderPreference struct {
	SliderID string `json:"sliderId"`
	Side     string `json:"side"` // "left", "right" or "" for no side preference
}

// Company owns job postings and employer users
type Company struct {
	ID                string // UUID
	Name              string
	SliderPreferences []SliderPreference
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Job posting lifecycle statuses
const (
	JobStatusActive = "active"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
)

// JobPosting belongs to exactly one company
type JobPosting struct {
	ID        string // UUID
	CompanyID string
	Title     string
	Status    string // active, paused, closed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserStore defines data access for users and companies
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetCompany(ctx context.Context, id string) (*Company, error)
	// GetEmployerForCompany returns any active employer-type user on the
	// company's team, or ErrNotFound when the team is empty.
	GetEmployerForCompany(ctx context.Context, companyID string) (*User, error)
	// ListCandidates returns users of the given role eligible to appear in
	// forID's feed: anyone not negatively swiped in either direction.
	// Ordered by id for a deterministic page. The returned total counts all
	// eligible candidates regardless of limit/offset.
	ListCandidates(ctx context.Context, candidateRole Role, forID string, limit, offset int) ([]*User, int, error)
	// ListCandidatesForRanking returns up to scanLimit eligible candidates
	// with their slider values so the caller can score and order them.
	ListCandidatesForRanking(ctx context.Context, candidateRole Role, forID string, scanLimit int) ([]*User, error)
}

// JobStore defines data access for job postings and job interests
type JobStore interface {
	GetJobPosting(ctx context.Context, id string) (*JobPosting, error)
	// GetJobPostings resolves each id; any id that does not resolve makes
	// the whole call fail with ErrNotFound.
	GetJobPostings(ctx context.Context, ids []string) ([]*JobPosting, error)
	InsertInterest(ctx context.Context, interest *JobInterest) error
	GetInterest(ctx context.Context, jobseekerID, jobPostingID string) (*JobInterest, error)
}
