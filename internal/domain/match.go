package domain

import (
	"context"
	"time"
)

// Swipe is one party's recorded decision about a counterpart. Swipes are
// append-only: at most one row exists per (jobseeker, employer, swipedBy)
// and a recorded decision is never updated.
type Swipe struct {
	ID           string // UUID
	JobseekerID  string
	EmployerID   string
	Interested   bool
	SwipedBy     Role
	CompanyID    string // employer's company at swipe time, optional
	JobPostingID string // set when the swipe was synthesized from job interest
	CreatedAt    time.Time
}

// Match is created exactly once per (jobseeker, employer) pair, the moment
// both directional swipes are positive.
type Match struct {
	ID                   string // UUID
	JobseekerID          string
	EmployerID           string
	CompanyID            string // optional
	Status               string // see matching.Status
	MessagingEnabled     bool
	SchedulingEnabled    bool
	JobsShared           []string // JobPosting IDs shared into this match
	JobPostingID         string   // the posting the jobseeker expressed interest in, if any
	InterviewScheduledAt *time.Time
	InterviewStatus      string
	LastActivityAt       time.Time
	UpdatedAt            time.Time
}

// JobInterest is a jobseeker's recorded decision about a specific posting.
// At most one row exists per (jobseeker, jobPosting).
type JobInterest struct {
	ID           string // UUID
	JobseekerID  string
	JobPostingID string
	Interested   bool
	CreatedAt    time.Time
}

// Pair identifies a jobseeker/employer pair
type Pair struct {
	JobseekerID string
	EmployerID  string
}

// SwipeStore defines data access for swipes
type SwipeStore interface {
	// Insert appends a swipe. A second swipe in the same direction on the
	// same pair fails with ErrDuplicateSwipe.
	Insert(ctx context.Context, swipe *Swipe) error
	// InsertIfAbsent appends a swipe unless one already exists for the
	// direction; it reports whether a row was written.
	InsertIfAbsent(ctx context.Context, swipe *Swipe) (bool, error)
	Get(ctx context.Context, jobseekerID, employerID string, swipedBy Role) (*Swipe, error)
	// UnmatchedMutualPairs returns pairs where both directional swipes are
	// positive but no match row exists yet. Used by the reconciler.
	UnmatchedMutualPairs(ctx context.Context, limit int) ([]Pair, error)
}

// MatchStore defines data access for matches
type MatchStore interface {
	// Upsert creates the match for its pair unless one already exists, and
	// returns the persisted row plus whether this call created it.
	Upsert(ctx context.Context, match *Match) (*Match, bool, error)
	GetByID(ctx context.Context, id string) (*Match, error)
	GetByPair(ctx context.Context, jobseekerID, employerID string) (*Match, error)
	Update(ctx context.Context, match *Match) error
	ListForUser(ctx context.Context, role Role, userID string) ([]*Match, error)
}

// MatchEvent is published when a match is created or advances status
type MatchEvent struct {
	Type        string    `json:"type"` // "match_created", "status_changed"
	MatchID     string    `json:"matchId"`
	JobseekerID string    `json:"jobseekerId"`
	EmployerID  string    `json:"employerId"`
	Status      string    `json:"status"`
	Source      string    `json:"source"` // "swipe", "job_interest", "reconciler"
	OccurredAt  time.Time `json:"occurredAt"`
}
