// Package matching contains the pure business rules of the matcher: the
// match status state machine and the preference-based feed score. It has no
// dependency on storage or transport.
//
// Valid status graph:
//
//	NEW ──► JOBS_SHARED ──► JOB_INTERESTED ──► INTERVIEW_SCHEDULED
//	 │           │                │                     │
//	 └───────────┴────────────────┴─────────────────────┴──► REJECTED / ARCHIVED / HIRED
//
// REJECTED, ARCHIVED and HIRED are terminal states.
package matching

import "fmt"

// Status values mirror the match_status enum in PostgreSQL.
type Status string

const (
	StatusNew                Status = "new"
	StatusJobsShared         Status = "jobs_shared"
	StatusJobInterested      Status = "job_interested"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusRejected           Status = "rejected"
	StatusArchived           Status = "archived"
	StatusHired              Status = "hired"
)

// statusRank orders the forward chain. Terminal states carry no rank.
var statusRank = map[Status]int{
	StatusNew:                0,
	StatusJobsShared:         1,
	StatusJobInterested:      2,
	StatusInterviewScheduled: 3,
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusJobsShared, StatusJobInterested, StatusInterviewScheduled,
		StatusRejected, StatusArchived, StatusHired:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsTerminal reports whether s allows no further transitions.
func IsTerminal(s Status) bool {
	switch s {
	case StatusRejected, StatusArchived, StatusHired:
		return true
	}
	return false
}

// CanAdvance reports whether moving from → to is permitted: forward-only
// within the core chain, and any non-terminal state may move to a terminal.
func CanAdvance(from, to Status) bool {
	if IsTerminal(from) {
		return false
	}
	if IsTerminal(to) {
		return true
	}
	return statusRank[to] > statusRank[from]
}

// Advance returns the status a match should hold after an action that wants
// to move it to target. Transitions are monotonic: when target would move
// the status backward (or sideways) the current status is kept, and the
// second return reports whether the status actually changed.
func Advance(current, target Status) (Status, bool) {
	if !CanAdvance(current, target) {
		return current, false
	}
	return target, true
}
