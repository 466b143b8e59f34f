package handler

import (
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
)

// MatchPayload is the wire form of a match
type MatchPayload struct {
	ID                   string     `json:"id"`
	JobseekerID          string     `json:"jobseekerId"`
	EmployerID           string     `json:"employerId"`
	CompanyID            string     `json:"companyId,omitempty"`
	Status               string     `json:"status"`
	MessagingEnabled     bool       `json:"messagingEnabled"`
	SchedulingEnabled    bool       `json:"schedulingEnabled"`
	JobsShared           []string   `json:"jobsShared,omitempty"`
	JobPostingID         string     `json:"jobPostingId,omitempty"`
	InterviewScheduledAt *time.Time `json:"interviewScheduledAt,omitempty"`
	InterviewStatus      string     `json:"interviewStatus,omitempty"`
	LastActivityAt       time.Time  `json:"lastActivityAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func toMatchPayload(m *domain.Match) *MatchPayload {
	if m == nil {
		return nil
	}
	return &MatchPayload{
		ID:                   m.ID,
		JobseekerID:          m.JobseekerID,
		EmployerID:           m.EmployerID,
		CompanyID:            m.CompanyID,
		Status:               m.Status,
		MessagingEnabled:     m.MessagingEnabled,
		SchedulingEnabled:    m.SchedulingEnabled,
		JobsShared:           m.JobsShared,
		JobPostingID:         m.JobPostingID,
		InterviewScheduledAt: m.InterviewScheduledAt,
		InterviewStatus:      m.InterviewStatus,
		LastActivityAt:       m.LastActivityAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// SwipePayload is the wire form of a recorded swipe
type SwipePayload struct {
	ID          string    `json:"id"`
	JobseekerID string    `json:"jobseekerId"`
	EmployerID  string    `json:"employerId"`
	Interested  bool      `json:"interested"`
	SwipedBy    string    `json:"swipedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toSwipePayload(s *domain.Swipe) *SwipePayload {
	if s == nil {
		return nil
	}
	return &SwipePayload{
		ID:          s.ID,
		JobseekerID: s.JobseekerID,
		EmployerID:  s.EmployerID,
		Interested:  s.Interested,
		SwipedBy:    string(s.SwipedBy),
		CreatedAt:   s.CreatedAt,
	}
}

// JobInterestPayload is the wire form of a recorded job interest
type JobInterestPayload struct {
	ID           string    `json:"id"`
	JobseekerID  string    `json:"jobseekerId"`
	JobPostingID string    `json:"jobPostingId"`
	Interested   bool      `json:"interested"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toJobInterestPayload(i *domain.JobInterest) *JobInterestPayload {
	if i == nil {
		return nil
	}
	return &JobInterestPayload{
		ID:           i.ID,
		JobseekerID:  i.JobseekerID,
		JobPostingID: i.JobPostingID,
		Interested:   i.Interested,
		CreatedAt:    i.CreatedAt,
	}
}
