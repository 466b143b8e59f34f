package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/matching"
)

func newJobService(m *memStores) (*JobService, *capturingPublisher) {
	pub := &capturingPublisher{}
	return NewJobService(memTx{}, m.factory(), m.bundle(), pub, nil, nil), pub
}

func seedMatch(m *memStores, id, jobseekerID, employerID string) *domain.Match {
	match := &domain.Match{
		ID:               id,
		JobseekerID:      jobseekerID,
		EmployerID:       employerID,
		CompanyID:        "c1",
		Status:           string(matching.StatusNew),
		MessagingEnabled: true,
	}
	m.matches[pairKey(jobseekerID, employerID)] = match
	return match
}

func TestShareJobs_AttachesPostingsAndAdvances(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	m.addPosting("p2", "c1")
	seedMatch(m, "m1", js, emp)
	s, _ := newJobService(m)

	match, err := s.ShareJobs(context.Background(), emp, "m1", []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("share jobs failed: %v", err)
	}
	if len(match.JobsShared) != 2 {
		t.Errorf("jobs_shared = %v, want 2 postings", match.JobsShared)
	}
	if match.Status != string(matching.StatusJobsShared) {
		t.Errorf("status = %s, want jobs_shared", match.Status)
	}
}

func TestShareJobs_UnknownPostingFailsWholeBatch(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	seedMatch(m, "m1", js, emp)
	s, _ := newJobService(m)

	_, err := s.ShareJobs(context.Background(), emp, "m1", []string{"p1", "ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the missing posting, got %q", err)
	}

	// The valid posting must not have been attached.
	stored := m.matches[pairKey(js, emp)]
	if len(stored.JobsShared) != 0 {
		t.Errorf("jobs_shared = %v, want untouched", stored.JobsShared)
	}
	if stored.Status != string(matching.StatusNew) {
		t.Errorf("status = %s, want unchanged new", stored.Status)
	}
}

func TestShareJobs_OnlyTheMatchEmployerMayShare(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	seedMatch(m, "m1", js, emp)
	s, _ := newJobService(m)

	if _, err := s.ShareJobs(context.Background(), js, "m1", []string{"p1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("jobseeker sharing should read as not found, got %v", err)
	}
	if _, err := s.ShareJobs(context.Background(), "someone-else", "m1", []string{"p1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("stranger sharing should read as not found, got %v", err)
	}
}

func TestShareJobs_Validation(t *testing.T) {
	m := newMemStores()
	s, _ := newJobService(m)

	if _, err := s.ShareJobs(context.Background(), "emp1", "", []string{"p1"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing matchId: got %v", err)
	}
	if _, err := s.ShareJobs(context.Background(), "emp1", "m1", nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty posting list: got %v", err)
	}
}

func TestShareJobs_DoesNotRegressLaterStatus(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	match := seedMatch(m, "m1", js, emp)
	match.Status = string(matching.StatusInterviewScheduled)
	s, _ := newJobService(m)

	got, err := s.ShareJobs(context.Background(), emp, "m1", []string{"p1"})
	if err != nil {
		t.Fatalf("share jobs failed: %v", err)
	}
	if got.Status != string(matching.StatusInterviewScheduled) {
		t.Errorf("status = %s, sharing must not move it backward", got.Status)
	}
}

func TestExpressJobInterest_EscalatesToMatch(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	s, pub := newJobService(m)

	res, err := s.ExpressJobInterest(context.Background(), js, "p1", true)
	if err != nil {
		t.Fatalf("express interest failed: %v", err)
	}
	if res.Warning != "" {
		t.Fatalf("unexpected warning %q", res.Warning)
	}
	if res.Match == nil {
		t.Fatal("expected an escalated match")
	}
	if res.Match.Status != string(matching.StatusJobInterested) {
		t.Errorf("status = %s, want job_interested", res.Match.Status)
	}
	if !res.Match.SchedulingEnabled || !res.SchedulingEnabled {
		t.Error("scheduling should be enabled after escalation")
	}
	if res.Match.JobPostingID != "p1" {
		t.Errorf("job_posting_id = %s, want p1", res.Match.JobPostingID)
	}

	// Both directions must hold a synthesized positive swipe.
	for _, by := range []domain.Role{domain.RoleJobseeker, domain.RoleEmployer} {
		sw, ok := m.swipes[swipeKey(js, emp, by)]
		if !ok || !sw.Interested {
			t.Errorf("missing synthesized %s swipe", by)
		}
	}
	if len(pub.events) != 1 || pub.events[0].Type != "match_created" || pub.events[0].Source != "job_interest" {
		t.Fatalf("expected one job_interest match_created event, got %+v", pub.events)
	}
}

func TestExpressJobInterest_KeepsExistingSwipeDecision(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	// The jobseeker already swiped positively on the profile itself.
	m.swipes[swipeKey(js, emp, domain.RoleJobseeker)] = &domain.Swipe{
		ID: "sw1", JobseekerID: js, EmployerID: emp, Interested: true, SwipedBy: domain.RoleJobseeker,
	}
	s, _ := newJobService(m)

	res, err := s.ExpressJobInterest(context.Background(), js, "p1", true)
	if err != nil {
		t.Fatalf("express interest failed: %v", err)
	}
	if res.Match == nil {
		t.Fatal("expected an escalated match")
	}
	if m.swipes[swipeKey(js, emp, domain.RoleJobseeker)].ID != "sw1" {
		t.Error("existing swipe must not be overwritten")
	}
	if _, ok := m.swipes[swipeKey(js, emp, domain.RoleEmployer)]; !ok {
		t.Error("missing employer direction should still be synthesized")
	}
}

func TestExpressJobInterest_AdvancesExistingMatch(t *testing.T) {
	m := newMemStores()
	js, emp := seedPair(m)
	m.addPosting("p1", "c1")
	seedMatch(m, "m1", js, emp)
	s, pub := newJobService(m)

	res, err := s.ExpressJobInterest(context.Background(), js, "p1", true)
	if err != nil {
		t.Fatalf("express interest failed: %v", err)
	}
	if res.Match.ID != "m1" {
		t.Errorf("match id = %s, want the existing m1", res.Match.ID)
	}
	if res.Match.Status != string(matching.StatusJobInterested) {
		t.Errorf("status = %s, want job_interested", res.Match.Status)
	}
	if len(pub.events) != 1 || pub.events[0].Type != "status_changed" {
		t.Fatalf("expected one status_changed event, got %+v", pub.events)
	}
}

func TestExpressJobInterest_Idempotent(t *testing.T) {
	m := newMemStores()
	js, _ := seedPair(m)
	m.addPosting("p1", "c1")
	s, _ := newJobService(m)

	first, err := s.ExpressJobInterest(context.Background(), js, "p1", true)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := s.ExpressJobInterest(context.Background(), js, "p1", false)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	// The first decision is authoritative.
	if !second.Interest.Interested {
		t.Error("stored interest flipped on replay")
	}
	if second.Match == nil || second.Match.ID != first.Match.ID {
		t.Errorf("replay should land on the same match, got %+v", second.Match)
	}
	if len(m.matches) != 1 {
		t.Errorf("match rows = %d, want 1", len(m.matches))
	}
}

func TestExpressJobInterest_NotInterestedRecordsOnly(t *testing.T) {
	m := newMemStores()
	js, _ := seedPair(m)
	m.addPosting("p1", "c1")
	s, pub := newJobService(m)

	res, err := s.ExpressJobInterest(context.Background(), js, "p1", false)
	if err != nil {
		t.Fatalf("express interest failed: %v", err)
	}
	if res.Interest == nil || res.Interest.Interested {
		t.Fatalf("expected a stored negative interest, got %+v", res.Interest)
	}
	if res.Match != nil {
		t.Errorf("declined interest must not create a match, got %+v", res.Match)
	}
	if len(m.swipes) != 0 || len(pub.events) != 0 {
		t.Error("declined interest must not synthesize swipes or publish events")
	}
}

func TestExpressJobInterest_NoEmployerWarns(t *testing.T) {
	m := newMemStores()
	m.addCompany("c2", nil)
	m.addJobseeker("js1", nil)
	m.addPosting("p1", "c2")
	s, _ := newJobService(m)

	res, err := s.ExpressJobInterest(context.Background(), "js1", "p1", true)
	if err != nil {
		t.Fatalf("express interest should tolerate a missing employer: %v", err)
	}
	if res.Warning != WarningNoEmployer {
		t.Errorf("warning = %q, want %q", res.Warning, WarningNoEmployer)
	}
	if res.Interest == nil || !res.Interest.Interested {
		t.Error("the interest itself must still be recorded")
	}
	if res.Match != nil {
		t.Errorf("no match should exist without an employer, got %+v", res.Match)
	}
}

func TestExpressJobInterest_RejectsNonJobseeker(t *testing.T) {
	m := newMemStores()
	_, emp := seedPair(m)
	m.addPosting("p1", "c1")
	s, _ := newJobService(m)

	if _, err := s.ExpressJobInterest(context.Background(), emp, "p1", true); !errors.Is(err, domain.ErrInvalidParty) {
		t.Fatalf("expected invalid party, got %v", err)
	}
}

func TestExpressJobInterest_UnknownPosting(t *testing.T) {
	m := newMemStores()
	js, _ := seedPair(m)
	s, _ := newJobService(m)

	if _, err := s.ExpressJobInterest(context.Background(), js, "ghost", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
