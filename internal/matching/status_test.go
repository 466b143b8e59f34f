package matching_test

import (
	"testing"

	"github.com/yourorg/talentmatch/internal/matching"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"new", "jobs_shared", "job_interested", "interview_scheduled", "rejected", "archived", "hired"}
	for _, s := range valid {
		got, err := matching.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"NEW", "matched", ""} {
		if _, err := matching.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestCanAdvance_ForwardChain(t *testing.T) {
	cases := []struct {
		from matching.Status
		to   matching.Status
	}{
		{matching.StatusNew, matching.StatusJobsShared},
		{matching.StatusNew, matching.StatusJobInterested},
		{matching.StatusNew, matching.StatusInterviewScheduled},
		{matching.StatusJobsShared, matching.StatusJobInterested},
		{matching.StatusJobInterested, matching.StatusInterviewScheduled},
	}
	for _, c := range cases {
		if !matching.CanAdvance(c.from, c.to) {
			t.Errorf("CanAdvance(%s -> %s) should be true", c.from, c.to)
		}
	}
}

func TestCanAdvance_NeverBackward(t *testing.T) {
	cases := []struct {
		from matching.Status
		to   matching.Status
	}{
		{matching.StatusJobsShared, matching.StatusNew},
		{matching.StatusJobInterested, matching.StatusJobsShared},
		{matching.StatusInterviewScheduled, matching.StatusNew},
		{matching.StatusNew, matching.StatusNew},
	}
	for _, c := range cases {
		if matching.CanAdvance(c.from, c.to) {
			t.Errorf("CanAdvance(%s -> %s) should be false", c.from, c.to)
		}
	}
}

func TestCanAdvance_TerminalsReachableFromAnyNonTerminal(t *testing.T) {
	nonTerminals := []matching.Status{
		matching.StatusNew,
		matching.StatusJobsShared,
		matching.StatusJobInterested,
		matching.StatusInterviewScheduled,
	}
	terminals := []matching.Status{
		matching.StatusRejected,
		matching.StatusArchived,
		matching.StatusHired,
	}
	for _, from := range nonTerminals {
		for _, to := range terminals {
			if !matching.CanAdvance(from, to) {
				t.Errorf("CanAdvance(%s -> %s) should be true", from, to)
			}
		}
	}
}

func TestCanAdvance_TerminalsHaveNoOutgoing(t *testing.T) {
	all := []matching.Status{
		matching.StatusNew, matching.StatusJobsShared, matching.StatusJobInterested,
		matching.StatusInterviewScheduled, matching.StatusRejected, matching.StatusArchived, matching.StatusHired,
	}
	for _, terminal := range []matching.Status{matching.StatusRejected, matching.StatusArchived, matching.StatusHired} {
		for _, to := range all {
			if matching.CanAdvance(terminal, to) {
				t.Errorf("CanAdvance(%s -> %s) should be false", terminal, to)
			}
		}
	}
}

func TestAdvance_KeepsCurrentOnBackwardTarget(t *testing.T) {
	got, changed := matching.Advance(matching.StatusJobInterested, matching.StatusJobsShared)
	if changed {
		t.Error("Advance backward should report no change")
	}
	if got != matching.StatusJobInterested {
		t.Errorf("Advance backward kept %s, want job_interested", got)
	}
}

func TestAdvance_MovesForward(t *testing.T) {
	got, changed := matching.Advance(matching.StatusNew, matching.StatusJobsShared)
	if !changed {
		t.Error("Advance forward should report a change")
	}
	if got != matching.StatusJobsShared {
		t.Errorf("Advance forward = %s, want jobs_shared", got)
	}
}

func TestIsTerminal(t *testing.T) {
	if matching.IsTerminal(matching.StatusNew) {
		t.Error("IsTerminal(new) should be false")
	}
	if !matching.IsTerminal(matching.StatusHired) {
		t.Error("IsTerminal(hired) should be true")
	}
}
