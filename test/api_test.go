package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/yourorg/talentmatch/internal/domain"
)

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func seedPair(h *TestServerHelper) {
	h.AddCompany("c1", nil)
	h.AddJobseeker("js1", nil)
	h.AddEmployer("emp1", "c1")
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h := NewTestServer(t)

	resp := doJSON(t, http.MethodGet, h.URL()+"/api/matches", "", nil)
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	resp = doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", "", map[string]any{"employerId": "x", "interested": true})
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestHealthEndpointIsPublic(t *testing.T) {
	h := NewTestServer(t)

	resp := doJSON(t, http.MethodGet, h.URL()+"/healthz", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)
}

func TestMutualSwipeCreatesMatch(t *testing.T) {
	h := NewTestServer(t)
	seedPair(h)
	jsToken := h.Token(t, "js1", "jobseeker")
	empToken := h.Token(t, "emp1", "employer")

	resp := doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", jsToken,
		map[string]any{"employerId": "emp1", "interested": true})
	AssertStatusCode(t, resp, http.StatusCreated)
	var first struct {
		IsMutualMatch bool `json:"isMutualMatch"`
	}
	decode(t, resp, &first)
	if first.IsMutualMatch {
		t.Error("one-sided interest must not be a match")
	}

	resp = doJSON(t, http.MethodPost, h.URL()+"/api/swipe/employer", empToken,
		map[string]any{"jobseekerId": "js1", "interested": true})
	AssertStatusCode(t, resp, http.StatusCreated)
	var second struct {
		IsMutualMatch bool `json:"isMutualMatch"`
		Match         *struct {
			ID               string `json:"id"`
			Status           string `json:"status"`
			MessagingEnabled bool   `json:"messagingEnabled"`
		} `json:"match"`
	}
	decode(t, resp, &second)
	if !second.IsMutualMatch || second.Match == nil {
		t.Fatalf("expected mutual match, got %+v", second)
	}
	if second.Match.Status != "new" || !second.Match.MessagingEnabled {
		t.Errorf("unexpected match state: %+v", second.Match)
	}
}

func TestDuplicateSwipeConflicts(t *testing.T) {
	h := NewTestServer(t)
	seedPair(h)
	jsToken := h.Token(t, "js1", "jobseeker")

	body := map[string]any{"employerId": "emp1", "interested": true}
	resp := doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", jsToken, body)
	AssertStatusCode(t, resp, http.StatusCreated)

	resp = doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", jsToken,
		map[string]any{"employerId": "emp1", "interested": false})
	AssertStatusCode(t, resp, http.StatusConflict)
}

func TestSwipeOnSameRoleUnprocessable(t *testing.T) {
	h := NewTestServer(t)
	seedPair(h)
	h.AddJobseeker("js2", nil)
	jsToken := h.Token(t, "js1", "jobseeker")

	resp := doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", jsToken,
		map[string]any{"employerId": "js2", "interested": true})
	AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
}

func TestSwipeEndpointsAreRoleBound(t *testing.T) {
	h := NewTestServer(t)
	seedPair(h)
	empToken := h.Token(t, "emp1", "employer")

	// An employer token cannot use the jobseeker swipe endpoint.
	resp := doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", empToken,
		map[string]any{"employerId": "emp1", "interested": true})
	AssertStatusCode(t, resp, http.StatusForbidden)
}

func TestFeedExcludesRejectedPairs(t *testing.T) {
	h := NewTestServer(t)
	h.AddCompany("c1", nil)
	h.AddEmployer("emp1", "c1")
	h.AddEmployer("emp2", "c1")
	h.AddJobseeker("js1", nil)
	jsToken := h.Token(t, "js1", "jobseeker")

	resp := doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", jsToken,
		map[string]any{"employerId": "emp1", "interested": false})
	AssertStatusCode(t, resp, http.StatusCreated)

	resp = doJSON(t, http.MethodGet, h.URL()+"/api/matches/feed", jsToken, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var page struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decode(t, resp, &page)
	if len(page.Data) != 1 || page.Data[0].ID != "emp2" {
		t.Fatalf("expected only emp2 in feed, got %+v", page.Data)
	}
	if page.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1", page.Pagination.Total)
	}
}

func TestRankedFeedOrdersByPreferenceFit(t *testing.T) {
	h := NewTestServer(t)
	h.AddCompany("c1", []domain.SliderPreference{{SliderID: "pace", Side: "right"}})
	h.AddEmployer("emp1", "c1")
	h.AddJobseeker("js1", map[string]float64{"pace": 30})
	h.AddJobseeker("js2", map[string]float64{"pace": 90})
	empToken := h.Token(t, "emp1", "employer")

	resp := doJSON(t, http.MethodGet, h.URL()+"/api/matches/feed?sortBy=match", empToken, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var page struct {
		Data []struct {
			ID         string   `json:"id"`
			MatchScore *float64 `json:"matchScore"`
		} `json:"data"`
	}
	decode(t, resp, &page)
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(page.Data))
	}
	if page.Data[0].ID != "js2" {
		t.Errorf("highest fit should rank first, got %s", page.Data[0].ID)
	}
	if page.Data[0].MatchScore == nil || *page.Data[0].MatchScore != 0.9 {
		t.Errorf("top score = %v, want 0.9", page.Data[0].MatchScore)
	}
}

func TestShareJobsInterestScheduleFlow(t *testing.T) {
	h := NewTestServer(t)
	seedPair(h)
	h.AddPosting("p1", "c1")
	h.AddPosting("p2", "c1")
	jsToken := h.Token(t, "js1", "jobseeker")
	empToken := h.Token(t, "emp1", "employer")

	// Establish a match via mutual swipes.
	doJSON(t, http.MethodPost, h.URL()+"/api/swipe/jobseeker", jsToken,
		map[string]any{"employerId": "emp1", "interested": true})
	resp := doJSON(t, http.MethodPost, h.URL()+"/api/swipe/employer", empToken,
		map[string]any{"jobseekerId": "js1", "interested": true})
	var swiped struct {
		Match struct {
			ID string `json:"id"`
		} `json:"match"`
	}
	decode(t, resp, &swiped)
	matchID := swiped.Match.ID
	if matchID == "" {
		t.Fatal("expected a match id")
	}

	// Unknown posting fails the whole share.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/matches/%s/share-jobs", h.URL(), matchID), empToken,
		map[string]any{"jobPostingIds": []string{"p1", "ghost"}})
	AssertStatusCode(t, resp, http.StatusNotFound)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/matches/%s/share-jobs", h.URL(), matchID), empToken,
		map[string]any{"jobPostingIds": []string{"p1", "p2"}})
	AssertStatusCode(t, resp, http.StatusOK)
	var shared struct {
		Status     string   `json:"status"`
		JobsShared []string `json:"jobsShared"`
	}
	decode(t, resp, &shared)
	if shared.Status != "jobs_shared" || len(shared.JobsShared) != 2 {
		t.Fatalf("unexpected share result: %+v", shared)
	}

	// Jobseeker expresses interest, escalating the match.
	resp = doJSON(t, http.MethodPost, h.URL()+"/api/jobs/p1/interest", jsToken,
		map[string]any{"interested": true})
	AssertStatusCode(t, resp, http.StatusCreated)
	var interest struct {
		SchedulingEnabled bool `json:"schedulingEnabled"`
		Match             struct {
			Status string `json:"status"`
		} `json:"match"`
	}
	decode(t, resp, &interest)
	if !interest.SchedulingEnabled || interest.Match.Status != "job_interested" {
		t.Fatalf("unexpected escalation result: %+v", interest)
	}

	// Past-dated interviews are rejected.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/matches/%s/schedule", h.URL(), matchID), empToken,
		map[string]any{"scheduledAt": time.Now().Add(-time.Hour)})
	AssertStatusCode(t, resp, http.StatusBadRequest)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/matches/%s/schedule", h.URL(), matchID), empToken,
		map[string]any{"scheduledAt": time.Now().Add(48 * time.Hour)})
	AssertStatusCode(t, resp, http.StatusOK)
	var scheduled struct {
		Status          string `json:"status"`
		InterviewStatus string `json:"interviewStatus"`
	}
	decode(t, resp, &scheduled)
	if scheduled.Status != "interview_scheduled" || scheduled.InterviewStatus != "scheduled" {
		t.Fatalf("unexpected schedule result: %+v", scheduled)
	}

	// Both parties see the match in their lists.
	resp = doJSON(t, http.MethodGet, h.URL()+"/api/matches", jsToken, nil)
	AssertStatusCode(t, resp, http.StatusOK)
	var list struct {
		Matches []struct {
			ID string `json:"id"`
		} `json:"matches"`
	}
	decode(t, resp, &list)
	if len(list.Matches) != 1 || list.Matches[0].ID != matchID {
		t.Fatalf("unexpected match list: %+v", list.Matches)
	}
}

func TestJobInterestWithoutEmployerWarns(t *testing.T) {
	h := NewTestServer(t)
	h.AddCompany("c2", nil)
	h.AddJobseeker("js1", nil)
	h.AddPosting("p9", "c2")
	jsToken := h.Token(t, "js1", "jobseeker")

	resp := doJSON(t, http.MethodPost, h.URL()+"/api/jobs/p9/interest", jsToken,
		map[string]any{"interested": true})
	AssertStatusCode(t, resp, http.StatusCreated)
	var result struct {
		Warning string `json:"warning"`
		Match   *struct{}
	}
	decode(t, resp, &result)
	if result.Warning == "" {
		t.Error("expected a warning for a posting without an employer")
	}
}
