package matching_test

import (
	"math"
	"testing"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/internal/matching"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_NoPreferencesIsNeutral(t *testing.T) {
	got := matching.Score(nil, map[string]float64{"schedule": 90})
	if got != 0.5 {
		t.Errorf("Score with no preferences = %v, want 0.5", got)
	}
}

func TestScore_SidePreferences(t *testing.T) {
	cases := []struct {
		name  string
		side  string
		value float64
		want  float64
	}{
		{"right rewards high", "right", 80, 0.8},
		{"right punishes low", "right", 20, 0.2},
		{"left rewards low", "left", 20, 0.8},
		{"left punishes high", "left", 80, 0.2},
		{"no side rewards center", "", 50, 1.0},
		{"no side punishes extremes", "", 100, 0.0},
		{"no side halfway", "", 75, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prefs := []domain.SliderPreference{{SliderID: "s", Side: c.side}}
			got := matching.Score(prefs, map[string]float64{"s": c.value})
			if !almostEqual(got, c.want) {
				t.Errorf("Score(side=%q, value=%v) = %v, want %v", c.side, c.value, got, c.want)
			}
		})
	}
}

func TestScore_MissingSliderDefaultsToCenter(t *testing.T) {
	prefs := []domain.SliderPreference{{SliderID: "pace", Side: "right"}}
	got := matching.Score(prefs, map[string]float64{})
	if !almostEqual(got, 0.5) {
		t.Errorf("Score with missing slider = %v, want 0.5", got)
	}
}

func TestScore_MeanOverPreferredSliders(t *testing.T) {
	prefs := []domain.SliderPreference{
		{SliderID: "a", Side: "right"}, // 0.9
		{SliderID: "b", Side: "left"},  // 0.7
	}
	values := map[string]float64{"a": 90, "b": 30}
	got := matching.Score(prefs, values)
	if !almostEqual(got, 0.8) {
		t.Errorf("Score = %v, want 0.8", got)
	}
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	prefs := []domain.SliderPreference{
		{SliderID: "a", Side: "left"},
		{SliderID: "b", Side: "right"},
		{SliderID: "c"},
	}
	// Includes out-of-range values, which must be clamped rather than
	// pushing the score outside [0,1].
	for _, values := range []map[string]float64{
		{"a": 0, "b": 0, "c": 0},
		{"a": 100, "b": 100, "c": 100},
		{"a": -20, "b": 140, "c": 200},
		{},
	} {
		got := matching.Score(prefs, values)
		if got < 0 || got > 1 {
			t.Errorf("Score(%v) = %v, out of [0,1]", values, got)
		}
	}
}

func TestScore_HigherValueRanksFirstOnRightPreference(t *testing.T) {
	prefs := []domain.SliderPreference{{SliderID: "schedule", Side: "right"}}
	a := matching.Score(prefs, map[string]float64{"schedule": 80})
	b := matching.Score(prefs, map[string]float64{"schedule": 60})
	if a <= b {
		t.Errorf("candidate with slider 80 (%v) should outrank 60 (%v)", a, b)
	}
}
