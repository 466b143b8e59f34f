package matching

import "github.com/yourorg/talentmatch/internal/domain"

const (
	// defaultSliderValue is assumed when a candidate has no value recorded
	// for a preferred slider.
	defaultSliderValue = 50
	// neutralScore is returned when the requester has no slider preferences.
	neutralScore = 0.5
)

// Score computes how well a candidate's slider values fit a company's
// slider preferences. The result is always in [0,1]: the mean of per-slider
// scores over the preferred sliders, or exactly 0.5 when no preferences
// exist.
func Score(prefs []domain.SliderPreference, sliderValues map[string]float64) float64 {
	if len(prefs) == 0 {
		return neutralScore
	}

	var sum float64
	for _, pref := range prefs {
		value, ok := sliderValues[pref.SliderID]
		if !ok {
			value = defaultSliderValue
		}
		sum += sliderScore(pref.Side, clamp(value))
	}
	return sum / float64(len(prefs))
}

// sliderScore scores a single 0-100 slider value against a side preference:
// "left" rewards low values, "right" rewards high values, and no side
// preference rewards values near the center of the scale.
func sliderScore(side string, value float64) float64 {
	switch side {
	case "left":
		return 1 - value/100
	case "right":
		return value / 100
	default:
		return 1 - abs(value-50)/50
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
