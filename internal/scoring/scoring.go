// Package scoring turns raw survey responses into theme and composite scores.
//
// Everything here is a pure function of its arguments: no package state, no I/O.
// Callers load questions, themes and responses, call Aggregate, and persist or render
// the Result.
package scoring

import "math"

// Likert bounds of the survey scale.
const (
	MinScore = 1
	MaxScore = 5
)

const defaultWeight = 1.0

// Question is the engine's view of a survey question.
type Question struct {
	ID            string `json:"id"`
	ThemeID       string `json:"themeId"`
	ReverseScored bool   `json:"reverseScored"`
}

// Theme is the engine's view of a question group. A zero Weight means "not set".
type Theme struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight,omitempty"`
}

// Response is one raw answer on the 1..5 scale.
type Response struct {
	QuestionID string `json:"questionId"`
	Score      int    `json:"score"`
}

// ThemeScore is emitted once per theme that received at least one response.
// MeanScore and Percentage are rounded to 2 decimals; PerformanceBand is classified
// from the unrounded mean.
type ThemeScore struct {
	ThemeID         string  `json:"themeId"`
	MeanScore       float64 `json:"meanScore"`
	Percentage      float64 `json:"percentage"`
	PerformanceBand Band    `json:"performanceBand"`
}

// Summary is the weighted composite over all scored themes. Nil fields mean nothing
// was scored.
type Summary struct {
	CompositeMean       *float64 `json:"compositeMean"`
	CompositePercentage *float64 `json:"compositePercentage"`
	PerformanceBand     Band     `json:"performanceBand"`
}

// Scored reports whether the summary carries a composite score.
func (s Summary) Scored() bool { return s.CompositeMean != nil }

// Result is the full output of Aggregate.
type Result struct {
	ThemeScores []ThemeScore `json:"themeScores"`
	Summary     Summary      `json:"summary"`
}

// Mean returns the arithmetic mean of scores. ok is false for an empty slice.
func Mean(scores []float64) (mean float64, ok bool) {
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), true
}

// PercentageOf maps a mean on the 1..5 scale linearly onto 0..100.
func PercentageOf(mean float64) float64 {
	return (mean - MinScore) / (MaxScore - MinScore) * 100
}

// Percentage is PercentageOf with absence propagated.
func Percentage(mean float64, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	return PercentageOf(mean), true
}

// EffectiveScore applies reverse scoring (s -> 6-s) when reverse is set.
func EffectiveScore(raw int, reverse bool) float64 {
	if reverse {
		return float64(MaxScore + MinScore - raw)
	}
	return float64(raw)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate scores one assessment.
//
// Responses for unknown questions are skipped. Themes without responses are not
// emitted. A theme missing from themes, or with a non-positive weight, weighs 1.0.
// Theme scores are emitted in the order their theme was first seen in responses.
func Aggregate(responses []Response, questions []Question, themes []Theme) Result {
	questionByID := make(map[string]Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}
	weightByTheme := make(map[string]float64, len(themes))
	for _, t := range themes {
		weightByTheme[t.ID] = t.Weight
	}

	var order []string
	scoresByTheme := map[string][]float64{}
	for _, r := range responses {
		q, ok := questionByID[r.QuestionID]
		if !ok {
			continue
		}
		if _, seen := scoresByTheme[q.ThemeID]; !seen {
			order = append(order, q.ThemeID)
		}
		scoresByTheme[q.ThemeID] = append(scoresByTheme[q.ThemeID], EffectiveScore(r.Score, q.ReverseScored))
	}

	res := Result{ThemeScores: make([]ThemeScore, 0, len(order))}
	var weightedSum, totalWeight float64
	for _, themeID := range order {
		mean, ok := Mean(scoresByTheme[themeID])
		if !ok {
			continue
		}
		weight := themeWeight(weightByTheme, themeID)
		weightedSum += mean * weight
		totalWeight += weight

		res.ThemeScores = append(res.ThemeScores, ThemeScore{
			ThemeID:         themeID,
			MeanScore:       Round2(mean),
			Percentage:      Round2(PercentageOf(mean)),
			PerformanceBand: Classify(mean, true),
		})
	}

	if totalWeight > 0 {
		composite := weightedSum / totalWeight
		mean := Round2(composite)
		pct := Round2(PercentageOf(composite))
		res.Summary = Summary{
			CompositeMean:       &mean,
			CompositePercentage: &pct,
			PerformanceBand:     Classify(composite, true),
		}
	}
	return res
}

func themeWeight(weights map[string]float64, themeID string) float64 {
	w, ok := weights[themeID]
	if !ok || w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return defaultWeight
	}
	return w
}
