package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{5, 5, 5}, 5},
		{[]float64{1, 1, 1}, 1},
		{[]float64{1, 3, 5}, 3},
		{[]float64{2, 4, 3, 5, 1}, 3},
	}
	for _, c := range cases {
		got, ok := Mean(c.in)
		require.True(t, ok)
		assert.Equal(t, c.want, got, "Mean(%v)", c.in)
	}

	_, ok := Mean(nil)
	assert.False(t, ok)
	_, ok = Mean([]float64{})
	assert.False(t, ok)
}

func TestMeanStaysOnScale(t *testing.T) {
	inputs := [][]float64{
		{1}, {5}, {1, 5}, {2, 2, 3}, {4, 5, 5, 5, 1, 1}, {3, 3, 3, 3, 3, 3, 3},
	}
	for _, in := range inputs {
		m, ok := Mean(in)
		require.True(t, ok)
		assert.GreaterOrEqual(t, m, float64(MinScore))
		assert.LessOrEqual(t, m, float64(MaxScore))
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, PercentageOf(1))
	assert.Equal(t, 50.0, PercentageOf(3))
	assert.Equal(t, 100.0, PercentageOf(5))
	assert.Equal(t, 37.5, PercentageOf(2.5))

	for _, m := range []float64{1, 1.25, 2, 3.3, 4.75, 5} {
		assert.InDelta(t, 25*(m-1), PercentageOf(m), 1e-9)
	}

	_, ok := Percentage(0, false)
	assert.False(t, ok)
	p, ok := Percentage(3, true)
	assert.True(t, ok)
	assert.Equal(t, 50.0, p)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		mean float64
		want Band
	}{
		{1.0, BandNeedsImprovement},
		{1.5, BandNeedsImprovement},
		{2.0, BandNeedsImprovement},
		{2.01, BandBelowAverage},
		{2.5, BandBelowAverage},
		{3.0, BandBelowAverage},
		{3.5, BandModerate},
		{4.0, BandModerate},
		{4.01, BandStrong},
		{4.5, BandStrong},
		{5.0, BandStrong},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.mean, true), "Classify(%v)", c.mean)
	}
	assert.Equal(t, BandNone, Classify(0, false))
}

func TestEffectiveScoreIsInvolution(t *testing.T) {
	for raw := MinScore; raw <= MaxScore; raw++ {
		once := EffectiveScore(raw, true)
		twice := EffectiveScore(int(once), true)
		assert.Equal(t, float64(raw), twice)
		assert.Equal(t, float64(raw), EffectiveScore(raw, false))
	}
	assert.Equal(t, 1.0, EffectiveScore(5, true))
	assert.Equal(t, 5.0, EffectiveScore(1, true))
}

func singleTheme(n int, raw int) ([]Response, []Question, []Theme) {
	var rs []Response
	var qs []Question
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		qs = append(qs, Question{ID: id, ThemeID: "t1"})
		rs = append(rs, Response{QuestionID: id, Score: raw})
	}
	return rs, qs, []Theme{{ID: "t1", Weight: 1}}
}

func TestAggregateAllMaximum(t *testing.T) {
	res := Aggregate(singleTheme(3, 5))

	require.Len(t, res.ThemeScores, 1)
	assert.Equal(t, 5.0, res.ThemeScores[0].MeanScore)
	assert.Equal(t, 100.0, res.ThemeScores[0].Percentage)
	require.True(t, res.Summary.Scored())
	assert.Equal(t, 5.0, *res.Summary.CompositeMean)
	assert.Equal(t, 100.0, *res.Summary.CompositePercentage)
	assert.Equal(t, BandStrong, res.Summary.PerformanceBand)
}

func TestAggregateAllMinimum(t *testing.T) {
	res := Aggregate(singleTheme(3, 1))

	require.Len(t, res.ThemeScores, 1)
	assert.Equal(t, 1.0, res.ThemeScores[0].MeanScore)
	assert.Equal(t, 0.0, res.ThemeScores[0].Percentage)
	assert.Equal(t, BandNeedsImprovement, res.ThemeScores[0].PerformanceBand)
	assert.Equal(t, 1.0, *res.Summary.CompositeMean)
	assert.Equal(t, 0.0, *res.Summary.CompositePercentage)
	assert.Equal(t, BandNeedsImprovement, res.Summary.PerformanceBand)
}

func TestAggregateReverseScored(t *testing.T) {
	res := Aggregate(
		[]Response{{QuestionID: "q1", Score: 5}, {QuestionID: "q2", Score: 1}},
		[]Question{{ID: "q1", ThemeID: "t1", ReverseScored: true}, {ID: "q2", ThemeID: "t1"}},
		[]Theme{{ID: "t1", Weight: 1}},
	)
	require.Len(t, res.ThemeScores, 1)
	assert.Equal(t, 1.0, res.ThemeScores[0].MeanScore)
}

func TestAggregateEqualWeights(t *testing.T) {
	res := Aggregate(
		[]Response{{QuestionID: "q1", Score: 3}, {QuestionID: "q2", Score: 5}},
		[]Question{{ID: "q1", ThemeID: "t1"}, {ID: "q2", ThemeID: "t2"}},
		[]Theme{{ID: "t1", Weight: 1}, {ID: "t2", Weight: 1}},
	)
	require.Len(t, res.ThemeScores, 2)
	assert.Equal(t, 4.0, *res.Summary.CompositeMean)
	assert.Equal(t, 75.0, *res.Summary.CompositePercentage)
	assert.Equal(t, BandModerate, res.Summary.PerformanceBand)
}

func TestAggregateWeighted(t *testing.T) {
	res := Aggregate(
		[]Response{{QuestionID: "q1", Score: 3}, {QuestionID: "q2", Score: 5}},
		[]Question{{ID: "q1", ThemeID: "t1"}, {ID: "q2", ThemeID: "t2"}},
		[]Theme{{ID: "t1", Weight: 1}, {ID: "t2", Weight: 2}},
	)
	assert.Equal(t, 4.33, *res.Summary.CompositeMean)
	// 13/3 = 4.333.. -> 83.33%
	assert.Equal(t, 83.33, *res.Summary.CompositePercentage)
	assert.Equal(t, BandStrong, res.Summary.PerformanceBand)
}

func TestAggregateMissingWeightDefaultsToOne(t *testing.T) {
	withWeights := Aggregate(
		[]Response{{QuestionID: "q1", Score: 2}, {QuestionID: "q2", Score: 4}},
		[]Question{{ID: "q1", ThemeID: "t1"}, {ID: "q2", ThemeID: "t2"}},
		[]Theme{{ID: "t1", Weight: 1}, {ID: "t2", Weight: 1}},
	)
	// t1 has no weight and t2 is missing from the theme table.
	without := Aggregate(
		[]Response{{QuestionID: "q1", Score: 2}, {QuestionID: "q2", Score: 4}},
		[]Question{{ID: "q1", ThemeID: "t1"}, {ID: "q2", ThemeID: "t2"}},
		[]Theme{{ID: "t1"}},
	)
	assert.Equal(t, withWeights, without)
	assert.Equal(t, 3.0, *without.Summary.CompositeMean)
}

func TestAggregateIgnoresUnknownQuestion(t *testing.T) {
	questions := []Question{{ID: "q1", ThemeID: "t1"}, {ID: "q2", ThemeID: "t2"}}
	themes := []Theme{{ID: "t1", Weight: 1}, {ID: "t2", Weight: 3}}
	base := []Response{{QuestionID: "q1", Score: 2}, {QuestionID: "q2", Score: 4}}
	extra := append([]Response{{QuestionID: "ghost", Score: 5}}, base...)

	assert.Equal(t, Aggregate(base, questions, themes), Aggregate(extra, questions, themes))
}

func TestAggregateSkipsThemesWithoutResponses(t *testing.T) {
	res := Aggregate(
		[]Response{{QuestionID: "q1", Score: 4}},
		[]Question{{ID: "q1", ThemeID: "t1"}, {ID: "q2", ThemeID: "t2"}},
		[]Theme{{ID: "t1", Weight: 1}, {ID: "t2", Weight: 5}},
	)
	require.Len(t, res.ThemeScores, 1)
	assert.Equal(t, "t1", res.ThemeScores[0].ThemeID)
	for _, ts := range res.ThemeScores {
		assert.NotEqual(t, "t2", ts.ThemeID)
	}
	// t2's weight must not dilute the composite.
	assert.Equal(t, 4.0, *res.Summary.CompositeMean)
}

func TestAggregateNothingScored(t *testing.T) {
	res := Aggregate(
		[]Response{{QuestionID: "ghost", Score: 3}},
		[]Question{{ID: "q1", ThemeID: "t1"}},
		[]Theme{{ID: "t1", Weight: 1}},
	)
	assert.Empty(t, res.ThemeScores)
	assert.False(t, res.Summary.Scored())
	assert.Nil(t, res.Summary.CompositePercentage)
	assert.Equal(t, BandNone, res.Summary.PerformanceBand)

	raw, err := json.Marshal(res.Summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"compositeMean":null,"compositePercentage":null,"performanceBand":null}`, string(raw))
}

func TestAggregateRoundsOnlyAtEmission(t *testing.T) {
	// t1 mean = 10/3 = 3.333.. (weight 1), t2 mean = 7/3 = 2.333.. (weight 2)
	res := Aggregate(
		[]Response{
			{QuestionID: "a", Score: 4}, {QuestionID: "b", Score: 4}, {QuestionID: "c", Score: 2},
			{QuestionID: "d", Score: 3}, {QuestionID: "e", Score: 2}, {QuestionID: "f", Score: 2},
		},
		[]Question{
			{ID: "a", ThemeID: "t1"}, {ID: "b", ThemeID: "t1"}, {ID: "c", ThemeID: "t1"},
			{ID: "d", ThemeID: "t2"}, {ID: "e", ThemeID: "t2"}, {ID: "f", ThemeID: "t2"},
		},
		[]Theme{{ID: "t1", Weight: 1}, {ID: "t2", Weight: 2}},
	)
	require.Len(t, res.ThemeScores, 2)
	assert.Equal(t, 3.33, res.ThemeScores[0].MeanScore)
	assert.Equal(t, 58.33, res.ThemeScores[0].Percentage)
	assert.Equal(t, 2.33, res.ThemeScores[1].MeanScore)
	assert.Equal(t, 33.33, res.ThemeScores[1].Percentage)
	// (10/3 + 2*7/3) / 3 = 2.666.. ; from rounded means it would be 7.99/3 = 2.663..
	assert.Equal(t, 2.67, *res.Summary.CompositeMean)
	assert.Equal(t, 41.67, *res.Summary.CompositePercentage)
}

func TestAggregateBandUsesUnroundedComposite(t *testing.T) {
	// Composite 2.004 rounds to 2.00 for display but classifies as below_average.
	questions := make([]Question, 0, 250)
	responses := make([]Response, 0, 250)
	for i := 0; i < 250; i++ {
		id := string(rune(0x4e00 + i))
		questions = append(questions, Question{ID: id, ThemeID: "t1"})
		score := 2
		if i == 0 {
			score = 3
		}
		responses = append(responses, Response{QuestionID: id, Score: score})
	}
	res := Aggregate(responses, questions, []Theme{{ID: "t1", Weight: 1}})
	assert.Equal(t, 2.0, *res.Summary.CompositeMean)
	assert.Equal(t, BandBelowAverage, res.Summary.PerformanceBand)
	assert.Equal(t, BandBelowAverage, res.ThemeScores[0].PerformanceBand)
}

func TestAggregateIsIdempotent(t *testing.T) {
	responses := []Response{
		{QuestionID: "q1", Score: 2}, {QuestionID: "q2", Score: 5},
		{QuestionID: "q3", Score: 4}, {QuestionID: "q4", Score: 1},
	}
	questions := []Question{
		{ID: "q1", ThemeID: "t2"}, {ID: "q2", ThemeID: "t1", ReverseScored: true},
		{ID: "q3", ThemeID: "t3"}, {ID: "q4", ThemeID: "t1"},
	}
	themes := []Theme{{ID: "t1", Weight: 2}, {ID: "t2", Weight: 0.5}, {ID: "t3", Weight: 1}}

	first, err := json.Marshal(Aggregate(responses, questions, themes))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(responses, questions, themes))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestBandLabelAndParse(t *testing.T) {
	assert.Equal(t, "Needs Improvement", BandNeedsImprovement.Label())
	assert.Equal(t, "Strong", BandStrong.Label())
	assert.Equal(t, "N/A", BandNone.Label())

	b, err := ParseBand("moderate")
	require.NoError(t, err)
	assert.Equal(t, BandModerate, b)
	_, err = ParseBand("excellent")
	assert.Error(t, err)

	var ts ThemeScore
	require.NoError(t, json.Unmarshal([]byte(`{"themeId":"t","meanScore":3,"percentage":50,"performanceBand":"below_average"}`), &ts))
	assert.Equal(t, BandBelowAverage, ts.PerformanceBand)
}
