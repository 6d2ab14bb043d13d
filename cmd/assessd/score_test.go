package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/bizassess/internal/scoring"
)

const sampleInput = `{
  "themes": [
    {"id": "fin", "name": "Finance", "weight": 1},
    {"id": "team", "name": "Team", "weight": 2}
  ],
  "questions": [
    {"id": "q1", "themeId": "fin"},
    {"id": "q2", "themeId": "fin", "reverseScored": true},
    {"id": "q3", "themeId": "team"}
  ],
  "responses": [
    {"questionId": "q1", "score": 4},
    {"questionId": "q2", "score": 1},
    {"questionId": "q3", "score": 3}
  ]
}`

func writeInput(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(p, []byte(sampleInput), 0o644))
	return p
}

func runScore(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newScoreCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestScoreJSON(t *testing.T) {
	out := runScore(t, writeInput(t), "--json")
	var res scoring.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Summary.CompositeMean)
	assert.InDelta(t, 3.5, *res.Summary.CompositeMean, 1e-9)
	assert.Equal(t, scoring.BandModerate, res.Summary.PerformanceBand)
	require.Len(t, res.ThemeScores, 2)
}

func TestScoreTable(t *testing.T) {
	out := runScore(t, writeInput(t))
	for _, want := range []string{"Finance", "4.50/5", "87.5%", "Strong", "Team", "Below Average", "Composite: 3.50/5 (62.5%)"} {
		assert.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
	}
}

func TestScoreMissingFile(t *testing.T) {
	cmd := newScoreCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.json")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	var ee *exitErr
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.code)
}
