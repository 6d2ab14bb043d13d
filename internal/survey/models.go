package survey

import "github.com/mind-engage/bizassess/internal/scoring"

type Theme struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OrderIndex  int        `json:"orderIndex"`
	Weight      float64    `json:"weight"`
	Questions   []Question `json:"questions,omitempty"`
}

type Question struct {
	ID            string `json:"id"`
	ThemeID       string `json:"themeId"`
	Text          string `json:"text"`
	HelpText      string `json:"helpText,omitempty"`
	OrderIndex    int    `json:"orderIndex"`
	ReverseScored bool   `json:"reverseScored"`
}

// EngineInputs projects catalog rows onto the scoring engine's input types.
func EngineInputs(themes []Theme, questions []Question) ([]scoring.Question, []scoring.Theme) {
	qs := make([]scoring.Question, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, scoring.Question{ID: q.ID, ThemeID: q.ThemeID, ReverseScored: q.ReverseScored})
	}
	ts := make([]scoring.Theme, 0, len(themes))
	for _, t := range themes {
		ts = append(ts, scoring.Theme{ID: t.ID, Weight: t.Weight})
	}
	return qs, ts
}
