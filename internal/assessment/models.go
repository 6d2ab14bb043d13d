package assessment

import (
	"time"

	"github.com/mind-engage/bizassess/internal/scoring"
	"github.com/mind-engage/bizassess/internal/survey"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Assessment struct {
	ID                string
	UserID            string
	BusinessProfileID string
	Status            Status
	StartedAt         time.Time
	CompletedAt       *time.Time
	UpdatedAt         time.Time
	Business          BusinessRef
}

type BusinessRef struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// Actor is the authenticated caller.
type Actor struct {
	UserID string
	Role   string
}

type ResponseInput struct {
	QuestionID string  `json:"questionId"`
	Score      int     `json:"score"`
	Comment    *string `json:"comment"`
}

type Response struct {
	QuestionID string    `json:"questionId"`
	Score      int       `json:"score"`
	Comment    *string   `json:"comment"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Created struct {
	ID        string         `json:"id"`
	Status    Status         `json:"status"`
	StartedAt time.Time      `json:"startedAt"`
	Themes    []survey.Theme `json:"themes"`
}

type Detail struct {
	ID              string         `json:"id"`
	Status          Status         `json:"status"`
	StartedAt       time.Time      `json:"startedAt"`
	CompletedAt     *time.Time     `json:"completedAt"`
	BusinessProfile BusinessRef    `json:"businessProfile"`
	Themes          []survey.Theme `json:"themes"`
	Responses       []Response     `json:"responses"`
}

type ListItem struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt *time.Time       `json:"completedAt"`
	Summary     *scoring.Summary `json:"summary"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type ListPage struct {
	Data       []ListItem `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type ListQuery struct {
	Page   int
	Limit  int
	Status string
}

type Progress struct {
	ID                 string `json:"id"`
	Status             Status `json:"status"`
	CompletedResponses int    `json:"completedResponses"`
	TotalQuestions     int    `json:"totalQuestions"`
}

// ThemeResult is one scored theme with its display name.
type ThemeResult struct {
	ThemeID         string         `json:"themeId"`
	ThemeName       string         `json:"themeName"`
	MeanScore       float64        `json:"meanScore"`
	Percentage      float64        `json:"percentage"`
	PerformanceBand scoring.Band   `json:"performanceBand"`
	Responses       []AnsweredItem `json:"responses,omitempty"`
}

// AnsweredItem is a response shown next to its question text.
type AnsweredItem struct {
	QuestionID    string  `json:"questionId"`
	QuestionText  string  `json:"questionText"`
	ReverseScored bool    `json:"reverseScored"`
	Score         int     `json:"score"`
	Comment       *string `json:"comment"`
}

type SubmitResult struct {
	ID          string          `json:"id"`
	Status      Status          `json:"status"`
	CompletedAt time.Time       `json:"completedAt"`
	Summary     scoring.Summary `json:"summary"`
	ThemeScores []ThemeResult   `json:"themeScores"`
}

type Results struct {
	ID          string           `json:"id"`
	Business    BusinessRef      `json:"business"`
	CompletedAt *time.Time       `json:"completedAt"`
	Summary     *scoring.Summary `json:"summary"`
	ThemeScores []ThemeResult    `json:"themeScores"`
}
