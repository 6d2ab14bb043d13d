// Package assessment runs the questionnaire lifecycle: create, answer, submit
// and read back scored results.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/profile"
	"github.com/mind-engage/bizassess/internal/rbac"
	"github.com/mind-engage/bizassess/internal/scoring"
	"github.com/mind-engage/bizassess/internal/survey"
	syncx "github.com/mind-engage/bizassess/internal/sync"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Store interface {
	Create(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id string) (*Assessment, error)
	List(ctx context.Context, userID string, status Status, limit, offset int) ([]ListItem, int, error)
	SaveResponses(ctx context.Context, id string, rs []ResponseInput, at time.Time) (int, error)
	Responses(ctx context.Context, id string) ([]Response, error)
	SaveScores(ctx context.Context, id string, res scoring.Result, at time.Time) (time.Time, error)
	Summary(ctx context.Context, id string) (*scoring.Summary, error)
	ThemeScores(ctx context.Context, id string) ([]ThemeResult, error)
	AnsweredItems(ctx context.Context, id string) (map[string][]AnsweredItem, error)
}

type Catalog interface {
	ActiveThemes(ctx context.Context) ([]survey.Theme, error)
	ActiveQuestions(ctx context.Context) ([]survey.Question, error)
	ThemesWithQuestions(ctx context.Context) ([]survey.Theme, error)
	CountActiveQuestions(ctx context.Context) (int, error)
	ThemeNames(ctx context.Context) (map[string]survey.ThemeRef, error)
}

type Profiles interface {
	ByUser(ctx context.Context, userID string) (*profile.Profile, error)
}

type Events interface {
	Record(ctx context.Context, typ, key string, data any) error
}

type Service struct {
	store    Store
	catalog  Catalog
	profiles Profiles
	events   Events
	log      *zap.Logger
	locks    *keyedMutex
	now      func() time.Time
	idGen    func() string
}

func NewService(store Store, catalog Catalog, profiles Profiles, events Events, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		catalog:  catalog,
		profiles: profiles,
		events:   events,
		log:      log,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		idGen:    uuid.NewString,
	}
}

// Create starts a draft assessment for the caller's business profile.
func (s *Service) Create(ctx context.Context, actor Actor) (*Created, error) {
	p, err := s.profiles.ByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Invalid("Business profile required before creating assessment")
	}
	themes, err := s.catalog.ThemesWithQuestions(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	a := &Assessment{
		ID:                s.idGen(),
		UserID:            actor.UserID,
		BusinessProfileID: p.ID,
		Status:            StatusDraft,
		StartedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	s.record(ctx, syncx.TypeAssessmentCreated, a.ID, map[string]string{"userId": a.UserID, "businessProfileId": p.ID})
	return &Created{ID: a.ID, Status: a.Status, StartedAt: a.StartedAt, Themes: themes}, nil
}

func (s *Service) List(ctx context.Context, actor Actor, q ListQuery) (*ListPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	status := Status(q.Status)
	if status != "" && !status.valid() {
		return nil, apperr.Invalid("Validation failed",
			apperr.FieldError{Field: "status", Message: "Status must be draft, in_progress or completed"})
	}
	items, total, err := s.store.List(ctx, actor.UserID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &ListPage{
		Data: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
			HasNext:    page*limit < total,
			HasPrev:    page > 1,
		},
	}, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id string) (*Detail, error) {
	a, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	themes, err := s.catalog.ThemesWithQuestions(ctx)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.Responses(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		ID:              a.ID,
		Status:          a.Status,
		StartedAt:       a.StartedAt,
		CompletedAt:     a.CompletedAt,
		BusinessProfile: a.Business,
		Themes:          themes,
		Responses:       responses,
	}, nil
}

// SaveResponses upserts answers for active questions of an open assessment.
func (s *Service) SaveResponses(ctx context.Context, actor Actor, id string, rs []ResponseInput) (*Progress, error) {
	if err := validateResponses(rs); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	a, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, apperr.Conflict("Assessment already completed")
	}
	questions, err := s.catalog.ActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(questions))
	for _, q := range questions {
		active[q.ID] = true
	}
	var unknown []apperr.FieldError
	for i, r := range rs {
		if !active[r.QuestionID] {
			unknown = append(unknown, apperr.FieldError{
				Field:   fmt.Sprintf("responses[%d].questionId", i),
				Message: "Unknown or inactive question",
			})
		}
	}
	if len(unknown) > 0 {
		return nil, apperr.Invalid("Validation failed", unknown...)
	}

	answered, err := s.store.SaveResponses(ctx, id, rs, s.now())
	if errors.Is(err, ErrCompleted) {
		return nil, apperr.Conflict("Assessment already completed")
	}
	if err != nil {
		return nil, err
	}
	return &Progress{ID: id, Status: StatusInProgress, CompletedResponses: answered, TotalQuestions: len(questions)}, nil
}

func validateResponses(rs []ResponseInput) error {
	if len(rs) == 0 {
		return apperr.Invalid("Validation failed",
			apperr.FieldError{Field: "responses", Message: "At least one response is required"})
	}
	var details []apperr.FieldError
	for i, r := range rs {
		if _, err := uuid.Parse(r.QuestionID); err != nil {
			details = append(details, apperr.FieldError{
				Field: fmt.Sprintf("responses[%d].questionId", i), Message: "Question id must be a UUID"})
		}
		if r.Score < scoring.MinScore || r.Score > scoring.MaxScore {
			details = append(details, apperr.FieldError{
				Field: fmt.Sprintf("responses[%d].score", i), Message: "Score must be an integer between 1 and 5"})
		}
	}
	if len(details) > 0 {
		return apperr.Invalid("Validation failed", details...)
	}
	return nil
}

// Submit scores the assessment and marks it completed. Submitting again
// re-scores from the stored responses.
func (s *Service) Submit(ctx context.Context, actor Actor, id string) (*SubmitResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	responses, err := s.store.Responses(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.catalog.ActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}
	themes, err := s.catalog.ActiveThemes(ctx)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool, len(questions))
	for _, q := range questions {
		active[q.ID] = true
	}
	answered := 0
	engineResponses := make([]scoring.Response, 0, len(responses))
	for _, r := range responses {
		if active[r.QuestionID] {
			answered++
		}
		engineResponses = append(engineResponses, scoring.Response{QuestionID: r.QuestionID, Score: r.Score})
	}
	if missing := len(questions) - answered; missing > 0 {
		return nil, apperr.Invalid("Incomplete assessment", apperr.FieldError{
			Field: "responses", Message: fmt.Sprintf("Missing %d responses", missing)})
	}

	qs, ts := survey.EngineInputs(themes, questions)
	res := scoring.Aggregate(engineResponses, qs, ts)
	if !res.Summary.Scored() {
		return nil, apperr.Invalid("Nothing to score: no responses match active questions")
	}

	completedAt, err := s.store.SaveScores(ctx, id, res, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("assessment scored",
		zap.String("assessment_id", id),
		zap.Float64("composite_mean", *res.Summary.CompositeMean),
		zap.String("band", string(res.Summary.PerformanceBand)),
		zap.Int("themes", len(res.ThemeScores)),
	)
	s.record(ctx, syncx.TypeAssessmentSubmitted, id, res.Summary)

	names, err := s.catalog.ThemeNames(ctx)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{
		ID:          id,
		Status:      StatusCompleted,
		CompletedAt: completedAt,
		Summary:     res.Summary,
		ThemeScores: named(res.ThemeScores, names),
	}, nil
}

// named attaches theme names and orders scores by theme display order.
func named(scores []scoring.ThemeScore, names map[string]survey.ThemeRef) []ThemeResult {
	out := make([]ThemeResult, 0, len(scores))
	for _, ts := range scores {
		out = append(out, ThemeResult{
			ThemeID:         ts.ThemeID,
			ThemeName:       names[ts.ThemeID].Name,
			MeanScore:       ts.MeanScore,
			Percentage:      ts.Percentage,
			PerformanceBand: ts.PerformanceBand,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return names[out[i].ThemeID].OrderIndex < names[out[j].ThemeID].OrderIndex
	})
	return out
}

// Results returns the scored view of a completed assessment.
func (s *Service) Results(ctx context.Context, actor Actor, id string) (*Results, error) {
	a, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusCompleted {
		return nil, apperr.NotFound("Assessment not found or not completed")
	}
	summary, err := s.store.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.ThemeScores(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.store.AnsweredItems(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i].Responses = items[scores[i].ThemeID]
	}
	return &Results{
		ID:          a.ID,
		Business:    BusinessRef{Name: a.Business.Name, Sector: a.Business.Sector},
		CompletedAt: a.CompletedAt,
		Summary:     summary,
		ThemeScores: scores,
	}, nil
}

// visible loads an assessment the actor owns or may view. Others get NOT_FOUND
// so ids of foreign assessments are not confirmed.
func (s *Service) visible(ctx context.Context, actor Actor, id string) (*Assessment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || (a.UserID != actor.UserID && !rbac.Has(actor.Role, rbac.PermAssessmentViewAll)) {
		return nil, apperr.NotFound("Assessment not found")
	}
	return a, nil
}

// owned is visible plus the requirement that the actor is the owner.
func (s *Service) owned(ctx context.Context, actor Actor, id string) (*Assessment, error) {
	a, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != actor.UserID {
		return nil, apperr.Forbidden("Only the owner can change an assessment")
	}
	return a, nil
}

func (s *Service) record(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, typ, key, data); err != nil {
		s.log.Warn("event log append failed", zap.String("type", typ), zap.String("key", key), zap.Error(err))
	}
}
