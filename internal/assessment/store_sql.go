package assessment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mind-engage/bizassess/internal/db"
	"github.com/mind-engage/bizassess/internal/scoring"
)

// ErrCompleted is returned when responses are written to a completed assessment.
var ErrCompleted = errors.New("assessment: already completed")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore { return &SQLStore{db: h} }

func (s *SQLStore) Create(ctx context.Context, a *Assessment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id,user_id,business_profile_id,status,started_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.UserID, a.BusinessProfileID, string(a.Status), a.StartedAt.Unix(), a.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("assessment: insert: %w", err)
	}
	return nil
}

// Get returns nil, nil for an unknown id.
func (s *SQLStore) Get(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id,a.user_id,a.business_profile_id,a.status,a.started_at,a.completed_at,a.updated_at,
		        bp.business_name,bp.sector
		   FROM assessments a JOIN business_profiles bp ON bp.id = a.business_profile_id
		  WHERE a.id=$1`, id)
	var (
		a                    Assessment
		status               string
		startedAt, updatedAt int64
		completedAt          sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.BusinessProfileID, &status, &startedAt, &completedAt, &updatedAt,
		&a.Business.Name, &a.Business.Sector)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assessment: load: %w", err)
	}
	a.Status = Status(status)
	a.StartedAt = unix(startedAt)
	a.UpdatedAt = unix(updatedAt)
	a.CompletedAt = nullUnix(completedAt)
	a.Business.ID = a.BusinessProfileID
	return &a, nil
}

// List returns one page of a user's assessments, newest first, and the total count.
func (s *SQLStore) List(ctx context.Context, userID string, status Status, limit, offset int) ([]ListItem, int, error) {
	where := ` WHERE a.user_id=$1`
	args := []any{userID}
	if status != "" {
		where += ` AND a.status=$2`
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("assessment: count: %w", err)
	}

	n := len(args)
	q := `SELECT a.id,a.status,a.started_at,a.completed_at,
	             s.composite_mean,s.composite_percentage,s.performance_band
	        FROM assessments a LEFT JOIN assessment_summaries s ON s.assessment_id = a.id` + where +
		` ORDER BY a.started_at DESC, a.id DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := s.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("assessment: list: %w", err)
	}
	defer rows.Close()

	out := []ListItem{}
	for rows.Next() {
		var (
			it          ListItem
			st          string
			startedAt   int64
			completedAt sql.NullInt64
			mean, pct   sql.NullFloat64
			band        sql.NullString
		)
		if err := rows.Scan(&it.ID, &st, &startedAt, &completedAt, &mean, &pct, &band); err != nil {
			return nil, 0, err
		}
		it.Status = Status(st)
		it.StartedAt = unix(startedAt)
		it.CompletedAt = nullUnix(completedAt)
		it.Summary = summaryFrom(mean, pct, band)
		out = append(out, it)
	}
	return out, total, rows.Err()
}

// SaveResponses upserts answers, marks the assessment in progress and returns
// how many active questions are now answered.
func (s *SQLStore) SaveResponses(ctx context.Context, id string, rs []ResponseInput, at time.Time) (int, error) {
	var answered int
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE assessments SET status=$1, updated_at=$2 WHERE id=$3 AND status<>$4`,
			string(StatusInProgress), at.Unix(), id, string(StatusCompleted))
		if err != nil {
			return fmt.Errorf("assessment: mark in progress: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrCompleted
		}
		for _, r := range rs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO responses (assessment_id,question_id,score,comment,updated_at)
				 VALUES ($1,$2,$3,$4,$5)
				 ON CONFLICT (assessment_id,question_id)
				 DO UPDATE SET score=EXCLUDED.score, comment=EXCLUDED.comment, updated_at=EXCLUDED.updated_at`,
				id, r.QuestionID, r.Score, nullString(r.Comment), at.Unix()); err != nil {
				return fmt.Errorf("assessment: upsert response %s: %w", r.QuestionID, err)
			}
		}
		return tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM responses r
			   JOIN questions q ON q.id = r.question_id
			   JOIN themes t ON t.id = q.theme_id
			  WHERE r.assessment_id=$1 AND q.is_active AND t.is_active`, id).Scan(&answered)
	})
	return answered, err
}

func (s *SQLStore) Responses(ctx context.Context, id string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id,score,comment,updated_at FROM responses WHERE assessment_id=$1 ORDER BY question_id`, id)
	if err != nil {
		return nil, fmt.Errorf("assessment: responses: %w", err)
	}
	defer rows.Close()
	out := []Response{}
	for rows.Next() {
		var (
			r       Response
			comment sql.NullString
			at      int64
		)
		if err := rows.Scan(&r.QuestionID, &r.Score, &comment, &at); err != nil {
			return nil, err
		}
		r.Comment = fromNullString(comment)
		r.UpdatedAt = unix(at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveScores persists a scoring result and completes the assessment atomically.
// Re-running it replaces every previous theme score and the summary but keeps
// the first completion time, which it returns.
func (s *SQLStore) SaveScores(ctx context.Context, id string, res scoring.Result, at time.Time) (time.Time, error) {
	var completed int64
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM theme_scores WHERE assessment_id=$1`, id); err != nil {
			return fmt.Errorf("assessment: clear theme scores: %w", err)
		}
		for _, ts := range res.ThemeScores {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO theme_scores (assessment_id,theme_id,mean_score,percentage,performance_band)
				 VALUES ($1,$2,$3,$4,$5)
				 ON CONFLICT (assessment_id,theme_id)
				 DO UPDATE SET mean_score=EXCLUDED.mean_score, percentage=EXCLUDED.percentage,
				   performance_band=EXCLUDED.performance_band`,
				id, ts.ThemeID, ts.MeanScore, ts.Percentage, string(ts.PerformanceBand)); err != nil {
				return fmt.Errorf("assessment: upsert theme score %s: %w", ts.ThemeID, err)
			}
		}
		sum := res.Summary
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assessment_summaries (assessment_id,composite_mean,composite_percentage,performance_band,scored_at)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (assessment_id)
			 DO UPDATE SET composite_mean=EXCLUDED.composite_mean, composite_percentage=EXCLUDED.composite_percentage,
			   performance_band=EXCLUDED.performance_band, scored_at=EXCLUDED.scored_at`,
			id, nullFloat(sum.CompositeMean), nullFloat(sum.CompositePercentage), nullBand(sum.PerformanceBand), at.Unix()); err != nil {
			return fmt.Errorf("assessment: upsert summary: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE assessments SET status=$1, completed_at=COALESCE(completed_at,$2), updated_at=$3 WHERE id=$4`,
			string(StatusCompleted), at.Unix(), at.Unix(), id); err != nil {
			return fmt.Errorf("assessment: complete: %w", err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT completed_at FROM assessments WHERE id=$1`, id).Scan(&completed); err != nil {
			return fmt.Errorf("assessment: read completion: %w", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return unix(completed), nil
}

// Summary returns nil, nil when the assessment was never scored.
func (s *SQLStore) Summary(ctx context.Context, id string) (*scoring.Summary, error) {
	var (
		mean, pct sql.NullFloat64
		band      sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT composite_mean,composite_percentage,performance_band FROM assessment_summaries WHERE assessment_id=$1`, id).
		Scan(&mean, &pct, &band)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assessment: summary: %w", err)
	}
	return summaryFrom(mean, pct, band), nil
}

// ThemeScores lists stored theme scores in theme display order.
func (s *SQLStore) ThemeScores(ctx context.Context, id string) ([]ThemeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts.theme_id,t.name,ts.mean_score,ts.percentage,ts.performance_band
		   FROM theme_scores ts JOIN themes t ON t.id = ts.theme_id
		  WHERE ts.assessment_id=$1
		  ORDER BY t.order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("assessment: theme scores: %w", err)
	}
	defer rows.Close()
	out := []ThemeResult{}
	for rows.Next() {
		var (
			tr   ThemeResult
			band string
		)
		if err := rows.Scan(&tr.ThemeID, &tr.ThemeName, &tr.MeanScore, &tr.Percentage, &band); err != nil {
			return nil, err
		}
		tr.PerformanceBand, _ = scoring.ParseBand(band)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// AnsweredItems returns responses with question text keyed by theme id, in
// question display order.
func (s *SQLStore) AnsweredItems(ctx context.Context, id string) (map[string][]AnsweredItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.theme_id,r.question_id,q.text,q.reverse_scored,r.score,r.comment
		   FROM responses r
		   JOIN questions q ON q.id = r.question_id
		   JOIN themes t ON t.id = q.theme_id
		  WHERE r.assessment_id=$1
		  ORDER BY t.order_index, q.order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("assessment: answered items: %w", err)
	}
	defer rows.Close()
	out := map[string][]AnsweredItem{}
	for rows.Next() {
		var (
			themeID string
			it      AnsweredItem
			comment sql.NullString
		)
		if err := rows.Scan(&themeID, &it.QuestionID, &it.QuestionText, &it.ReverseScored, &it.Score, &comment); err != nil {
			return nil, err
		}
		it.Comment = fromNullString(comment)
		out[themeID] = append(out[themeID], it)
	}
	return out, rows.Err()
}

func summaryFrom(mean, pct sql.NullFloat64, band sql.NullString) *scoring.Summary {
	if !mean.Valid {
		return nil
	}
	sum := &scoring.Summary{CompositeMean: &mean.Float64}
	if pct.Valid {
		sum.CompositePercentage = &pct.Float64
	}
	if band.Valid {
		sum.PerformanceBand, _ = scoring.ParseBand(band.String)
	}
	return sum
}

func unix(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func nullUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := unix(v.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullBand(b scoring.Band) sql.NullString {
	if b == scoring.BandNone {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
