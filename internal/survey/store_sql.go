package survey

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mind-engage/bizassess/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore { return &SQLStore{db: h} }

// Seed writes the catalog. Rows missing from the catalog are deactivated rather
// than deleted so stored responses keep their foreign keys.
func (s *SQLStore) Seed(ctx context.Context, c Catalog) (themes, questions int, err error) {
	if err := c.Validate(); err != nil {
		return 0, 0, err
	}
	rows := c.Materialize()
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE questions SET is_active=$1`, false); err != nil {
			return fmt.Errorf("survey: deactivate questions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE themes SET is_active=$1`, false); err != nil {
			return fmt.Errorf("survey: deactivate themes: %w", err)
		}
		for _, t := range rows {
			// Free the name if an older row with a different id still holds it.
			if _, err := tx.ExecContext(ctx,
				`UPDATE themes SET name = id WHERE name=$1 AND id<>$2`, t.Name, t.ID); err != nil {
				return fmt.Errorf("survey: rename stale theme: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO themes (id,name,description,order_index,weight,is_active)
				 VALUES ($1,$2,$3,$4,$5,$6)
				 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description,
				   order_index=EXCLUDED.order_index, weight=EXCLUDED.weight, is_active=EXCLUDED.is_active`,
				t.ID, t.Name, t.Description, t.OrderIndex, t.Weight, true); err != nil {
				return fmt.Errorf("survey: upsert theme %q: %w", t.Name, err)
			}
			themes++
			for _, q := range t.Questions {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO questions (id,theme_id,text,help_text,order_index,reverse_scored,is_active)
					 VALUES ($1,$2,$3,$4,$5,$6,$7)
					 ON CONFLICT (id) DO UPDATE SET theme_id=EXCLUDED.theme_id, text=EXCLUDED.text,
					   help_text=EXCLUDED.help_text, order_index=EXCLUDED.order_index,
					   reverse_scored=EXCLUDED.reverse_scored, is_active=EXCLUDED.is_active`,
					q.ID, q.ThemeID, q.Text, q.HelpText, q.OrderIndex, q.ReverseScored, true); err != nil {
					return fmt.Errorf("survey: upsert question %q: %w", q.Text, err)
				}
				questions++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return themes, questions, nil
}

func (s *SQLStore) ActiveThemes(ctx context.Context) ([]Theme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,description,order_index,weight FROM themes WHERE is_active ORDER BY order_index`)
	if err != nil {
		return nil, fmt.Errorf("survey: list themes: %w", err)
	}
	defer rows.Close()
	var out []Theme
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.OrderIndex, &t.Weight); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ActiveQuestions lists active questions of active themes in display order.
func (s *SQLStore) ActiveQuestions(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id,q.theme_id,q.text,q.help_text,q.order_index,q.reverse_scored
		   FROM questions q JOIN themes t ON t.id = q.theme_id
		  WHERE q.is_active AND t.is_active
		  ORDER BY t.order_index, q.order_index`)
	if err != nil {
		return nil, fmt.Errorf("survey: list questions: %w", err)
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.ThemeID, &q.Text, &q.HelpText, &q.OrderIndex, &q.ReverseScored); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ThemesWithQuestions returns the questionnaire: active themes, each carrying
// its active questions.
func (s *SQLStore) ThemesWithQuestions(ctx context.Context) ([]Theme, error) {
	themes, err := s.ActiveThemes(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := s.ActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(themes))
	for i, t := range themes {
		idx[t.ID] = i
	}
	for _, q := range questions {
		if i, ok := idx[q.ThemeID]; ok {
			themes[i].Questions = append(themes[i].Questions, q)
		}
	}
	return themes, nil
}

func (s *SQLStore) CountActiveQuestions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions q JOIN themes t ON t.id = q.theme_id
		  WHERE q.is_active AND t.is_active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("survey: count questions: %w", err)
	}
	return n, nil
}

// ThemeNames maps every theme id, active or not, to its name and order index.
func (s *SQLStore) ThemeNames(ctx context.Context) (map[string]ThemeRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,order_index FROM themes`)
	if err != nil {
		return nil, fmt.Errorf("survey: theme names: %w", err)
	}
	defer rows.Close()
	out := map[string]ThemeRef{}
	for rows.Next() {
		var r ThemeRef
		if err := rows.Scan(&r.ID, &r.Name, &r.OrderIndex); err != nil {
			return nil, err
		}
		out[r.ID] = r
	}
	return out, rows.Err()
}

// ThemeRef is the display identity of a theme.
type ThemeRef struct {
	ID         string
	Name       string
	OrderIndex int
}
