package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Record is one row of pdf_reports.
type Record struct {
	ID           string
	AssessmentID string
	FilePath     string
	FileSize     int64
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore { return &SQLStore{db: h} }

func (s *SQLStore) Insert(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pdf_reports (id,assessment_id,file_path,file_size,created_at,expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.AssessmentID, r.FilePath, r.FileSize, r.CreatedAt.Unix(), r.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("report: insert: %w", err)
	}
	return nil
}

// Expired lists up to limit records whose expiry is at or before t.
func (s *SQLStore) Expired(ctx context.Context, t time.Time, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,assessment_id,file_path,file_size,created_at,expires_at
		   FROM pdf_reports WHERE expires_at <= $1 ORDER BY expires_at LIMIT $2`,
		t.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("report: list expired: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			r                  Record
			created, expiresAt int64
		)
		if err := rows.Scan(&r.ID, &r.AssessmentID, &r.FilePath, &r.FileSize, &created, &expiresAt); err != nil {
			return nil, fmt.Errorf("report: scan: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		r.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pdf_reports WHERE id=$1`, id); err != nil {
		return fmt.Errorf("report: delete %s: %w", id, err)
	}
	return nil
}
