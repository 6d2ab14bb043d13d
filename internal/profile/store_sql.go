package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/bizassess/internal/db"
)

var ErrExists = errors.New("profile: already exists")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore { return &SQLStore{db: h} }

// ByUser returns nil, nil when the user has no profile.
func (s *SQLStore) ByUser(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,business_name,sector,country,city,employee_count,
		        registration_type,contact_email,contact_phone,created_at,updated_at
		   FROM business_profiles WHERE user_id=$1`, userID)
	var (
		p                   Profile
		reg, email, phone   sql.NullString
		createdAt, updateAt int64
	)
	err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.Sector, &p.Country, &p.City, &p.EmployeeCount,
		&reg, &email, &phone, &createdAt, &updateAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile: load: %w", err)
	}
	p.RegistrationType = fromNull(reg)
	p.ContactEmail = fromNull(email)
	p.ContactPhone = fromNull(phone)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updateAt, 0).UTC()
	return &p, nil
}

func (s *SQLStore) Insert(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO business_profiles (id,user_id,business_name,sector,country,city,employee_count,
		   registration_type,contact_email,contact_phone,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.UserID, p.BusinessName, p.Sector, p.Country, p.City, p.EmployeeCount,
		toNull(p.RegistrationType), toNull(p.ContactEmail), toNull(p.ContactPhone),
		p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	if db.IsUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("profile: insert: %w", err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE business_profiles SET business_name=$1, sector=$2, country=$3, city=$4, employee_count=$5,
		   registration_type=$6, contact_email=$7, contact_phone=$8, updated_at=$9
		 WHERE id=$10`,
		p.BusinessName, p.Sector, p.Country, p.City, p.EmployeeCount,
		toNull(p.RegistrationType), toNull(p.ContactEmail), toNull(p.ContactPhone),
		p.UpdatedAt.Unix(), p.ID)
	if err != nil {
		return fmt.Errorf("profile: update: %w", err)
	}
	return nil
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
