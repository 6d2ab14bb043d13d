package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/bizassess/internal/db"
	"github.com/mind-engage/bizassess/internal/rbac"
)

// ErrEmailTaken is returned by Insert when the email is already registered.
var ErrEmailTaken = errors.New("account: email already registered")

// ErrLastAdmin is returned by SetAccess when no active administrator would remain.
var ErrLastAdmin = errors.New("account: last active administrator")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(h *sql.DB) *SQLStore { return &SQLStore{db: h} }

const userColumns = `id,email,password_hash,full_name,role,is_active,email_verified,created_at,last_login`

// FindByEmail returns nil, nil when no user has the email.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

// FindByID returns nil, nil when the id is unknown.
func (s *SQLStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scanOne(row scanner) (*User, error) {
	var (
		u         User
		hash      string
		createdAt int64
		lastLogin sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Email, &hash, &u.FullName, &u.Role, &u.IsActive, &u.EmailVerified, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account: load user: %w", err)
	}
	u.PasswordHash = []byte(hash)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	if lastLogin.Valid {
		t := time.Unix(lastLogin.Int64, 0).UTC()
		u.LastLogin = &t
	}
	return &u, nil
}

func (s *SQLStore) Insert(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,email,password_hash,full_name,role,is_active,email_verified,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, string(u.PasswordHash), u.FullName, u.Role, u.IsActive, u.EmailVerified, u.CreatedAt.Unix())
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("account: insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at.Unix(), id)
	if err != nil {
		return fmt.Errorf("account: update last login: %w", err)
	}
	return nil
}

func (s *SQLStore) SetPassword(ctx context.Context, id string, hash []byte) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), id)
	if err != nil {
		return fmt.Errorf("account: update password: %w", err)
	}
	return nil
}

// UpsertAdmin creates or refreshes the bootstrap administrator keyed by email.
func (s *SQLStore) UpsertAdmin(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,email,password_hash,full_name,role,is_active,email_verified,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (email) DO UPDATE SET password_hash=EXCLUDED.password_hash, role=EXCLUDED.role,
		   is_active=EXCLUDED.is_active`,
		u.ID, u.Email, string(u.PasswordHash), u.FullName, u.Role, u.IsActive, u.EmailVerified, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("account: upsert admin: %w", err)
	}
	return nil
}

// List returns users ordered by email, optionally filtered by role.
func (s *SQLStore) List(ctx context.Context, role string) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		q += ` WHERE role=$1`
		args = append(args, role)
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY email`, args...)
	if err != nil {
		return nil, fmt.Errorf("account: list users: %w", err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// SetAccess updates role and active flag. When the change would leave no
// active administrator it returns ErrLastAdmin and writes nothing. Active
// admin rows stay locked between the count and the update.
func (s *SQLStore) SetAccess(ctx context.Context, id, role string, active bool) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if role != rbac.RoleAdmin || !active {
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET is_active=is_active WHERE role=$1 AND is_active=$2`, rbac.RoleAdmin, true); err != nil {
				return fmt.Errorf("account: lock admins: %w", err)
			}
			var total, self int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(1), COALESCE(SUM(CASE WHEN id=$3 THEN 1 ELSE 0 END),0)
				   FROM users WHERE role=$1 AND is_active=$2`, rbac.RoleAdmin, true, id).Scan(&total, &self); err != nil {
				return fmt.Errorf("account: count admins: %w", err)
			}
			if self > 0 && total <= 1 {
				return ErrLastAdmin
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET role=$1, is_active=$2 WHERE id=$3`, role, active, id); err != nil {
			return fmt.Errorf("account: update access: %w", err)
		}
		return nil
	})
}
