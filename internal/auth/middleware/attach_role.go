package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/rbac"
)

// AttachRoleFromDB replaces the token's role with the one stored for the
// subject and rejects deactivated or deleted accounts. With
// allowClaimFallback the claim role is kept when the users table cannot be
// read (offline development only).
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool, fail ErrorWriter) func(http.Handler) http.Handler {
	fail = fail.orPlain()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			var role string
			var active bool
			err := db.QueryRowContext(ctx,
				`SELECT role, is_active FROM users WHERE id=$1`, sub,
			).Scan(&role, &active)

			switch {
			case err == nil && !active:
				fail(w, r, apperr.Forbidden("account is deactivated"))
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, sql.ErrNoRows):
				fail(w, r, apperr.Unauthorized("account no longer exists"))
			case allowClaimFallback && claimRole != "" && isUsersTableMissing(err):
				next.ServeHTTP(w, r)
			default:
				fail(w, r, err)
			}
		})
	}
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
