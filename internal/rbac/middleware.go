package rbac

import (
	"net/http"

	"github.com/mind-engage/bizassess/internal/apperr"
)

var defaultChecker = NewChecker(nil)

// Has reports whether role holds perm under the default policy.
func Has(role, perm string) bool { return defaultChecker.Has(role, perm) }

// Guard builds permission middleware that reports denials through Deny.
type Guard struct {
	Checker *Checker
	Deny    func(w http.ResponseWriter, r *http.Request, err error)
}

func NewGuard(deny func(w http.ResponseWriter, r *http.Request, err error)) *Guard {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}
	return &Guard{Checker: defaultChecker, Deny: deny}
}

// Require enforces a single permission.
func (g *Guard) Require(perm string) func(http.Handler) http.Handler {
	return g.when(func(role string) bool { return g.Checker.Has(role, perm) })
}

// RequireAny enforces that the role has at least one of the permissions.
func (g *Guard) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return g.when(func(role string) bool { return g.Checker.Any(role, perms...) })
}

// RequireAll enforces that the role has all of the permissions.
func (g *Guard) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return g.when(func(role string) bool { return g.Checker.All(role, perms...) })
}

func (g *Guard) when(ok func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !ok(role) {
				g.Deny(w, r, apperr.Forbidden("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
