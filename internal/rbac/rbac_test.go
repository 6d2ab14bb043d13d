package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerPolicy(t *testing.T) {
	c := NewChecker(nil)
	if !c.Has(RoleUser, PermAssessmentCreate) {
		t.Fatalf("user should create assessments")
	}
	if c.Has(RoleUser, PermAssessmentViewAll) {
		t.Fatalf("user must not view all assessments")
	}
	if !c.Has(RoleAdmin, PermAssessmentViewAll) || !c.All(RoleAdmin, PermCatalogSeed, PermReportGenerate) {
		t.Fatalf("admin wildcard should grant everything")
	}
	if c.Has("ghost", PermCatalogView) {
		t.Fatalf("unknown role must have nothing")
	}
	wild := NewChecker(map[string][]string{"auditor": {"assessment:*"}})
	if !wild.Any("auditor", PermCatalogView, PermAssessmentViewAll) || wild.Has("auditor", PermCatalogView) {
		t.Fatalf("prefix wildcard mismatch")
	}
}

func TestGuardRequire(t *testing.T) {
	g := NewGuard(nil)
	h := g.Require(PermCatalogSeed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{"": http.StatusForbidden, RoleUser: http.StatusForbidden, RoleAdmin: http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("role %q: code = %d, want %d", role, rr.Code, want)
		}
	}
}
