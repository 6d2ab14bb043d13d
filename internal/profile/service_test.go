package profile

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/db"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T, users ...string) *Service {
	t.Helper()
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	for _, id := range users {
		insertUser(t, h, id)
	}
	svc := NewService(NewSQLStore(h))
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func insertUser(t *testing.T, h *sql.DB, id string) {
	t.Helper()
	_, err := h.Exec(`INSERT INTO users (id,email,password_hash,full_name,created_at) VALUES ($1,$2,$3,$4,$5)`,
		id, id+"@example.com", "x", "Test User", 0)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func validInput() Input {
	return Input{
		BusinessName:  ptr("Acme Bakery"),
		Sector:        ptr("Food"),
		Country:       ptr("Kenya"),
		City:          ptr("Nairobi"),
		EmployeeCount: ptr(12),
		ContactPhone:  ptr("  "),
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "u1")

	created, err := svc.Create(ctx, "u1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ContactPhone != nil {
		t.Fatalf("blank optional should be stored as null")
	}
	got, err := svc.Mine(ctx, "u1")
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("round trip mismatch (-created +got):\n%s", diff)
	}

	if _, err := svc.Create(ctx, "u1", validInput()); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("second profile: %v", err)
	}
	if _, err := svc.Mine(ctx, "nobody"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("missing profile: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, "u1")
	in := validInput()
	in.BusinessName = ptr("A")
	in.EmployeeCount = ptr(-1)
	in.City = nil
	_, err := svc.Create(context.Background(), "u1", in)
	e, ok := apperr.As(err)
	if !ok || e.Code != apperr.CodeInvalid || len(e.Details) != 3 {
		t.Fatalf("expected 3 field errors, got %v", err)
	}
}

func TestPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "u1")
	if _, err := svc.Create(ctx, "u1", validInput()); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }

	if _, err := svc.Update(ctx, "u1", Input{}); !apperr.Is(err, apperr.CodeInvalid) {
		t.Fatalf("empty update: %v", err)
	}
	if _, err := svc.Update(ctx, "u1", Input{BusinessName: ptr("X")}); !apperr.Is(err, apperr.CodeInvalid) {
		t.Fatalf("short name: %v", err)
	}

	updated, err := svc.Update(ctx, "u1", Input{City: ptr("Mombasa"), ContactEmail: ptr("hi@acme.test")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.City != "Mombasa" || updated.BusinessName != "Acme Bakery" || *updated.ContactEmail != "hi@acme.test" {
		t.Fatalf("update = %+v", updated)
	}
	got, err := svc.Mine(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.UpdatedAt.Equal(svc.now()) || got.City != "Mombasa" {
		t.Fatalf("stored = %+v", got)
	}
}
