package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func openMem(t *testing.T) *sql.DB {
	t.Helper()
	h, err := Open(context.Background(), DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestOpenCreatesSchemaAndIsIdempotent(t *testing.T) {
	h := openMem(t)
	if err := Migrate(context.Background(), h, DriverSQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	for _, table := range []string{"users", "themes", "questions", "assessments", "responses", "theme_scores", "assessment_summaries", "pdf_reports", "event_log"} {
		var n int
		if err := h.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, h, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO themes (id,name,order_index) VALUES ($1,$2,$3)`, "t1", "Theme", 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var n int
	if err := h.QueryRow(`SELECT COUNT(*) FROM themes`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}

	if err := WithTx(ctx, h, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO themes (id,name,order_index) VALUES ($1,$2,$3)`, "t1", "Theme", 1)
		return err
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := h.QueryRow(`SELECT COUNT(*) FROM themes`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestParseDriver(t *testing.T) {
	cases := map[string]Driver{"": DriverSQLite, "sqlite3": DriverSQLite, "PG": DriverPostgres, "pgx": DriverPostgres}
	for in, want := range cases {
		got, err := ParseDriver(in)
		if err != nil || got != want {
			t.Fatalf("ParseDriver(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDriver("mysql"); err == nil {
		t.Fatalf("expected error for mysql")
	}
}

func TestConstraintErrors(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()
	if _, err := h.ExecContext(ctx, `INSERT INTO themes (id,name,order_index) VALUES ($1,$2,$3)`, "t1", "Theme", 1); err != nil {
		t.Fatal(err)
	}
	_, err := h.ExecContext(ctx, `INSERT INTO themes (id,name,order_index) VALUES ($1,$2,$3)`, "t2", "Theme", 2)
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	_, err = h.ExecContext(ctx, `INSERT INTO questions (id,theme_id,text,order_index) VALUES ($1,$2,$3,$4)`, "q1", "missing", "text", 1)
	if !IsForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain error is not a constraint violation")
	}
}
