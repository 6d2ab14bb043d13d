package report

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/assessment"
	"github.com/mind-engage/bizassess/internal/db"
	"github.com/mind-engage/bizassess/internal/scoring"
	"github.com/mind-engage/bizassess/internal/storage"
	syncx "github.com/mind-engage/bizassess/internal/sync"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const assessmentID = "a-1"

func f(v float64) *float64 { return &v }

func completed() *assessment.Results {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return &assessment.Results{
		ID:          assessmentID,
		Business:    assessment.BusinessRef{Name: "Acme & Sons", Sector: "Retail"},
		CompletedAt: &at,
		Summary: &scoring.Summary{
			CompositeMean:       f(3.5),
			CompositePercentage: f(62.5),
			PerformanceBand:     scoring.BandModerate,
		},
		ThemeScores: []assessment.ThemeResult{
			{ThemeID: "t1", ThemeName: "Finance", MeanScore: 4.5, Percentage: 87.5, PerformanceBand: scoring.BandStrong},
			{ThemeID: "t2", ThemeName: "Team", MeanScore: 3, Percentage: 50, PerformanceBand: scoring.BandBelowAverage},
		},
	}
}

type fakeResults struct {
	res *assessment.Results
	err error
}

func (f fakeResults) Results(context.Context, assessment.Actor, string) (*assessment.Results, error) {
	return f.res, f.err
}

type fakeRenderer struct {
	calls atomic.Int32
	err   error
}

func (r *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 " + html[:15]), nil
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	stmts := []string{
		`INSERT INTO users (id,email,password_hash,full_name,created_at) VALUES ('u-1','a@b.co','x','Ann',0)`,
		`INSERT INTO business_profiles (id,user_id,business_name,sector,country,city,created_at,updated_at)
		 VALUES ('bp-1','u-1','Acme','Retail','KE','Nairobi',0,0)`,
		`INSERT INTO assessments (id,user_id,business_profile_id,status,started_at,updated_at)
		 VALUES ('a-1','u-1','bp-1','completed',0,0)`,
	}
	for _, s := range stmts {
		if _, err := h.ExecContext(ctx, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return h
}

type env struct {
	db       *sql.DB
	svc      *Service
	blobs    *storage.FSStore
	store    *SQLStore
	renderer *fakeRenderer
	events   *syncx.EventRepo
}

func newEnv(t *testing.T, results Results) *env {
	t.Helper()
	h := openDB(t)
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e := &env{db: h, blobs: blobs, store: NewSQLStore(h), renderer: &fakeRenderer{}, events: syncx.NewEventRepo(h, "")}
	e.svc = NewService(results, e.renderer, blobs, e.store, e.events, 0, nil)
	e.svc.now = func() time.Time { return time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC) }
	e.svc.newID = func() string { return "r-1" }
	return e
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(NewData(completed(), time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	for _, want := range []string{
		"Business Performance Assessment Report",
		"Acme &amp; Sons",
		"Assessment Date: March 14, 2026",
		"3.50/5",
		"62.5%",
		"Moderate",
		"#ECC94B",
		"Finance",
		"4.50/5",
		"87.5%",
		"Below Average",
		"generated on March 15, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRenderHTMLUnscored(t *testing.T) {
	res := completed()
	res.Summary = nil
	res.ThemeScores = nil
	out, err := RenderHTML(NewData(res, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "N/A/5") || !strings.Contains(string(out), ">N/A<") {
		t.Errorf("unscored summary should render N/A")
	}
}

func TestPDFStoresAndRecords(t *testing.T) {
	e := newEnv(t, fakeResults{res: completed()})
	ctx := context.Background()

	doc, err := e.svc.PDF(ctx, assessment.Actor{UserID: "u-1"}, assessmentID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Filename != "assessment-report-a-1.pdf" || doc.ContentType != "application/pdf" {
		t.Errorf("doc = %q %q", doc.Filename, doc.ContentType)
	}

	rc, err := e.blobs.Get("reports/a-1/r-1.pdf")
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	stored, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(stored) != string(doc.Body) {
		t.Errorf("stored blob differs from response body")
	}

	var size, created, expires int64
	err = e.db.QueryRowContext(ctx,
		`SELECT file_size,created_at,expires_at FROM pdf_reports WHERE id='r-1'`).Scan(&size, &created, &expires)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if size != int64(len(doc.Body)) {
		t.Errorf("file_size = %d, want %d", size, len(doc.Body))
	}
	if time.Duration(expires-created)*time.Second != DefaultTTL {
		t.Errorf("ttl = %ds", expires-created)
	}

	evs, err := e.events.Since(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Type != syncx.TypeReportGenerated || evs[0].Key != assessmentID {
		t.Errorf("events = %+v", evs)
	}
}

func TestPDFNotCompleted(t *testing.T) {
	e := newEnv(t, fakeResults{err: apperr.NotFound("Assessment not found or not completed")})
	_, err := e.svc.PDF(context.Background(), assessment.Actor{UserID: "u-1"}, assessmentID)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if e.renderer.calls.Load() != 0 {
		t.Errorf("renderer called for incomplete assessment")
	}
}

func TestPDFRenderFailureStoresNothing(t *testing.T) {
	e := newEnv(t, fakeResults{res: completed()})
	e.renderer.err = errors.New("chrome gone")
	if _, err := e.svc.PDF(context.Background(), assessment.Actor{UserID: "u-1"}, assessmentID); err == nil {
		t.Fatal("expected error")
	}
	var n int
	_ = e.db.QueryRow(`SELECT COUNT(*) FROM pdf_reports`).Scan(&n)
	if n != 0 {
		t.Errorf("pdf_reports rows = %d, want 0", n)
	}
}

func TestHTMLDocument(t *testing.T) {
	e := newEnv(t, fakeResults{res: completed()})
	doc, err := e.svc.HTML(context.Background(), assessment.Actor{UserID: "u-1"}, assessmentID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.ContentType, "text/html") || !strings.Contains(string(doc.Body), "Performance by Theme") {
		t.Errorf("unexpected html document %q", doc.ContentType)
	}
	if e.renderer.calls.Load() != 0 {
		t.Errorf("html path must not print")
	}
}

func TestSweepOnce(t *testing.T) {
	e := newEnv(t, fakeResults{res: completed()})
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, exp := range []time.Time{base.Add(-time.Hour), base.Add(-time.Minute), base.Add(time.Hour)} {
		id := []string{"old", "older", "fresh"}[i]
		key := "reports/a-1/" + id + ".pdf"
		size, err := e.blobs.Put(key, strings.NewReader("pdf"))
		if err != nil {
			t.Fatal(err)
		}
		if err := e.store.Insert(ctx, Record{ID: id, AssessmentID: assessmentID, FilePath: key, FileSize: size, CreatedAt: base, ExpiresAt: exp}); err != nil {
			t.Fatal(err)
		}
	}

	w := NewSweeper(e.store, e.blobs, time.Minute, nil)
	w.now = func() time.Time { return base }
	n, err := w.SweepOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if _, err := e.blobs.Get("reports/a-1/old.pdf"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expired blob still present: %v", err)
	}
	rc, err := e.blobs.Get("reports/a-1/fresh.pdf")
	if err != nil {
		t.Errorf("fresh blob removed: %v", err)
	} else {
		_ = rc.Close()
	}
	left, err := e.store.Expired(ctx, base.Add(24*time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].ID != "fresh" {
		t.Errorf("left = %+v", left)
	}
}

func TestSweeperRunStops(t *testing.T) {
	e := newEnv(t, fakeResults{res: completed()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSweeper(e.store, e.blobs, time.Millisecond, nil).Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
