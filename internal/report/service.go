// Package report renders completed assessments as HTML and PDF documents
// and keeps generated PDFs in blob storage until they expire.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/assessment"
	"github.com/mind-engage/bizassess/internal/storage"
	syncx "github.com/mind-engage/bizassess/internal/sync"
)

const DefaultTTL = 30 * 24 * time.Hour

type Results interface {
	Results(ctx context.Context, actor assessment.Actor, id string) (*assessment.Results, error)
}

type Store interface {
	Insert(ctx context.Context, r Record) error
	Expired(ctx context.Context, t time.Time, limit int) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

type Events interface {
	Record(ctx context.Context, typ, key string, data any) error
}

// Document is a rendered report ready to be served.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Service struct {
	results  Results
	renderer PDFRenderer
	blobs    storage.BlobStore
	store    Store
	events   Events
	ttl      time.Duration
	log      *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(results Results, renderer PDFRenderer, blobs storage.BlobStore, store Store, events Events, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		results:  results,
		renderer: renderer,
		blobs:    blobs,
		store:    store,
		events:   events,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *Service) data(ctx context.Context, actor assessment.Actor, id string) (Data, error) {
	res, err := s.results.Results(ctx, actor, id)
	if err != nil {
		return Data{}, err
	}
	return NewData(res, s.now().UTC()), nil
}

// HTML renders the report document without printing it.
func (s *Service) HTML(ctx context.Context, actor assessment.Actor, id string) (*Document, error) {
	d, err := s.data(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	body, err := RenderHTML(d)
	if err != nil {
		return nil, err
	}
	return &Document{
		Filename:    fmt.Sprintf("assessment-report-%s.html", id),
		ContentType: "text/html; charset=utf-8",
		Body:        body,
	}, nil
}

// PDF renders, stores and records a PDF report for a completed assessment.
func (s *Service) PDF(ctx context.Context, actor assessment.Actor, id string) (*Document, error) {
	d, err := s.data(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	html, err := RenderHTML(d)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pdf, err := s.renderer.RenderPDF(ctx, string(html))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := Record{
		ID:           s.newID(),
		AssessmentID: id,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	rec.FilePath = fmt.Sprintf("reports/%s/%s.pdf", id, rec.ID)
	size, err := s.blobs.Put(rec.FilePath, bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("report: store pdf: %w", err)
	}
	rec.FileSize = size
	if err := s.store.Insert(ctx, rec); err != nil {
		_ = s.blobs.Delete(rec.FilePath)
		return nil, err
	}

	s.log.Info("report generated",
		zap.String("assessment_id", id),
		zap.String("report_id", rec.ID),
		zap.Int64("bytes", size),
		zap.Duration("render", time.Since(start)))
	if s.events != nil {
		ev := map[string]any{"reportId": rec.ID, "filePath": rec.FilePath, "fileSize": size}
		if err := s.events.Record(ctx, syncx.TypeReportGenerated, id, ev); err != nil {
			s.log.Warn("event log append failed", zap.String("type", syncx.TypeReportGenerated), zap.Error(err))
		}
	}

	return &Document{
		Filename:    fmt.Sprintf("assessment-report-%s.pdf", id),
		ContentType: "application/pdf",
		Body:        pdf,
	}, nil
}
