package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/bizassess/internal/report"
)

func (s *Server) reportPDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.reports.PDF(r.Context(), actorFrom(r), chi.URLParam(r, "assessmentId"))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	writeDocument(w, doc, "attachment")
}

func (s *Server) reportHTML(w http.ResponseWriter, r *http.Request) {
	doc, err := s.reports.HTML(r.Context(), actorFrom(r), chi.URLParam(r, "assessmentId"))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	writeDocument(w, doc, "inline")
}

func writeDocument(w http.ResponseWriter, doc *report.Document, disposition string) {
	h := w.Header()
	h.Set("Content-Type", doc.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(doc.Body)))
	h.Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}
