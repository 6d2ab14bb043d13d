package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/assessment"
	auth "github.com/mind-engage/bizassess/internal/auth/middleware"
	"github.com/mind-engage/bizassess/internal/rbac"
)

type saveResponsesReq struct {
	Responses []assessment.ResponseInput `json:"responses"`
}

func actorFrom(r *http.Request) assessment.Actor {
	return assessment.Actor{
		UserID: auth.SubjectFromContext(r.Context()),
		Role:   rbac.RoleFromContext(r.Context()),
	}
}

func (s *Server) createAssessment(w http.ResponseWriter, r *http.Request) {
	out, err := s.assessments.Create(r.Context(), actorFrom(r))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusCreated, out)
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	out, err := s.assessments.List(r.Context(), actorFrom(r), assessment.ListQuery{
		Page: page, Limit: limit, Status: q.Get("status"),
	})
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, out)
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	out, err := s.assessments.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, out)
}

func (s *Server) saveResponses(w http.ResponseWriter, r *http.Request) {
	var req saveResponsesReq
	if err := decode(w, r, &req); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	out, err := s.assessments.SaveResponses(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Responses)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, out)
}

func (s *Server) submitAssessment(w http.ResponseWriter, r *http.Request) {
	out, err := s.assessments.Submit(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, out)
}

func (s *Server) assessmentResults(w http.ResponseWriter, r *http.Request) {
	out, err := s.assessments.Results(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, out)
}

// intParam parses an optional positive query integer; empty yields 0.
func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperr.Invalid("Validation failed",
			apperr.FieldError{Field: name, Message: name + " must be a positive integer"})
	}
	return n, nil
}
