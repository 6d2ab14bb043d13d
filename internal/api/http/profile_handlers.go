package http

import (
	"net/http"

	auth "github.com/mind-engage/bizassess/internal/auth/middleware"
	"github.com/mind-engage/bizassess/internal/profile"
)

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var in profile.Input
	if err := decode(w, r, &in); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	p, err := s.profiles.Create(r.Context(), auth.SubjectFromContext(r.Context()), in)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusCreated, p)
}

func (s *Server) myProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Mine(r.Context(), auth.SubjectFromContext(r.Context()))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in profile.Input
	if err := decode(w, r, &in); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	p, err := s.profiles.Update(r.Context(), auth.SubjectFromContext(r.Context()), in)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, p)
}
