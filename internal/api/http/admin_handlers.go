package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/bizassess/internal/account"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accounts.Users(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, map[string][]account.View{"data": users})
}

func (s *Server) updateUserAccess(w http.ResponseWriter, r *http.Request) {
	var in account.AccessUpdate
	if err := decode(w, r, &in); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	v, err := s.accounts.UpdateAccess(r.Context(), chi.URLParam(r, "userID"), in)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, v)
}
