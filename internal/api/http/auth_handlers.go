package http

import (
	"net/http"

	"github.com/mind-engage/bizassess/internal/account"
	auth "github.com/mind-engage/bizassess/internal/auth/middleware"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in account.RegisterInput
	if err := decode(w, r, &in); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	res, err := s.accounts.Register(r.Context(), in)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusCreated, res)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(w, r, &req); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	res, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, res)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := decode(w, r, &req); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	pair, err := s.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, pair)
}

// logout is acknowledged only; tokens are stateless and expire on their own.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.rs.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	v, err := s.accounts.Me(r.Context(), auth.SubjectFromContext(r.Context()))
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, v)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := decode(w, r, &req); err != nil {
		s.rs.Error(w, r, err)
		return
	}
	err := s.accounts.ChangePassword(r.Context(), auth.SubjectFromContext(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
