package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/survey"
)

func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	themes, err := s.survey.ThemesWithQuestions(r.Context())
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.rs.JSON(w, http.StatusOK, map[string][]survey.Theme{"themes": themes})
}

// seedCatalog reloads the configured catalog and upserts it.
func (s *Server) seedCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := survey.LoadFile(s.cfg.SurveyCatalog)
	if err != nil {
		s.rs.Error(w, r, apperr.Invalid(err.Error()))
		return
	}
	nt, nq, err := s.survey.Seed(r.Context(), c)
	if err != nil {
		s.rs.Error(w, r, err)
		return
	}
	s.log.Info("catalog seeded", zap.Int("themes", nt), zap.Int("questions", nq))
	s.rs.JSON(w, http.StatusOK, map[string]int{"themes": nt, "questions": nq})
}
