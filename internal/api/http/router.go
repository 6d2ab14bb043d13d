// Package http exposes the assessment services as a JSON API.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/account"
	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/assessment"
	auth "github.com/mind-engage/bizassess/internal/auth/middleware"
	"github.com/mind-engage/bizassess/internal/config"
	"github.com/mind-engage/bizassess/internal/profile"
	"github.com/mind-engage/bizassess/internal/rbac"
	"github.com/mind-engage/bizassess/internal/report"
	"github.com/mind-engage/bizassess/internal/survey"
)

// Catalog is the survey store surface the API reads and reseeds.
type Catalog interface {
	ThemesWithQuestions(ctx context.Context) ([]survey.Theme, error)
	Seed(ctx context.Context, c survey.Catalog) (themes, questions int, err error)
}

type Deps struct {
	Config      config.Config
	DB          *sql.DB
	Log         *zap.Logger
	Auth        *auth.AuthService
	Accounts    *account.Service
	Profiles    *profile.Service
	Survey      Catalog
	Assessments *assessment.Service
	Reports     *report.Service
}

type Server struct {
	cfg         config.Config
	db          *sql.DB
	log         *zap.Logger
	rs          *Responder
	accounts    *account.Service
	profiles    *profile.Service
	survey      Catalog
	assessments *assessment.Service
	reports     *report.Service
}

// NewRouter builds the full HTTP handler: health probes at the root and the
// API under cfg.APIPrefix().
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	online := d.Config.Mode == config.ModeOnline
	s := &Server{
		cfg:         d.Config,
		db:          d.DB,
		log:         log,
		rs:          NewResponder(log, online),
		accounts:    d.Accounts,
		profiles:    d.Profiles,
		survey:      d.Survey,
		assessments: d.Assessments,
		reports:     d.Reports,
	}
	guard := rbac.NewGuard(s.rs.Error)
	limiter := NewRateLimiter(d.Config.RateLimitWindow, d.Config.RateLimitMax, s.rs.Error)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, accessLog(log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(securityHeaders(online))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.rs.Error(w, r, apperr.NotFound("Route "+r.Method+" "+r.URL.Path+" not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.rs.JSON(w, http.StatusMethodNotAllowed, map[string]errorPayload{"error": {
			Code:      "METHOD_NOT_ALLOWED",
			Message:   "Method " + r.Method + " not allowed on " + r.URL.Path,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetReqID(r.Context()),
		}})
	})

	r.Get("/health", s.health)
	r.Get("/readyz", s.ready)

	r.Route(d.Config.APIPrefix(), func(api chi.Router) {
		api.Use(limiter.Middleware)

		api.Post("/auth/register", s.register)
		api.Post("/auth/login", s.login)
		api.Post("/auth/refresh", s.refresh)

		// Protected API (JWT → stored role in context → RBAC)
		api.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth, s.rs.Error))
			pr.Use(auth.AttachRoleFromDB(d.DB, !online, s.rs.Error))

			pr.Post("/auth/logout", s.logout)
			pr.Get("/auth/me", s.me)
			pr.Post("/auth/change-password", s.changePassword)

			pr.With(guard.Require(rbac.PermProfileManage)).Post("/business-profiles", s.createProfile)
			pr.With(guard.Require(rbac.PermProfileManage)).Get("/business-profiles/me", s.myProfile)
			pr.With(guard.Require(rbac.PermProfileManage)).Put("/business-profiles/me", s.updateProfile)

			pr.With(guard.Require(rbac.PermCatalogView)).Get("/catalog", s.catalog)
			pr.With(guard.Require(rbac.PermCatalogSeed)).Post("/catalog/seed", s.seedCatalog)

			pr.Route("/assessments", func(ar chi.Router) {
				view := guard.RequireAny(rbac.PermAssessmentViewOwn, rbac.PermAssessmentViewAll)
				ar.With(guard.Require(rbac.PermAssessmentCreate)).Post("/", s.createAssessment)
				ar.With(view).Get("/", s.listAssessments)
				ar.With(view).Get("/{id}", s.getAssessment)
				ar.With(view).Get("/{id}/results", s.assessmentResults)
				ar.With(guard.Require(rbac.PermAssessmentCreate)).Put("/{id}/responses", s.saveResponses)
				ar.With(guard.Require(rbac.PermAssessmentCreate)).Post("/{id}/submit", s.submitAssessment)
			})

			pr.With(guard.Require(rbac.PermReportGenerate)).Get("/reports/{assessmentId}/pdf", s.reportPDF)
			pr.With(guard.Require(rbac.PermReportGenerate)).Get("/reports/{assessmentId}/html", s.reportHTML)

			pr.With(guard.Require(rbac.PermUsersList)).Get("/admin/users", s.listUsers)
			pr.With(guard.Require(rbac.PermUsersManage)).Patch("/admin/users/{userID}", s.updateUserAccess)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.rs.JSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": time.Now().UTC()})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		s.log.Warn("readiness check failed", zap.Error(err))
		s.rs.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.rs.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
