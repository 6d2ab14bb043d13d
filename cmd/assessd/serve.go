package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/bizassess/internal/account"
	api "github.com/mind-engage/bizassess/internal/api/http"
	"github.com/mind-engage/bizassess/internal/assessment"
	auth "github.com/mind-engage/bizassess/internal/auth/middleware"
	"github.com/mind-engage/bizassess/internal/config"
	"github.com/mind-engage/bizassess/internal/profile"
	"github.com/mind-engage/bizassess/internal/report"
	"github.com/mind-engage/bizassess/internal/storage"
	"github.com/mind-engage/bizassess/internal/survey"
	syncx "github.com/mind-engage/bizassess/internal/sync"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the report sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	if cfg.Mode == config.ModeOnline && cfg.AuthHMACSecret == "dev-secret-change-me" {
		return exitError(2, "AUTH_HMAC_SECRET must be set in online mode")
	}

	dbh, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer dbh.Close()

	catalog := survey.NewSQLStore(dbh)
	if cfg.SeedOnStart {
		c, err := survey.LoadFile(cfg.SurveyCatalog)
		if err != nil {
			return exitError(3, "failed to load catalog: %v", err)
		}
		nt, nq, err := catalog.Seed(ctx, c)
		if err != nil {
			return err
		}
		logger.Info("catalog seeded", zap.Int("themes", nt), zap.Int("questions", nq))
	}

	events := syncx.NewEventRepo(dbh, "")
	tokens := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AccessTTL, cfg.RefreshTTL)
	accounts := account.NewService(account.NewSQLStore(dbh), tokens, cfg.BcryptCost, logger.Named("account"))
	if cfg.AdminPassHash != "" {
		if err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassHash); err != nil {
			return err
		}
	}
	profileStore := profile.NewSQLStore(dbh)
	assessments := assessment.NewService(assessment.NewSQLStore(dbh), catalog, profileStore, events, logger.Named("assessment"))

	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}
	renderer := report.NewRodRenderer(cfg.ChromeDebuggerURL, cfg.ChromeBin, logger.Named("chrome"))
	defer renderer.Close()
	reportStore := report.NewSQLStore(dbh)
	reports := report.NewService(assessments, renderer, blobs, reportStore, events, cfg.ReportTTL, logger.Named("report"))
	sweeper := report.NewSweeper(reportStore, blobs, cfg.ReportSweepInterval, logger.Named("sweeper"))

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Config:      cfg,
			DB:          dbh,
			Log:         logger.Named("http"),
			Auth:        tokens,
			Accounts:    accounts,
			Profiles:    profile.NewService(profileStore),
			Survey:      catalog,
			Assessments: assessments,
			Reports:     reports,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("mode", string(cfg.Mode)),
			zap.String("db", cfg.DBDriver),
			zap.String("api", cfg.APIPrefix()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
