// Command assessd serves the business self-assessment API and offers
// maintenance commands for its database and survey catalog.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mind-engage/bizassess/internal/config"
	"github.com/mind-engage/bizassess/internal/db"
)

var version = "0.1.0"

var (
	verbose bool
	cfg     config.Config
	logger  = zap.NewNop()
)

func main() {
	root := &cobra.Command{
		Use:           "assessd",
		Short:         "Business self-assessment service",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			l, err := newLogger(verbose || cfg.LogLevel == "debug")
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newScoreCmd())

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func openDB(ctx context.Context) (*sql.DB, error) {
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return nil, exitError(2, "invalid DB_DRIVER: %v", err)
	}
	h, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}
	return h, nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
