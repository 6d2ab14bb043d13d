package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/survey"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()
			logger.Info("schema applied", zap.String("db", cfg.DBDriver))
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the survey catalog into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.SurveyCatalog
			}
			c, err := survey.LoadFile(file)
			if err != nil {
				return exitError(3, "failed to load catalog: %v", err)
			}
			h, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()
			nt, nq, err := survey.NewSQLStore(h).Seed(cmd.Context(), c)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d themes, %d questions\n", nt, nq)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Catalog YAML (default: SURVEY_CATALOG or the embedded catalog)")
	return cmd
}
