package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/toeic-session-service/internal/config"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
	"github.com/SAP-F-2025/toeic-session-service/pkg"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := utils.NewLogger(os.Stdout, cfg.IsProduction())

		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}
		if err := postgres.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("Database schema is up to date")
		return nil
	},
}
