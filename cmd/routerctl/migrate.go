package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/azlan18/iDEA/internal/config"
	"github.com/azlan18/iDEA/internal/observability"
	"github.com/azlan18/iDEA/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply Postgres migrations from POSTGRES_MIGRATIONS_DIR",
	RunE:  runMigrate,
}

var migrateDir string

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "", "Migrations directory (overrides POSTGRES_MIGRATIONS_DIR)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	dir := cfg.Postgres.MigrationsDir
	if migrateDir != "" {
		dir = migrateDir
	}
	return persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), dir, logger)
}
