package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"medicare-backend/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", config.MigrateUp),
		migrateStep("down", "Roll back the most recent migration", config.MigrateDown),
		migrateStep("status", "Print the migration status", config.MigrationStatus),
	)
	return cmd
}

func migrateStep(use, short string, run func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			db, err := config.ConnectDB(cmd.Context(), a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := run(db); err != nil {
				return err
			}
			a.logger.Info().Str("command", "migrate "+use).Msg("done")
			return nil
		},
	}
}
