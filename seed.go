package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medicare-backend/config"
	"medicare-backend/services"
	"medicare-backend/store"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo admin, doctor and patient accounts",
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

			seeder := services.NewSeeder(store.NewUserStore(db), services.Passwords{}, a.logger)
			report, err := seeder.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d accounts, %d already existed\n", len(report.Created), len(report.Skipped))
			return nil
		},
	}
}
