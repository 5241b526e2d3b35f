package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medicare-backend/config"
)

var configFile string

// app is what every subcommand starts from.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: config.NewLogger(cfg.Log, os.Stderr)}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "medicare",
		Short:         "MediCare clinic management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
