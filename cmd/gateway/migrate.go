package main

import (
	"fmt"

	"github.com/DanielPopoola/payment-gateway/internal/config"
	"github.com/DanielPopoola/payment-gateway/internal/infrastructure/persistence/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the Postgres schema",
		Long: `Runs the SQL migrations embedded in the binary against the configured
database. Only needed when storage.driver is postgres.

Examples:
  gateway migrate up
  gateway migrate down --config gateway.yaml`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig(*configFile)
			if err != nil {
				return err
			}
			return postgres.MigrateUp(&cfg.Database, cfg.Logger.NewLogger())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig(*configFile)
			if err != nil {
				return err
			}
			return postgres.MigrateDown(&cfg.Database, cfg.Logger.NewLogger())
		},
	})

	return cmd
}

func loadDatabaseConfig(configFile string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		return nil, fmt.Errorf("migrations need storage.driver=%s, got %q", config.StoragePostgres, cfg.Storage.Driver)
	}
	return cfg, nil
}
