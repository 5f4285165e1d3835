package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-TechService/internal/config"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-TechService/pkg/logger"
)

const migrateTimeout = 2 * time.Minute

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate: database driver %q has no schema to migrate", cfg.Database.Driver)
			}

			log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Close()

			log.Info("Running migrations (config=%s)", path)

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			db, wrapped, err := openDatabase(ctx, cfg.Database, nil, nil, log)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.Apply(ctx, wrapped, log)
			if err != nil {
				log.Error("Migrations failed: %v", err)
				return err
			}

			log.Info("Migrations executed successfully: applied=%d", applied)
			return nil
		},
	}
}
