package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-TechService/internal/config"
	"github.com/m04kA/SMC-TechService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/metrics"
)

const pingTimeout = 5 * time.Second

// loadConfig читает конфигурацию по пути из флага --config
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// openDatabase подключается к PostgreSQL, настраивает пул и оборачивает соединение метриками.
// При m == nil обёртка работает без сбора метрик.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*sql.DB, *dbmetrics.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	return db, dbmetrics.WrapWithDefault(db, m, stopCh), nil
}
