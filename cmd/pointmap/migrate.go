package main

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/adapter/postgres"
	"github.com/couchcryptid/delivery-point-map/internal/config"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/spf13/cobra"
)

// migrateTimeout bounds connection retries plus applying all migrations.
const migrateTimeout = time.Minute

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}
