package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/delivery-point-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/delivery-point-map/internal/adapter/kafka"
	"github.com/couchcryptid/delivery-point-map/internal/adapter/mapbox"
	"github.com/couchcryptid/delivery-point-map/internal/adapter/postgres"
	"github.com/couchcryptid/delivery-point-map/internal/config"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/couchcryptid/delivery-point-map/internal/points"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	"github.com/spf13/cobra"
)

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	// Point change events (feature-flagged via KAFKA_ENABLED).
	var publisher points.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("point change events enabled", "topic", cfg.KafkaPointsTopic)
	} else {
		logger.Info("point change events disabled")
	}

	// Address search (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var build func() (domain.AddressSearcher, error)
	if cfg.MapboxEnabled {
		build = func() (domain.AddressSearcher, error) {
			client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxCountry, metrics, logger)
			return mapbox.NewCachedSearcher(client, cfg.MapboxCacheSize, metrics), nil
		}
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox address search enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox address search disabled")
	}

	reporter := observability.NewDiagnosticReporter(logger, metrics)
	svc := points.NewService(postgres.NewStore(pool), publisher, metrics, logger)
	session := viewport.NewSession(viewport.NewResolver(viewportConfig(cfg), reporter))

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Options{
		Points:    svc,
		Session:   session,
		Envelope:  viewport.HomeEnvelope(),
		Addresses: mapbox.NewProvider(build),
		Reporter:  reporter,
		Metrics:   metrics,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
