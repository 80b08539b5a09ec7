package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/delivery-point-map/internal/config"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	"github.com/spf13/cobra"
)

func runViewport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pts, err := loadPoints(pointsFile)
	if err != nil {
		return err
	}

	// Diagnostics go to stderr so stdout stays valid JSON.
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	reporter := observability.NewDiagnosticReporter(logger, nil)

	return printViewport(cmd.OutOrStdout(), viewportConfig(cfg), reporter, pts, selectedID)
}

func printViewport(w io.Writer, cfg viewport.Config, reporter viewport.Reporter, pts []domain.DeliveryPoint, selected string) error {
	state := viewport.NewResolver(cfg, reporter).Resolve(pts, selected)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}
