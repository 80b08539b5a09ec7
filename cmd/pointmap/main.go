// Command pointmap serves the delivery-point map API and provides offline
// tools for migrating the database and checking point files.
//
// Usage:
//
//	pointmap serve
//	pointmap migrate
//	pointmap viewport --file points.json [--selected <id>]
//	pointmap validate --file points.json
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/delivery-point-map/internal/config"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	"github.com/spf13/cobra"
)

var (
	pointsFile string
	selectedID string
)

var rootCmd = &cobra.Command{
	Use:           "pointmap",
	Short:         "Delivery point map service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

var viewportCmd = &cobra.Command{
	Use:   "viewport",
	Short: "Print the map view for a JSON file of points",
	RunE:  runViewport,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report every point in a JSON file that cannot be drawn",
	RunE:  runValidate,
}

func init() {
	viewportCmd.Flags().StringVarP(&pointsFile, "file", "f", "", "JSON array of delivery points")
	viewportCmd.Flags().StringVarP(&selectedID, "selected", "s", "", "Id of the selected point")
	validateCmd.Flags().StringVarP(&pointsFile, "file", "f", "", "JSON array of delivery points")
	_ = viewportCmd.MarkFlagRequired("file")
	_ = validateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, migrateCmd, viewportCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// viewportConfig applies the MAP_* settings on top of the built-in defaults.
func viewportConfig(cfg *config.Config) viewport.Config {
	vc := viewport.DefaultConfig()
	vc.Width = cfg.MapWidth
	vc.Height = cfg.MapHeight
	vc.Padding = cfg.MapPadding
	vc.MaxZoom = cfg.MapMaxZoom
	return vc
}

func loadPoints(path string) ([]domain.DeliveryPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pts []domain.DeliveryPoint
	if err := json.Unmarshal(data, &pts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pts, nil
}
