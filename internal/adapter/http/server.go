// Package http exposes the point directory, viewport resolution and address
// lookup over a JSON API, next to the health and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PointDirectory is the subset of points.Service the API needs.
type PointDirectory interface {
	sharedobs.ReadinessChecker
	List(ctx context.Context) ([]domain.DeliveryPoint, error)
	Get(ctx context.Context, id string) (domain.DeliveryPoint, error)
	Create(ctx context.Context, form domain.PointForm) (domain.DeliveryPoint, error)
	Update(ctx context.Context, id string, form domain.PointForm) (domain.DeliveryPoint, error)
	Delete(ctx context.Context, id string) error
}

// AddressSource hands out the shared address searcher, or mapbox.ErrDisabled.
type AddressSource interface {
	Searcher() (domain.AddressSearcher, error)
}

// Options wires the server to its collaborators.
type Options struct {
	Points    PointDirectory
	Session   *viewport.Session
	Envelope  viewport.Envelope
	Addresses AddressSource
	Reporter  viewport.Reporter
	Metrics   *observability.Metrics
}

// Server exposes the JSON API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(addr string, opts Options, logger *slog.Logger) *Server {
	if opts.Reporter == nil {
		opts.Reporter = viewport.Discard
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		opts:   opts,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(opts.Points))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/points", s.handleListPoints)
	mux.HandleFunc("GET /api/points/{id}", s.handleGetPoint)
	mux.HandleFunc("POST /api/points", s.handleCreatePoint)
	mux.HandleFunc("PUT /api/points/{id}", s.handleUpdatePoint)
	mux.HandleFunc("DELETE /api/points/{id}", s.handleDeletePoint)

	mux.HandleFunc("GET /api/viewport", s.handleViewport)
	mux.HandleFunc("GET /api/viewport/visible", s.handleVisible)
	mux.HandleFunc("POST /api/viewport/clamp", s.handleClamp)

	mux.HandleFunc("GET /api/address/search", s.handleAddressSearch)
	mux.HandleFunc("GET /api/address/reverse", s.handleAddressReverse)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
