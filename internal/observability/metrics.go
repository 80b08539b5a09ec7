package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "point_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Viewport metrics.
	CoordinateDiagnostics *prometheus.CounterVec // labels: kind
	ViewportResolutions   *prometheus.CounterVec // labels: mode
	RenderablePoints      prometheus.Gauge

	// Directory metrics.
	StoreErrors     *prometheus.CounterVec // labels: op={list,get,create,update,delete}
	PointChanges    *prometheus.CounterVec // labels: op, outcome={published,error}
	ValidationFails prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={search,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={search,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={search,reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CoordinateDiagnostics,
		m.ViewportResolutions,
		m.RenderablePoints,
		m.StoreErrors,
		m.PointChanges,
		m.ValidationFails,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CoordinateDiagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinate_diagnostics_total",
			Help:      "Coordinate diagnostics emitted during viewport resolution, by kind.",
		}, []string{"kind"}),
		ViewportResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewport_resolutions_total",
			Help:      "Viewport recomputations by resulting mode.",
		}, []string{"mode"}),
		RenderablePoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "renderable_points",
			Help:      "Number of points drawn by the last viewport recomputation.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Point store failures by operation.",
		}, []string{"op"}),
		PointChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "point_changes_total",
			Help:      "Point change events by operation and publish outcome.",
		}, []string{"op", "outcome"}),
		ValidationFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_validation_failures_total",
			Help:      "Admin form submissions rejected by validation.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when address autocomplete is enabled, 0 otherwise.",
		}),
	}
}
