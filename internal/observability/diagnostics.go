package observability

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/delivery-point-map/internal/viewport"
)

// DiagnosticReporter forwards viewport diagnostics to the logger and to the
// coordinate_diagnostics_total counter. Traces are logged at debug level,
// everything else at warn.
type DiagnosticReporter struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewDiagnosticReporter creates a reporter. metrics may be nil.
func NewDiagnosticReporter(logger *slog.Logger, metrics *Metrics) *DiagnosticReporter {
	return &DiagnosticReporter{logger: logger, metrics: metrics}
}

func (r *DiagnosticReporter) Report(d viewport.Diagnostic) {
	if r.metrics != nil && d.Kind != viewport.KindCoordinateTrace {
		r.metrics.CoordinateDiagnostics.WithLabelValues(string(d.Kind)).Inc()
	}

	level := slog.LevelWarn
	msg := "coordinate diagnostic"
	switch d.Kind {
	case viewport.KindCoordinateTrace:
		level = slog.LevelDebug
		msg = "coordinate trace"
	case viewport.KindNullCoordinate:
		msg = "null coordinate"
	case viewport.KindParseFallback:
		msg = "coordinate parse fallback"
	case viewport.KindPointExcluded:
		msg = "point excluded from map"
	case viewport.KindSelectionUnresolved:
		msg = "selected point not renderable, showing all points"
	}

	ctx := context.Background()
	if !r.logger.Enabled(ctx, level) {
		return
	}
	attrs := []slog.Attr{slog.String("kind", string(d.Kind)), slog.String("point_id", d.PointID)}
	if d.Field != "" {
		attrs = append(attrs, slog.String("field", d.Field))
	}
	if d.Input != "" {
		attrs = append(attrs, slog.String("input", d.Input))
	}
	if d.Kind == viewport.KindCoordinateTrace || d.Kind == viewport.KindParseFallback {
		attrs = append(attrs, slog.Float64("parsed", d.Parsed))
	}
	if d.Kind == viewport.KindCoordinateTrace {
		attrs = append(attrs, slog.Bool("valid", d.Valid))
	}
	if d.Reason != "" {
		attrs = append(attrs, slog.String("reason", d.Reason))
	}
	r.logger.LogAttrs(ctx, level, msg, attrs...)
}
