package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func TestDiagnosticReporter_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	metrics := NewMetricsForTesting()
	r := NewDiagnosticReporter(jsonLogger(&buf, slog.LevelInfo), metrics)

	r.Report(viewport.Diagnostic{
		Kind:    viewport.KindPointExcluded,
		PointID: "b",
		Field:   viewport.FieldLatitude,
		Input:   "999",
		Reason:  "out_of_range",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "point excluded from map", line["msg"])
	assert.Equal(t, "b", line["point_id"])
	assert.Equal(t, "latitude", line["field"])
	assert.Equal(t, "out_of_range", line["reason"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CoordinateDiagnostics.WithLabelValues("point_excluded")))
}

func TestDiagnosticReporter_TraceIsDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	metrics := NewMetricsForTesting()
	r := NewDiagnosticReporter(jsonLogger(&buf, slog.LevelInfo), metrics)

	r.Report(viewport.Diagnostic{Kind: viewport.KindCoordinateTrace, PointID: "a", Parsed: 48.85, Valid: true})

	assert.Empty(t, buf.String(), "trace must not be logged at info level")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CoordinateDiagnostics.WithLabelValues("coordinate_trace")))

	debug := NewDiagnosticReporter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), nil)
	debug.Report(viewport.Diagnostic{Kind: viewport.KindCoordinateTrace, PointID: "a", Input: "48.85", Parsed: 48.85, Valid: true})
	assert.True(t, strings.Contains(buf.String(), "valid=true"), buf.String())
}
