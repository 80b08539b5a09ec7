//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return &Client{
		token:      token,
		country:    "fr",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_SearchAddress(t *testing.T) {
	c := smokeClient(t)

	matches, err := c.SearchAddress(context.Background(), "12 boulevard Voltaire Paris")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.InDelta(t, 48.86, matches[0].Coordinate.Lat, 0.1, "lat should be near Paris")
	assert.InDelta(t, 2.37, matches[0].Coordinate.Lng, 0.1, "lng should be near Paris")
	assert.Equal(t, "Paris", matches[0].City)
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 48.8638, Lng: 2.3703})
	require.NoError(t, err)

	assert.NotEmpty(t, result.FormattedAddress)
	assert.Equal(t, "Paris", result.City)
}

func TestSmoke_CachedSearcher(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedSearcher(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.SearchAddress(context.Background(), "place Bellecour Lyon")
	require.NoError(t, err)
	require.NotEmpty(t, r1)

	r2, err := cached.SearchAddress(context.Background(), "place Bellecour Lyon")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
