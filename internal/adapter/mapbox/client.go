package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
)

const (
	methodSearch  = "search"
	methodReverse = "reverse"

	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	searchLimit    = 5
)

// Client implements domain.AddressSearcher using the Mapbox Geocoding API.
type Client struct {
	token      string
	country    string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client restricted to country (ISO
// 3166 alpha-2, empty for worldwide).
func NewClient(token string, timeout time.Duration, country string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:   token,
		country: country,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// SearchAddress returns up to five address or POI suggestions for query.
func (c *Client) SearchAddress(ctx context.Context, query string) ([]domain.AddressMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"autocomplete": {"true"},
		"limit":        {fmt.Sprint(searchLimit)},
		"types":        {"address,poi"},
	}
	if c.country != "" {
		params.Set("country", c.country)
	}

	features, err := c.doRequest(ctx, u+"?"+params.Encode(), methodSearch)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.AddressMatch, 0, len(features))
	for _, f := range features {
		m, ok := toMatch(f)
		if !ok {
			c.logger.Warn("mapbox feature without usable center", "place_name", f.PlaceName)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// ReverseGeocode returns the nearest address to a coordinate.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.AddressMatch, error) {
	// Mapbox uses lon,lat order.
	u := fmt.Sprintf("%s/%.6f,%.6f.json", c.baseURL, coord.Lng, coord.Lat)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"address"},
	}

	features, err := c.doRequest(ctx, u+"?"+params.Encode(), methodReverse)
	if err != nil {
		return domain.AddressMatch{}, err
	}
	if len(features) == 0 {
		return domain.AddressMatch{}, nil
	}
	m, _ := toMatch(features[0])
	return m, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, method string) ([]feature, error) {
	start := time.Now()
	defer func() {
		c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues(method, "empty").Inc()
		return nil, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues(method, "success").Inc()
	return mapboxResp.Features, nil
}

// toMatch converts a feature, reporting false when its center is missing or
// out of range.
func toMatch(f feature) (domain.AddressMatch, bool) {
	m := domain.AddressMatch{
		FormattedAddress: f.PlaceName,
		City:             f.city(),
		Relevance:        f.Relevance,
	}
	if len(f.Center) != 2 {
		return m, false
	}
	m.Coordinate = domain.Coordinate{Lat: f.Center[1], Lng: f.Center[0]}
	return m, m.Coordinate.Valid()
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64      `json:"center"` // [lon, lat]
	PlaceName string         `json:"place_name"`
	PlaceType []string       `json:"place_type"`
	Text      string         `json:"text"`
	Relevance float64        `json:"relevance"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID   string `json:"id"` // e.g. "place.12345", "postcode.678"
	Text string `json:"text"`
}

// city is the feature's own name when it is a place, otherwise the
// enclosing place from its context.
func (f feature) city() string {
	for _, t := range f.PlaceType {
		if t == "place" {
			return f.Text
		}
	}
	for _, c := range f.Context {
		if strings.HasPrefix(c.ID, "place.") {
			return c.Text
		}
	}
	return ""
}
