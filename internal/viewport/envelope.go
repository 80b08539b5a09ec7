package viewport

import (
	"math"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
)

// Envelope is a fixed geographic rectangle the map is not allowed to leave.
type Envelope struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// HomeMargin is how far, in degrees, panning may drift past the home region.
const HomeMargin = 1.0

// HomeEnvelope is mainland France and Corsica expanded by HomeMargin.
func HomeEnvelope() Envelope {
	return Envelope{South: 41.3, West: -5.2, North: 51.1, East: 9.6}.Expand(HomeMargin)
}

// Expand grows the envelope by margin degrees on each side, staying within
// valid latitude and longitude ranges.
func (e Envelope) Expand(margin float64) Envelope {
	return Envelope{
		South: math.Max(-90, e.South-margin),
		West:  math.Max(-180, e.West-margin),
		North: math.Min(90, e.North+margin),
		East:  math.Min(180, e.East+margin),
	}
}

// Contains reports whether c is inside the envelope, edges included.
func (e Envelope) Contains(c domain.Coordinate) bool {
	return c.Lat >= e.South && c.Lat <= e.North && c.Lng >= e.West && c.Lng <= e.East
}

// Clamp returns the nearest point inside the envelope and whether c had to
// move. Called after every pan or drag; the snap is applied without animation.
func (e Envelope) Clamp(c domain.Coordinate) (domain.Coordinate, bool) {
	if e.Contains(c) {
		return c, false
	}
	return domain.Coordinate{
		Lat: math.Max(e.South, math.Min(e.North, c.Lat)),
		Lng: math.Max(e.West, math.Min(e.East, c.Lng)),
	}, true
}
