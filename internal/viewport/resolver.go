// Package viewport turns a list of delivery points and an optional selection
// into the map view the UI should render: which markers to draw, where to
// center and how far to zoom.
package viewport

import (
	"github.com/couchcryptid/delivery-point-map/internal/domain"
)

// Mode names the branch that produced a State.
type Mode string

const (
	ModeFocus   Mode = "focus"   // centered on the selected point
	ModeFit     Mode = "fit"     // bounding box of all renderable points
	ModeDefault Mode = "default" // nothing renderable, home-region view
)

// Config holds the viewport constants. Sizes are in pixels.
type Config struct {
	DefaultCenter domain.Coordinate
	DefaultZoom   int
	FocusZoom     int
	MinZoom       int
	MaxZoom       int // ceiling for bounding-box fits
	Padding       int
	Width         int
	Height        int
	TileSize      int
}

// DefaultConfig centers on mainland France at country scale.
func DefaultConfig() Config {
	return Config{
		DefaultCenter: domain.Coordinate{Lat: 46.603354, Lng: 1.888334},
		DefaultZoom:   6,
		FocusZoom:     15,
		MinZoom:       0,
		MaxZoom:       13,
		Padding:       50,
		Width:         1024,
		Height:        600,
		TileSize:      256,
	}
}

// withDefaults fills zero-valued sizes so a partially built Config is usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.TileSize <= 0 {
		c.TileSize = d.TileSize
	}
	if c.Padding < 0 {
		c.Padding = 0
	}
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = c.MinZoom
	}
	return c
}

// Marker is one renderable point as drawn on the map.
type Marker struct {
	PointID  string            `json:"point_id"`
	Position domain.Coordinate `json:"position"`
	Selected bool              `json:"selected"`
}

// State is the derived map view. It is never stored; each resolution
// produces a fresh value.
type State struct {
	Center   domain.Coordinate `json:"center"`
	Zoom     int               `json:"zoom"`
	Bounds   *Bounds           `json:"bounds,omitempty"`
	Mode     Mode              `json:"mode"`
	Markers  []Marker          `json:"markers"`
	Excluded []Exclusion       `json:"excluded,omitempty"`
}

// Resolver computes viewport states. It holds no per-call state and is safe
// for concurrent use if its Reporter is.
type Resolver struct {
	cfg      Config
	reporter Reporter
}

// NewResolver creates a Resolver. A nil reporter discards diagnostics.
func NewResolver(cfg Config, reporter Reporter) *Resolver {
	if reporter == nil {
		reporter = Discard
	}
	return &Resolver{cfg: cfg.withDefaults(), reporter: reporter}
}

// Resolve derives the viewport for points with an optional selectedID
// ("" means show all). A selection that does not resolve to a renderable
// point falls back to the all-points view.
func (r *Resolver) Resolve(points []domain.DeliveryPoint, selectedID string) State {
	renderable, excluded := Classify(points, r.reporter)

	selected, ok := r.lookupSelection(points, renderable, selectedID)

	markers := make([]Marker, len(renderable))
	flagged := false
	for i, p := range renderable {
		sel := ok && !flagged && p.PointID == selectedID
		flagged = flagged || sel
		markers[i] = Marker{
			PointID:  p.PointID,
			Position: p.Coordinate,
			Selected: sel,
		}
	}

	state := State{Markers: markers, Excluded: excluded}
	switch {
	case ok:
		state.Center = selected.Coordinate
		state.Zoom = r.cfg.FocusZoom
		state.Mode = ModeFocus
	case len(renderable) == 0:
		state.Center = r.cfg.DefaultCenter
		state.Zoom = r.cfg.DefaultZoom
		state.Mode = ModeDefault
	default:
		b := boundsOf(renderable)
		state.Center, state.Zoom = fit(b, r.cfg)
		state.Bounds = &b
		state.Mode = ModeFit
	}
	return state
}

func (r *Resolver) lookupSelection(points []domain.DeliveryPoint, renderable []Renderable, selectedID string) (Renderable, bool) {
	if selectedID == "" {
		return Renderable{}, false
	}
	for _, p := range renderable {
		if p.PointID == selectedID {
			return p, true
		}
	}

	reason := "unknown_id"
	for i := range points {
		if points[i].ID == selectedID {
			reason = "not_renderable"
			break
		}
	}
	r.reporter.Report(Diagnostic{
		Kind:    KindSelectionUnresolved,
		PointID: selectedID,
		Reason:  reason,
	})
	return Renderable{}, false
}
