package http

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type clampResponse struct {
	Center  domain.Coordinate `json:"center"`
	Clamped bool              `json:"clamped"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	state, ok := s.resolve(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, state)
}

// handleVisible returns the markers of the caller's view that fall inside the
// box the client is displaying.
func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	b, err := parseBounds(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pts, err := s.opts.Points.List(r.Context())
	if err != nil {
		s.serverError(w, "list points", err)
		return
	}
	markers, state, recomputed, err := s.opts.Session.Visible(pts, r.URL.Query().Get("selected"), b)
	s.recordResolution(state, recomputed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"markers": markers})
}

// handleClamp snaps a panned center back inside the home envelope.
func (s *Server) handleClamp(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeBody[domain.Coordinate](w, r)
	if !ok {
		return
	}
	center, clamped := s.opts.Envelope.Clamp(c)
	sharedobs.WriteJSON(w, http.StatusOK, clampResponse{Center: center, Clamped: clamped})
}

// resolve loads the current points and runs them through the session. Metrics
// are only touched when the view was actually recomputed.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (viewport.State, bool) {
	pts, err := s.opts.Points.List(r.Context())
	if err != nil {
		s.serverError(w, "list points", err)
		return viewport.State{}, false
	}
	state, recomputed := s.opts.Session.Resolve(pts, r.URL.Query().Get("selected"))
	s.recordResolution(state, recomputed)
	return state, true
}

func (s *Server) recordResolution(state viewport.State, recomputed bool) {
	if recomputed && s.opts.Metrics != nil {
		s.opts.Metrics.ViewportResolutions.WithLabelValues(string(state.Mode)).Inc()
		s.opts.Metrics.RenderablePoints.Set(float64(len(state.Markers)))
	}
}

func parseBounds(q url.Values) (viewport.Bounds, error) {
	var vals [4]float64
	for i, key := range []string{"south", "west", "north", "east"} {
		v, err := parseFloatParam(q, key)
		if err != nil {
			return viewport.Bounds{}, err
		}
		vals[i] = v
	}
	return viewport.Bounds{
		SouthWest: domain.Coordinate{Lat: vals[0], Lng: vals[1]},
		NorthEast: domain.Coordinate{Lat: vals[2], Lng: vals[3]},
	}, nil
}

func parseFloatParam(q url.Values, key string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s parameter: %q", key, raw)
	}
	return v, nil
}
