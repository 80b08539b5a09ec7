package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/couchcryptid/delivery-point-map/internal/adapter/mapbox"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func (s *Server) handleAddressSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}
	searcher, ok := s.searcher(w)
	if !ok {
		return
	}
	matches, err := searcher.SearchAddress(r.Context(), q)
	if err != nil {
		s.logger.Warn("address search failed", "error", err)
		writeError(w, http.StatusBadGateway, "address search failed")
		return
	}
	if matches == nil {
		matches = []domain.AddressMatch{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"results": matches})
}

func (s *Server) handleAddressReverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := parseFloatParam(q, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lng, err := parseFloatParam(q, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		writeError(w, http.StatusBadRequest, "coordinate out of range")
		return
	}

	searcher, ok := s.searcher(w)
	if !ok {
		return
	}
	match, err := searcher.ReverseGeocode(r.Context(), c)
	if err != nil {
		s.logger.Warn("reverse geocode failed", "error", err)
		writeError(w, http.StatusBadGateway, "reverse geocode failed")
		return
	}
	if match.FormattedAddress == "" {
		writeError(w, http.StatusNotFound, "no address found")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, match)
}

func (s *Server) searcher(w http.ResponseWriter) (domain.AddressSearcher, bool) {
	if s.opts.Addresses == nil {
		writeError(w, http.StatusServiceUnavailable, mapbox.ErrDisabled.Error())
		return nil, false
	}
	searcher, err := s.opts.Addresses.Searcher()
	if err != nil {
		if !errors.Is(err, mapbox.ErrDisabled) {
			s.logger.Error("address searcher unavailable", "error", err)
		}
		writeError(w, http.StatusServiceUnavailable, "address search unavailable")
		return nil, false
	}
	return searcher, true
}
