package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/points"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 1 << 20

// pointDetail is the detail page payload. Position and StreetView are set
// only when both coordinates render.
type pointDetail struct {
	Point      domain.DeliveryPoint `json:"point"`
	Renderable bool                 `json:"renderable"`
	Position   *domain.Coordinate   `json:"position,omitempty"`
	StreetView string               `json:"street_view,omitempty"`
	Excluded   []viewport.Exclusion `json:"excluded,omitempty"`
}

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	pts, err := s.opts.Points.List(r.Context())
	if err != nil {
		s.serverError(w, "list points", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, points.Search(pts, r.URL.Query().Get("q")))
}

func (s *Server) handleGetPoint(w http.ResponseWriter, r *http.Request) {
	p, err := s.opts.Points.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePointError(w, "get point", err)
		return
	}

	detail := pointDetail{Point: p}
	renderable, excluded := viewport.Classify([]domain.DeliveryPoint{p}, s.opts.Reporter)
	if len(renderable) == 1 {
		c := renderable[0].Coordinate
		detail.Renderable = true
		detail.Position = &c
		detail.StreetView = streetViewLocation(c)
	}
	detail.Excluded = excluded
	sharedobs.WriteJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreatePoint(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeBody[domain.PointForm](w, r)
	if !ok {
		return
	}
	p, err := s.opts.Points.Create(r.Context(), form)
	if err != nil {
		s.writePointError(w, "create point", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePoint(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeBody[domain.PointForm](w, r)
	if !ok {
		return
	}
	p, err := s.opts.Points.Update(r.Context(), r.PathValue("id"), form)
	if err != nil {
		s.writePointError(w, "update point", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Points.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writePointError(w, "delete point", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// streetViewLocation formats the "lat,lng" location parameter of a Street
// View link.
func streetViewLocation(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

func (s *Server) writePointError(w http.ResponseWriter, op string, err error) {
	var verr *points.ValidationError
	switch {
	case errors.As(err, &verr):
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "point not found")
	default:
		s.serverError(w, op, err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return v, false
	}
	return v, true
}
