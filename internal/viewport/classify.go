package viewport

import "github.com/couchcryptid/delivery-point-map/internal/domain"

const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
)

// Exclusion explains why a point was left off the map.
type Exclusion struct {
	PointID string `json:"point_id"`
	Field   string `json:"field"`
	Input   string `json:"input"`
	Reason  string `json:"reason"` // "null" or "out_of_range"
}

// Renderable is a point whose coordinates can be drawn.
type Renderable struct {
	PointID    string
	Coordinate domain.Coordinate
}

// Classify normalizes every point's coordinates and splits the set into
// renderable points and per-field exclusions. Input order is preserved.
func Classify(points []domain.DeliveryPoint, reporter Reporter) ([]Renderable, []Exclusion) {
	if reporter == nil {
		reporter = Discard
	}
	renderable := make([]Renderable, 0, len(points))
	var excluded []Exclusion

	for i := range points {
		p := &points[i]
		lat, latEx := classifyField(p.ID, FieldLatitude, p.Latitude, domain.IsValidLatitude, reporter)
		lng, lngEx := classifyField(p.ID, FieldLongitude, p.Longitude, domain.IsValidLongitude, reporter)
		if latEx == nil && lngEx == nil {
			renderable = append(renderable, Renderable{
				PointID:    p.ID,
				Coordinate: domain.Coordinate{Lat: lat, Lng: lng},
			})
			continue
		}
		for _, ex := range []*Exclusion{latEx, lngEx} {
			if ex == nil {
				continue
			}
			excluded = append(excluded, *ex)
			reporter.Report(Diagnostic{
				Kind:    KindPointExcluded,
				PointID: ex.PointID,
				Field:   ex.Field,
				Input:   ex.Input,
				Reason:  ex.Reason,
			})
		}
	}
	return renderable, excluded
}

// classifyField normalizes one coordinate and returns a non-nil Exclusion
// when it cannot be rendered.
func classifyField(id, field string, raw domain.RawCoordinate, valid func(float64) bool, reporter Reporter) (float64, *Exclusion) {
	v, outcome := domain.ParseCoordinate(raw)
	ok := valid(v)

	reporter.Report(Diagnostic{
		Kind:    KindCoordinateTrace,
		PointID: id,
		Field:   field,
		Input:   raw.String(),
		Parsed:  v,
		Valid:   ok,
	})

	switch outcome {
	case domain.Missing:
		reporter.Report(Diagnostic{Kind: KindNullCoordinate, PointID: id, Field: field, Input: raw.String()})
		return v, &Exclusion{PointID: id, Field: field, Input: raw.String(), Reason: "null"}
	case domain.Unparsable, domain.NonFinite:
		reporter.Report(Diagnostic{
			Kind:    KindParseFallback,
			PointID: id,
			Field:   field,
			Input:   raw.String(),
			Parsed:  v,
			Reason:  outcome.String(),
		})
	}

	if !ok {
		return v, &Exclusion{PointID: id, Field: field, Input: raw.String(), Reason: "out_of_range"}
	}
	return v, nil
}
