package viewport

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/dhconnelly/rtreego"
)

const (
	indexDimensions  = 2
	indexMinChildren = 25
	indexMaxChildren = 50
	// markerTolerance is the side of the box each marker occupies, in degrees.
	markerTolerance = 1e-9
)

type indexedMarker struct {
	Marker
	order int
	rect  *rtreego.Rect
}

func (m *indexedMarker) Bounds() *rtreego.Rect { return m.rect }

// Index answers "which markers are inside this box" for the visible part of
// the map. Build a new one whenever the marker set changes.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex indexes markers by position (lat on the first axis, lng on the second).
func NewIndex(markers []Marker) *Index {
	tree := rtreego.NewTree(indexDimensions, indexMinChildren, indexMaxChildren)
	for i, m := range markers {
		tree.Insert(&indexedMarker{
			Marker: m,
			order:  i,
			rect:   rtreego.Point{m.Position.Lat, m.Position.Lng}.ToRect(markerTolerance),
		})
	}
	return &Index{tree: tree, size: len(markers)}
}

// Len returns the number of indexed markers.
func (i *Index) Len() int { return i.size }

// Within returns the markers inside b, in their original order.
func (i *Index) Within(b Bounds) ([]Marker, error) {
	latSpan := b.NorthEast.Lat - b.SouthWest.Lat
	lngSpan := b.NorthEast.Lng - b.SouthWest.Lng
	if latSpan < 0 || lngSpan < 0 {
		return nil, fmt.Errorf("invalid bounding box: south-west %v is not below north-east %v", b.SouthWest, b.NorthEast)
	}

	// rtreego rejects zero-length sides.
	rect, err := rtreego.NewRect(
		rtreego.Point{b.SouthWest.Lat, b.SouthWest.Lng},
		[]float64{latSpan + markerTolerance, lngSpan + markerTolerance},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	hits := i.tree.SearchIntersect(rect)
	found := make([]*indexedMarker, 0, len(hits))
	for _, h := range hits {
		m, ok := h.(*indexedMarker)
		if !ok || !b.Contains(m.Position) {
			continue
		}
		found = append(found, m)
	}
	sort.Slice(found, func(a, c int) bool { return found[a].order < found[c].order })

	out := make([]Marker, len(found))
	for k, m := range found {
		out[k] = m.Marker
	}
	return out, nil
}

// BoundsAround returns the box centered on c spanning the given degrees.
func BoundsAround(c domain.Coordinate, latSpan, lngSpan float64) Bounds {
	return Bounds{
		SouthWest: domain.Coordinate{Lat: c.Lat - latSpan/2, Lng: c.Lng - lngSpan/2},
		NorthEast: domain.Coordinate{Lat: c.Lat + latSpan/2, Lng: c.Lng + lngSpan/2},
	}
}
