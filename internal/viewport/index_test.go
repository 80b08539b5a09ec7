package viewport

import (
	"testing"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarkers() []Marker {
	return []Marker{
		{PointID: "paris", Position: domain.Coordinate{Lat: 48.8566, Lng: 2.3522}},
		{PointID: "marseille", Position: domain.Coordinate{Lat: 43.2965, Lng: 5.3698}},
		{PointID: "versailles", Position: domain.Coordinate{Lat: 48.8049, Lng: 2.1204}, Selected: true},
		{PointID: "lille", Position: domain.Coordinate{Lat: 50.6292, Lng: 3.0573}},
	}
}

func TestIndex_Within(t *testing.T) {
	idx := NewIndex(testMarkers())
	assert.Equal(t, 4, idx.Len())

	// Île-de-France.
	got, err := idx.Within(Bounds{
		SouthWest: domain.Coordinate{Lat: 48.1, Lng: 1.4},
		NorthEast: domain.Coordinate{Lat: 49.3, Lng: 3.6},
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "paris", got[0].PointID)
	assert.Equal(t, "versailles", got[1].PointID)
	assert.True(t, got[1].Selected)
}

func TestIndex_WithinEmptyArea(t *testing.T) {
	idx := NewIndex(testMarkers())

	got, err := idx.Within(BoundsAround(domain.Coordinate{Lat: 46, Lng: -3}, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_WithinDegenerateBoxOnMarker(t *testing.T) {
	idx := NewIndex(testMarkers())
	lille := domain.Coordinate{Lat: 50.6292, Lng: 3.0573}

	got, err := idx.Within(Bounds{SouthWest: lille, NorthEast: lille})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lille", got[0].PointID)
}

func TestIndex_WithinRejectsInvertedBox(t *testing.T) {
	idx := NewIndex(testMarkers())

	_, err := idx.Within(Bounds{
		SouthWest: domain.Coordinate{Lat: 50, Lng: 3},
		NorthEast: domain.Coordinate{Lat: 45, Lng: 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bounding box")
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)

	got, err := idx.Within(BoundsAround(DefaultConfig().DefaultCenter, 10, 10))
	require.NoError(t, err)
	assert.Empty(t, got)
}
