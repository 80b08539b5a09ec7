package viewport

import (
	"math"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
)

// maxMercatorLat is where the Web Mercator projection is cut off.
const maxMercatorLat = 85.0511287798

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	SouthWest domain.Coordinate `json:"south_west"`
	NorthEast domain.Coordinate `json:"north_east"`
}

// Contains reports whether c lies inside b, edges included.
func (b Bounds) Contains(c domain.Coordinate) bool {
	return c.Lat >= b.SouthWest.Lat && c.Lat <= b.NorthEast.Lat &&
		c.Lng >= b.SouthWest.Lng && c.Lng <= b.NorthEast.Lng
}

// boundsOf returns the smallest rectangle enclosing coords. coords must not be empty.
func boundsOf(coords []Renderable) Bounds {
	b := Bounds{SouthWest: coords[0].Coordinate, NorthEast: coords[0].Coordinate}
	for _, r := range coords[1:] {
		c := r.Coordinate
		b.SouthWest.Lat = math.Min(b.SouthWest.Lat, c.Lat)
		b.SouthWest.Lng = math.Min(b.SouthWest.Lng, c.Lng)
		b.NorthEast.Lat = math.Max(b.NorthEast.Lat, c.Lat)
		b.NorthEast.Lng = math.Max(b.NorthEast.Lng, c.Lng)
	}
	return b
}

// project maps a coordinate to Web Mercator world space, both axes in [0, 1]
// with y growing southward.
func project(c domain.Coordinate) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, c.Lat))
	sin := math.Sin(lat * math.Pi / 180)
	x = (c.Lng + 180) / 360
	y = 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)
	return x, y
}

func unproject(x, y float64) domain.Coordinate {
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180 / math.Pi
	return domain.Coordinate{Lat: lat, Lng: x*360 - 180}
}

// fit computes the center and zoom that show b inside a width x height pixel
// surface with padding on every side. The zoom is floored to an integer and
// clamped to [minZoom, maxZoom]; a zero-area box always gets maxZoom.
func fit(b Bounds, cfg Config) (domain.Coordinate, int) {
	x0, y0 := project(domain.Coordinate{Lat: b.NorthEast.Lat, Lng: b.SouthWest.Lng})
	x1, y1 := project(domain.Coordinate{Lat: b.SouthWest.Lat, Lng: b.NorthEast.Lng})
	center := unproject((x0+x1)/2, (y0+y1)/2)

	availW := math.Max(1, float64(cfg.Width-2*cfg.Padding))
	availH := math.Max(1, float64(cfg.Height-2*cfg.Padding))

	zoom := math.Min(
		zoomToFit(availW, x1-x0, cfg.TileSize),
		zoomToFit(availH, y1-y0, cfg.TileSize),
	)
	if math.IsInf(zoom, 1) || zoom > float64(cfg.MaxZoom) {
		return center, cfg.MaxZoom
	}
	z := int(math.Floor(zoom))
	if z < cfg.MinZoom {
		z = cfg.MinZoom
	}
	return center, z
}

// zoomToFit returns the fractional zoom at which span world units take
// exactly avail pixels.
func zoomToFit(avail, span float64, tileSize int) float64 {
	if span <= 0 {
		return math.Inf(1)
	}
	return math.Log2(avail / (float64(tileSize) * span))
}
