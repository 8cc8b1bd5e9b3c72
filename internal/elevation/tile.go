package elevation

import (
	"path/filepath"

	"github.com/paulmach/orb"
)

// Footprint is the WGS84 bounding rectangle of a tile, stored in (lat,
// lng) axis order to match the spatial index convention — NOT orb's usual
// (lng, lat) / (x, y) convention. Min/Max here mean latMin/latMax on one
// axis and lngMin/lngMax on the other; callers must not treat this as a
// generic orb.Bound.
type Footprint struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
}

// Bound converts the footprint to an orb.Bound in orb's native (x=lng,
// y=lat) convention, for callers that need geometry operations rather
// than index insertion.
func (f Footprint) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{f.LngMin, f.LatMin},
		Max: orb.Point{f.LngMax, f.LatMax},
	}
}

// Contains reports whether (lat, lng) falls within the footprint.
func (f Footprint) Contains(lat, lng float64) bool {
	return lat >= f.LatMin && lat <= f.LatMax && lng >= f.LngMin && lng <= f.LngMax
}

// Tile is one raster file in the catalog.
type Tile struct {
	// IndexID is a stable, monotonic identifier assigned at index build
	// time; it has no meaning across separate index instances.
	IndexID int

	Path      string
	SourceDir string
	Footprint Footprint
}

// Dir returns the tile's containing directory, used for metadata lookup.
func (t Tile) Dir() string {
	return filepath.Dir(t.Path)
}
