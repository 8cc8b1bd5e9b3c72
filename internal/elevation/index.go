package elevation

import (
	"github.com/tidwall/rtree"
)

// SpatialIndex is an R-tree over tile footprints, keyed in (lat, lng)
// axis order — not the conventional (lng, lat) — to match
// original_source/gdal_interfaces.py's _build_index, which inserts
// (left=latMin, bottom=lngMin, right=latMax, top=lngMax). Build and
// query must stay consistent in this convention; mixing them silently
// returns wrong candidates.
type SpatialIndex struct {
	tree rtree.RTreeG[Tile]
}

// NewSpatialIndex builds an index over the given tiles. Each tile's
// IndexID is overwritten with its insertion order (1-based) for
// referential stability within this index instance.
func NewSpatialIndex(tiles []Tile) *SpatialIndex {
	idx := &SpatialIndex{}
	for i := range tiles {
		tiles[i].IndexID = i + 1
		idx.insert(tiles[i])
	}
	return idx
}

func (idx *SpatialIndex) insert(t Tile) {
	min := [2]float64{t.Footprint.LatMin, t.Footprint.LngMin}
	max := [2]float64{t.Footprint.LatMax, t.Footprint.LngMax}
	idx.tree.Insert(min, max, t)
}

// Intersection returns every tile whose footprint overlaps the query
// rectangle (latMin, lngMin) .. (latMax, lngMax).
func (idx *SpatialIndex) Intersection(latMin, lngMin, latMax, lngMax float64) []Tile {
	var out []Tile
	min := [2]float64{latMin, lngMin}
	max := [2]float64{latMax, lngMax}
	idx.tree.Search(min, max, func(_, _ [2]float64, t Tile) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Nearest returns the single tile closest to (lat, lng), used by the
// non-priority degenerate lookup path. It expands a search box around
// the point geometrically (0.01° growing fourfold up to 163.84°) until a
// candidate is found, since tidwall/rtree's generic RTreeG exposes Search
// (box intersection) but not a dedicated nearest-neighbor query.
func (idx *SpatialIndex) Nearest(lat, lng float64) (Tile, bool) {
	const maxRadius = 180.0
	for radius := 0.01; radius <= maxRadius; radius *= 4 {
		candidates := idx.Intersection(lat-radius, lng-radius, lat+radius, lng+radius)
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0]
		bestDist := sqDist(lat, lng, best)
		for _, c := range candidates[1:] {
			if d := sqDist(lat, lng, c); d < bestDist {
				best, bestDist = c, d
			}
		}
		return best, true
	}
	return Tile{}, false
}

func sqDist(lat, lng float64, t Tile) float64 {
	clat := (t.Footprint.LatMin + t.Footprint.LatMax) / 2
	clng := (t.Footprint.LngMin + t.Footprint.LngMax) / 2
	dLat := lat - clat
	dLng := lng - clng
	return dLat*dLat + dLng*dLng
}

// Len returns the number of tiles in the index.
func (idx *SpatialIndex) Len() int {
	return idx.tree.Len()
}
