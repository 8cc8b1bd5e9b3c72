package elevation

import "testing"

func tileAt(path string, latMin, latMax, lngMin, lngMax float64) Tile {
	return Tile{
		Path: path,
		Footprint: Footprint{
			LatMin: latMin, LatMax: latMax,
			LngMin: lngMin, LngMax: lngMax,
		},
	}
}

func TestSpatialIndexIntersection(t *testing.T) {
	tiles := []Tile{
		tileAt("a.tif", 34, 35, -119, -118),
		tileAt("b.tif", 40, 41, -74, -73),
	}
	idx := NewSpatialIndex(tiles)

	got := idx.Intersection(34.05-epsilon, -118.24-epsilon, 34.05+epsilon, -118.24+epsilon)
	if len(got) != 1 || got[0].Path != "a.tif" {
		t.Fatalf("Intersection = %+v, want only a.tif", got)
	}
}

func TestSpatialIndexNoCandidates(t *testing.T) {
	idx := NewSpatialIndex([]Tile{tileAt("a.tif", 34, 35, -119, -118)})
	got := idx.Intersection(-epsilon, -epsilon, epsilon, epsilon)
	if len(got) != 0 {
		t.Fatalf("Intersection at unrelated point = %+v, want empty", got)
	}
}

func TestSpatialIndexNearest(t *testing.T) {
	tiles := []Tile{
		tileAt("near.tif", 0, 1, 0, 1),
		tileAt("far.tif", 50, 51, 50, 51),
	}
	idx := NewSpatialIndex(tiles)

	tile, ok := idx.Nearest(0.5, 0.5)
	if !ok || tile.Path != "near.tif" {
		t.Fatalf("Nearest = %+v, ok=%v, want near.tif", tile, ok)
	}
}

func TestSpatialIndexIndexIDsAreUnique(t *testing.T) {
	tiles := []Tile{
		tileAt("a.tif", 0, 1, 0, 1),
		tileAt("b.tif", 1, 2, 1, 2),
		tileAt("c.tif", 2, 3, 2, 3),
	}
	idx := NewSpatialIndex(tiles)
	seen := map[int]bool{}
	all := idx.Intersection(-1000, -1000, 1000, 1000)
	for _, t2 := range all {
		if seen[t2.IndexID] {
			t.Fatalf("duplicate IndexID %d", t2.IndexID)
		}
		seen[t2.IndexID] = true
	}
}
