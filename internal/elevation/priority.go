package elevation

import (
	"sort"
	"time"
)

// candidate is a per-query, non-shared annotation of a tile with its
// resolved final priority — computed fresh on every lookup so nothing
// ever writes back into the MetadataRegistry.
type candidate struct {
	tile          Tile
	finalPriority int
	resolution    int
}

// rankCandidates resolves each tile's effective metadata, computes its
// final priority for "now", and returns them sorted ascending by
// (finalPriority, resolution) — lower priority number and finer
// resolution win, matching
// original_source/gdal_interfaces.py's sort key.
func rankCandidates(tiles []Tile, registry *MetadataRegistry, now time.Time) []candidate {
	out := make([]candidate, len(tiles))
	for i, t := range tiles {
		meta := registry.EffectiveFor(t.Dir())
		out[i] = candidate{
			tile:          t,
			finalPriority: finalPriority(meta, now),
			resolution:    meta.Resolution,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].finalPriority != out[j].finalPriority {
			return out[i].finalPriority < out[j].finalPriority
		}
		return out[i].resolution < out[j].resolution
	})
	return out
}
