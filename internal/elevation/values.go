// Package elevation implements the multi-source tiled elevation lookup
// engine: spatial indexing of raster tile footprints, a bounded cache of
// open raster handles, hierarchical directory metadata, and priority-based
// candidate resolution with fallback on no-data.
package elevation

// Elevation is a terrain height in whole metres, or NoData when no
// measurement is available at the queried point.
type Elevation int32

// NoData is the sentinel returned when no tile has data for a point.
const NoData Elevation = -9999

const seaLevel Elevation = 0

// noDataSentinels are raw raster values known to mean "no measurement"
// across the GLO-90/SRTM family of sources.
var noDataSentinels = map[int32]struct{}{
	-32768: {},
	-9999:  {},
	-99999: {},
	32767:  {},
	65535:  {},
}

const (
	minPlausible int32 = -10000
	maxPlausible int32 = 90000
)

// classify maps a raw raster cell value to an Elevation. The legacy
// bathymetry special case is checked first, so -32768 always resolves to
// sea level even though it also appears in the generic sentinel list;
// the sentinel list and then the plausible-range check follow.
func classify(raw int32) Elevation {
	if raw == -32768 {
		return seaLevel
	}
	if _, ok := noDataSentinels[raw]; ok {
		return NoData
	}
	if raw < minPlausible || raw > maxPlausible {
		return NoData
	}
	return Elevation(raw)
}
