package elevation

import (
	"fmt"

	"github.com/paulmach/orb"
)

// OpenError wraps a failure to open a raster file.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open raster %q: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ProjectionError wraps a failure projecting a coordinate into a tile's
// native space.
type ProjectionError struct {
	Path string
	Err  error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("project point for raster %q: %v", e.Path, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

// OutOfBoundsPixel indicates the computed pixel coordinate fell outside
// the raster's [0, SizeX) x [0, SizeY) extent. Sample never returns this
// to its caller directly — it resolves straight to NoData — but backends
// log one of these at debug level so an out-of-bounds query is
// distinguishable from a genuine raster NO_DATA cell.
type OutOfBoundsPixel struct {
	Path  string
	X, Y  int
	SizeX int
	SizeY int
}

func (e *OutOfBoundsPixel) Error() string {
	return fmt.Sprintf("pixel (%d,%d) out of bounds for raster %q (%dx%d)", e.X, e.Y, e.Path, e.SizeX, e.SizeY)
}

// Corners are the four corner coordinates of a raster in its native CRS.
// No reprojection is applied: Catalog.Build reads them directly as WGS84
// (lng, lat) points to compute a tile's Footprint.
type Corners struct {
	TopLeft, TopRight, BottomLeft, BottomRight orb.Point
}

// Handle is an opened raster file, owned by a RasterBackend implementation.
type Handle interface {
	// Corners returns the raster's footprint corners, already in WGS84.
	Corners() Corners
	// Sample returns the raw raster cell value nearest to (lat, lng),
	// classified into an Elevation (including NoData on any internal
	// failure: out-of-bounds pixel, a sentinel value, or a read error).
	Sample(lat, lng float64) Elevation
	// Close releases the underlying raster resources.
	Close() error
}

// RasterBackend opens raster tile files. A single implementation backs
// every open Handle for an Engine instance; GDALBackend is the only one
// used in production, but the interface exists so tests can supply a
// fake without real .tif fixtures.
type RasterBackend interface {
	Open(path string) (Handle, error)
}
