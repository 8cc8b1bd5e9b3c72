package elevation

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
)

// gdalMu serializes all GDAL calls. GDAL and libtiff keep internal global
// state that is not safe for concurrent access from multiple goroutines,
// so every call into godal anywhere in this package goes through this
// lock, matching cmd/import-elevation's gdalMu.
var gdalMu sync.Mutex

func init() {
	gdalMu.Lock()
	godal.RegisterAll()
	gdalMu.Unlock()
}

// GDALBackend opens GeoTIFF/COG raster tiles via github.com/airbusgeo/godal.
// It assumes tiles are natively WGS84-aligned (true for the Copernicus
// GLO-90 tiles this engine targets) and samples the inverse geotransform
// directly against (lat, lng) without an intermediate reprojection step —
// see DESIGN.md for why that simplification was kept rather than guessed
// at via godal's spatial-reference API.
type GDALBackend struct{}

func (GDALBackend) Open(path string) (Handle, error) {
	gdalMu.Lock()
	ds, err := godal.Open(path)
	if err != nil {
		gdalMu.Unlock()
		return nil, &OpenError{Path: path, Err: err}
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		ds.Close()
		gdalMu.Unlock()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("geotransform: %w", err)}
	}

	bands := ds.Bands()
	if len(bands) == 0 {
		ds.Close()
		gdalMu.Unlock()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("no raster bands")}
	}

	structure := ds.Structure()
	gdalMu.Unlock()

	return &gdalHandle{
		path:  path,
		ds:    ds,
		gt:    gt,
		band:  bands[0],
		sizeX: structure.SizeX,
		sizeY: structure.SizeY,
	}, nil
}

type gdalHandle struct {
	path  string
	mu    sync.Mutex
	ds    *godal.Dataset
	gt    [6]float64
	band  godal.Band
	sizeX int
	sizeY int
}

// corner projects a pixel/line pair through the tile's forward
// geotransform to native (x, y) — assumed WGS84 (lng, lat).
func (h *gdalHandle) corner(px, py float64) orb.Point {
	x := h.gt[0] + px*h.gt[1] + py*h.gt[2]
	y := h.gt[3] + px*h.gt[4] + py*h.gt[5]
	return orb.Point{x, y}
}

func (h *gdalHandle) Corners() Corners {
	return Corners{
		TopLeft:     h.corner(0, 0),
		TopRight:    h.corner(float64(h.sizeX), 0),
		BottomLeft:  h.corner(0, float64(h.sizeY)),
		BottomRight: h.corner(float64(h.sizeX), float64(h.sizeY)),
	}
}

func (h *gdalHandle) Sample(lat, lng float64) Elevation {
	// Inverse geotransform: gt[0]=originX, gt[1]=pixel width,
	// gt[3]=originY, gt[5]=pixel height (negative). Rotation terms
	// (gt[2], gt[4]) are zero for north-up tiles, which is all this
	// backend supports.
	px := (lng - h.gt[0]) / h.gt[1]
	py := (lat - h.gt[3]) / h.gt[5]

	x := int(px)
	y := int(py)

	if x < 0 || x >= h.sizeX || y < 0 || y >= h.sizeY {
		oob := &OutOfBoundsPixel{Path: h.path, X: x, Y: y, SizeX: h.sizeX, SizeY: h.sizeY}
		slog.Debug("pixel out of bounds", "error", oob)
		return NoData
	}

	gdalMu.Lock()
	buf := make([]float32, 1)
	err := h.band.Read(x, y, buf, 1, 1)
	gdalMu.Unlock()

	if err != nil {
		return NoData
	}

	return classify(int32(buf[0]))
}

func (h *gdalHandle) Close() error {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	h.ds.Close()
	return nil
}
