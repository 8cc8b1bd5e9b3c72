package elevation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// epsilon pads query points into a tiny bounding box so tiles whose
// footprint exactly touches the point are still picked up under R-tree
// edge semantics. Kept as a single global constant per SPEC_FULL.md's
// Open Question note — not yet made per-source-configurable.
const epsilon = 0.0001

// Config controls Engine construction.
type Config struct {
	DataRoot             string
	SummaryFile          string
	OpenInterfacesSize   int
	AlwaysRebuildSummary bool
}

// Engine is the multi-source tiled elevation lookup engine: spatial
// index + metadata registry + bounded tile cache, combined by Lookup.
type Engine struct {
	index        *SpatialIndex
	registry     *MetadataRegistry
	cache        *TileCache
	priorityMode bool
}

// New builds an Engine from cfg, auto-detecting priority mode the way
// original_source/server.py's check_for_priority_mode does: priority
// mode is enabled if any metadata.json exists anywhere under DataRoot.
func New(cfg Config, backend RasterBackend) (*Engine, error) {
	catalog := NewCatalog(cfg.DataRoot, cfg.SummaryFile, backend)
	records, err := catalog.LoadOrBuild(cfg.AlwaysRebuildSummary)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	tiles := make([]Tile, len(records))
	for i, r := range records {
		tiles[i] = Tile{
			Path:      r.File,
			SourceDir: r.SourceDir,
			Footprint: Footprint{
				LatMin: r.Coords[0], LatMax: r.Coords[1],
				LngMin: r.Coords[2], LngMax: r.Coords[3],
			},
		}
	}

	index := NewSpatialIndex(tiles)
	registry := BuildMetadataRegistry(cfg.DataRoot)
	priorityMode := HasAnyMetadata(cfg.DataRoot)

	capacity := cfg.OpenInterfacesSize
	if capacity <= 0 {
		capacity = 5
	}
	cache, err := NewTileCache(backend, capacity)
	if err != nil {
		return nil, fmt.Errorf("build tile cache: %w", err)
	}

	slog.Info("elevation engine ready",
		"tiles", index.Len(),
		"priority_mode", priorityMode,
		"cache_capacity", capacity,
	)

	return &Engine{index: index, registry: registry, cache: cache, priorityMode: priorityMode}, nil
}

// Close releases every open raster handle.
func (e *Engine) Close() {
	e.cache.CloseAll()
}

// Lookup returns the elevation at (lat, lng), or NoData if no tile
// covers the point or every covering tile reports no data there.
func (e *Engine) Lookup(ctx context.Context, lat, lng float64) Elevation {
	if !e.priorityMode {
		return e.lookupNearest(lat, lng)
	}

	candidates := e.index.Intersection(lat-epsilon, lng-epsilon, lat+epsilon, lng+epsilon)
	if len(candidates) == 0 {
		return NoData
	}
	if len(candidates) == 1 {
		return e.sample(candidates[0], lat, lng)
	}

	ranked := rankCandidates(candidates, e.registry, time.Now())
	for _, c := range ranked {
		select {
		case <-ctx.Done():
			return NoData
		default:
		}

		elev := e.sample(c.tile, lat, lng)
		slog.Debug("elevation candidate tried",
			"path", c.tile.Path,
			"final_priority", c.finalPriority,
			"resolution", c.resolution,
			"result", elev,
		)
		if elev != NoData {
			return elev
		}
	}
	return NoData
}

// lookupNearest is the non-priority degenerate path: no metadata.json
// exists anywhere under the data root, so every query simply samples the
// single nearest tile.
func (e *Engine) lookupNearest(lat, lng float64) Elevation {
	tile, ok := e.index.Nearest(lat, lng)
	if !ok {
		return NoData
	}
	return e.sample(tile, lat, lng)
}

func (e *Engine) sample(t Tile, lat, lng float64) Elevation {
	h, err := e.cache.Get(t.Path)
	if err != nil {
		slog.Warn("elevation: failed to open candidate tile", "path", t.Path, "error", err)
		return NoData
	}
	return h.Sample(lat, lng)
}
