package elevation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// SummaryRecord is one entry in the persisted tile summary JSON, matching
// the schema in SPEC_FULL.md §6: footprint and path only, no baked-in
// priority/resolution/date so metadata edits take effect without a
// rescan.
type SummaryRecord struct {
	File      string     `json:"file"`
	Coords    [4]float64 `json:"coords"` // latMin, latMax, lngMin, lngMax
	SourceDir string     `json:"source_dir"`
}

// Catalog scans a data root for raster tiles and persists their
// footprints to a summary file, grounded on
// original_source/gdal_interfaces.py's _all_files / create_summary_json /
// read_summary_json.
type Catalog struct {
	DataRoot    string
	SummaryFile string
	backend     RasterBackend
}

// NewCatalog constructs a Catalog over dataRoot, writing/reading its
// summary at summaryFile (typically "<dataRoot>/summary.json").
func NewCatalog(dataRoot, summaryFile string, backend RasterBackend) *Catalog {
	return &Catalog{DataRoot: dataRoot, SummaryFile: summaryFile, backend: backend}
}

// HasSummary reports whether a summary file already exists on disk.
func (c *Catalog) HasSummary() bool {
	_, err := os.Stat(c.SummaryFile)
	return err == nil
}

// Build walks DataRoot for .tif files, opens each once to compute its
// WGS84 footprint, and writes the summary file. Symlinked .tif files are
// included; symbolic links to directories are not descended into.
func (c *Catalog) Build() ([]SummaryRecord, error) {
	var records []SummaryRecord
	var totalBytes int64

	err := filepath.Walk(c.DataRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			slog.Warn("catalog: walk error, skipping", "path", path, "error", err)
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".tif") {
			return nil
		}

		h, openErr := c.backend.Open(path)
		if openErr != nil {
			slog.Warn("catalog: skipping unreadable tile", "path", path, "error", openErr)
			return nil
		}
		defer h.Close()

		corners := h.Corners()
		// orb.Point is [lng, lat] (index 0, 1); the footprint itself is
		// stored in (lat, lng) order per the spatial index convention.
		rec := SummaryRecord{
			File: path,
			Coords: [4]float64{
				corners.BottomRight[1], corners.TopRight[1],
				corners.TopLeft[0], corners.TopRight[0],
			},
			SourceDir: filepath.Dir(path),
		}
		records = append(records, rec)
		totalBytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk data root %q: %w", c.DataRoot, err)
	}

	slog.Info("catalog built",
		"tiles", len(records),
		"size", humanize.Bytes(uint64(totalBytes)),
		"data_root", c.DataRoot,
	)

	if err := c.writeSummary(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Catalog) writeSummary(records []SummaryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(c.SummaryFile, data, 0o644); err != nil {
		return fmt.Errorf("write summary %q: %w", c.SummaryFile, err)
	}
	return nil
}

// Load reads an existing summary file from disk.
func (c *Catalog) Load() ([]SummaryRecord, error) {
	data, err := os.ReadFile(c.SummaryFile)
	if err != nil {
		return nil, fmt.Errorf("read summary %q: %w", c.SummaryFile, err)
	}
	var records []SummaryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse summary %q: %w", c.SummaryFile, err)
	}
	return records, nil
}

// LoadOrBuild loads the existing summary unless forceRebuild is set or no
// summary exists, mirroring the ALWAYS_REBUILD_SUMMARY toggle.
func (c *Catalog) LoadOrBuild(forceRebuild bool) ([]SummaryRecord, error) {
	if !forceRebuild && c.HasSummary() {
		records, err := c.Load()
		if err == nil {
			return records, nil
		}
		slog.Warn("catalog: summary corrupt, rebuilding", "error", err)
	}
	return c.Build()
}

// HasAnyMetadata reports whether any metadata.json exists anywhere under
// dataRoot, the same test original_source/server.py's
// check_for_priority_mode performs to decide whether to run in priority
// mode at all.
func HasAnyMetadata(dataRoot string) bool {
	found := false
	filepath.Walk(dataRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || found {
			return nil
		}
		if !info.IsDir() && info.Name() == "metadata.json" {
			found = true
		}
		return nil
	})
	return found
}
