package elevation

import (
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DirectoryMetadata is the raw contents of a directory's metadata.json,
// per SPEC_FULL.md §3/§6. Pointer fields distinguish "absent" from a
// zero value so inheritance overlay can tell which fields a directory
// actually set.
type DirectoryMetadata struct {
	Priority        *int    `json:"priority,omitempty"`
	Name            *string `json:"name,omitempty"`
	Resolution      *int    `json:"resolution,omitempty"`
	Date            *string `json:"date,omitempty"`
	DynamicPriority *int    `json:"dynamic_priority,omitempty"`
}

// EffectiveMetadata is the fully resolved, default-filled metadata record
// for a directory, after ancestor inheritance overlay.
type EffectiveMetadata struct {
	Priority        int
	Name            string
	Resolution      int
	Date            string // "" if unset
	DynamicPriority *int   // nil means dynamic priority is disabled
}

const (
	defaultPriority   = 9999
	defaultResolution = 2000
)

// MetadataRegistry resolves effective metadata for any tile by directory,
// built once at startup by walking the data root for metadata.json files
// and overlaying ancestors nearest-wins, grounded on
// original_source/gdal_interfaces.py's _get_source_info.
type MetadataRegistry struct {
	dataRoot string
	raw      map[string]DirectoryMetadata // dir -> parsed metadata.json
}

// BuildMetadataRegistry walks dataRoot collecting every metadata.json.
// Parse errors are logged and that directory is treated as if it had no
// file of its own (it still inherits from its ancestors).
func BuildMetadataRegistry(dataRoot string) *MetadataRegistry {
	reg := &MetadataRegistry{
		dataRoot: filepath.Clean(dataRoot),
		raw:      make(map[string]DirectoryMetadata),
	}

	filepath.Walk(dataRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || info.Name() != "metadata.json" {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			slog.Warn("metadata: cannot read", "path", path, "error", readErr)
			return nil
		}
		var dm DirectoryMetadata
		if jsonErr := json.Unmarshal(data, &dm); jsonErr != nil {
			slog.Warn("metadata: cannot parse, skipping", "path", path, "error", jsonErr)
			return nil
		}
		reg.raw[filepath.Dir(path)] = dm
		return nil
	})

	return reg
}

// EffectiveFor returns the resolved metadata that applies to the given
// directory, walking up to the nearest ancestor (including the data
// root) that carries a metadata.json, applying farthest-to-nearest
// overlay on top of the package defaults.
func (r *MetadataRegistry) EffectiveFor(dir string) EffectiveMetadata {
	dir = filepath.Clean(dir)

	// Collect the ancestor chain from dir up to dataRoot (inclusive),
	// then apply overlays farthest-ancestor-first so the nearest wins.
	var chain []string
	for d := dir; ; {
		chain = append(chain, d)
		if d == r.dataRoot || d == filepath.Dir(d) {
			break
		}
		d = filepath.Dir(d)
	}

	eff := EffectiveMetadata{
		Priority:   defaultPriority,
		Name:       "default",
		Resolution: defaultResolution,
	}
	if dir != r.dataRoot {
		eff.Name = filepath.Base(dir)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		raw, ok := r.raw[chain[i]]
		if !ok {
			continue
		}
		if raw.Priority != nil {
			eff.Priority = *raw.Priority
		}
		if raw.Name != nil {
			eff.Name = *raw.Name
		}
		if raw.Resolution != nil {
			eff.Resolution = *raw.Resolution
		}
		if raw.Date != nil {
			eff.Date = *raw.Date
		}
		if raw.DynamicPriority != nil {
			eff.DynamicPriority = raw.DynamicPriority
		}
	}

	return eff
}

const monthLengthDays = 30.4375

// ageInMonths mirrors original_source/gdal_interfaces.py's age_in_months:
// round((today - date) / 30.4375). A missing or malformed date yields
// 360 months, matching the spec's fallback.
func ageInMonths(dateStr string, now time.Time) int {
	if dateStr == "" {
		return 360
	}
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return 360
	}
	days := now.Sub(parsed).Hours() / 24
	return int(math.Round(days / monthLengthDays))
}

// finalPriority computes a tile's final priority for a query. It never
// mutates meta (or the registry) — the shared-payload-mutation
// bug flagged in SPEC_FULL.md §9 is avoided by always returning a fresh
// value.
func finalPriority(meta EffectiveMetadata, now time.Time) int {
	if meta.DynamicPriority == nil {
		return meta.Priority
	}
	age := ageInMonths(meta.Date, now)
	return meta.Priority - (1000 - meta.Resolution) - (360 - age) - *meta.DynamicPriority
}
