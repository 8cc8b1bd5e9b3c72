package elevation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// buildTestEngine writes a summary.json to a temp data root (tests that
// need metadata.json files write them first with writeMetadata) and
// constructs an Engine directly against a fake backend, bypassing the
// real .tif-walking Catalog.Build step.
func buildTestEngine(t *testing.T, dataRoot string, records []SummaryRecord, backend RasterBackend) *Engine {
	t.Helper()
	summaryPath := filepath.Join(dataRoot, "summary.json")
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := New(Config{DataRoot: dataRoot, SummaryFile: summaryPath, OpenInterfacesSize: 5}, backend)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestLookupSingleTileNoMetadata(t *testing.T) {
	root := t.TempDir()
	backend := newFakeBackend()
	tilePath := filepath.Join(root, "tile_0001.tif")
	backend.register(tilePath, 125)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tilePath, Coords: [4]float64{34, 35, -119, -118}, SourceDir: root},
	}, backend)
	defer e.Close()

	got := e.Lookup(context.Background(), 34.052235, -118.243683)
	if got != 125 {
		t.Errorf("Lookup = %d, want 125", got)
	}
}

func TestLookupPriorityFallbackToNextTileOnNoData(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, filepath.Join(root, "a"), `{"priority":1000,"resolution":30}`)
	writeMetadata(t, filepath.Join(root, "b"), `{"priority":3000,"resolution":250}`)

	backend := newFakeBackend()
	tileA := filepath.Join(root, "a", "tile.tif")
	tileB := filepath.Join(root, "b", "tile.tif")
	backend.register(tileA, -9999) // covers the point, but no data
	backend.register(tileB, 87)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tileA, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "a")},
		{File: tileB, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "b")},
	}, backend)
	defer e.Close()

	got := e.Lookup(context.Background(), 34.05, -118.24)
	if got != 87 {
		t.Errorf("Lookup = %d, want fallback value 87", got)
	}
}

func TestLookupDynamicPriorityPrefersNewerSource(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, filepath.Join(root, "a"), `{"priority":2000,"resolution":30,"date":"2006-01-24","dynamic_priority":10}`)
	writeMetadata(t, filepath.Join(root, "b"), `{"priority":2500,"resolution":100}`)

	backend := newFakeBackend()
	tileA := filepath.Join(root, "a", "tile.tif")
	tileB := filepath.Join(root, "b", "tile.tif")
	backend.register(tileA, 10)
	backend.register(tileB, 20)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tileA, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "a")},
		{File: tileB, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "b")},
	}, backend)
	defer e.Close()

	got := e.Lookup(context.Background(), 34.05, -118.24)
	if got != 10 {
		t.Errorf("Lookup = %d, want tile A's value (higher dynamic priority wins)", got)
	}
}

func TestLookupNoCandidatesReturnsNoData(t *testing.T) {
	root := t.TempDir()
	backend := newFakeBackend()
	e := buildTestEngine(t, root, nil, backend)
	defer e.Close()

	got := e.Lookup(context.Background(), 0, 0)
	if got != NoData {
		t.Errorf("Lookup with empty index = %d, want NoData", got)
	}
}

func TestLookupAllCandidatesNoDataReturnsNoData(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, filepath.Join(root, "a"), `{"priority":1000}`)
	writeMetadata(t, filepath.Join(root, "b"), `{"priority":2000}`)

	backend := newFakeBackend()
	tileA := filepath.Join(root, "a", "tile.tif")
	tileB := filepath.Join(root, "b", "tile.tif")
	backend.register(tileA, -9999)
	backend.register(tileB, -9999)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tileA, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "a")},
		{File: tileB, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "b")},
	}, backend)
	defer e.Close()

	got := e.Lookup(context.Background(), 34.05, -118.24)
	if got != NoData {
		t.Errorf("Lookup with all-NoData candidates = %d, want NoData", got)
	}
}

func TestLookupMalformedDateDoesNotPanic(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, filepath.Join(root, "a"), `{"priority":3000,"resolution":250,"date":"2xxx-xx-xx","dynamic_priority":-5}`)

	backend := newFakeBackend()
	tileA := filepath.Join(root, "a", "tile.tif")
	backend.register(tileA, 42)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tileA, Coords: [4]float64{34, 35, -119, -118}, SourceDir: filepath.Join(root, "a")},
	}, backend)
	defer e.Close()

	got := e.Lookup(context.Background(), 34.05, -118.24)
	if got != 42 {
		t.Errorf("Lookup = %d, want 42", got)
	}
}

func TestLookupNonPriorityModeDegradesToNearest(t *testing.T) {
	root := t.TempDir()
	backend := newFakeBackend()
	tilePath := filepath.Join(root, "tile.tif")
	backend.register(tilePath, 55)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tilePath, Coords: [4]float64{0, 1, 0, 1}, SourceDir: root},
	}, backend)
	defer e.Close()

	if e.priorityMode {
		t.Fatal("expected priority mode to be false with no metadata.json present")
	}
	got := e.Lookup(context.Background(), 0.5, 0.5)
	if got != 55 {
		t.Errorf("Lookup (non-priority mode) = %d, want 55", got)
	}
}

func TestLookupRepeatedQueriesAreIdempotent(t *testing.T) {
	root := t.TempDir()
	backend := newFakeBackend()
	tilePath := filepath.Join(root, "tile.tif")
	backend.register(tilePath, 200)

	e := buildTestEngine(t, root, []SummaryRecord{
		{File: tilePath, Coords: [4]float64{34, 35, -119, -118}, SourceDir: root},
	}, backend)
	defer e.Close()

	first := e.Lookup(context.Background(), 34.05, -118.24)
	second := e.Lookup(context.Background(), 34.05, -118.24)
	if first != second {
		t.Errorf("repeated lookups differ: %d vs %d", first, second)
	}
}
