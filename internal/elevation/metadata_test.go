package elevation

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMetadata(t *testing.T, dir string, contents string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMetadataRegistryAncestorInheritance(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, filepath.Join(root, "north"), `{"priority":1500,"resolution":100}`)
	writeMetadata(t, filepath.Join(root, "north", "arctic"), `{"resolution":32}`)

	reg := BuildMetadataRegistry(root)
	eff := reg.EffectiveFor(filepath.Join(root, "north", "arctic"))

	if eff.Priority != 1500 {
		t.Errorf("Priority = %d, want inherited 1500", eff.Priority)
	}
	if eff.Resolution != 32 {
		t.Errorf("Resolution = %d, want overridden 32", eff.Resolution)
	}
	if eff.Name != "arctic" {
		t.Errorf("Name = %q, want directory basename %q (no name override anywhere in the chain)", eff.Name, "arctic")
	}
}

func TestMetadataRegistryDefaultsAtRoot(t *testing.T) {
	root := t.TempDir()
	reg := BuildMetadataRegistry(root)
	eff := reg.EffectiveFor(root)

	if eff.Priority != defaultPriority || eff.Resolution != defaultResolution {
		t.Errorf("expected defaults, got %+v", eff)
	}
	if eff.Name != "default" {
		t.Errorf("Name at root = %q, want literal %q", eff.Name, "default")
	}
}

func TestMetadataRegistryIdempotent(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, root, `{"priority":42}`)
	reg := BuildMetadataRegistry(root)

	first := reg.EffectiveFor(root)
	second := reg.EffectiveFor(root)
	if first != second {
		t.Errorf("EffectiveFor not idempotent: %+v vs %+v", first, second)
	}
}

func TestFinalPriorityNullDynamicPriorityIsUnchanged(t *testing.T) {
	meta := EffectiveMetadata{Priority: 2500, Resolution: 5, Date: "1999-01-01"}
	if got := finalPriority(meta, time.Now()); got != 2500 {
		t.Errorf("finalPriority with nil DynamicPriority = %d, want 2500 (base unchanged)", got)
	}
}

func TestFinalPriorityMalformedDateFallsBackTo360Months(t *testing.T) {
	dp := -5
	meta := EffectiveMetadata{Priority: 3000, Resolution: 250, Date: "2xxx-xx-xx", DynamicPriority: &dp}
	now := time.Now()
	got := finalPriority(meta, now)
	want := 3000 - (1000 - 250) - (360 - 360) - (-5)
	if got != want {
		t.Errorf("finalPriority with malformed date = %d, want %d", got, want)
	}
}

func TestAgeInMonthsMissingDate(t *testing.T) {
	if got := ageInMonths("", time.Now()); got != 360 {
		t.Errorf("ageInMonths(\"\") = %d, want 360", got)
	}
}
