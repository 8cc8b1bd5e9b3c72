package elevation

import "testing"

func TestTileCacheBoundAndEviction(t *testing.T) {
	backend := newFakeBackend()
	for _, p := range []string{"a.tif", "b.tif", "c.tif"} {
		backend.register(p, 100)
	}

	cache, err := NewTileCache(backend, 2)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Get("a.tif"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get("b.tif"); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	// "a.tif" is now least-recently-used; getting "c.tif" should evict it.
	if _, err := cache.Get("c.tif"); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() after eviction = %d, want 2 (bound respected)", cache.Len())
	}
	if !backend.handles["a.tif"].closed {
		t.Error("expected evicted handle for a.tif to be closed")
	}
	if backend.handles["b.tif"].closed || backend.handles["c.tif"].closed {
		t.Error("non-evicted handles should remain open")
	}
}

func TestTileCacheGetIsIdempotentWithinCapacity(t *testing.T) {
	backend := newFakeBackend()
	backend.register("a.tif", 100)

	cache, err := NewTileCache(backend, 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Get("a.tif"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get("a.tif"); err != nil {
		t.Fatal(err)
	}
	if len(backend.opens) != 1 {
		t.Errorf("backend.Open called %d times, want 1 (cache hit on second Get)", len(backend.opens))
	}
}

func TestTileCacheCloseAll(t *testing.T) {
	backend := newFakeBackend()
	backend.register("a.tif", 100)
	backend.register("b.tif", 100)

	cache, err := NewTileCache(backend, 5)
	if err != nil {
		t.Fatal(err)
	}
	cache.Get("a.tif")
	cache.Get("b.tif")
	cache.CloseAll()

	if !backend.handles["a.tif"].closed || !backend.handles["b.tif"].closed {
		t.Error("CloseAll should close every open handle")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() after CloseAll = %d, want 0", cache.Len())
	}
}
