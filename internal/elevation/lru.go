package elevation

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// TileCache bounds the number of simultaneously open raster handles and
// deduplicates concurrent opens of the same tile path. It is the engine's
// replacement for cmd/import-elevation's hand-rolled container/list LRU,
// built on hashicorp/golang-lru/v2 so eviction synchronously closes the
// evicted handle.
type TileCache struct {
	backend RasterBackend
	cache   *lru.Cache[string, Handle]
	sf      singleflight.Group
	mu      sync.Mutex
}

// NewTileCache creates a cache holding at most capacity open handles.
func NewTileCache(backend RasterBackend, capacity int) (*TileCache, error) {
	if capacity < 1 {
		capacity = 1
	}
	tc := &TileCache{backend: backend}
	c, err := lru.NewWithEvict(capacity, func(path string, h Handle) {
		if err := h.Close(); err != nil {
			slog.Warn("tile cache: error closing evicted handle", "path", path, "error", err)
		} else {
			slog.Debug("tile cache: evicted handle", "path", path)
		}
	})
	if err != nil {
		return nil, err
	}
	tc.cache = c
	return tc, nil
}

// Get returns the open handle for path, opening it through the backend
// on a cache miss. Concurrent Get calls for the same path collapse into a
// single Open call via singleflight.
func (tc *TileCache) Get(path string) (Handle, error) {
	tc.mu.Lock()
	if h, ok := tc.cache.Get(path); ok {
		tc.mu.Unlock()
		return h, nil
	}
	tc.mu.Unlock()

	v, err, _ := tc.sf.Do(path, func() (interface{}, error) {
		tc.mu.Lock()
		if h, ok := tc.cache.Get(path); ok {
			tc.mu.Unlock()
			return h, nil
		}
		tc.mu.Unlock()

		h, err := tc.backend.Open(path)
		if err != nil {
			return nil, err
		}

		tc.mu.Lock()
		tc.cache.Add(path, h)
		tc.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Handle), nil
}

// Len returns the number of currently open handles.
func (tc *TileCache) Len() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.cache.Len()
}

// CloseAll closes every open handle and empties the cache.
func (tc *TileCache) CloseAll() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, path := range tc.cache.Keys() {
		if h, ok := tc.cache.Peek(path); ok {
			_ = h.Close()
		}
	}
	tc.cache.Purge()
}
