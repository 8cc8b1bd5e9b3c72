package elevation

import "fmt"

// fakeHandle is an in-memory stand-in for an opened raster tile, used so
// the engine's decision logic can be tested without real .tif fixtures.
type fakeHandle struct {
	corners Corners
	// sampleFn returns the raw (pre-classification) cell value for a
	// point, or an error to simulate a read failure.
	sampleFn func(lat, lng float64) (int32, error)
	closed   bool
}

func (h *fakeHandle) Corners() Corners { return h.corners }

func (h *fakeHandle) Sample(lat, lng float64) Elevation {
	raw, err := h.sampleFn(lat, lng)
	if err != nil {
		return NoData
	}
	return classify(raw)
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

// fakeBackend opens handles from a registry keyed by path, recording
// every Open call so tests can assert on cache behavior.
type fakeBackend struct {
	handles map[string]*fakeHandle
	opens   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{handles: make(map[string]*fakeHandle)}
}

func (b *fakeBackend) register(path string, constant int32) *fakeHandle {
	h := &fakeHandle{
		sampleFn: func(lat, lng float64) (int32, error) { return constant, nil },
	}
	b.handles[path] = h
	return h
}

func (b *fakeBackend) Open(path string) (Handle, error) {
	b.opens = append(b.opens, path)
	h, ok := b.handles[path]
	if !ok {
		return nil, fmt.Errorf("fakeBackend: no handle registered for %q", path)
	}
	return h, nil
}
