// Package httpapi is the demo HTTP façade exercising the elevation
// engine's public contract. It is intentionally thin: the engine
// (internal/elevation) owns every lookup decision; this package only
// parses query parameters, applies rate limiting, and renders JSON.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/terrastack/elevation-engine/internal/cache"
	"github.com/terrastack/elevation-engine/internal/elevation"
	"github.com/terrastack/elevation-engine/internal/ratelimit"
)

// Engine is the subset of *elevation.Engine the façade depends on.
type Engine interface {
	Lookup(ctx context.Context, lat, lng float64) elevation.Elevation
}

// Handlers wires the engine, optional rate limiter, and optional result
// cache into chi routes.
type Handlers struct {
	engine  Engine
	limiter *ratelimit.Limiter // nil disables rate limiting
	cache   *cache.Cache       // nil disables result caching
}

// New constructs Handlers. limiter and resultCache may be nil.
func New(engine Engine, limiter *ratelimit.Limiter, resultCache *cache.Cache) *Handlers {
	return &Handlers{engine: engine, limiter: limiter, cache: resultCache}
}

// Router builds the chi mux: CORS, the teacher's middleware stack order,
// then routes.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout(30 * time.Second))
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", h.handleHealth)
	r.Get("/v1/lookup", h.handleLookup)

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLookup answers GET /v1/lookup?lat=..&lng=..
func (h *Handlers) handleLookup(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		result, err := h.limiter.Check(r.Context(), r.RemoteAddr)
		if err == nil && !result.Allowed {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondError(w, http.StatusBadRequest, "lat and lng query parameters must be valid WGS84 coordinates")
		return
	}

	var elev elevation.Elevation
	var cached bool
	if h.cache != nil {
		elev, cached = h.cache.GetLookup(r.Context(), lat, lng)
	}
	if !cached {
		elev = h.engine.Lookup(r.Context(), lat, lng)
		if h.cache != nil {
			_ = h.cache.SetLookup(r.Context(), lat, lng, elev)
		}
	}

	resp := LookupResponse{Latitude: lat, Longitude: lng}
	if elev != elevation.NoData {
		v := int32(elev)
		resp.Elevation = &v
	}
	respondJSON(w, http.StatusOK, resp)
}
