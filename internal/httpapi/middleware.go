package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// requestIDKey is the context key under which the correlation ID set by
// RequestID is stored.
type requestIDKey struct{}

// GetRequestID returns the request's correlation ID, or "" if RequestID
// was never installed on the handler chain.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// SlowQueryThreshold marks a request as slow enough to log at WARN,
// adapted from internal/middleware/middleware.go's identical constant.
const SlowQueryThreshold = 250 * time.Millisecond

// Logger logs each request's method, path, status and duration,
// escalating to WARN above SlowQueryThreshold.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		requestID := GetRequestID(r.Context())
		if duration > SlowQueryThreshold {
			slog.Warn("SLOW REQUEST",
				"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
				"duration_ms", duration.Milliseconds(), "remote_addr", r.RemoteAddr,
				"request_id", requestID)
		} else {
			slog.Info("http request",
				"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
				"duration", duration, "remote_addr", r.RemoteAddr,
				"request_id", requestID)
		}
	})
}

// RequestID assigns each request a correlation ID, reused from the
// X-Request-ID header when a proxy or load balancer already set one,
// otherwise a fresh UUID. The ID is echoed back on the response and
// stashed in the request context for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recoverer recovers from panics and returns a 500.
func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// RealIP sets RemoteAddr from the X-Forwarded-For/X-Real-IP headers.
func RealIP(next http.Handler) http.Handler {
	return middleware.RealIP(next)
}

// Timeout bounds request handling time via context cancellation, which
// Engine.Lookup observes between candidate tries.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SecurityHeaders adds standard hardening headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}
