// Package main is the demo HTTP façade entrypoint: boots the elevation
// engine, runs an optional startup smoke test, and serves lookups over
// HTTP with graceful shutdown.
//
// Usage:
//
//	elevation-server
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terrastack/elevation-engine/internal/cache"
	"github.com/terrastack/elevation-engine/internal/config"
	"github.com/terrastack/elevation-engine/internal/elevation"
	"github.com/terrastack/elevation-engine/internal/httpapi"
	"github.com/terrastack/elevation-engine/internal/ratelimit"
)

// smokeTestPoints are known coordinates run through the engine at
// startup before traffic is accepted, the same pre-launch check
// original_source/server.py's test_priority_system performs.
var smokeTestPoints = []struct {
	name     string
	lat, lng float64
}{
	{"Los Angeles", 34.052235, -118.243683},
	{"New York City", 40.712776, -74.005974},
	{"Gulf of Guinea", 0.0, 0.0},
}

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	engine, err := elevation.New(elevation.Config{
		DataRoot:             cfg.DataFolder,
		SummaryFile:          cfg.SummaryFile,
		OpenInterfacesSize:   cfg.OpenInterfacesSize,
		AlwaysRebuildSummary: cfg.AlwaysRebuildSummary,
	}, elevation.GDALBackend{})
	if err != nil {
		slog.Error("failed to build elevation engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	runSmokeTest(engine)

	var limiter *ratelimit.Limiter
	if cfg.RedisURL != "" {
		opt, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			slog.Warn("invalid REDIS_URL, rate limiting disabled", "error", parseErr)
		} else {
			client := redis.NewClient(opt)
			if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
				slog.Warn("cannot reach redis, rate limiting disabled", "error", pingErr)
			} else {
				limiter = ratelimit.New(client)
			}
		}
	}

	var resultCache *cache.Cache
	if cfg.RedisURL != "" {
		os.Setenv("REDIS_URL", cfg.RedisURL)
		resultCache, err = cache.New()
		if err != nil {
			slog.Warn("cannot reach redis, result caching disabled", "error", err)
			resultCache = nil
		} else {
			defer resultCache.Close()
		}
	}

	handlers := httpapi.New(engine, limiter, resultCache)

	srv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      handlers.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting elevation server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}

func runSmokeTest(engine *elevation.Engine) {
	for _, p := range smokeTestPoints {
		elev := engine.Lookup(context.Background(), p.lat, p.lng)
		if elev == elevation.NoData {
			slog.Warn("smoke test: no data", "point", p.name, "lat", p.lat, "lng", p.lng)
		} else {
			slog.Info("smoke test: resolved", "point", p.name, "elevation", elev)
		}
	}
}
