// Package main provides the elevation-index CLI for building (or
// rebuilding) the tile catalog summary over a data root.
//
// Usage:
//
//	elevation-index --data ./data
//	elevation-index --data ./data --rebuild --verbose
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrastack/elevation-engine/internal/config"
	"github.com/terrastack/elevation-engine/internal/elevation"
	"github.com/terrastack/elevation-engine/internal/tilesource"
)

var (
	dataRoot string
	rebuild  bool
	verbose  bool
	prefetch bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "elevation-index",
		Short: "Build the elevation tile catalog summary",
		Long: `Walks a data root for raster tiles, opens each once to record its
WGS84 footprint, and writes summary.json.`,
		RunE: run,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.Flags().StringVar(&dataRoot, "data", "data", "Data root directory to scan")
	rootCmd.Flags().BoolVar(&rebuild, "rebuild", false, "Force rebuild even if a summary already exists")
	rootCmd.Flags().BoolVar(&prefetch, "prefetch", false, "Sync missing tiles from S3 (S3_BUCKET/S3_PREFIX) before scanning")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	if prefetch {
		if cfg.S3Bucket == "" {
			return fmt.Errorf("--prefetch requires S3_BUCKET to be set")
		}
		prefetcher, err := tilesource.NewS3Prefetcher(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return fmt.Errorf("create s3 prefetcher: %w", err)
		}
		n, err := prefetcher.Sync(ctx, dataRoot)
		if err != nil {
			return fmt.Errorf("s3 prefetch: %w", err)
		}
		slog.Info("s3 prefetch complete", "downloaded", n, "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
	}

	summaryFile := dataRoot + "/summary.json"
	catalog := elevation.NewCatalog(dataRoot, summaryFile, elevation.GDALBackend{})

	records, err := catalog.LoadOrBuild(rebuild)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	if cfg.DatabaseURL != "" {
		store, err := elevation.NewPostgresCatalogStore(ctx, cfg.DatabaseURL, "file://internal/elevation/migrations")
		if err != nil {
			slog.Warn("postgres catalog store unavailable, summary.json remains authoritative", "error", err)
		} else {
			defer store.Close()
			if err := store.Replace(ctx, dataRoot, records); err != nil {
				slog.Warn("failed to replace postgres catalog, summary.json remains authoritative", "error", err)
			} else {
				slog.Info("catalog replicated to postgres", "tiles", len(records), "data_root", dataRoot)
			}
		}
	}

	priorityMode := elevation.HasAnyMetadata(dataRoot)
	slog.Info("catalog ready", "tiles", len(records), "summary_file", summaryFile, "priority_mode", priorityMode)
	return nil
}
