// Package main provides the elevation-lookup CLI for one-shot point
// elevation queries against a data root, without starting the façade.
//
// Usage:
//
//	elevation-lookup --data ./data --lat 34.052235 --lng -118.243683
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrastack/elevation-engine/internal/elevation"
)

var (
	dataRoot string
	lat, lng float64
	verbose  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "elevation-lookup",
		Short: "Look up the elevation at a single point",
		RunE:  run,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.Flags().StringVar(&dataRoot, "data", "data", "Data root directory")
	rootCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in decimal degrees")
	rootCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude in decimal degrees")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging, including per-candidate trace")
	rootCmd.MarkFlagRequired("lat")
	rootCmd.MarkFlagRequired("lng")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	engine, err := elevation.New(elevation.Config{
		DataRoot:           dataRoot,
		SummaryFile:        dataRoot + "/summary.json",
		OpenInterfacesSize: 5,
	}, elevation.GDALBackend{})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	elev := engine.Lookup(context.Background(), lat, lng)
	if elev == elevation.NoData {
		fmt.Println("NO_DATA")
		return nil
	}
	fmt.Println(elev)
	return nil
}
