// Package main provides the elevation-report CLI: ad-hoc DuckDB analytics
// over a catalog summary.json (tile counts and coverage by source).
//
// Usage:
//
//	elevation-report --summary ./data/summary.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terrastack/elevation-engine/internal/report"
)

var summaryFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "elevation-report",
		Short: "Report tile coverage statistics from a catalog summary",
		RunE:  run,
	}
	rootCmd.Flags().StringVar(&summaryFile, "summary", "data/summary.json", "Path to the catalog summary.json")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	rep, err := report.Open()
	if err != nil {
		return err
	}
	defer rep.Close()

	total, err := rep.TileCount(summaryFile)
	if err != nil {
		return fmt.Errorf("count tiles: %w", err)
	}
	fmt.Printf("Total tiles: %d\n\n", total)

	coverage, err := rep.CoverageBySource(summaryFile)
	if err != nil {
		return fmt.Errorf("coverage by source: %w", err)
	}

	fmt.Printf("%-50s %10s %10s %10s\n", "Source", "Tiles", "Lat span", "Lng span")
	for _, c := range coverage {
		fmt.Printf("%-50s %10d %10.2f %10.2f\n", c.SourceDir, c.TileCount, c.LatSpan, c.LngSpan)
	}
	return nil
}
