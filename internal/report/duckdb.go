// Package report provides ad-hoc SQL analytics over a catalog summary
// file via DuckDB's JSON reader, grounded on
// tobilg-duckdb-tileserver/internal/data/catalog_db.go's
// sql.Open("duckdb", ...) pattern against the stdlib database/sql
// interface.
package report

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

// SourceCoverage is one row of the by-source coverage report.
type SourceCoverage struct {
	SourceDir string
	TileCount int
	LatSpan   float64
	LngSpan   float64
}

// Reporter runs analytical queries over a summary.json file using an
// in-process DuckDB connection; no server process or persisted database
// is involved.
type Reporter struct {
	db *sql.DB
}

// Open starts an in-memory DuckDB connection.
func Open() (*Reporter, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Reporter{db: db}, nil
}

// Close releases the DuckDB connection.
func (r *Reporter) Close() error {
	return r.db.Close()
}

// CoverageBySource reports tile counts and the lat/lng span covered per
// source directory, reading summaryPath directly via DuckDB's
// read_json_auto table function.
func (r *Reporter) CoverageBySource(summaryPath string) ([]SourceCoverage, error) {
	query := fmt.Sprintf(`
		SELECT
			source_dir,
			COUNT(*) AS tile_count,
			MAX(coords[2]) - MIN(coords[1]) AS lat_span,
			MAX(coords[4]) - MIN(coords[3]) AS lng_span
		FROM read_json_auto('%s')
		GROUP BY source_dir
		ORDER BY tile_count DESC
	`, summaryPath)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query coverage by source: %w", err)
	}
	defer rows.Close()

	var out []SourceCoverage
	for rows.Next() {
		var c SourceCoverage
		if err := rows.Scan(&c.SourceDir, &c.TileCount, &c.LatSpan, &c.LngSpan); err != nil {
			return nil, fmt.Errorf("scan coverage row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TileCount returns the total number of tiles recorded in the summary.
func (r *Reporter) TileCount(summaryPath string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM read_json_auto('%s')`, summaryPath)
	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tiles: %w", err)
	}
	return count, nil
}
