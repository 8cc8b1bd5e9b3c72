package elevation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalogStore is an optional alternative to the JSON summary
// file: a shared tile catalog table for fleets running multiple workers
// against one data root, grounded on
// arihant-dev-forest-bd-viewer/backend/internal/database/database.go's
// pool configuration and migration-first-then-ping startup sequence.
type PostgresCatalogStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalogStore runs pending migrations (from migrationsPath,
// typically "file://internal/elevation/migrations") against databaseURL,
// then opens a tuned connection pool.
func NewPostgresCatalogStore(ctx context.Context, databaseURL, migrationsPath string) (*PostgresCatalogStore, error) {
	if err := runMigrations(migrationsPath, databaseURL); err != nil {
		slog.Warn("elevation catalog: migration failed, continuing", "error", err)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresCatalogStore{pool: pool}, nil
}

func runMigrations(migrationsPath, databaseURL string) error {
	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresCatalogStore) Close() {
	s.pool.Close()
}

// Replace atomically swaps the stored tile summary for records.
func (s *PostgresCatalogStore) Replace(ctx context.Context, dataRoot string, records []SummaryRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM elevation_tiles WHERE data_root = $1`, dataRoot); err != nil {
		return fmt.Errorf("clear existing tiles: %w", err)
	}

	files := make([]string, len(records))
	latMins := make([]float64, len(records))
	latMaxs := make([]float64, len(records))
	lngMins := make([]float64, len(records))
	lngMaxs := make([]float64, len(records))
	sourceDirs := make([]string, len(records))
	for i, r := range records {
		files[i] = r.File
		latMins[i], latMaxs[i] = r.Coords[0], r.Coords[1]
		lngMins[i], lngMaxs[i] = r.Coords[2], r.Coords[3]
		sourceDirs[i] = r.SourceDir
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO elevation_tiles (data_root, file, lat_min, lat_max, lng_min, lng_max, source_dir)
		SELECT $1, v.file, v.lat_min, v.lat_max, v.lng_min, v.lng_max, v.source_dir
		FROM unnest($2::text[], $3::float8[], $4::float8[], $5::float8[], $6::float8[], $7::text[])
			AS v(file, lat_min, lat_max, lng_min, lng_max, source_dir)
	`, dataRoot, files, latMins, latMaxs, lngMins, lngMaxs, sourceDirs)
	if err != nil {
		return fmt.Errorf("insert tiles: %w", err)
	}

	return tx.Commit(ctx)
}

// Load reads the stored tile summary for dataRoot back out.
func (s *PostgresCatalogStore) Load(ctx context.Context, dataRoot string) ([]SummaryRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT file, lat_min, lat_max, lng_min, lng_max, source_dir
		FROM elevation_tiles WHERE data_root = $1
	`, dataRoot)
	if err != nil {
		return nil, fmt.Errorf("query tiles: %w", err)
	}
	defer rows.Close()

	var out []SummaryRecord
	for rows.Next() {
		var r SummaryRecord
		if err := rows.Scan(&r.File, &r.Coords[0], &r.Coords[1], &r.Coords[2], &r.Coords[3], &r.SourceDir); err != nil {
			return nil, fmt.Errorf("scan tile row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
