package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fleet-routing-service/internal/domain"
	"fmt"
	"os"
)

// Initialize the Postgres schema backing the matrix cache.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createMatrixCacheQuery := `
	CREATE TABLE IF NOT EXISTS matrix_cache (
		origin_key TEXT NOT NULL,
		destination_key TEXT NOT NULL,
		distance_meters DOUBLE PRECISION NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL,
		emission_grams DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (origin_key, destination_key)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_matrix_cache_destination_origin
	ON matrix_cache(destination_key, origin_key);
	`

	statements := []string{
		createMatrixCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type pointSeed struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MatrixSeed is one precomputed leg, e.g. exported from a previous run.
type MatrixSeed struct {
	Origin          pointSeed `json:"origin"`
	Destination     pointSeed `json:"destination"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`
	EmissionGrams   float64   `json:"emission_grams"`
}

// Populate the matrix cache with precomputed legs from a JSON file.
// Returns the number of rows written.
func SeedMatrixFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed matrix: read %q: %w", jsonPath, err)
	}

	var data []MatrixSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed matrix: parse json: %w", err)
	}

	for i, item := range data {
		if item.DistanceMeters < 0 || item.DurationSeconds < 0 || item.EmissionGrams < 0 {
			return 0, fmt.Errorf("seed matrix: negative metric at index %d", i+1)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed matrix: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO matrix_cache (
		origin_key,
		destination_key,
		distance_meters,
		duration_seconds,
		emission_grams
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin_key, destination_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		emission_grams = EXCLUDED.emission_grams,
		updated_at = now();
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed matrix: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range data {
		origin := domain.Coordinates{Lat: s.Origin.Lat, Lon: s.Origin.Lon}.Key()
		dest := domain.Coordinates{Lat: s.Destination.Lat, Lon: s.Destination.Lon}.Key()
		if _, err := stmt.ExecContext(ctx, origin, dest, s.DistanceMeters, s.DurationSeconds, s.EmissionGrams); err != nil {
			return 0, fmt.Errorf("seed matrix: insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed matrix: commit tx: %w", err)
	}

	return len(data), nil
}
