package cache

import (
	"context"
	"database/sql"
	"errors"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
	"strings"
)

// SQLMatrixCache is a SQL-backed cache for origin->destination travel metrics,
// keyed by coordinate keys.
type SQLMatrixCache struct {
	DB *sql.DB
}

func NewSQLMatrixCache(db *sql.DB) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db}
}

// Fetch cached metrics for one origin and multiple destinations.
func (s *SQLMatrixCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.PairMetrics, err error) {
	defer obs.Time(ctx, "matrix.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("matrix cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get matrix cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.PairMetrics{}, nil
	}

	q := `
	SELECT destination_key, distance_meters, duration_seconds, emission_grams
	FROM matrix_cache
	WHERE origin_key = $1
		AND destination_key = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq)
	if err != nil {
		return nil, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.PairMetrics, len(uniq))
	for rows.Next() {
		var dest string
		var m ports.PairMetrics
		if err := rows.Scan(&dest, &m.DistanceMeters, &m.DurationSeconds, &m.EmissionGrams); err != nil {
			return nil, fmt.Errorf("get matrix cache: scan rows: %w", err)
		}
		out[dest] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get matrix cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached metrics for a single origin.
func (s *SQLMatrixCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.PairMetrics,
) (err error) {
	defer obs.Time(ctx, "matrix.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert matrix cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO matrix_cache (origin_key, destination_key, distance_meters, duration_seconds, emission_grams)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin_key, destination_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		emission_grams = EXCLUDED.emission_grams;
	`)
	if err != nil {
		return fmt.Errorf("insert matrix cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert matrix cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds, r.EmissionGrams); err != nil {
			return fmt.Errorf("insert matrix cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert matrix cache commit: %w", err)
	}

	return nil
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
