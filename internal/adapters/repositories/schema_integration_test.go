//go:build integration

package repositories

import (
	"context"
	"fleet-routing-service/internal/adapters/cache"
	"fleet-routing-service/internal/platform/db"
	"fleet-routing-service/internal/ports"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestSchemaAndMatrixCache(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	seed := filepath.Join(t.TempDir(), "matrix.json")
	body := `[{"origin":{"lat":1,"lon":2},"destination":{"lat":3,"lon":4},
		"distance_meters":1200,"duration_seconds":90,"emission_grams":230}]`
	if err := os.WriteFile(seed, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	n, err := SeedMatrixFromJSON(ctx, conn, seed)
	if err != nil || n != 1 {
		t.Fatalf("SeedMatrixFromJSON: n=%d err=%v", n, err)
	}

	c := cache.NewSQLMatrixCache(conn)
	origin := "1.0000000,2.0000000"
	dest := "3.0000000,4.0000000"

	hits, err := c.GetMany(ctx, origin, []string{dest, "missing"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if hits[dest].DurationSeconds != 90 || len(hits) != 1 {
		t.Fatalf("hits = %v", hits)
	}

	if err := c.PutMany(ctx, origin, map[string]ports.PairMetrics{dest: {DistanceMeters: 1, DurationSeconds: 2, EmissionGrams: 3}}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	hits, _ = c.GetMany(ctx, origin, []string{dest})
	if hits[dest].DurationSeconds != 2 {
		t.Fatalf("upsert not applied: %v", hits)
	}
}
