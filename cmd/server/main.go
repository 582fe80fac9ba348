package main

import (
	"context"
	"database/sql"
	"fleet-routing-service/internal/adapters/cache"
	"fleet-routing-service/internal/adapters/distance"
	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/adapters/solver"
	"fleet-routing-service/internal/adapters/telemetry"
	"fleet-routing-service/internal/api"
	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/platform/db"
	"fleet-routing-service/internal/ports"
	"fleet-routing-service/internal/services"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// main is the application composition root.
// It wires concrete adapters (ORS, Postgres, Redis, solver) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.ORSAPIKey == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	ctx := context.Background()

	ors, err := distance.NewORSProvider(distance.ORSOptions{
		APIKey:     cfg.ORSAPIKey,
		BaseURL:    cfg.ORSBaseURL,
		Profile:    cfg.ORSProfile,
		GramsPerKm: cfg.EmissionGramsPerKm,
		RatePerSec: cfg.ORSRatePerSec,
	})
	if err != nil {
		log.Fatal(err)
	}

	var (
		matrix     ports.DistanceMatrixProvider = ors
		directions ports.DirectionsProvider     = ors
		geometry   ports.RouteGeometryProvider  = ors
	)

	// Matrices are cached in Postgres when a database is configured.
	if cfg.DatabaseURL != "" {
		conn, err := openMatrixStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		matrix = cache.NewCachedMatrixProvider(ors, cache.NewSQLMatrixCache(conn))
		log.Println("matrix cache enabled (postgres)")
	}

	// Directions and geometry share one Redis-backed cache.
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()

		cached := cache.NewCachedDirectionsProvider(ors, cache.NewRedisDirectionsCache(rdb, cfg.RedisTTL))
		directions = cached
		geometry = cached
		log.Printf("directions cache enabled (redis) ttl=%s", cfg.RedisTTL)
	}

	var optimizer ports.RouteOptimizer = solver.NewLocal()
	if cfg.SolverURL != "" {
		remote, err := solver.NewHTTPClient(cfg.SolverURL, cfg.SolverTimeout)
		if err != nil {
			log.Fatal(err)
		}
		optimizer = remote
		log.Printf("using remote solver url=%s", cfg.SolverURL)
	}

	metrics := telemetry.NewPrometheusObserver()
	planner := &services.Planner{
		Matrix:     matrix,
		Directions: directions,
		Geometry:   geometry,
		Optimizer:  optimizer,
		Observer:   telemetry.Multi{telemetry.LogObserver{}, metrics},
	}

	router := api.NewRouter(planner, metrics)

	// Timeouts are tuned for cold-cache planning (one matrix and several directions calls per truck).
	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openMatrixStore(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open matrix store: %w", err)
	}

	if err := repositories.InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open matrix store: %w", err)
	}

	return conn, nil
}
