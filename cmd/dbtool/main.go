package main

import (
	"context"
	"database/sql"
	"errors"
	"fleet-routing-service/internal/adapters/repositories"
	"fleet-routing-service/internal/config"
	"fleet-routing-service/internal/platform/db"
	"io/fs"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	if _, err := os.Stat(seedPath); errors.Is(err, fs.ErrNotExist) {
		log.Printf("No seed file at %s, skipping matrix seed", seedPath)
		return nil
	}

	log.Println("Seeding matrix cache...")
	n, err := repositories.SeedMatrixFromJSON(ctx, conn, seedPath)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete. rows=%d", n)

	return nil
}
