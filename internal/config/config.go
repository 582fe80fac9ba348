package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process settings. Precedence: environment, then CONFIG_FILE, then defaults.
type Config struct {
	Port string

	// Empty disables the Postgres matrix cache.
	DatabaseURL string
	// Empty disables the Redis directions cache.
	RedisURL string
	RedisTTL time.Duration

	ORSAPIKey     string
	ORSBaseURL    string
	ORSProfile    string
	ORSRatePerSec float64

	EmissionGramsPerKm float64

	// Empty selects the in-process solver.
	SolverURL     string
	SolverTimeout time.Duration

	SeedPath string
}

type fileConfig struct {
	Port               string  `yaml:"port"`
	DatabaseURL        string  `yaml:"database_url"`
	RedisURL           string  `yaml:"redis_url"`
	RedisTTL           string  `yaml:"redis_ttl"`
	ORSAPIKey          string  `yaml:"ors_api_key"`
	ORSBaseURL         string  `yaml:"ors_base_url"`
	ORSProfile         string  `yaml:"ors_profile"`
	ORSRatePerSec      float64 `yaml:"ors_rate_per_sec"`
	EmissionGramsPerKm float64 `yaml:"emission_grams_per_km"`
	SolverURL          string  `yaml:"solver_url"`
	SolverTimeout      string  `yaml:"solver_timeout"`
	SeedPath           string  `yaml:"seed_path"`
}

func defaults() Config {
	return Config{
		Port:               "8080",
		RedisTTL:           24 * time.Hour,
		ORSBaseURL:         "https://api.openrouteservice.org",
		ORSProfile:         "driving-car",
		ORSRatePerSec:      0.66,
		EmissionGramsPerKm: 192,
		SolverTimeout:      30 * time.Second,
		SeedPath:           "data/seeds/matrix.json",
	}
}

// Load reads .env (if present), the optional YAML file named by CONFIG_FILE,
// and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := defaults()

	if path := Get("CONFIG_FILE", ""); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config file %q not found, skipping", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load config: read %q: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("load config: parse %q: %w", path, err)
	}

	setString(&cfg.Port, fc.Port)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.RedisURL, fc.RedisURL)
	setString(&cfg.ORSAPIKey, fc.ORSAPIKey)
	setString(&cfg.ORSBaseURL, fc.ORSBaseURL)
	setString(&cfg.ORSProfile, fc.ORSProfile)
	setString(&cfg.SolverURL, fc.SolverURL)
	setString(&cfg.SeedPath, fc.SeedPath)
	if fc.ORSRatePerSec > 0 {
		cfg.ORSRatePerSec = fc.ORSRatePerSec
	}
	if fc.EmissionGramsPerKm > 0 {
		cfg.EmissionGramsPerKm = fc.EmissionGramsPerKm
	}
	if err := setDuration(&cfg.RedisTTL, "redis_ttl", fc.RedisTTL); err != nil {
		return err
	}
	if err := setDuration(&cfg.SolverTimeout, "solver_timeout", fc.SolverTimeout); err != nil {
		return err
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, os.Getenv("PORT"))
	setString(&cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&cfg.RedisURL, os.Getenv("REDIS_URL"))
	setString(&cfg.ORSAPIKey, os.Getenv("ORS_API_KEY"))
	setString(&cfg.ORSBaseURL, os.Getenv("ORS_BASE_URL"))
	setString(&cfg.ORSProfile, os.Getenv("ORS_PROFILE"))
	setString(&cfg.SolverURL, os.Getenv("SOLVER_URL"))
	setString(&cfg.SeedPath, os.Getenv("SEED_PATH"))

	if err := setFloat(&cfg.ORSRatePerSec, "ORS_RATE_PER_SEC", os.Getenv("ORS_RATE_PER_SEC")); err != nil {
		return err
	}
	if err := setFloat(&cfg.EmissionGramsPerKm, "EMISSION_GRAMS_PER_KM", os.Getenv("EMISSION_GRAMS_PER_KM")); err != nil {
		return err
	}
	if err := setDuration(&cfg.RedisTTL, "REDIS_TTL", os.Getenv("REDIS_TTL")); err != nil {
		return err
	}
	if err := setDuration(&cfg.SolverTimeout, "SOLVER_TIMEOUT", os.Getenv("SOLVER_TIMEOUT")); err != nil {
		return err
	}

	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("load config: %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("load config: %s: %w", key, err)
	}
	*dst = d
	return nil
}
