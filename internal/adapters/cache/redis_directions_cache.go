package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const directionsKeyPrefix = "directions:"

type cachedDirections struct {
	DurationSeconds float64      `json:"duration_seconds"`
	DistanceMeters  float64      `json:"distance_meters"`
	Polyline        [][2]float64 `json:"polyline"` // [lat, lon]
}

// RedisDirectionsCache stores per-leg directions as JSON values with a TTL.
type RedisDirectionsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// A zero ttl stores entries without expiry.
func NewRedisDirectionsCache(rdb *redis.Client, ttl time.Duration) *RedisDirectionsCache {
	return &RedisDirectionsCache{rdb: rdb, ttl: ttl}
}

func (c *RedisDirectionsCache) Get(
	ctx context.Context,
	from, to domain.Coordinates,
) (_ ports.Directions, _ bool, err error) {
	defer obs.Time(ctx, "directions.cache.Get")(&err)

	if c.rdb == nil {
		return ports.Directions{}, false, errors.New("directions cache: redis client is nil")
	}

	raw, err := c.rdb.Get(ctx, directionsKey(from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.Directions{}, false, nil
	}
	if err != nil {
		return ports.Directions{}, false, fmt.Errorf("get directions cache: %w", err)
	}

	var v cachedDirections
	if err := json.Unmarshal(raw, &v); err != nil {
		return ports.Directions{}, false, fmt.Errorf("get directions cache: decode: %w", err)
	}

	d := ports.Directions{
		DurationSeconds: v.DurationSeconds,
		DistanceMeters:  v.DistanceMeters,
		Polyline:        make([]domain.Coordinates, 0, len(v.Polyline)),
	}
	for _, p := range v.Polyline {
		d.Polyline = append(d.Polyline, domain.Coordinates{Lat: p[0], Lon: p[1]})
	}

	return d, true, nil
}

func (c *RedisDirectionsCache) Set(
	ctx context.Context,
	from, to domain.Coordinates,
	d ports.Directions,
) (err error) {
	defer obs.Time(ctx, "directions.cache.Set")(&err)

	if c.rdb == nil {
		return errors.New("directions cache: redis client is nil")
	}

	v := cachedDirections{
		DurationSeconds: d.DurationSeconds,
		DistanceMeters:  d.DistanceMeters,
		Polyline:        make([][2]float64, 0, len(d.Polyline)),
	}
	for _, p := range d.Polyline {
		v.Polyline = append(v.Polyline, [2]float64{p.Lat, p.Lon})
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("set directions cache: encode: %w", err)
	}

	if err := c.rdb.Set(ctx, directionsKey(from, to), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set directions cache: %w", err)
	}
	return nil
}

func directionsKey(from, to domain.Coordinates) string {
	return directionsKeyPrefix + from.Key() + "|" + to.Key()
}
