package ports

import (
	"context"
	"fleet-routing-service/internal/domain"
)

// Point-to-point driving directions.
type Directions struct {
	DurationSeconds float64
	DistanceMeters  float64
	Polyline        []domain.Coordinates
}

// Contract for retrieving travel duration and distance for a single leg.
type DirectionsProvider interface {
	GetDirections(ctx context.Context, from, to domain.Coordinates) (Directions, error)
}

// Contract for retrieving the drawable path geometry of a single leg.
type RouteGeometryProvider interface {
	GetPath(ctx context.Context, from, to domain.Coordinates) ([]domain.Coordinates, error)
}

// Cache of directions keyed by leg. A miss is (zero, false, nil).
type DirectionsCache interface {
	Get(ctx context.Context, from, to domain.Coordinates) (Directions, bool, error)
	Set(ctx context.Context, from, to domain.Coordinates, d Directions) error
}
