package ports

import (
	"context"
	"fleet-routing-service/internal/domain"
	"time"
)

type ScoredEvent struct {
	Mode     domain.PriorityMode
	Orders   int
	East     int
	West     int
	Duration time.Duration
}

type AssignedEvent struct {
	VehicleID       string
	Assigned        int
	CurrentCapacity float64
	MaxCapacity     float64
}

type RoutedEvent struct {
	VehicleID   string
	Stops       int
	Status      domain.SolveStatus
	Unreachable int
	Err         error
	Duration    time.Duration
}

type RefinedEvent struct {
	VehicleID string
	Accepted  int
	Rejected  int
	Demoted   int
	Err       error
}

type AssembledEvent struct {
	VehicleID     string
	Orders        int
	Stops         int
	TotalTime     float64
	TotalDistance float64
}

// PlanObserver receives planning checkpoints. Implementations must not block.
type PlanObserver interface {
	Scored(ctx context.Context, e ScoredEvent)
	Assigned(ctx context.Context, e AssignedEvent)
	Routed(ctx context.Context, e RoutedEvent)
	Refined(ctx context.Context, e RefinedEvent)
	Assembled(ctx context.Context, e AssembledEvent)
}
