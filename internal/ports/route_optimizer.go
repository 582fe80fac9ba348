package ports

import (
	"context"
	"fleet-routing-service/internal/domain"
)

// Contract for the external combinatorial route optimizer.
//
// Solve returns a SolveResult whose Status distinguishes a found route from
// NoSolution. An error means the optimizer itself could not be reached or failed.
type RouteOptimizer interface {
	Solve(ctx context.Context, req domain.RouteRequest) (domain.SolveResult, error)
}
