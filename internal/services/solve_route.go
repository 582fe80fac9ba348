package services

import (
	"context"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
)

// SolveRoute delegates sequencing to the route optimizer with cheapest-arc construction.
//
// NoSolution is returned as a result, not an error. Errors are optimizer failures or
// answers that reference stops outside the request.
func SolveRoute(
	ctx context.Context,
	optimizer ports.RouteOptimizer,
	req domain.RouteRequest,
) (_ domain.SolveResult, err error) {
	defer obs.Time(ctx, "route.Solve")(&err)

	req.Strategy = domain.PathCheapestArc

	res, err := optimizer.Solve(ctx, req)
	if err != nil {
		return domain.SolveResult{}, fmt.Errorf("solve route: vehicle %s: %w: %w", req.VehicleID, domain.ErrCollaborator, err)
	}

	if res.Status == domain.NoSolution {
		return domain.SolveResult{Status: domain.NoSolution}, nil
	}

	n := len(req.Stops)
	visited := make(map[int]struct{}, n)
	for _, idx := range res.Sequence {
		if idx < 0 || idx >= n {
			return domain.SolveResult{}, fmt.Errorf(
				"solve route: vehicle %s: stop index %d out of range [0,%d): %w",
				req.VehicleID, idx, n, domain.ErrCollaborator,
			)
		}
		if idx == req.Depot {
			continue
		}
		if _, dup := visited[idx]; dup {
			return domain.SolveResult{}, fmt.Errorf(
				"solve route: vehicle %s: stop index %d visited twice: %w",
				req.VehicleID, idx, domain.ErrCollaborator,
			)
		}
		visited[idx] = struct{}{}
	}
	for _, idx := range res.Unreachable {
		if idx == req.Depot || idx < 0 || idx >= n {
			return domain.SolveResult{}, fmt.Errorf(
				"solve route: vehicle %s: unreachable index %d out of range: %w",
				req.VehicleID, idx, domain.ErrCollaborator,
			)
		}
	}

	return res, nil
}
