package solver

import (
	"context"
	"errors"
	"fleet-routing-service/internal/domain"
	"fmt"
	"math"
)

// Local is an in-process route optimizer for a single vehicle.
//
// It builds the route greedily by always extending along the cheapest feasible arc
// under the request's objective, honoring each stop's time window, the maximum waiting
// slack and the horizon of the cumulative time dimension. Stops that can no longer be
// inserted are dropped through their disjunction and reported as unreachable.
// It does not improve the constructed route.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (l *Local) Solve(ctx context.Context, req domain.RouteRequest) (domain.SolveResult, error) {
	if err := validate(req); err != nil {
		return domain.SolveResult{}, fmt.Errorf("local solver: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.SolveResult{}, err
	}

	depotWindow := req.TimeWindows[req.Depot]
	if depotWindow.Open > depotWindow.Close || depotWindow.Open > req.Horizon {
		return domain.SolveResult{Status: domain.NoSolution}, nil
	}

	droppable := make(map[int]struct{}, len(req.Disjunctions))
	for _, d := range req.Disjunctions {
		droppable[d.Stop] = struct{}{}
	}

	n := len(req.Stops)
	remaining := make(map[int]struct{}, n-1)
	for i := 0; i < n; i++ {
		if i != req.Depot {
			remaining[i] = struct{}{}
		}
	}

	current := req.Depot
	clock := float64(depotWindow.Open)
	sequence := make([]int, 0, n)

	for len(remaining) > 0 {
		best := -1
		bestCost := math.Inf(1)
		bestStart := 0.0

		// Iterate by index so equal costs resolve to the lowest stop index.
		for j := 0; j < n; j++ {
			if _, ok := remaining[j]; !ok {
				continue
			}

			start, ok := arrive(req, current, j, clock)
			if !ok {
				continue
			}

			c := arcCost(req, current, j)
			if c < bestCost {
				best = j
				bestCost = c
				bestStart = start
			}
		}

		if best < 0 {
			break
		}

		sequence = append(sequence, best)
		delete(remaining, best)
		current = best
		clock = bestStart
	}

	unreachable := make([]int, 0, len(remaining))
	for j := 0; j < n; j++ {
		if _, ok := remaining[j]; !ok {
			continue
		}
		if _, ok := droppable[j]; !ok {
			// A mandatory stop could not be placed.
			return domain.SolveResult{Status: domain.NoSolution}, nil
		}
		unreachable = append(unreachable, j)
	}

	back := clock + transit(req, current, req.Depot)
	if back > float64(req.Horizon) {
		return domain.SolveResult{Status: domain.NoSolution}, nil
	}
	sequence = append(sequence, req.Depot)

	return domain.SolveResult{
		Status:      domain.Solved,
		Sequence:    sequence,
		Unreachable: unreachable,
	}, nil
}

// arrive returns the service start at stop j when leaving i at clock,
// or false if the window, waiting slack or horizon is violated.
func arrive(req domain.RouteRequest, i, j int, clock float64) (float64, bool) {
	at := clock + transit(req, i, j)
	w := req.TimeWindows[j]

	if at > float64(w.Close) || at > float64(req.Horizon) {
		return 0, false
	}
	if open := float64(w.Open); at < open {
		if open-at > float64(req.MaxWait) {
			return 0, false
		}
		return open, true
	}
	return at, true
}

func transit(req domain.RouteRequest, i, j int) float64 {
	return req.TimeMatrix[i][j] + req.ServiceTimes[i]
}

func arcCost(req domain.RouteRequest, i, j int) float64 {
	if req.Objective == domain.MinimizeEmission {
		return float64(req.EmissionCosts[i][j])
	}
	return transit(req, i, j)
}

func validate(req domain.RouteRequest) error {
	n := len(req.Stops)
	if n == 0 {
		return errors.New("request has no stops")
	}
	if req.Depot < 0 || req.Depot >= n {
		return fmt.Errorf("depot index %d out of range", req.Depot)
	}
	if len(req.TimeMatrix) != n || len(req.EmissionCosts) != n {
		return fmt.Errorf("matrices must be %dx%d", n, n)
	}
	for i := 0; i < n; i++ {
		if len(req.TimeMatrix[i]) != n || len(req.EmissionCosts[i]) != n {
			return fmt.Errorf("matrix row %d must have %d columns", i, n)
		}
	}
	if len(req.TimeWindows) != n || len(req.ServiceTimes) != n {
		return fmt.Errorf("time windows and service times must have %d entries", n)
	}
	return nil
}
