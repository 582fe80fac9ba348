package services

import (
	"context"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
)

// BuildRouteRequest assembles the single-vehicle routing problem for a vehicle's orders.
//
// The depot is stop 0 with a fixed start-of-day window and no service time, followed by
// each distinct destination in priority order. Matrices come from a single batched call.
func BuildRouteRequest(
	ctx context.Context,
	v *domain.Vehicle,
	depot domain.Location,
	locations map[string]domain.Location,
	mode domain.PriorityMode,
	provider ports.DistanceMatrixProvider,
) (_ domain.RouteRequest, err error) {
	defer obs.Time(ctx, "route.BuildRequest")(&err)

	if len(v.Orders) == 0 {
		return domain.RouteRequest{}, fmt.Errorf("build route request: vehicle %s has no orders", v.ID)
	}

	stops := []domain.Location{depot}
	seen := make(map[string]struct{}, len(v.Orders))
	for _, o := range v.Orders {
		if o.DestinationID == depot.ID {
			return domain.RouteRequest{}, fmt.Errorf(
				"build route request: order %s is addressed to the depot %q", o.ID, depot.ID,
			)
		}
		if _, ok := seen[o.DestinationID]; ok {
			continue
		}
		loc, ok := locations[o.DestinationID]
		if !ok {
			return domain.RouteRequest{}, fmt.Errorf(
				"build route request: order %s has unknown destination %q", o.ID, o.DestinationID,
			)
		}
		seen[o.DestinationID] = struct{}{}
		stops = append(stops, loc)
	}

	coords := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		coords[i] = s.Coordinates
	}

	m, err := provider.GetMatrix(ctx, coords)
	if err != nil {
		return domain.RouteRequest{}, fmt.Errorf("build route request: vehicle %s: get matrix: %w: %w", v.ID, domain.ErrCollaborator, err)
	}
	if m.Size() != len(stops) || len(m.Distances) != len(stops) || len(m.Emissions) != len(stops) {
		return domain.RouteRequest{}, fmt.Errorf(
			"build route request: vehicle %s: matrix size %d does not match %d stops: %w",
			v.ID, m.Size(), len(stops), domain.ErrCollaborator,
		)
	}

	n := len(stops)
	req := domain.RouteRequest{
		VehicleID:      v.ID,
		Stops:          stops,
		Depot:          0,
		NumVehicles:    1,
		TimeMatrix:     make([][]float64, n),
		DistanceMatrix: make([][]float64, n),
		EmissionCosts:  make([][]int64, n),
		TimeWindows:    make([]domain.TimeWindow, n),
		ServiceTimes:   make([]float64, n),
		Disjunctions:   make([]domain.Disjunction, 0, n-1),
		MaxWait:        domain.MaxWaitMinutes,
		Horizon:        domain.HorizonMinutes,
		Objective:      domain.MinimizeTime,
	}
	if mode == domain.PriorityEmission {
		req.Objective = domain.MinimizeEmission
	}

	for i := 0; i < n; i++ {
		if len(m.Durations[i]) != n || len(m.Distances[i]) != n || len(m.Emissions[i]) != n {
			return domain.RouteRequest{}, fmt.Errorf(
				"build route request: vehicle %s: matrix row %d is not %d wide: %w",
				v.ID, i, n, domain.ErrCollaborator,
			)
		}

		req.TimeMatrix[i] = make([]float64, n)
		req.DistanceMatrix[i] = make([]float64, n)
		req.EmissionCosts[i] = make([]int64, n)
		for j := 0; j < n; j++ {
			req.TimeMatrix[i][j] = m.Durations[i][j] / 60.0
			req.DistanceMatrix[i][j] = m.Distances[i][j]
			// Truncation, not rounding; arc costs must be integral.
			req.EmissionCosts[i][j] = int64(m.Emissions[i][j] * domain.EmissionCostScale)
		}

		if i == req.Depot {
			req.TimeWindows[i] = domain.TimeWindow{Open: domain.StartOfDayMinutes, Close: domain.StartOfDayMinutes}
			req.ServiceTimes[i] = 0
			continue
		}

		req.TimeWindows[i] = domain.TimeWindow{Open: stops[i].OpenHour, Close: stops[i].CloseHour}
		req.ServiceTimes[i] = stops[i].ServiceTime
		req.Disjunctions = append(req.Disjunctions, domain.Disjunction{Stop: i, Penalty: domain.DropPenalty})
	}

	return req, nil
}
