package services

import (
	"context"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
)

// Refinement is the outcome of re-validating a solved sequence against stop time windows.
type Refinement struct {
	Stops                []domain.RouteStop
	Accepted             map[string]struct{}
	Rejected             []domain.Location
	TotalTime            float64
	TotalTimeWithWaiting float64
	TotalDistance        float64
}

// RefineRoute walks the solved sequence from the depot and keeps only stops reached
// strictly before their closing time.
//
// Each leg is priced with one directions lookup; the travel time of a leg includes the
// service time of the stop it leaves. Arriving before opening inserts a waiting interval
// that delays the rest of the route but is only counted in TotalTimeWithWaiting.
// Rejected stops do not advance the walk. The walk ends at the first depot marker.
func RefineRoute(
	ctx context.Context,
	req domain.RouteRequest,
	res domain.SolveResult,
	directions ports.DirectionsProvider,
	startMinutes float64,
) (_ *Refinement, err error) {
	defer obs.Time(ctx, "route.Refine")(&err)

	ref := &Refinement{
		Stops:    make([]domain.RouteStop, 0, len(res.Sequence)),
		Accepted: make(map[string]struct{}, len(res.Sequence)),
	}

	prevETA := startMinutes
	prevIdx := req.Depot

	for pos, idx := range res.Sequence {
		if idx == req.Depot {
			break
		}

		prev := req.Stops[prevIdx]
		stop := req.Stops[idx]

		leg, err := directions.GetDirections(ctx, prev.Coordinates, stop.Coordinates)
		if err != nil {
			return nil, fmt.Errorf(
				"refine route: vehicle %s: directions %s -> %s: %w: %w",
				req.VehicleID, prev.ID, stop.ID, domain.ErrCollaborator, err,
			)
		}

		travel := leg.DurationSeconds/60.0 + req.ServiceTimes[prevIdx]
		eta := prevETA + travel

		if eta >= float64(stop.CloseHour) {
			ref.Rejected = append(ref.Rejected, stop)
			continue
		}

		waiting := 0.0
		if open := float64(stop.OpenHour); eta < open {
			waiting = open - eta
		}

		ref.TotalTimeWithWaiting += waiting + travel
		ref.TotalTime += travel
		ref.TotalDistance += leg.DistanceMeters
		prevETA = eta + waiting
		prevIdx = idx

		ref.Accepted[stop.ID] = struct{}{}
		ref.Stops = append(ref.Stops, domain.RouteStop{
			Location:       stop,
			Queue:          pos + 1,
			ETA:            eta,
			Waiting:        waiting,
			TravelTime:     travel,
			TravelDistance: leg.DistanceMeters,
		})
	}

	return ref, nil
}

// DemoteUnconfirmed returns to the pool every order on the vehicle whose destination was
// not accepted: stops rejected by the time-window walk, stops the optimizer dropped and
// stops missing from the sequence altogether.
func DemoteUnconfirmed(v *domain.Vehicle, pool *OrderPool, accepted map[string]struct{}) []*domain.DeliveryOrder {
	demoted := make([]*domain.DeliveryOrder, 0)
	for _, o := range pool.AssignedTo(v.ID) {
		if _, ok := accepted[o.DestinationID]; ok {
			continue
		}
		if pool.Release(v, o) {
			demoted = append(demoted, o)
		}
	}

	return demoted
}
