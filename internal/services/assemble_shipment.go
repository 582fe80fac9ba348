package services

import (
	"context"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
)

// AssembleShipment builds the confirmed route record of a vehicle after refinement.
//
// Geometry is fetched per accepted leg, starting at the depot, and concatenated as
// [lat, lon] pairs. Only orders still loaded on the vehicle are confirmed; demotion must
// already have released the others.
func AssembleShipment(
	ctx context.Context,
	v *domain.Vehicle,
	depot domain.Location,
	ref *Refinement,
	geometry ports.RouteGeometryProvider,
) (_ domain.ShipmentRecord, err error) {
	defer obs.Time(ctx, "route.Assemble")(&err)

	coords := make([][]float64, 0)
	prev := depot
	for _, s := range ref.Stops {
		path, err := geometry.GetPath(ctx, prev.Coordinates, s.Location.Coordinates)
		if err != nil {
			return domain.ShipmentRecord{}, fmt.Errorf(
				"assemble shipment: vehicle %s: path %s -> %s: %w: %w",
				v.ID, prev.ID, s.Location.ID, domain.ErrCollaborator, err,
			)
		}
		for _, c := range path {
			coords = append(coords, c.LatLon())
		}
		prev = s.Location
	}

	orderIDs := make([]string, 0, len(v.Orders))
	for _, o := range v.Orders {
		if _, ok := ref.Accepted[o.DestinationID]; ok {
			orderIDs = append(orderIDs, o.ID)
		}
	}

	return domain.ShipmentRecord{
		VehicleID:            v.ID,
		OrderIDs:             orderIDs,
		Stops:                ref.Stops,
		Coords:               coords,
		TotalTime:            ref.TotalTime,
		TotalTimeWithWaiting: ref.TotalTimeWithWaiting,
		TotalDistance:        ref.TotalDistance,
		CurrentCapacity:      v.CurrentVolume,
		MaxCapacity:          v.MaxCapacity,
	}, nil
}
