package services

import (
	"fleet-routing-service/internal/domain"
	"fmt"
	"slices"
)

type scoreFunc func(demandScaled, distanceScaled float64) float64

// One pure scoring function per mode; the sign is applied afterwards.
var scorers = map[domain.PriorityMode]scoreFunc{
	domain.PriorityBalance: func(demand, distance float64) float64 {
		return 0.5*demand + 0.5*distance
	},
	domain.PriorityDistance: func(demand, distance float64) float64 {
		return 0.1*demand + 0.9*distance
	},
	domain.PriorityLoad: func(demand, distance float64) float64 {
		return 0.9*demand + 0.1*distance
	},
	domain.PriorityEmission: func(_, distance float64) float64 {
		return 1.0 * (1.0 - distance)
	},
}

// ScorePriorities assigns a signed priority to every order and returns them in visiting order.
//
// Demand and great-circle distance from the origin are min-max scaled over the whole pool.
// Orders east of the origin keep a positive score, the others are negated. The result lists
// non-negative priorities in descending order followed by negative priorities in ascending
// order, so the most extreme west-side orders lead that group. Ties keep input order.
func ScorePriorities(
	orders []*domain.DeliveryOrder,
	origin domain.Coordinates,
	destinations map[string]domain.Location,
	mode domain.PriorityMode,
) ([]*domain.DeliveryOrder, error) {
	score, ok := scorers[mode]
	if !ok {
		return nil, fmt.Errorf("score priorities: unsupported mode %v", mode)
	}

	distances := make([]float64, len(orders))
	demands := make([]float64, len(orders))
	for i, o := range orders {
		dest, ok := destinations[o.DestinationID]
		if !ok {
			return nil, fmt.Errorf("score priorities: order %s has unknown destination %q", o.ID, o.DestinationID)
		}

		o.DistanceFromOrigin = domain.GreatCircleMeters(origin, dest.Coordinates)
		if dest.Coordinates.Lon > origin.Lon {
			o.Position = domain.East
		} else {
			o.Position = domain.West
		}

		distances[i] = o.DistanceFromOrigin
		demands[i] = o.Demand
	}

	distScaled := minMaxScale(distances)
	demandScaled := minMaxScale(demands)

	nonNegative := make([]*domain.DeliveryOrder, 0, len(orders))
	negative := make([]*domain.DeliveryOrder, 0, len(orders))
	for i, o := range orders {
		o.DistanceScaled = distScaled[i]
		o.DemandScaled = demandScaled[i]

		p := score(o.DemandScaled, o.DistanceScaled)
		if o.Position == domain.West {
			p = -p
		}
		o.Priority = p

		if p >= 0 {
			nonNegative = append(nonNegative, o)
		} else {
			negative = append(negative, o)
		}
	}

	slices.SortStableFunc(nonNegative, func(a, b *domain.DeliveryOrder) int {
		return compareFloat(b.Priority, a.Priority)
	})
	slices.SortStableFunc(negative, func(a, b *domain.DeliveryOrder) int {
		return compareFloat(a.Priority, b.Priority)
	})

	return append(nonNegative, negative...), nil
}

// minMaxScale maps values onto [0, 1]. A zero range scales everything to 0.
func minMaxScale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := slices.Min(values), slices.Max(values)
	span := hi - lo
	if span == 0 {
		return out
	}

	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
