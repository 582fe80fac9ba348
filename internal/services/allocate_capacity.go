package services

import (
	"cmp"
	"fleet-routing-service/internal/domain"
	"fmt"
	"slices"
)

// SortVehicles returns the vehicles ordered by descending maximum capacity.
// Vehicles with equal capacity keep their input order.
func SortVehicles(vehicles []*domain.Vehicle) []*domain.Vehicle {
	out := slices.Clone(vehicles)
	slices.SortStableFunc(out, func(a, b *domain.Vehicle) int {
		return cmp.Compare(b.MaxCapacity, a.MaxCapacity)
	})
	return out
}

// AllocateCapacity loads pending orders onto the vehicle first-fit by priority.
//
// Every pending order whose demand fits the residual capacity is taken immediately,
// regardless of whether a later vehicle would fit it better. It returns how many
// orders were assigned.
func AllocateCapacity(v *domain.Vehicle, pool *OrderPool) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("allocate capacity: vehicle must be non-nil")
	}

	assigned := 0
	for _, o := range pool.Pending() {
		if !v.Fits(o) {
			continue
		}

		if err := pool.Assign(v, o); err != nil {
			return assigned, fmt.Errorf("allocate capacity: vehicle %s: %w", v.ID, err)
		}
		assigned++
	}

	return assigned, nil
}
