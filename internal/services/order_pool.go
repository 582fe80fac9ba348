package services

import (
	"fleet-routing-service/internal/domain"
	"fmt"
	"slices"
)

// OrderPool is the priority-ordered set of orders shared by every vehicle of a run.
//
// Orders are partitioned into pending and per-vehicle assigned index sets so that
// membership checks and counts are O(1). All assignment changes go through the pool
// to keep the vehicle loads and the partition consistent.
type OrderPool struct {
	orders    []*domain.DeliveryOrder
	index     map[*domain.DeliveryOrder]int
	pending   map[int]struct{}
	byVehicle map[string]map[int]struct{}
}

func NewOrderPool(ordered []*domain.DeliveryOrder) *OrderPool {
	p := &OrderPool{
		orders:    ordered,
		index:     make(map[*domain.DeliveryOrder]int, len(ordered)),
		pending:   make(map[int]struct{}, len(ordered)),
		byVehicle: make(map[string]map[int]struct{}),
	}
	for i, o := range ordered {
		p.index[o] = i
		p.pending[i] = struct{}{}
	}

	return p
}

// Size returns the number of orders in the pool, pending or not.
func (p *OrderPool) Size() int { return len(p.orders) }

// PendingCount returns how many orders still wait for a vehicle.
func (p *OrderPool) PendingCount() int { return len(p.pending) }

// Pending returns the pending orders in priority order.
func (p *OrderPool) Pending() []*domain.DeliveryOrder {
	out := make([]*domain.DeliveryOrder, 0, len(p.pending))
	for i, o := range p.orders {
		if _, ok := p.pending[i]; ok {
			out = append(out, o)
		}
	}
	return out
}

// AssignedTo returns the orders held by a vehicle in priority order.
func (p *OrderPool) AssignedTo(vehicleID string) []*domain.DeliveryOrder {
	set := p.byVehicle[vehicleID]
	idx := make([]int, 0, len(set))
	for i := range set {
		idx = append(idx, i)
	}
	slices.Sort(idx)

	out := make([]*domain.DeliveryOrder, 0, len(idx))
	for _, i := range idx {
		out = append(out, p.orders[i])
	}
	return out
}

// Assign loads a pending order onto a vehicle.
func (p *OrderPool) Assign(v *domain.Vehicle, o *domain.DeliveryOrder) error {
	i, ok := p.index[o]
	if !ok {
		return fmt.Errorf("assign order: order %s is not in the pool", o.ID)
	}
	if _, ok := p.pending[i]; !ok {
		return fmt.Errorf("assign order: order %s is not pending", o.ID)
	}

	if err := v.Load(o); err != nil {
		return fmt.Errorf("assign order: %w", err)
	}

	delete(p.pending, i)
	set, ok := p.byVehicle[v.ID]
	if !ok {
		set = make(map[int]struct{})
		p.byVehicle[v.ID] = set
	}
	set[i] = struct{}{}
	return nil
}

// Release unloads an order from its vehicle and makes it pending again.
func (p *OrderPool) Release(v *domain.Vehicle, o *domain.DeliveryOrder) bool {
	i, ok := p.index[o]
	if !ok || !v.Release(o) {
		return false
	}

	delete(p.byVehicle[v.ID], i)
	p.pending[i] = struct{}{}
	return true
}

// ReleaseAll returns every order held by the vehicle to the pool.
func (p *OrderPool) ReleaseAll(v *domain.Vehicle) []*domain.DeliveryOrder {
	released := v.ReleaseAll()
	for _, o := range released {
		if i, ok := p.index[o]; ok {
			delete(p.byVehicle[v.ID], i)
			p.pending[i] = struct{}{}
		}
	}
	return released
}
