package domain

import "fmt"

// Delivery vehicle with a volumetric capacity and the orders loaded in the current run.
// CurrentVolume never exceeds MaxCapacity.
type Vehicle struct {
	ID            string
	PlateNumber   string
	TypeID        string
	TypeName      string
	DCID          string
	MaxCapacity   float64
	CurrentVolume float64
	Orders        []*DeliveryOrder
}

// AvailableCapacity is the residual volume the vehicle can still take.
func (v *Vehicle) AvailableCapacity() float64 {
	return v.MaxCapacity - v.CurrentVolume
}

// Fits reports whether the order's demand fits in the residual capacity (inclusive).
// Negative demand never fits.
func (v *Vehicle) Fits(order *DeliveryOrder) bool {
	return order.Demand >= 0 && order.Demand <= v.AvailableCapacity()
}

// Load a single order onto the vehicle and mark it as assigned.
func (v *Vehicle) Load(order *DeliveryOrder) error {
	if order.IsAssigned() {
		return fmt.Errorf("load vehicle: order %s already assigned to vehicle %s", order.ID, order.AssignedVehicle)
	}
	if order.Demand < 0 {
		return fmt.Errorf("load vehicle: order %s has negative demand %g", order.ID, order.Demand)
	}
	if !v.Fits(order) {
		return fmt.Errorf(
			"load vehicle: vehicle %s cannot take order %s (demand=%g available=%g)",
			v.ID, order.ID, order.Demand, v.AvailableCapacity(),
		)
	}

	v.CurrentVolume += order.Demand
	v.Orders = append(v.Orders, order)
	order.AssignedVehicle = v.ID
	return nil
}

// Release removes an order from the vehicle and frees its demand.
// It reports whether the order was loaded on this vehicle.
func (v *Vehicle) Release(order *DeliveryOrder) bool {
	for i, o := range v.Orders {
		if o != order {
			continue
		}

		v.Orders = append(v.Orders[:i], v.Orders[i+1:]...)
		v.CurrentVolume -= order.Demand
		if v.CurrentVolume < 0 {
			v.CurrentVolume = 0
		}
		order.AssignedVehicle = ""
		return true
	}

	return false
}

// ReleaseAll returns every loaded order to the pool.
func (v *Vehicle) ReleaseAll() []*DeliveryOrder {
	released := v.Orders
	v.Orders = nil
	for _, o := range released {
		v.CurrentVolume -= o.Demand
		o.AssignedVehicle = ""
	}
	if v.CurrentVolume < 0 {
		v.CurrentVolume = 0
	}

	return released
}
