package services

import "fleet-routing-service/internal/domain"

// CalculateDemand derives volume, quantity and demand from each order's product lines.
// Orders without lines end up with zero demand.
func CalculateDemand(orders []*domain.DeliveryOrder) {
	for _, o := range orders {
		var volume, quantity, demand float64
		for _, line := range o.Lines {
			quantity += line.Quantity
			volume += line.Volume
			demand += line.Volume * line.Quantity
		}

		o.Volume = volume
		o.Quantity = quantity
		o.Demand = demand
	}
}
