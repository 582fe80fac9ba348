package services

import (
	"context"
	"errors"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// PlanRequest is a validated planning input. Depot is the origin of every route.
type PlanRequest struct {
	Depot     domain.Location
	Locations []domain.Location
	Orders    []*domain.DeliveryOrder
	Vehicles  []*domain.Vehicle
	Mode      domain.PriorityMode
}

// Planner drives the per-vehicle assignment and routing loop.
//
// Vehicles are processed strictly one after another: each vehicle's allocation sees the
// demotions made while routing the previous one. A Planner holds no per-run state and can
// serve independent requests concurrently if its collaborators can.
type Planner struct {
	Matrix     ports.DistanceMatrixProvider
	Directions ports.DirectionsProvider
	Geometry   ports.RouteGeometryProvider
	Optimizer  ports.RouteOptimizer
	Observer   ports.PlanObserver

	// NewID generates plan identifiers. Defaults to random UUIDs.
	NewID func() string
}

func (p *Planner) observer() ports.PlanObserver {
	if p.Observer == nil {
		return nopObserver{}
	}
	return p.Observer
}

// Plan assigns orders to vehicles and produces one confirmed route per loaded vehicle.
//
// Every order ends up in exactly one place: a shipment's confirmed list or the unassigned
// bucket. A vehicle whose collaborators fail, or whose route has no solution, gives its
// orders back to the pool and the run continues with the next vehicle.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*domain.PlanResult, error) {
	if p.Matrix == nil || p.Directions == nil || p.Geometry == nil || p.Optimizer == nil {
		return nil, errors.New("plan shipments: planner collaborators must be non-nil")
	}

	newID := p.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	result := &domain.PlanResult{PlanID: newID(), Shipments: []domain.ShipmentRecord{}}
	obsv := p.observer()

	CalculateDemand(req.Orders)

	locations := make(map[string]domain.Location, len(req.Locations))
	for _, l := range req.Locations {
		if l.ID == req.Depot.ID {
			log.Printf("plan_id=%s location=%s shares the depot id, ignoring", result.PlanID, l.ID)
			continue
		}
		locations[l.ID] = l
	}

	// Orders pointing at an unknown or skipped location can never be routed.
	routable := make([]*domain.DeliveryOrder, 0, len(req.Orders))
	unroutable := make([]string, 0)
	for _, o := range req.Orders {
		if _, ok := locations[o.DestinationID]; !ok {
			log.Printf("plan_id=%s order=%s destination=%q unknown, leaving unassigned", result.PlanID, o.ID, o.DestinationID)
			unroutable = append(unroutable, o.ID)
			continue
		}
		routable = append(routable, o)
	}

	start := time.Now()
	ordered, err := ScorePriorities(routable, req.Depot.Coordinates, locations, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("plan shipments: %w", err)
	}
	east := 0
	for _, o := range ordered {
		if o.Position == domain.East {
			east++
		}
	}
	obsv.Scored(ctx, ports.ScoredEvent{
		Mode:     req.Mode,
		Orders:   len(ordered),
		East:     east,
		West:     len(ordered) - east,
		Duration: time.Since(start),
	})

	pool := NewOrderPool(ordered)
	vehicles := SortVehicles(req.Vehicles)

	for i, v := range vehicles {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("plan shipments: %w", err)
		}
		if pool.PendingCount() == 0 || allFull(vehicles) {
			break
		}

		log.Printf("plan_id=%s truck=%d/%d id=%s capacity=%g", result.PlanID, i+1, len(vehicles), v.ID, v.MaxCapacity)

		n, err := AllocateCapacity(v, pool)
		if err != nil {
			return nil, fmt.Errorf("plan shipments: %w", err)
		}
		obsv.Assigned(ctx, ports.AssignedEvent{
			VehicleID:       v.ID,
			Assigned:        n,
			CurrentCapacity: v.CurrentVolume,
			MaxCapacity:     v.MaxCapacity,
		})
		if len(v.Orders) == 0 {
			continue
		}

		shipment, err := p.planVehicle(ctx, req, v, locations, pool)
		if err != nil {
			released := pool.ReleaseAll(v)
			log.Printf(
				"plan_id=%s vehicle=%s failed, %d orders returned to pool: %v",
				result.PlanID, v.ID, len(released), err,
			)
			continue
		}
		if shipment == nil {
			continue
		}

		obsv.Assembled(ctx, ports.AssembledEvent{
			VehicleID:     v.ID,
			Orders:        len(shipment.OrderIDs),
			Stops:         len(shipment.Stops),
			TotalTime:     shipment.TotalTime,
			TotalDistance: shipment.TotalDistance,
		})
		result.Shipments = append(result.Shipments, *shipment)
	}

	unassigned := make([]string, 0, pool.PendingCount()+len(unroutable))
	for _, o := range pool.Pending() {
		unassigned = append(unassigned, o.ID)
	}
	unassigned = append(unassigned, unroutable...)
	if len(unassigned) > 0 {
		result.Unassigned = &domain.UnassignedBucket{
			VehicleID: domain.UnassignedVehicleID,
			OrderIDs:  unassigned,
		}
	}

	return result, nil
}

// planVehicle routes the orders currently loaded on v.
// A nil shipment with a nil error means the optimizer found no solution.
func (p *Planner) planVehicle(
	ctx context.Context,
	req PlanRequest,
	v *domain.Vehicle,
	locations map[string]domain.Location,
	pool *OrderPool,
) (*domain.ShipmentRecord, error) {
	obsv := p.observer()

	routeReq, err := BuildRouteRequest(ctx, v, req.Depot, locations, req.Mode, p.Matrix)
	if err != nil {
		obsv.Routed(ctx, ports.RoutedEvent{VehicleID: v.ID, Err: err})
		return nil, err
	}

	start := time.Now()
	res, err := SolveRoute(ctx, p.Optimizer, routeReq)
	obsv.Routed(ctx, ports.RoutedEvent{
		VehicleID:   v.ID,
		Stops:       len(routeReq.Stops) - 1,
		Status:      res.Status,
		Unreachable: len(res.Unreachable),
		Err:         err,
		Duration:    time.Since(start),
	})
	if err != nil {
		return nil, err
	}

	if res.Status == domain.NoSolution {
		released := pool.ReleaseAll(v)
		obsv.Refined(ctx, ports.RefinedEvent{VehicleID: v.ID, Demoted: len(released)})
		return nil, nil
	}

	ref, err := RefineRoute(ctx, routeReq, res, p.Directions, domain.StartOfDayMinutes)
	if err != nil {
		obsv.Refined(ctx, ports.RefinedEvent{VehicleID: v.ID, Err: err})
		return nil, err
	}

	demoted := DemoteUnconfirmed(v, pool, ref.Accepted)
	obsv.Refined(ctx, ports.RefinedEvent{
		VehicleID: v.ID,
		Accepted:  len(ref.Stops),
		Rejected:  len(ref.Rejected),
		Demoted:   len(demoted),
	})

	shipment, err := AssembleShipment(ctx, v, req.Depot, ref, p.Geometry)
	if err != nil {
		return nil, err
	}

	return &shipment, nil
}

func allFull(vehicles []*domain.Vehicle) bool {
	for _, v := range vehicles {
		if v.AvailableCapacity() > 0 {
			return false
		}
	}
	return true
}

type nopObserver struct{}

func (nopObserver) Scored(context.Context, ports.ScoredEvent)       {}
func (nopObserver) Assigned(context.Context, ports.AssignedEvent)   {}
func (nopObserver) Routed(context.Context, ports.RoutedEvent)       {}
func (nopObserver) Refined(context.Context, ports.RefinedEvent)     {}
func (nopObserver) Assembled(context.Context, ports.AssembledEvent) {}
