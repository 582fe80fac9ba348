package services

import (
	"context"
	"errors"
	"fleet-routing-service/internal/adapters/solver"
	"fleet-routing-service/internal/domain"
	"reflect"
	"testing"
)

func newPlanner(opt optimizerFunc) (*Planner, *recordingObserver) {
	provider := testProvider()
	rec := &recordingObserver{}
	p := &Planner{
		Matrix:     provider,
		Directions: provider,
		Geometry:   provider,
		Optimizer:  solver.NewLocal(),
		Observer:   rec,
		NewID:      func() string { return "plan-1" },
	}
	if opt != nil {
		p.Optimizer = opt
	}
	return p, rec
}

func vehicle(id string, capacity float64) *domain.Vehicle {
	return &domain.Vehicle{ID: id, MaxCapacity: capacity}
}

func shipmentFor(t *testing.T, res *domain.PlanResult, vehicleID string) domain.ShipmentRecord {
	t.Helper()
	for _, s := range res.Shipments {
		if s.VehicleID == vehicleID {
			return s
		}
	}
	t.Fatalf("no shipment for vehicle %s in %+v", vehicleID, res.Shipments)
	return domain.ShipmentRecord{}
}

func unassignedIDs(res *domain.PlanResult) []string {
	if res.Unassigned == nil {
		return nil
	}
	return res.Unassigned.OrderIDs
}

func TestPlanSingleVehicleCapacityLimit(t *testing.T) {
	p, rec := newPlanner(nil)
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{location("E", eastCoords), location("W", westCoords)},
		Orders:    []*domain.DeliveryOrder{order("X", "E", 60), order("Y", "W", 50)},
		Vehicles:  []*domain.Vehicle{vehicle("T1", 100)},
		Mode:      domain.PriorityDistance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.PlanID != "plan-1" {
		t.Fatalf("plan id = %q", res.PlanID)
	}
	if len(res.Shipments) != 1 {
		t.Fatalf("shipments = %d, want 1", len(res.Shipments))
	}
	s := shipmentFor(t, res, "T1")
	if !equalIDs(s.OrderIDs, []string{"X"}) {
		t.Fatalf("T1 orders = %v, want [X]", s.OrderIDs)
	}
	if s.CurrentCapacity != 60 || s.MaxCapacity != 100 {
		t.Fatalf("capacity snapshot = %g/%g, want 60/100", s.CurrentCapacity, s.MaxCapacity)
	}
	if len(s.Stops) != 1 || s.Stops[0].ETA != 490 || s.Stops[0].Queue != 1 {
		t.Fatalf("stops = %+v", s.Stops)
	}
	if s.TotalDistance != 3000 || s.TotalTime != 10 {
		t.Fatalf("totals = %g m / %g min", s.TotalDistance, s.TotalTime)
	}

	if res.Unassigned == nil || res.Unassigned.VehicleID != domain.UnassignedVehicleID {
		t.Fatalf("unassigned bucket = %+v", res.Unassigned)
	}
	if !equalIDs(unassignedIDs(res), []string{"Y"}) {
		t.Fatalf("unassigned = %v, want [Y]", unassignedIDs(res))
	}

	want := []string{"scored", "assigned:T1", "routed:T1", "refined:T1", "assembled:T1"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
}

func TestPlanNoSolutionLeavesEverythingUnassigned(t *testing.T) {
	p, _ := newPlanner(func(context.Context, domain.RouteRequest) (domain.SolveResult, error) {
		return domain.SolveResult{Status: domain.NoSolution}, nil
	})
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{location("E", eastCoords), location("F", farEast), location("W", westCoords)},
		Orders:    []*domain.DeliveryOrder{order("1", "E", 10), order("2", "F", 10), order("3", "W", 10)},
		Vehicles:  []*domain.Vehicle{vehicle("T1", 1000)},
		Mode:      domain.PriorityBalance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Shipments) != 0 {
		t.Fatalf("shipments = %+v, want none", res.Shipments)
	}
	if got := unassignedIDs(res); len(got) != 3 {
		t.Fatalf("unassigned = %v, want all three orders", got)
	}
	if req.Vehicles[0].CurrentVolume != 0 {
		t.Fatalf("vehicle still holds %g", req.Vehicles[0].CurrentVolume)
	}
}

func TestPlanCollaboratorFailureMovesOn(t *testing.T) {
	calls := 0
	p, _ := newPlanner(func(ctx context.Context, req domain.RouteRequest) (domain.SolveResult, error) {
		calls++
		if calls == 1 {
			return domain.SolveResult{}, errors.New("optimizer timeout")
		}
		return inOrder()(ctx, req)
	})
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{location("E", eastCoords), location("W", westCoords)},
		Orders:    []*domain.DeliveryOrder{order("o1", "E", 40), order("o2", "W", 40)},
		Vehicles:  []*domain.Vehicle{vehicle("T2", 50), vehicle("T1", 100)},
		Mode:      domain.PriorityDistance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Shipments) != 1 {
		t.Fatalf("shipments = %+v, want only T2", res.Shipments)
	}
	if s := shipmentFor(t, res, "T2"); !equalIDs(s.OrderIDs, []string{"o1"}) {
		t.Fatalf("T2 orders = %v, want [o1]", s.OrderIDs)
	}
	if !equalIDs(unassignedIDs(res), []string{"o2"}) {
		t.Fatalf("unassigned = %v, want [o2]", unassignedIDs(res))
	}
	if calls != 2 {
		t.Fatalf("optimizer calls = %d, want 2", calls)
	}
}

func TestPlanMatrixFailureMovesOn(t *testing.T) {
	p, _ := newPlanner(nil)
	provider := testProvider()
	provider.FailOn(westCoords)
	p.Matrix = provider

	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{location("E", eastCoords), location("W", westCoords)},
		Orders:    []*domain.DeliveryOrder{order("o1", "E", 40), order("o2", "W", 40)},
		Vehicles:  []*domain.Vehicle{vehicle("T1", 100), vehicle("T2", 50)},
		Mode:      domain.PriorityDistance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// T1 fails with both, T2 only fits o1 and its matrix avoids the failing point.
	if s := shipmentFor(t, res, "T2"); !equalIDs(s.OrderIDs, []string{"o1"}) {
		t.Fatalf("T2 orders = %v, want [o1]", s.OrderIDs)
	}
	if !equalIDs(unassignedIDs(res), []string{"o2"}) {
		t.Fatalf("unassigned = %v, want [o2]", unassignedIDs(res))
	}
}

func TestPlanRejectedStopGoesToNextVehicle(t *testing.T) {
	closing := location("B", westCoords)
	closing.CloseHour = 8*60 + 27

	for name, opt := range map[string]optimizerFunc{
		"refiner rejects": inOrder(),
		"solver drops":    nil,
	} {
		t.Run(name, func(t *testing.T) {
			p, _ := newPlanner(opt)
			req := PlanRequest{
				Depot:     depotLocation(),
				Locations: []domain.Location{location("A", eastCoords), closing},
				Orders:    []*domain.DeliveryOrder{order("a", "A", 50), order("b", "B", 50)},
				Vehicles:  []*domain.Vehicle{vehicle("T1", 100), vehicle("T2", 60)},
				Mode:      domain.PriorityDistance,
			}

			res, err := p.Plan(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			t1 := shipmentFor(t, res, "T1")
			if !equalIDs(t1.OrderIDs, []string{"a"}) || t1.CurrentCapacity != 50 {
				t.Fatalf("T1 = %v at %g, want [a] at 50", t1.OrderIDs, t1.CurrentCapacity)
			}
			t2 := shipmentFor(t, res, "T2")
			if !equalIDs(t2.OrderIDs, []string{"b"}) {
				t.Fatalf("T2 = %v, want [b]", t2.OrderIDs)
			}
			if t2.Stops[0].ETA != 495 {
				t.Fatalf("T2 eta = %g, want 495", t2.Stops[0].ETA)
			}
			if res.Unassigned != nil {
				t.Fatalf("unassigned = %+v, want none", res.Unassigned)
			}
		})
	}
}

func TestPlanUnknownDestinationIsUnassignedLast(t *testing.T) {
	p, _ := newPlanner(nil)
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{location("E", eastCoords), location("W", westCoords)},
		Orders: []*domain.DeliveryOrder{
			order("ghost", "nowhere", 1),
			order("big", "W", 500),
			order("ok", "E", 5),
		},
		Vehicles: []*domain.Vehicle{vehicle("T1", 100)},
		Mode:     domain.PriorityBalance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shipmentFor(t, res, "T1"); !equalIDs(s.OrderIDs, []string{"ok"}) {
		t.Fatalf("T1 = %v, want [ok]", s.OrderIDs)
	}
	if !equalIDs(unassignedIDs(res), []string{"big", "ghost"}) {
		t.Fatalf("unassigned = %v, want [big ghost]", unassignedIDs(res))
	}
}

func partitionRequest() PlanRequest {
	return PlanRequest{
		Depot: depotLocation(),
		Locations: []domain.Location{
			location("E", eastCoords),
			location("F", farEast),
			location("W", westCoords),
		},
		Orders: []*domain.DeliveryOrder{
			order("1", "E", 30), order("2", "F", 45), order("3", "W", 25),
			order("4", "E", 60), order("5", "W", 15), order("6", "F", 80),
			order("7", "W", 5), order("8", "E", 200),
		},
		Vehicles: []*domain.Vehicle{vehicle("T1", 90), vehicle("T2", 120), vehicle("T3", 40)},
		Mode:     domain.PriorityBalance,
	}
}

func TestPlanPartitionsOrders(t *testing.T) {
	p, _ := newPlanner(nil)
	req := partitionRequest()
	demand := make(map[string]float64, len(req.Orders))
	for _, o := range req.Orders {
		demand[o.ID] = o.Lines[0].Volume
	}
	capacity := make(map[string]float64, len(req.Vehicles))
	for _, v := range req.Vehicles {
		capacity[v.ID] = v.MaxCapacity
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]int)
	for _, s := range res.Shipments {
		load := 0.0
		for _, id := range s.OrderIDs {
			seen[id]++
			load += demand[id]
		}
		if load > capacity[s.VehicleID] {
			t.Fatalf("vehicle %s carries %g over capacity %g", s.VehicleID, load, capacity[s.VehicleID])
		}
		if load != s.CurrentCapacity {
			t.Fatalf("vehicle %s snapshot %g, confirmed load %g", s.VehicleID, s.CurrentCapacity, load)
		}
	}
	for _, id := range unassignedIDs(res) {
		seen[id]++
	}

	if len(seen) != len(req.Orders) {
		t.Fatalf("placed %d distinct orders, want %d", len(seen), len(req.Orders))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("order %s placed %d times", id, n)
		}
	}
	// Order 8 exceeds every vehicle.
	if u := unassignedIDs(res); !contains(u, "8") {
		t.Fatalf("order 8 should be unassigned, got %v", u)
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestPlanIsDeterministic(t *testing.T) {
	p1, _ := newPlanner(nil)
	p2, _ := newPlanner(nil)

	first, err := p1.Plan(context.Background(), partitionRequest())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p2.Plan(context.Background(), partitionRequest())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
}

func TestPlanCancelledContext(t *testing.T) {
	p, _ := newPlanner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Plan(ctx, partitionRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPlanRequiresCollaborators(t *testing.T) {
	p := &Planner{}
	if _, err := p.Plan(context.Background(), partitionRequest()); err == nil {
		t.Fatalf("expected error for planner without collaborators")
	}
}

func TestPlanNegativeDemandNeverFreesCapacity(t *testing.T) {
	closing := location("N", westCoords)
	closing.CloseHour = 8*60 + 1

	p, _ := newPlanner(inOrder())
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{closing, location("E", eastCoords)},
		Orders:    []*domain.DeliveryOrder{order("neg", "N", -50), order("big", "E", 140)},
		Vehicles:  []*domain.Vehicle{vehicle("T1", 100)},
		Mode:      domain.PriorityBalance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := req.Vehicles[0]
	if v.CurrentVolume > v.MaxCapacity {
		t.Fatalf("current volume %g exceeds max %g", v.CurrentVolume, v.MaxCapacity)
	}
	for _, s := range res.Shipments {
		if s.CurrentCapacity > s.MaxCapacity {
			t.Fatalf("shipment %s carries %g over %g", s.VehicleID, s.CurrentCapacity, s.MaxCapacity)
		}
	}
	if got := unassignedIDs(res); len(got) != 2 {
		t.Fatalf("unassigned = %v, want both orders", got)
	}
}

func TestPlanKeepsRecordWhenEveryStopIsRejected(t *testing.T) {
	closed := location("C", eastCoords)
	closed.CloseHour = 8*60 + 5

	p, rec := newPlanner(inOrder())
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{closed},
		Orders:    []*domain.DeliveryOrder{order("late", "C", 30)},
		Vehicles:  []*domain.Vehicle{vehicle("T1", 100)},
		Mode:      domain.PriorityBalance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := shipmentFor(t, res, "T1")
	if len(s.OrderIDs) != 0 || len(s.Stops) != 0 || len(s.Coords) != 0 {
		t.Fatalf("record = %+v, want an empty route", s)
	}
	if s.CurrentCapacity != 0 || s.MaxCapacity != 100 {
		t.Fatalf("capacity snapshot = %g/%g, want 0/100", s.CurrentCapacity, s.MaxCapacity)
	}
	if !equalIDs(unassignedIDs(res), []string{"late"}) {
		t.Fatalf("unassigned = %v, want [late]", unassignedIDs(res))
	}
	if rec.events[len(rec.events)-1] != "assembled:T1" {
		t.Fatalf("events = %v, want assembled last", rec.events)
	}
}

func TestPlanDestinationSharingDepotIDIsUnassigned(t *testing.T) {
	p, rec := newPlanner(nil)
	req := PlanRequest{
		Depot:     depotLocation(),
		Locations: []domain.Location{location("DEPOT", eastCoords), location("W", westCoords)},
		Orders:    []*domain.DeliveryOrder{order("shadow", "DEPOT", 10), order("ok", "W", 10)},
		Vehicles:  []*domain.Vehicle{vehicle("T1", 100)},
		Mode:      domain.PriorityBalance,
	}

	res, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shipmentFor(t, res, "T1"); !equalIDs(s.OrderIDs, []string{"ok"}) {
		t.Fatalf("T1 = %v, want [ok]", s.OrderIDs)
	}
	if !equalIDs(unassignedIDs(res), []string{"shadow"}) {
		t.Fatalf("unassigned = %v, want [shadow]", unassignedIDs(res))
	}
	if got := rec.events[1]; got != "assigned:T1" {
		t.Fatalf("events = %v", rec.events)
	}
}
