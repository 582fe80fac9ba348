package services

import (
	"context"
	"fleet-routing-service/internal/adapters/distance"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"sync"
)

var (
	depotCoords = domain.Coordinates{Lat: -6.20, Lon: 106.80}
	eastCoords  = domain.Coordinates{Lat: -6.20, Lon: 106.83}
	farEast     = domain.Coordinates{Lat: -6.20, Lon: 106.90}
	westCoords  = domain.Coordinates{Lat: -6.20, Lon: 106.75}
)

const openAllDay = 24*60 - 1

func depotLocation() domain.Location {
	return domain.Location{ID: "DEPOT", Coordinates: depotCoords, OpenHour: 0, CloseHour: openAllDay, ServiceTime: 15}
}

func location(id string, c domain.Coordinates) domain.Location {
	return domain.Location{ID: id, Coordinates: c, OpenHour: 0, CloseHour: openAllDay}
}

func order(id, dest string, demand float64) *domain.DeliveryOrder {
	return &domain.DeliveryOrder{
		ID:            id,
		DestinationID: dest,
		Lines:         []domain.ProductLine{{Volume: demand, Quantity: 1}},
		Demand:        demand,
	}
}

func locationMap(locs ...domain.Location) map[string]domain.Location {
	m := make(map[string]domain.Location, len(locs))
	for _, l := range locs {
		m[l.ID] = l
	}
	return m
}

// minutes converts travel minutes to mock seconds.
func minutes(m float64) float64 { return m * 60 }

func testProvider() *distance.MockProvider {
	return distance.NewMockProvider([]distance.MockPair{
		{From: depotCoords, To: eastCoords, Meters: 3000, Seconds: minutes(10), Grams: 576},
		{From: depotCoords, To: farEast, Meters: 11000, Seconds: minutes(25), Grams: 2112},
		{From: depotCoords, To: westCoords, Meters: 5500, Seconds: minutes(15), Grams: 1056},
		{From: eastCoords, To: farEast, Meters: 8000, Seconds: minutes(18), Grams: 1536},
		{From: eastCoords, To: westCoords, Meters: 8500, Seconds: minutes(22), Grams: 1632},
		{From: farEast, To: westCoords, Meters: 16500, Seconds: minutes(35), Grams: 3168},
	})
}

// optimizerFunc adapts a function to ports.RouteOptimizer.
type optimizerFunc func(ctx context.Context, req domain.RouteRequest) (domain.SolveResult, error)

func (f optimizerFunc) Solve(ctx context.Context, req domain.RouteRequest) (domain.SolveResult, error) {
	return f(ctx, req)
}

// inOrder visits every stop in request order and returns to the depot.
func inOrder() optimizerFunc {
	return func(_ context.Context, req domain.RouteRequest) (domain.SolveResult, error) {
		seq := make([]int, 0, len(req.Stops))
		for i := 1; i < len(req.Stops); i++ {
			seq = append(seq, i)
		}
		return domain.SolveResult{Status: domain.Solved, Sequence: append(seq, req.Depot)}, nil
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) Scored(context.Context, ports.ScoredEvent) { r.add("scored") }

func (r *recordingObserver) Assigned(_ context.Context, e ports.AssignedEvent) {
	r.add("assigned:" + e.VehicleID)
}

func (r *recordingObserver) Routed(_ context.Context, e ports.RoutedEvent) {
	r.add("routed:" + e.VehicleID)
}

func (r *recordingObserver) Refined(_ context.Context, e ports.RefinedEvent) {
	r.add("refined:" + e.VehicleID)
}

func (r *recordingObserver) Assembled(_ context.Context, e ports.AssembledEvent) {
	r.add("assembled:" + e.VehicleID)
}
