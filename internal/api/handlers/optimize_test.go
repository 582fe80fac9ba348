package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fleet-routing-service/internal/adapters/distance"
	"fleet-routing-service/internal/adapters/solver"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const optimizeBody = `{
	"trucks": [
		{"id": 7, "plate_number": "B 1234 XY", "type_id": 3, "dc_id": "DC-1",
		 "truck_type": {"name": "CDD"}, "max_individual_capacity_volume": "100", "current_volume": 0}
	],
	"ori_location": [
		{"id": "DC-1", "latitude": -6.20, "longitude": 106.80,
		 "open_hour": "0001-01-01T08:00:00.000Z", "close_hour": "0001-01-01T17:00:00.000Z", "service_time": 15}
	],
	"dest_location": [
		{"id": 101, "latitude": -6.20, "longitude": 106.83,
		 "open_hour": "0001-01-01T00:00:00.000Z", "close_hour": "0001-01-01T23:59:00.000Z", "service_time": 0},
		{"id": 102, "latitude": "north", "longitude": 106.81},
		{"id": 103, "latitude": "-6.20", "longitude": "106.75",
		 "open_hour": "0001-01-01T00:00:00.000Z", "close_hour": "0001-01-01T23:59:00.000Z"}
	],
	"delivery_orders": [
		{"id": "DO-1", "delivery_order_num": "SO/001", "loc_dest": {"id": 101},
		 "ProductLine": [{"volume": 60, "quantity": 1}]},
		{"id": "DO-2", "delivery_order_num": "SO/002", "loc_dest": {"id": 103},
		 "ProductLine": [{"volume": 25, "quantity": 2}]}
	],
	"priority": "distance"
}`

type plannerFunc func(ctx context.Context, req services.PlanRequest) (*domain.PlanResult, error)

func (f plannerFunc) Plan(ctx context.Context, req services.PlanRequest) (*domain.PlanResult, error) {
	return f(ctx, req)
}

func post(t *testing.T, h *OptimizeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/priority", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Optimize(rr, req)
	return rr
}

func TestOptimizeMapsRequest(t *testing.T) {
	var got services.PlanRequest
	h := &OptimizeHandler{Planner: plannerFunc(func(_ context.Context, req services.PlanRequest) (*domain.PlanResult, error) {
		got = req
		return &domain.PlanResult{PlanID: "p-1"}, nil
	})}

	rr := post(t, h, optimizeBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Plan-Id") != "p-1" {
		t.Fatalf("X-Plan-Id = %q", rr.Header().Get("X-Plan-Id"))
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("body = %s, want []", rr.Body.String())
	}

	if got.Mode != domain.PriorityDistance {
		t.Fatalf("mode = %v", got.Mode)
	}
	if got.Depot.ID != "DC-1" || got.Depot.OpenHour != 480 || got.Depot.CloseHour != 1020 {
		t.Fatalf("depot = %+v", got.Depot)
	}
	if len(got.Locations) != 2 || got.Locations[0].ID != "101" || got.Locations[1].ID != "103" {
		t.Fatalf("locations = %+v, want 101 and 103", got.Locations)
	}
	if got.Locations[1].Coordinates.Lon != 106.75 || got.Locations[0].CloseHour != 1439 {
		t.Fatalf("location fields = %+v", got.Locations)
	}

	if len(got.Vehicles) != 1 {
		t.Fatalf("vehicles = %+v", got.Vehicles)
	}
	v := got.Vehicles[0]
	if v.ID != "7" || v.MaxCapacity != 100 || v.TypeName != "CDD" || v.PlateNumber != "B 1234 XY" || v.DCID != "DC-1" {
		t.Fatalf("vehicle = %+v", v)
	}

	if len(got.Orders) != 2 {
		t.Fatalf("orders = %+v", got.Orders)
	}
	if o := got.Orders[1]; o.ID != "DO-2" || o.DestinationID != "103" || o.Number != "SO/002" || len(o.Lines) != 1 {
		t.Fatalf("order = %+v", o)
	}
}

func TestOptimizeSkipsDestinationReusingDepotID(t *testing.T) {
	var got services.PlanRequest
	h := &OptimizeHandler{Planner: plannerFunc(func(_ context.Context, req services.PlanRequest) (*domain.PlanResult, error) {
		got = req
		return &domain.PlanResult{PlanID: "p-1"}, nil
	})}

	body := strings.Replace(optimizeBody, `{"id": 103,`, `{"id": "DC-1",`, 1)
	rr := post(t, h, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	if len(got.Locations) != 1 || got.Locations[0].ID != "101" {
		t.Fatalf("locations = %+v, want only 101", got.Locations)
	}
	if got.Depot.Coordinates.Lon != 106.80 {
		t.Fatalf("depot overwritten: %+v", got.Depot)
	}
}

func TestOptimizeRejectsInvalidRequests(t *testing.T) {
	withField := func(old, repl string) string { return strings.Replace(optimizeBody, old, repl, 1) }

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"trucks": [`},
		{"trailing object", optimizeBody + `{}`},
		{"missing trucks", withField(`"trucks":`, `"vehicles":`)},
		{"missing priority", withField(`"priority": "distance"`, `"mode": "distance"`)},
		{"unknown priority", withField(`"priority": "distance"`, `"priority": "fastest"`)},
		{"missing origin", withField(`"ori_location":`, `"origin":`)},
		{"malformed origin", withField(`"latitude": -6.20, "longitude": 106.80`, `"latitude": "x", "longitude": 106.80`)},
		{"duplicate order", withField(`"id": "DO-2"`, `"id": "DO-1"`)},
		{"non-numeric line", withField(`"volume": 25`, `"volume": "lots"`)},
		{"negative volume", withField(`"volume": 25`, `"volume": -25`)},
		{"negative quantity", withField(`"quantity": 2`, `"quantity": "-2"`)},
		{"reserved truck id", withField(`"id": 7`, `"id": -1`)},
	}

	h := &OptimizeHandler{Planner: plannerFunc(func(context.Context, services.PlanRequest) (*domain.PlanResult, error) {
		t.Fatalf("planner must not be called")
		return nil, nil
	})}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := post(t, h, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
			var out map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil || out["error"] == "" {
				t.Fatalf("error body = %s", rr.Body.String())
			}
		})
	}
}

func TestOptimizePlannerFailure(t *testing.T) {
	h := &OptimizeHandler{Planner: plannerFunc(func(context.Context, services.PlanRequest) (*domain.PlanResult, error) {
		return nil, errors.New("pq: connection reset")
	})}

	rr := post(t, h, optimizeBody)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "pq:") {
		t.Fatalf("internal error leaked: %s", rr.Body.String())
	}
}

func TestOptimizeEndToEnd(t *testing.T) {
	depot := domain.Coordinates{Lat: -6.20, Lon: 106.80}
	east := domain.Coordinates{Lat: -6.20, Lon: 106.83}
	west := domain.Coordinates{Lat: -6.20, Lon: 106.75}
	provider := distance.NewMockProvider([]distance.MockPair{
		{From: depot, To: east, Meters: 3000, Seconds: 600, Grams: 576},
		{From: depot, To: west, Meters: 5500, Seconds: 900, Grams: 1056},
		{From: east, To: west, Meters: 8500, Seconds: 1320, Grams: 1632},
	})
	planner := &services.Planner{
		Matrix:     provider,
		Directions: provider,
		Geometry:   provider,
		Optimizer:  solver.NewLocal(),
	}

	rr := post(t, &OptimizeHandler{Planner: planner}, optimizeBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var out []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("response entries = %d, want shipment + unassigned: %s", len(out), rr.Body.String())
	}

	ship := out[0]
	if ship["id_truck"] != float64(7) {
		t.Fatalf("id_truck = %v, want numeric 7", ship["id_truck"])
	}
	orders := ship["delivery_orders"].([]any)
	if len(orders) != 1 || orders[0].(map[string]any)["delivery_order_id"] != "DO-1" {
		t.Fatalf("delivery_orders = %v", orders)
	}
	info := ship["additional_info"].([]any)[0].(map[string]any)
	if info["loc_dest_id"] != float64(101) || info["eta"] != "08:10:00" || info["queue"] != float64(1) {
		t.Fatalf("additional_info = %v", info)
	}
	if ship["total_dist"] != float64(3000) || ship["current_capacity"] != float64(60) || ship["max_capacity"] != float64(100) {
		t.Fatalf("aggregates = %v", ship)
	}
	if coords := ship["all_coords"].([]any); len(coords) != 2 {
		t.Fatalf("all_coords = %v", coords)
	}

	bucket := out[1]
	if bucket["id_truck"] != float64(-1) {
		t.Fatalf("bucket id_truck = %v, want -1", bucket["id_truck"])
	}
	left := bucket["delivery_orders"].([]any)
	if len(left) != 1 || left[0].(map[string]any)["delivery_order_id"] != "DO-2" {
		t.Fatalf("unassigned = %v", left)
	}
}
