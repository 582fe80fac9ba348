package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fleet-routing-service/internal/api/dto"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/services"
	"fmt"
	"log"
	"strings"
)

// idIndex remembers the wire form of every identifier so responses echo it back.
type idIndex struct {
	vehicles  map[string]dto.ID
	orders    map[string]dto.ID
	locations map[string]dto.ID
}

func (x idIndex) vehicle(id string) dto.ID  { return lookupID(x.vehicles, id) }
func (x idIndex) order(id string) dto.ID    { return lookupID(x.orders, id) }
func (x idIndex) location(id string) dto.ID { return lookupID(x.locations, id) }

func lookupID(m map[string]dto.ID, id string) dto.ID {
	if v, ok := m[id]; ok {
		return v
	}
	var out dto.ID
	_ = out.UnmarshalJSON(mustQuote(id))
	return out
}

func mustQuote(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

// buildPlanRequest validates the decoded body and maps it to the planner input.
// Errors wrap domain.ErrInvalidRequest; malformed locations are logged and skipped.
func buildPlanRequest(reqID string, body dto.OptimizeRequest) (services.PlanRequest, idIndex, error) {
	idx := idIndex{
		vehicles:  make(map[string]dto.ID),
		orders:    make(map[string]dto.ID),
		locations: make(map[string]dto.ID),
	}

	var missing []string
	if isAbsent(body.Trucks) {
		missing = append(missing, "trucks")
	}
	if isAbsent(body.DeliveryOrders) {
		missing = append(missing, "delivery_orders")
	}
	if body.Priority == nil {
		missing = append(missing, "priority")
	}
	if isAbsent(body.OriLocation) {
		missing = append(missing, "ori_location")
	}
	if len(missing) > 0 {
		return services.PlanRequest{}, idx, fmt.Errorf(
			"%w: missing required fields: %s", domain.ErrInvalidRequest, strings.Join(missing, ", "),
		)
	}

	mode, err := domain.ParsePriorityMode(*body.Priority)
	if err != nil {
		return services.PlanRequest{}, idx, err
	}

	depot, err := parseDepot(body.OriLocation, idx)
	if err != nil {
		return services.PlanRequest{}, idx, err
	}

	locations, err := parseDestinations(reqID, body.DestLocation, depot.ID, idx)
	if err != nil {
		return services.PlanRequest{}, idx, err
	}

	vehicles, err := parseTrucks(reqID, body.Trucks, idx)
	if err != nil {
		return services.PlanRequest{}, idx, err
	}

	orders, err := parseOrders(body.DeliveryOrders, idx)
	if err != nil {
		return services.PlanRequest{}, idx, err
	}

	return services.PlanRequest{
		Depot:     depot,
		Locations: locations,
		Orders:    orders,
		Vehicles:  vehicles,
		Mode:      mode,
	}, idx, nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// splitList accepts a JSON array or a single object.
func splitList(field string, raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRequest, field, err)
		}
		return items, nil
	case '{':
		return []json.RawMessage{raw}, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list", domain.ErrInvalidRequest, field)
	}
}

func parseLocation(raw json.RawMessage) (domain.Location, dto.ID, error) {
	var in dto.LocationRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		return domain.Location{}, dto.ID{}, fmt.Errorf("%w: %v", domain.ErrMalformedLocation, err)
	}
	if in.ID.IsZero() {
		return domain.Location{}, dto.ID{}, fmt.Errorf("%w: missing id", domain.ErrMalformedLocation)
	}
	if !in.Latitude.Set || !in.Longitude.Set || in.Latitude.Invalid || in.Longitude.Invalid {
		return domain.Location{}, dto.ID{}, fmt.Errorf("%w: location %s: invalid coordinates", domain.ErrMalformedLocation, in.ID)
	}
	if in.ServiceTime.Invalid || in.ServiceTime.Or(0) < 0 {
		return domain.Location{}, dto.ID{}, fmt.Errorf("%w: location %s: invalid service_time", domain.ErrMalformedLocation, in.ID)
	}

	open, err := domain.ParseClock(in.OpenHour)
	if err != nil {
		return domain.Location{}, dto.ID{}, fmt.Errorf("location %s: open_hour: %w", in.ID, err)
	}
	closing, err := domain.ParseClock(in.CloseHour)
	if err != nil {
		return domain.Location{}, dto.ID{}, fmt.Errorf("location %s: close_hour: %w", in.ID, err)
	}

	return domain.Location{
		ID:          in.ID.String(),
		Address:     in.Address,
		Coordinates: domain.Coordinates{Lat: in.Latitude.Value, Lon: in.Longitude.Value},
		OpenHour:    open,
		CloseHour:   closing,
		ServiceTime: in.ServiceTime.Or(0),
	}, in.ID, nil
}

// The first ori_location entry is the depot. Its window is fixed by the planner.
func parseDepot(raw json.RawMessage, idx idIndex) (domain.Location, error) {
	items, err := splitList("ori_location", raw)
	if err != nil {
		return domain.Location{}, err
	}
	if len(items) == 0 {
		return domain.Location{}, fmt.Errorf("%w: ori_location is empty", domain.ErrInvalidRequest)
	}

	depot, id, err := parseLocation(items[0])
	if err != nil {
		return domain.Location{}, fmt.Errorf("%w: ori_location: %v", domain.ErrInvalidRequest, err)
	}
	idx.locations[depot.ID] = id
	return depot, nil
}

// parseDestinations skips malformed entries, repeated ids and entries reusing the depot id.
func parseDestinations(reqID string, raw json.RawMessage, depotID string, idx idIndex) ([]domain.Location, error) {
	items, err := splitList("dest_location", raw)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Location, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		loc, id, err := parseLocation(item)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedLocation) {
				log.Printf("req_id=%s skipping dest_location[%d]: %v", reqID, i, err)
				continue
			}
			return nil, err
		}
		if loc.ID == depotID {
			log.Printf("req_id=%s skipping dest_location[%d]: id %s is the depot", reqID, i, loc.ID)
			continue
		}
		if _, dup := seen[loc.ID]; dup {
			log.Printf("req_id=%s skipping dest_location[%d]: duplicate id %s", reqID, i, loc.ID)
			continue
		}
		seen[loc.ID] = struct{}{}
		idx.locations[loc.ID] = id
		out = append(out, loc)
	}

	return out, nil
}

func parseTrucks(reqID string, raw json.RawMessage, idx idIndex) ([]*domain.Vehicle, error) {
	items, err := splitList("trucks", raw)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Vehicle, 0, len(items))
	for i, item := range items {
		var in dto.TruckRequest
		if err := json.Unmarshal(item, &in); err != nil {
			log.Printf("req_id=%s skipping trucks[%d]: %v", reqID, i, err)
			continue
		}
		if in.ID.IsZero() {
			return nil, fmt.Errorf("%w: trucks[%d]: missing id", domain.ErrInvalidRequest, i)
		}
		id := in.ID.String()
		if _, dup := idx.vehicles[id]; dup {
			return nil, fmt.Errorf("%w: trucks[%d]: duplicate id %s", domain.ErrInvalidRequest, i, id)
		}
		if id == domain.UnassignedVehicleID {
			return nil, fmt.Errorf("%w: trucks[%d]: id %s is reserved", domain.ErrInvalidRequest, i, id)
		}

		capacity := in.MaxCapacity.Or(0)
		if capacity <= 0 {
			log.Printf("req_id=%s truck=%s max capacity parsed as 0 (raw invalid=%t)", reqID, id, in.MaxCapacity.Invalid)
			capacity = 0
		}
		current := in.CurrentVolume.Or(0)
		if current < 0 {
			current = 0
		}
		if current > capacity {
			log.Printf("req_id=%s truck=%s current_volume=%g exceeds max=%g, clamping", reqID, id, current, capacity)
			current = capacity
		}

		typeName := ""
		if in.TruckType != nil {
			typeName = in.TruckType.Name
		}

		idx.vehicles[id] = in.ID
		out = append(out, &domain.Vehicle{
			ID:            id,
			PlateNumber:   in.PlateNumber,
			TypeID:        in.TypeID.String(),
			TypeName:      typeName,
			DCID:          in.DCID.String(),
			MaxCapacity:   capacity,
			CurrentVolume: current,
		})
	}

	return out, nil
}

func parseOrders(raw json.RawMessage, idx idIndex) ([]*domain.DeliveryOrder, error) {
	items, err := splitList("delivery_orders", raw)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.DeliveryOrder, 0, len(items))
	for i, item := range items {
		var in dto.DeliveryOrderRequest
		if err := json.Unmarshal(item, &in); err != nil {
			return nil, fmt.Errorf("%w: delivery_orders[%d]: %v", domain.ErrInvalidRequest, i, err)
		}
		if in.ID.IsZero() {
			return nil, fmt.Errorf("%w: delivery_orders[%d]: missing id", domain.ErrInvalidRequest, i)
		}
		id := in.ID.String()
		if _, dup := idx.orders[id]; dup {
			return nil, fmt.Errorf("%w: delivery_orders[%d]: duplicate id %s", domain.ErrInvalidRequest, i, id)
		}

		lines := make([]domain.ProductLine, 0, len(in.ProductLine))
		for j, pl := range in.ProductLine {
			if pl.Volume.Invalid || pl.Quantity.Invalid {
				return nil, fmt.Errorf("%w: delivery_orders[%d].ProductLine[%d]: non-numeric value", domain.ErrInvalidRequest, i, j)
			}
			if pl.Volume.Or(0) < 0 || pl.Quantity.Or(0) < 0 {
				return nil, fmt.Errorf("%w: delivery_orders[%d].ProductLine[%d]: negative value", domain.ErrInvalidRequest, i, j)
			}
			lines = append(lines, domain.ProductLine{Volume: pl.Volume.Or(0), Quantity: pl.Quantity.Or(0)})
		}

		idx.orders[id] = in.ID
		out = append(out, &domain.DeliveryOrder{
			ID:            id,
			Number:        in.DeliveryOrderNum.String(),
			DestinationID: in.DestinationID(),
			Lines:         lines,
		})
	}

	return out, nil
}
