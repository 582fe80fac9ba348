package dto

import "encoding/json"

// OptimizeRequest is the body of POST /api/priority.
// List fields stay raw so that each element can be validated on its own.
type OptimizeRequest struct {
	Trucks         json.RawMessage `json:"trucks"`
	OriLocation    json.RawMessage `json:"ori_location"`
	DestLocation   json.RawMessage `json:"dest_location"`
	DeliveryOrders json.RawMessage `json:"delivery_orders"`
	Priority       *string         `json:"priority"`
}

type TruckType struct {
	Name string `json:"name"`
}

type TruckRequest struct {
	ID            ID         `json:"id"`
	PlateNumber   string     `json:"plate_number"`
	TypeID        ID         `json:"type_id"`
	DCID          ID         `json:"dc_id"`
	TruckType     *TruckType `json:"truck_type"`
	MaxCapacity   Float      `json:"max_individual_capacity_volume"`
	CurrentVolume Float      `json:"current_volume"`
}

type LocationRequest struct {
	ID          ID     `json:"id"`
	Address     string `json:"address"`
	Latitude    Float  `json:"latitude"`
	Longitude   Float  `json:"longitude"`
	OpenHour    string `json:"open_hour"`
	CloseHour   string `json:"close_hour"`
	ServiceTime Float  `json:"service_time"`
}

type LocationRef struct {
	ID ID `json:"id"`
}

type ProductLineRequest struct {
	Volume   Float `json:"volume"`
	Quantity Float `json:"quantity"`
}

type DeliveryOrderRequest struct {
	ID               ID                   `json:"id"`
	DeliveryOrderNum ID                   `json:"delivery_order_num"`
	LocDest          *LocationRef         `json:"loc_dest"`
	LocDestID        ID                   `json:"loc_dest_id"`
	ProductLine      []ProductLineRequest `json:"ProductLine"`
}

// DestinationID prefers the nested loc_dest reference over the flat loc_dest_id.
func (o DeliveryOrderRequest) DestinationID() string {
	if o.LocDest != nil && !o.LocDest.ID.IsZero() {
		return o.LocDest.ID.String()
	}
	return o.LocDestID.String()
}

type DeliveryOrderRef struct {
	DeliveryOrderID ID `json:"delivery_order_id"`
}

type LocationRouteRef struct {
	LocationID ID `json:"location_id"`
}

type StopInfo struct {
	LocDestID      ID      `json:"loc_dest_id"`
	Queue          int     `json:"queue"`
	ETA            string  `json:"eta"`
	TravelTime     float64 `json:"travel_time"`
	TravelDistance float64 `json:"travel_distance"`
}

type ShipmentResponse struct {
	IDTruck              ID                 `json:"id_truck"`
	DeliveryOrders       []DeliveryOrderRef `json:"delivery_orders"`
	LocationRoutes       []LocationRouteRef `json:"location_routes"`
	AllCoords            [][]float64        `json:"all_coords"`
	TotalTime            float64            `json:"total_time"`
	TotalTimeWithWaiting float64            `json:"total_time_with_waiting"`
	TotalDist            float64            `json:"total_dist"`
	AdditionalInfo       []StopInfo         `json:"additional_info"`
	CurrentCapacity      float64            `json:"current_capacity"`
	MaxCapacity          float64            `json:"max_capacity"`
}

// UnassignedResponse is the trailing entry for orders no vehicle took.
type UnassignedResponse struct {
	IDTruck        ID                 `json:"id_truck"`
	DeliveryOrders []DeliveryOrderRef `json:"delivery_orders"`
}
