package domain

// A single product line of a delivery order.
type ProductLine struct {
	Volume   float64
	Quantity float64
}

// RelativePosition is the side of the depot meridian a destination lies on.
type RelativePosition string

const (
	East RelativePosition = "+"
	West RelativePosition = "-"
)

// Represents a delivery order being planned.
//
// Demand, Volume and Quantity are derived from Lines. DistanceScaled, DemandScaled,
// Position and Priority are populated by priority scoring. AssignedVehicle is the
// only field mutated by allocation; an empty value means the order is pending.
type DeliveryOrder struct {
	ID            string
	Number        string
	DestinationID string
	Lines         []ProductLine

	Volume   float64
	Quantity float64
	Demand   float64

	DistanceFromOrigin float64
	DistanceScaled     float64
	DemandScaled       float64
	Position           RelativePosition
	Priority           float64

	AssignedVehicle string
}

func (o *DeliveryOrder) IsAssigned() bool { return o.AssignedVehicle != "" }
