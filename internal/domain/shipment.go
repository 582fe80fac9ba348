package domain

// UnassignedVehicleID identifies the bucket of orders no vehicle could take.
const UnassignedVehicleID = "-1"

// Represents the confirmed route of one vehicle.
// It is assembled once per vehicle and never changed afterwards.
// Times are in minutes and distances in meters.
type ShipmentRecord struct {
	VehicleID            string
	OrderIDs             []string
	Stops                []RouteStop
	Coords               [][]float64
	TotalTime            float64
	TotalTimeWithWaiting float64
	TotalDistance        float64
	CurrentCapacity      float64
	MaxCapacity          float64
}

// Orders left without a vehicle at the end of a run.
type UnassignedBucket struct {
	VehicleID string
	OrderIDs  []string
}

// PlanResult is the output of a planning run.
// Unassigned is nil when every order was placed.
type PlanResult struct {
	PlanID     string
	Shipments  []ShipmentRecord
	Unassigned *UnassignedBucket
}
