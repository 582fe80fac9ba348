package domain

// Objective is the arc cost the route optimizer minimizes.
type Objective string

const (
	MinimizeTime     Objective = "minimize_time"
	MinimizeEmission Objective = "minimize_emission"
)

// Arc-cost and disjunction constants handed to the route optimizer.
const (
	// Emission costs are scaled to integers; the optimizer only accepts integral arc costs.
	EmissionCostScale = 100
	// Penalty for skipping a stop. Exceeds any realistic route cost, including emission costs.
	DropPenalty int64 = 10_000_000
	// Maximum waiting the optimizer may insert at a stop, in minutes.
	MaxWaitMinutes = 30
	// Upper bound of the optimizer's cumulative time dimension, in minutes.
	HorizonMinutes = 100_000
)

// FirstSolutionStrategy names the optimizer's route construction heuristic.
type FirstSolutionStrategy string

// Extend the route along the cheapest outgoing arc first.
const PathCheapestArc FirstSolutionStrategy = "path_cheapest_arc"

// A [Open, Close] interval in minutes from midnight.
type TimeWindow struct {
	Open  int
	Close int
}

// Disjunction lets the optimizer leave Stop out of the route at Penalty cost.
type Disjunction struct {
	Stop    int
	Penalty int64
}

// RouteRequest is the single-vehicle routing problem built for one vehicle's stop set.
// Stops[0] is always the depot.
type RouteRequest struct {
	VehicleID      string
	Stops          []Location
	Depot          int
	NumVehicles    int
	TimeMatrix     [][]float64
	DistanceMatrix [][]float64
	EmissionCosts  [][]int64
	TimeWindows    []TimeWindow
	ServiceTimes   []float64
	Disjunctions   []Disjunction
	MaxWait        int
	Horizon        int
	Objective      Objective
	Strategy       FirstSolutionStrategy
}

// SolveStatus is the outcome variant of an optimizer call.
type SolveStatus int

const (
	Solved SolveStatus = iota
	NoSolution
)

func (s SolveStatus) String() string {
	if s == NoSolution {
		return "no_solution"
	}
	return "solved"
}

// SolveResult is the optimizer's answer for a RouteRequest.
//
// Sequence lists the stop indices in visiting order after leaving the depot and
// ends with the depot index when the route returns. Unreachable lists stops the
// optimizer dropped through their disjunction. Both are empty when Status is NoSolution.
type SolveResult struct {
	Status      SolveStatus
	Sequence    []int
	Unreachable []int
}

// Represents a single stop in a delivery route.
// A RouteStop corresponds to arriving at a specific destination at a computed time,
// after travelling TravelTime minutes (including the previous stop's service time).
type RouteStop struct {
	Location       Location
	Queue          int
	ETA            float64
	Waiting        float64
	TravelTime     float64
	TravelDistance float64
}
