package distance

import (
	"context"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// GetMatrix retrieves the full N x N distance and duration matrices for coords
// in one OpenRouteService matrix call. Emissions are derived from distance.
func (o *ORSProvider) GetMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ ports.Matrix, err error) {
	defer obs.Time(ctx, "ors.GetMatrix")(&err)

	n := len(coords)
	if n == 0 {
		return ports.NewMatrix(0), nil
	}
	if n == 1 {
		return ports.NewMatrix(1), nil
	}

	locations := make([][]float64, 0, n)
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	var mr matrixResponse
	req := matrixRequest{Locations: locations, Metrics: []string{"distance", "duration"}}
	if err := o.postJSON(ctx, "/v2/matrix/"+o.profile, req, &mr); err != nil {
		return ports.Matrix{}, fmt.Errorf("matrix request failed: %w", err)
	}

	if len(mr.Distances) != n || len(mr.Durations) != n {
		return ports.Matrix{}, fmt.Errorf(
			"expected %d source rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		)
	}

	out := ports.NewMatrix(n)
	for i := 0; i < n; i++ {
		if len(mr.Distances[i]) != n || len(mr.Durations[i]) != n {
			return ports.Matrix{}, fmt.Errorf(
				"row %d has %d distances and %d durations; want %d",
				i, len(mr.Distances[i]), len(mr.Durations[i]), n,
			)
		}
		for j := 0; j < n; j++ {
			metersPtr := mr.Distances[i][j]
			secondsPtr := mr.Durations[i][j]
			// ORS reports unroutable pairs as null.
			if metersPtr == nil || secondsPtr == nil {
				return ports.Matrix{}, fmt.Errorf("matrix returned no route from %d to %d", i, j)
			}
			out.Distances[i][j] = *metersPtr
			out.Durations[i][j] = *secondsPtr
			out.Emissions[i][j] = o.emissionGrams(*metersPtr)
		}
	}

	return out, nil
}

func (o *ORSProvider) emissionGrams(meters float64) float64 {
	return meters / 1000 * o.gramsPerKm
}
