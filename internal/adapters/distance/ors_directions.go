package distance

import (
	"context"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"fmt"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// GetDirections retrieves duration, distance and geometry for a single leg
// from the OpenRouteService GeoJSON directions endpoint.
func (o *ORSProvider) GetDirections(
	ctx context.Context,
	from, to domain.Coordinates,
) (_ ports.Directions, err error) {
	defer obs.Time(ctx, "ors.GetDirections")(&err)

	if from == to {
		return ports.Directions{Polyline: []domain.Coordinates{from}}, nil
	}

	var dr directionsResponse
	req := directionsRequest{Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()}}
	if err := o.postJSON(ctx, "/v2/directions/"+o.profile+"/geojson", req, &dr); err != nil {
		return ports.Directions{}, fmt.Errorf("directions request failed: %w", err)
	}

	if len(dr.Features) == 0 {
		return ports.Directions{}, fmt.Errorf("no route %s -> %s", from.Key(), to.Key())
	}

	feature := dr.Features[0]
	polyline := make([]domain.Coordinates, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) < 2 {
			return ports.Directions{}, fmt.Errorf("invalid coordinate format in route geometry")
		}
		polyline = append(polyline, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return ports.Directions{
		DurationSeconds: feature.Properties.Summary.Duration,
		DistanceMeters:  feature.Properties.Summary.Distance,
		Polyline:        polyline,
	}, nil
}

// GetPath returns only the leg geometry.
func (o *ORSProvider) GetPath(ctx context.Context, from, to domain.Coordinates) ([]domain.Coordinates, error) {
	d, err := o.GetDirections(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return d.Polyline, nil
}
