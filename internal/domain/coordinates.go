package domain

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Return coordinates as [lat, lon], the order used in shipment geometry.
func (c Coordinates) LatLon() []float64 { return []float64{c.Lat, c.Lon} }

// Key is a stable cache key with fixed precision (~1cm).
func (c Coordinates) Key() string { return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lon) }

// GreatCircleMeters returns the haversine distance between two points.
// It is only used for priority scoring; travel metrics come from the matrix provider.
func GreatCircleMeters(a, b Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
