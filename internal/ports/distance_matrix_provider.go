package ports

import (
	"context"
	"fleet-routing-service/internal/domain"
)

// Travel metrics between an ordered pair of locations.
type PairMetrics struct {
	DistanceMeters  float64
	DurationSeconds float64
	EmissionGrams   float64
}

// Square matrices over an ordered location set; row = origin, column = destination.
type Matrix struct {
	Distances [][]float64 // meters
	Durations [][]float64 // seconds
	Emissions [][]float64 // grams CO2
}

// Size returns the number of locations covered by the matrix.
func (m Matrix) Size() int { return len(m.Durations) }

// Pair returns the metrics from location i to location j.
func (m Matrix) Pair(i, j int) PairMetrics {
	return PairMetrics{
		DistanceMeters:  m.Distances[i][j],
		DurationSeconds: m.Durations[i][j],
		EmissionGrams:   m.Emissions[i][j],
	}
}

// NewMatrix allocates zeroed n x n matrices.
func NewMatrix(n int) Matrix {
	m := Matrix{
		Distances: make([][]float64, n),
		Durations: make([][]float64, n),
		Emissions: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]float64, n)
		m.Emissions[i] = make([]float64, n)
	}
	return m
}

// Contract for computing distance, duration and emission matrices in one batched call.
type DistanceMatrixProvider interface {
	// Return matrices over coords in the given order; the depot is expected at index 0.
	GetMatrix(ctx context.Context, coords []domain.Coordinates) (Matrix, error)
}

// Persistent store of pairwise metrics keyed by origin and destination coordinate keys.
type MatrixCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]PairMetrics, error)
	PutMany(ctx context.Context, origin string, results map[string]PairMetrics) error
}
