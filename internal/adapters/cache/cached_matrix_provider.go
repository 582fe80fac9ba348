package cache

import (
	"context"
	"errors"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"fmt"
	"log"
)

// CachedMatrixProvider serves matrices from a MatrixCache and falls back to the
// upstream provider when any pair is missing. Fresh results are written back.
type CachedMatrixProvider struct {
	Upstream ports.DistanceMatrixProvider
	Cache    ports.MatrixCache
}

func NewCachedMatrixProvider(upstream ports.DistanceMatrixProvider, c ports.MatrixCache) *CachedMatrixProvider {
	return &CachedMatrixProvider{Upstream: upstream, Cache: c}
}

func (p *CachedMatrixProvider) GetMatrix(ctx context.Context, coords []domain.Coordinates) (ports.Matrix, error) {
	if p.Upstream == nil {
		return ports.Matrix{}, errors.New("cached matrix: upstream provider is nil")
	}
	if p.Cache == nil || len(coords) < 2 {
		return p.Upstream.GetMatrix(ctx, coords)
	}

	keys := make([]string, len(coords))
	for i, c := range coords {
		keys[i] = c.Key()
	}

	m, ok, err := p.fromCache(ctx, keys)
	if err != nil {
		log.Printf("matrix cache read failed: %v", err)
	}
	if ok {
		return m, nil
	}

	m, err = p.Upstream.GetMatrix(ctx, coords)
	if err != nil {
		return ports.Matrix{}, err
	}
	if m.Size() != len(coords) {
		return ports.Matrix{}, fmt.Errorf("cached matrix: upstream returned %d rows for %d locations", m.Size(), len(coords))
	}

	for i, origin := range keys {
		row := make(map[string]ports.PairMetrics, len(keys))
		for j, dest := range keys {
			if dest == origin {
				continue
			}
			row[dest] = m.Pair(i, j)
		}
		if err := p.Cache.PutMany(ctx, origin, row); err != nil {
			log.Printf("matrix cache write failed: origin=%s err=%v", origin, err)
		}
	}

	return m, nil
}

// fromCache assembles the matrix only when every off-diagonal pair is cached.
func (p *CachedMatrixProvider) fromCache(ctx context.Context, keys []string) (ports.Matrix, bool, error) {
	n := len(keys)
	out := ports.NewMatrix(n)

	for i, origin := range keys {
		hits, err := p.Cache.GetMany(ctx, origin, keys)
		if err != nil {
			return ports.Matrix{}, false, err
		}
		for j, dest := range keys {
			if dest == origin {
				continue
			}
			r, ok := hits[dest]
			if !ok {
				return ports.Matrix{}, false, nil
			}
			out.Distances[i][j] = r.DistanceMeters
			out.Durations[i][j] = r.DurationSeconds
			out.Emissions[i][j] = r.EmissionGrams
		}
	}

	return out, true, nil
}
