package cache

import (
	"context"
	"errors"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"log"
)

// CachedDirectionsProvider serves directions and leg geometry from a
// DirectionsCache, falling back to the upstream provider on a miss.
type CachedDirectionsProvider struct {
	Upstream ports.DirectionsProvider
	Cache    ports.DirectionsCache
}

func NewCachedDirectionsProvider(upstream ports.DirectionsProvider, c ports.DirectionsCache) *CachedDirectionsProvider {
	return &CachedDirectionsProvider{Upstream: upstream, Cache: c}
}

func (p *CachedDirectionsProvider) GetDirections(ctx context.Context, from, to domain.Coordinates) (ports.Directions, error) {
	if p.Upstream == nil {
		return ports.Directions{}, errors.New("cached directions: upstream provider is nil")
	}
	if p.Cache == nil {
		return p.Upstream.GetDirections(ctx, from, to)
	}

	d, ok, err := p.Cache.Get(ctx, from, to)
	if err != nil {
		log.Printf("directions cache read failed: %v", err)
	}
	if ok {
		return d, nil
	}

	d, err = p.Upstream.GetDirections(ctx, from, to)
	if err != nil {
		return ports.Directions{}, err
	}

	if err := p.Cache.Set(ctx, from, to, d); err != nil {
		log.Printf("directions cache write failed: %v", err)
	}

	return d, nil
}

func (p *CachedDirectionsProvider) GetPath(ctx context.Context, from, to domain.Coordinates) ([]domain.Coordinates, error) {
	d, err := p.GetDirections(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return d.Polyline, nil
}
