package distance

import (
	"context"
	"errors"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/ports"
	"fmt"
	"sync"
)

var ErrMockFailure = errors.New("mock provider failure")

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
	Grams    float64
}

// MockProvider serves fixed leg metrics for tests. It implements the matrix,
// directions and geometry ports. Legs are symmetric unless the reverse leg is
// listed explicitly.
type MockProvider struct {
	mu     sync.Mutex
	m      map[string]MockPair
	fail   map[string]struct{}
	calls  map[string]int
	failed bool
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]MockPair, 2*len(pairs))
	for _, p := range pairs {
		m[legKey(p.From, p.To)] = p
	}
	for _, p := range pairs {
		rev := legKey(p.To, p.From)
		if _, ok := m[rev]; !ok {
			m[rev] = MockPair{From: p.To, To: p.From, Meters: p.Meters, Seconds: p.Seconds, Grams: p.Grams}
		}
	}
	return &MockProvider{
		m:     m,
		fail:  make(map[string]struct{}),
		calls: make(map[string]int),
	}
}

// FailOn makes every call touching c return ErrMockFailure.
func (p *MockProvider) FailOn(c domain.Coordinates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[c.Key()] = struct{}{}
}

// FailAll makes every call return ErrMockFailure.
func (p *MockProvider) FailAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
}

// Calls reports how many times op ("matrix", "directions", "path") was invoked.
func (p *MockProvider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *MockProvider) GetMatrix(ctx context.Context, coords []domain.Coordinates) (ports.Matrix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["matrix"]++

	if err := p.checkLocked(coords...); err != nil {
		return ports.Matrix{}, err
	}

	out := ports.NewMatrix(len(coords))
	for i, from := range coords {
		for j, to := range coords {
			r, err := p.legLocked(from, to)
			if err != nil {
				return ports.Matrix{}, err
			}
			out.Distances[i][j] = r.Meters
			out.Durations[i][j] = r.Seconds
			out.Emissions[i][j] = r.Grams
		}
	}
	return out, nil
}

func (p *MockProvider) GetDirections(ctx context.Context, from, to domain.Coordinates) (ports.Directions, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["directions"]++

	if err := p.checkLocked(from, to); err != nil {
		return ports.Directions{}, err
	}
	r, err := p.legLocked(from, to)
	if err != nil {
		return ports.Directions{}, err
	}
	return ports.Directions{
		DurationSeconds: r.Seconds,
		DistanceMeters:  r.Meters,
		Polyline:        []domain.Coordinates{from, to},
	}, nil
}

func (p *MockProvider) GetPath(ctx context.Context, from, to domain.Coordinates) ([]domain.Coordinates, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["path"]++

	if err := p.checkLocked(from, to); err != nil {
		return nil, err
	}
	if from == to {
		return []domain.Coordinates{from}, nil
	}
	return []domain.Coordinates{from, to}, nil
}

func (p *MockProvider) checkLocked(coords ...domain.Coordinates) error {
	if p.failed {
		return ErrMockFailure
	}
	for _, c := range coords {
		if _, ok := p.fail[c.Key()]; ok {
			return fmt.Errorf("%w at %s", ErrMockFailure, c.Key())
		}
	}
	return nil
}

func (p *MockProvider) legLocked(from, to domain.Coordinates) (MockPair, error) {
	if from == to {
		return MockPair{From: from, To: to}, nil
	}
	r, ok := p.m[legKey(from, to)]
	if !ok {
		return MockPair{}, fmt.Errorf("missing pair %q -> %q", from.Key(), to.Key())
	}
	return r, nil
}

func legKey(from, to domain.Coordinates) string {
	return from.Key() + "|" + to.Key()
}
