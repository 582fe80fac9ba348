package telemetry

import (
	"context"
	"fleet-routing-service/internal/ports"
)

// Multi fans every checkpoint out to each observer in order.
type Multi []ports.PlanObserver

func (m Multi) Scored(ctx context.Context, e ports.ScoredEvent) {
	for _, o := range m {
		o.Scored(ctx, e)
	}
}

func (m Multi) Assigned(ctx context.Context, e ports.AssignedEvent) {
	for _, o := range m {
		o.Assigned(ctx, e)
	}
}

func (m Multi) Routed(ctx context.Context, e ports.RoutedEvent) {
	for _, o := range m {
		o.Routed(ctx, e)
	}
}

func (m Multi) Refined(ctx context.Context, e ports.RefinedEvent) {
	for _, o := range m {
		o.Refined(ctx, e)
	}
}

func (m Multi) Assembled(ctx context.Context, e ports.AssembledEvent) {
	for _, o := range m {
		o.Assembled(ctx, e)
	}
}
