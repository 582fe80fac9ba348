package telemetry

import (
	"context"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"
	"log"
)

// LogObserver writes one key=value line per planning checkpoint.
type LogObserver struct {
	Logger *log.Logger // nil uses the standard logger
}

func (l LogObserver) printf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (l LogObserver) Scored(ctx context.Context, e ports.ScoredEvent) {
	l.printf("req_id=%s event=scored mode=%s orders=%d east=%d west=%d dur=%dms",
		reqID(ctx), e.Mode, e.Orders, e.East, e.West, e.Duration.Milliseconds())
}

func (l LogObserver) Assigned(ctx context.Context, e ports.AssignedEvent) {
	l.printf("req_id=%s event=assigned vehicle=%s orders=%d capacity=%g/%g",
		reqID(ctx), e.VehicleID, e.Assigned, e.CurrentCapacity, e.MaxCapacity)
}

func (l LogObserver) Routed(ctx context.Context, e ports.RoutedEvent) {
	if e.Err != nil {
		l.printf("req_id=%s event=routed vehicle=%s stops=%d err=%v", reqID(ctx), e.VehicleID, e.Stops, e.Err)
		return
	}
	l.printf("req_id=%s event=routed vehicle=%s stops=%d status=%s unreachable=%d dur=%dms",
		reqID(ctx), e.VehicleID, e.Stops, e.Status, e.Unreachable, e.Duration.Milliseconds())
}

func (l LogObserver) Refined(ctx context.Context, e ports.RefinedEvent) {
	if e.Err != nil {
		l.printf("req_id=%s event=refined vehicle=%s err=%v", reqID(ctx), e.VehicleID, e.Err)
		return
	}
	l.printf("req_id=%s event=refined vehicle=%s accepted=%d rejected=%d demoted=%d",
		reqID(ctx), e.VehicleID, e.Accepted, e.Rejected, e.Demoted)
}

func (l LogObserver) Assembled(ctx context.Context, e ports.AssembledEvent) {
	l.printf("req_id=%s event=assembled vehicle=%s orders=%d stops=%d total_time=%.2f total_dist=%.2f",
		reqID(ctx), e.VehicleID, e.Orders, e.Stops, e.TotalTime, e.TotalDistance)
}

func reqID(ctx context.Context) string { return obs.RequestID(ctx) }
