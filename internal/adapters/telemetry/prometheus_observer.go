package telemetry

import (
	"context"
	"fleet-routing-service/internal/ports"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PrometheusObserver records planning checkpoints and HTTP traffic on its own registry.
type PrometheusObserver struct {
	Registry *prometheus.Registry

	scoringDuration *prometheus.HistogramVec
	ordersScored    prometheus.Counter
	ordersAssigned  prometheus.Counter
	routeSolves     *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	stopsRefined    *prometheus.CounterVec
	ordersDemoted   prometheus.Counter
	shipments       prometheus.Counter
	shipmentMeters  prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheusObserver registers every collector, plus Go and process collectors,
// on a fresh registry.
func NewPrometheusObserver() *PrometheusObserver {
	p := &PrometheusObserver{
		Registry: prometheus.NewRegistry(),
		scoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "fleet_priority_scoring_seconds", Help: "Priority scoring duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"mode"},
		),
		ordersScored: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "fleet_orders_scored_total", Help: "Orders ranked by the priority scorer."},
		),
		ordersAssigned: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "fleet_orders_assigned_total", Help: "Orders loaded onto a vehicle by the capacity allocator."},
		),
		routeSolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "fleet_route_solves_total", Help: "Route optimizer calls by outcome."},
			[]string{"status"},
		),
		solveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "fleet_route_solve_seconds", Help: "Route optimizer duration in seconds.", Buckets: prometheus.DefBuckets},
		),
		stopsRefined: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "fleet_stops_refined_total", Help: "Stops checked against their time windows by outcome."},
			[]string{"outcome"},
		),
		ordersDemoted: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "fleet_orders_demoted_total", Help: "Orders returned to the pool after routing."},
		),
		shipments: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "fleet_shipments_total", Help: "Shipments assembled."},
		),
		shipmentMeters: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "fleet_shipment_distance_meters", Help: "Total driven distance per shipment.", Buckets: prometheus.ExponentialBuckets(1000, 2, 10)},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path", "status"},
		),
	}

	p.Registry.MustRegister(
		p.scoringDuration,
		p.ordersScored,
		p.ordersAssigned,
		p.routeSolves,
		p.solveDuration,
		p.stopsRefined,
		p.ordersDemoted,
		p.shipments,
		p.shipmentMeters,
		p.httpRequests,
		p.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

func (p *PrometheusObserver) Scored(_ context.Context, e ports.ScoredEvent) {
	p.scoringDuration.WithLabelValues(e.Mode.String()).Observe(e.Duration.Seconds())
	p.ordersScored.Add(float64(e.Orders))
}

func (p *PrometheusObserver) Assigned(_ context.Context, e ports.AssignedEvent) {
	p.ordersAssigned.Add(float64(e.Assigned))
}

func (p *PrometheusObserver) Routed(_ context.Context, e ports.RoutedEvent) {
	if e.Err != nil {
		p.routeSolves.WithLabelValues("error").Inc()
		return
	}
	p.routeSolves.WithLabelValues(e.Status.String()).Inc()
	p.solveDuration.Observe(e.Duration.Seconds())
}

func (p *PrometheusObserver) Refined(_ context.Context, e ports.RefinedEvent) {
	if e.Err != nil {
		return
	}
	p.stopsRefined.WithLabelValues("accepted").Add(float64(e.Accepted))
	p.stopsRefined.WithLabelValues("rejected").Add(float64(e.Rejected))
	p.ordersDemoted.Add(float64(e.Demoted))
}

func (p *PrometheusObserver) Assembled(_ context.Context, e ports.AssembledEvent) {
	p.shipments.Inc()
	p.shipmentMeters.Observe(e.TotalDistance)
}

// ObserveHTTP records one served request. path should be the route pattern, not the raw URL.
func (p *PrometheusObserver) ObserveHTTP(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	p.httpRequests.WithLabelValues(method, path, code).Inc()
	p.httpDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
}

var (
	_ ports.PlanObserver = (*PrometheusObserver)(nil)
	_ ports.PlanObserver = LogObserver{}
	_ ports.PlanObserver = Multi(nil)
)
