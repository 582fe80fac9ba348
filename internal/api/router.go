package api

import (
	"fleet-routing-service/internal/adapters/telemetry"
	"fleet-routing-service/internal/api/handlers"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// metrics may be nil, in which case /metrics is not served.
func NewRouter(planner handlers.Planner, metrics *telemetry.PrometheusObserver) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	if metrics != nil {
		r.Use(metricsMiddleware(metrics))
	}
	r.Use(chimiddleware.Recoverer)

	optimizeHandler := &handlers.OptimizeHandler{Planner: planner}

	r.Get("/health", handlers.Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/priority", optimizeHandler.Optimize)
	})

	return r
}
