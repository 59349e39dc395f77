package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nour0506/LogistiCo/internal/api/handlers"
	"github.com/Nour0506/LogistiCo/internal/ports"
	"github.com/Nour0506/LogistiCo/internal/services"
)

// RouterDeps carries everything the HTTP surface needs. NewRouter is the API
// composition root; handlers stay unaware of concrete adapters.
type RouterDeps struct {
	Store     ports.EntityStore
	Geocoder  ports.Geocoder
	Engine    *services.DistanceEngine
	Retries   *services.GeocodeRetryQueue
	Planner   *services.RoutePlanner
	Optimizer *services.SourceOptimizer
	Registry  *prometheus.Registry
}

func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	eventHandler := &handlers.EntityEventHandler{
		Store:    deps.Store,
		Geocoder: deps.Geocoder,
		Engine:   deps.Engine,
		Retries:  deps.Retries,
	}
	planHandler := &handlers.PlanHandler{Planner: deps.Planner}
	rebuildHandler := &handlers.RebuildHandler{Engine: deps.Engine}
	optimizeHandler := &handlers.OptimizeHandler{Optimizer: deps.Optimizer}
	retryHandler := &handlers.RetryHandler{Retries: deps.Retries}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /events/entity", eventHandler.Upserted)
	mux.HandleFunc("DELETE /events/entity/{kind}/{id}", eventHandler.Deleted)
	mux.HandleFunc("POST /distance-index/rebuild", rebuildHandler.Rebuild)
	mux.HandleFunc("POST /plans", planHandler.Plan)
	mux.HandleFunc("POST /optimize/source", optimizeHandler.Source)
	mux.HandleFunc("GET /geocode/retries", retryHandler.List)

	if deps.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	return loggingMiddleware(mux)
}
