package main

import (
	"context"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Nour0506/LogistiCo/internal/adapters/cache"
	"github.com/Nour0506/LogistiCo/internal/adapters/geo"
	"github.com/Nour0506/LogistiCo/internal/adapters/index"
	"github.com/Nour0506/LogistiCo/internal/adapters/repositories"
	"github.com/Nour0506/LogistiCo/internal/api"
	"github.com/Nour0506/LogistiCo/internal/config"
	"github.com/Nour0506/LogistiCo/internal/platform/db"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
	"github.com/Nour0506/LogistiCo/internal/ports"
	"github.com/Nour0506/LogistiCo/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, Nominatim) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(registry)

	store := repositories.NewPostgresEntityStore(database)
	contracts := repositories.NewPostgresContractRepository(database)
	fleet := repositories.NewPostgresFleetRepository(database)
	distanceIndex := index.NewPostgresDistanceIndex(database)

	// The geocode cache is optional: without Redis the geocoder still
	// works, it just pays the upstream rate limit on every address.
	var geocodeCache ports.GeocodeCache
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisGeocodeCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
		geocodeCache = rc
	}

	geocoder := geo.NewNominatimGeocoder(geo.NominatimConfig{
		BaseURL:     cfg.GeocodeBaseURL,
		Country:     cfg.GeocodeCountry,
		UserAgent:   cfg.GeocodeUserAgent,
		MinInterval: cfg.GeocodeMinInterval,
		Timeout:     cfg.GeocodeTimeout,
	}, geocodeCache, metrics)

	engine := services.NewDistanceEngine(store, distanceIndex, metrics)
	retries := services.NewGeocodeRetryQueue(store, geocoder, engine)
	planner := services.NewRoutePlanner(contracts, store, fleet, distanceIndex, metrics, services.PlannerConfig{
		AvgSpeedKmh:        cfg.AvgSpeedKmh,
		PerStopMinutes:     cfg.PerStopMinutes,
		StrictCompanyCheck: cfg.StrictCompanyCheck,
		AllowMissingDriver: cfg.AllowMissingDriver,
		Concurrency:        cfg.PlannerConcurrency,
	})
	optimizer := services.NewSourceOptimizer(store, distanceIndex, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go retries.Run(ctx, 30*time.Second)

	if cfg.RebuildOnStart {
		if err := engine.RebuildAll(ctx); err != nil {
			log.Fatalf("startup rebuild failed: %v", err)
		}
	}

	router := api.NewRouter(api.RouterDeps{
		Store:     store,
		Geocoder:  geocoder,
		Engine:    engine,
		Retries:   retries,
		Planner:   planner,
		Optimizer: optimizer,
		Registry:  registry,
	})

	log.Printf("Server listening addr=%s", cfg.HTTPAddr)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
