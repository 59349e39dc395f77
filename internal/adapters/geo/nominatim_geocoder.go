package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Nour0506/LogistiCo/internal/adapters/cache"
	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// NominatimGeocoder resolves free-text addresses via the OpenStreetMap
// Nominatim search endpoint.
//
// It coordinates:
//   - Address normalization and persistent caching
//   - A process-wide minimum inter-call delay (Nominatim usage policy)
//   - External calls with retry/backoff
//
// The geocoder is safe for concurrent use; the rate limiter serializes
// upstream calls, so callers must not assume sub-second latency.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	country   string
	userAgent string
	cache     ports.GeocodeCache
	metrics   *obs.Metrics

	mu          sync.Mutex
	lastCall    time.Time
	minInterval time.Duration
}

type NominatimConfig struct {
	BaseURL     string
	Country     string
	UserAgent   string
	MinInterval time.Duration
	Timeout     time.Duration
}

func NewNominatimGeocoder(cfg NominatimConfig, geocodeCache ports.GeocodeCache, metrics *obs.Metrics) *NominatimGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "LogistiCo/1.0"
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if metrics == nil {
		metrics = obs.NopMetrics()
	}

	return &NominatimGeocoder{
		session:     &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		country:     cfg.Country,
		userAgent:   cfg.UserAgent,
		cache:       geocodeCache,
		metrics:     metrics,
		minInterval: cfg.MinInterval,
	}
}

type nominatimResult struct {
	Lon string `json:"lon"`
	Lat string `json:"lat"`
}

// Resolve maps an address to coordinates, consulting the cache first. The
// name hint is only used in log lines to identify the entity being resolved.
func (g *NominatimGeocoder) Resolve(ctx context.Context, address, nameHint string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.Resolve")(&err)

	norm := cache.Normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: address must be non-empty", nameHint)
	}

	if g.cache != nil {
		pos, ok, err := g.cache.Get(ctx, norm)
		if err != nil {
			log.Printf("geocode cache read failed addr=%q err=%v", norm, err)
		} else if ok {
			g.metrics.GeocodeCacheHits.Inc()
			return pos, nil
		}
	}
	g.metrics.GeocodeCacheMisses.Inc()

	if err := g.waitForSlot(ctx); err != nil {
		return domain.Coordinates{}, err
	}

	query := norm
	if g.country != "" {
		query = norm + ", " + g.country
	}
	endpoint := g.baseURL + "/search?" + url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {"1"},
	}.Encode()

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, endpoint)
	})
	if err != nil {
		g.metrics.GeocodeFailures.Inc()
		return domain.Coordinates{}, fmt.Errorf("geocode %q (%q): %w", nameHint, norm, err)
	}
	defer resp.Body.Close()

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		g.metrics.GeocodeFailures.Inc()
		return domain.Coordinates{}, fmt.Errorf("geocode %q: decode response: %w", nameHint, err)
	}

	if len(results) == 0 {
		g.metrics.GeocodeFailures.Inc()
		return domain.Coordinates{}, fmt.Errorf("geocode %q (%q): %w", nameHint, norm, ports.ErrGeocodeNoMatch)
	}

	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		g.metrics.GeocodeFailures.Inc()
		return domain.Coordinates{}, fmt.Errorf("geocode %q: parse lon %q: %w", nameHint, results[0].Lon, err)
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		g.metrics.GeocodeFailures.Inc()
		return domain.Coordinates{}, fmt.Errorf("geocode %q: parse lat %q: %w", nameHint, results[0].Lat, err)
	}

	pos := domain.Coordinates{Lon: lon, Lat: lat}

	if g.cache != nil {
		if err := g.cache.Put(ctx, norm, pos); err != nil {
			log.Printf("geocode cache write failed addr=%q err=%v", norm, err)
		}
	}

	return pos, nil
}

// waitForSlot blocks until the minimum inter-call delay has elapsed since
// the previous upstream call. The slot is claimed before sleeping so
// concurrent callers queue up one interval apart.
func (g *NominatimGeocoder) waitForSlot(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	next := g.lastCall.Add(g.minInterval)
	if next.Before(now) {
		next = now
	}
	g.lastCall = next
	wait := next.Sub(now)
	g.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
