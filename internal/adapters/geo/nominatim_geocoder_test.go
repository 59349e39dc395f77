package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nour0506/LogistiCo/internal/adapters/cache"
	"github.com/Nour0506/LogistiCo/internal/ports"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newGeocodeServer(t *testing.T, hits *atomic.Int64, results []nominatimResult) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveParsesNominatimResponse(t *testing.T) {
	var hits atomic.Int64
	srv := newGeocodeServer(t, &hits, []nominatimResult{{Lon: "10.1815", Lat: "36.8065"}})

	g := NewNominatimGeocoder(NominatimConfig{
		BaseURL:     srv.URL,
		Country:     "Tunisia",
		MinInterval: time.Millisecond,
	}, nil, nil)

	pos, err := g.Resolve(context.Background(), "Avenue Habib Bourguiba, Tunis", "hq")
	require.NoError(t, err)
	require.InDelta(t, 10.1815, pos.Lon, 1e-9)
	require.InDelta(t, 36.8065, pos.Lat, 1e-9)
	require.EqualValues(t, 1, hits.Load())
}

func TestResolveNoMatch(t *testing.T) {
	var hits atomic.Int64
	srv := newGeocodeServer(t, &hits, []nominatimResult{})

	g := NewNominatimGeocoder(NominatimConfig{
		BaseURL:     srv.URL,
		MinInterval: time.Millisecond,
	}, nil, nil)

	_, err := g.Resolve(context.Background(), "nowhere at all", "ghost")
	require.ErrorIs(t, err, ports.ErrGeocodeNoMatch)
}

func TestResolveServesRepeatsFromCache(t *testing.T) {
	var hits atomic.Int64
	srv := newGeocodeServer(t, &hits, []nominatimResult{{Lon: "10.64", Lat: "35.82"}})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	geocodeCache := cache.NewRedisGeocodeCacheWithClient(client)

	g := NewNominatimGeocoder(NominatimConfig{
		BaseURL:     srv.URL,
		MinInterval: time.Millisecond,
	}, geocodeCache, nil)

	ctx := context.Background()
	first, err := g.Resolve(ctx, "Rue de la Liberté, Sousse", "shop")
	require.NoError(t, err)

	// Different spelling, same normalized key: no second upstream call.
	second, err := g.Resolve(ctx, "  rue de la   liberté, sousse", "shop")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.EqualValues(t, 1, hits.Load())
}

func TestResolveEnforcesMinimumInterval(t *testing.T) {
	var hits atomic.Int64
	srv := newGeocodeServer(t, &hits, []nominatimResult{{Lon: "9.0", Lat: "34.0"}})

	const interval = 60 * time.Millisecond
	g := NewNominatimGeocoder(NominatimConfig{
		BaseURL:     srv.URL,
		MinInterval: interval,
	}, nil, nil)

	ctx := context.Background()
	start := time.Now()
	_, err := g.Resolve(ctx, "first address", "a")
	require.NoError(t, err)
	_, err = g.Resolve(ctx, "second address", "b")
	require.NoError(t, err)

	require.GreaterOrEqual(t, time.Since(start), interval)
	require.EqualValues(t, 2, hits.Load())
}

func TestResolveHonorsContextDuringRateLimit(t *testing.T) {
	var hits atomic.Int64
	srv := newGeocodeServer(t, &hits, []nominatimResult{{Lon: "9.0", Lat: "34.0"}})

	g := NewNominatimGeocoder(NominatimConfig{
		BaseURL:     srv.URL,
		MinInterval: 5 * time.Second,
	}, nil, nil)

	_, err := g.Resolve(context.Background(), "first address", "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Resolve(ctx, "second address", "b")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.EqualValues(t, 1, hits.Load())
}
