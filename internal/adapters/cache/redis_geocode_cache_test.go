package cache

import (
	"context"
	"testing"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisGeocodeCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeocodeCacheWithClient(client)
}

func TestGeocodeCachePutGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	pos := domain.Coordinates{Lon: 10.18, Lat: 36.81}
	require.NoError(t, c.Put(ctx, "Avenue Habib Bourguiba, Tunis", pos))

	got, ok, err := c.Get(ctx, "Avenue Habib Bourguiba, Tunis")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pos, got)
}

func TestGeocodeCacheNormalizesAddressKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	pos := domain.Coordinates{Lon: 10.64, Lat: 35.82}
	require.NoError(t, c.Put(ctx, "  Rue de la   Liberté, Sousse ", pos))

	got, ok, err := c.Get(ctx, "rue de la liberté, sousse")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pos, got)
}

func TestGeocodeCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get(context.Background(), "unknown place")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGeocodeCacheRejectsEmptyAddress(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, _, err := c.Get(ctx, "   ")
	require.Error(t, err)

	err = c.Put(ctx, "", domain.Coordinates{Lon: 1, Lat: 1})
	require.Error(t, err)
}
