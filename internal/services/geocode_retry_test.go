package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nour0506/LogistiCo/internal/adapters/geo"
	"github.com/Nour0506/LogistiCo/internal/adapters/index"
	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
)

func retryFixture(geocoder *geo.MockGeocoder) (*fakeEntityStore, *index.Memory, *GeocodeRetryQueue) {
	store := newFakeEntityStore(
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
		unpositioned(domain.KindWarehouse, "w1", "Central", "5 avenue Habib Bourguiba"),
	)
	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())
	q := NewGeocodeRetryQueue(store, geocoder, engine)
	q.backoff = 0 // retries are due immediately in tests
	return store, idx, q
}

func TestGeocodeRetryResolvesAndRefreshesDistances(t *testing.T) {
	geocoder := &geo.MockGeocoder{Positions: map[string]domain.Coordinates{
		"5 avenue Habib Bourguiba": {Lon: 10, Lat: 36},
	}}
	store, idx, q := retryFixture(geocoder)

	q.Enqueue(domain.KindWarehouse, "w1", "5 avenue Habib Bourguiba")
	require.Equal(t, 1, q.ProcessDue(context.Background()))

	// Position persisted.
	w, err := store.GetEntity(context.Background(), domain.KindWarehouse, "w1")
	require.NoError(t, err)
	assert.True(t, w.Positioned())
	assert.Equal(t, 10.0, w.Position.Lon)

	// Distance fan-out ran for the freshly positioned entity.
	_, ok, err := idx.Lookup(context.Background(), domain.PairWarehouseSalePoint, "w1", "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	entries := q.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, RetrySucceeded, entries[0].Status)
}

func TestGeocodeRetryFailsAfterMaxAttempts(t *testing.T) {
	geocoder := &geo.MockGeocoder{Positions: map[string]domain.Coordinates{}}
	_, _, q := retryFixture(geocoder)
	q.maxAttempts = 2

	q.Enqueue(domain.KindWarehouse, "w1", "nowhere at all")

	require.Zero(t, q.ProcessDue(context.Background()))
	entries := q.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, RetryPending, entries[0].Status)
	assert.NotEmpty(t, entries[0].LastErr)

	require.Zero(t, q.ProcessDue(context.Background()))
	entries = q.Entries()
	assert.Equal(t, RetryFailed, entries[0].Status)
	assert.Equal(t, 2, entries[0].Attempts)

	// Terminal entries are never retried again.
	require.Zero(t, q.ProcessDue(context.Background()))
	assert.Equal(t, 2, geocoder.Calls)
}

func TestGeocodeRetryDropsDeletedEntities(t *testing.T) {
	geocoder := &geo.MockGeocoder{Positions: map[string]domain.Coordinates{}}
	store, _, q := retryFixture(geocoder)

	q.Enqueue(domain.KindWarehouse, "w1", "5 avenue Habib Bourguiba")
	store.remove(domain.KindWarehouse, "w1")

	require.Equal(t, 1, q.ProcessDue(context.Background()))
	assert.Empty(t, q.Entries())
	assert.Zero(t, geocoder.Calls)
}

func TestGeocodeRetrySkipsAlreadyPositionedEntities(t *testing.T) {
	geocoder := &geo.MockGeocoder{Positions: map[string]domain.Coordinates{}}
	store, _, q := retryFixture(geocoder)

	q.Enqueue(domain.KindWarehouse, "w1", "5 avenue Habib Bourguiba")
	require.NoError(t, store.UpdatePosition(context.Background(), domain.KindWarehouse, "w1", domain.Coordinates{Lon: 10, Lat: 36}))

	require.Equal(t, 1, q.ProcessDue(context.Background()))
	assert.Zero(t, geocoder.Calls)

	entries := q.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, RetrySucceeded, entries[0].Status)
}

func TestGeocodeRetryBacksOffBetweenAttempts(t *testing.T) {
	geocoder := &geo.MockGeocoder{Positions: map[string]domain.Coordinates{}}
	_, _, q := retryFixture(geocoder)
	q.backoff = time.Hour

	q.Enqueue(domain.KindWarehouse, "w1", "nowhere at all")

	// Not due yet: the first attempt is scheduled one backoff out.
	require.Zero(t, q.ProcessDue(context.Background()))
	assert.Zero(t, geocoder.Calls)
}
