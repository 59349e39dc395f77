package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nour0506/LogistiCo/internal/adapters/index"
	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
)

func TestOnEntityUpsertedFansOutToPositionedPartners(t *testing.T) {
	store := newFakeEntityStore(
		testEntity(domain.KindWarehouse, "w1", "Central", 10, 36),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
		testEntity(domain.KindSalePoint, "s2", "Shop B", 10.5, 36),
		testEntity(domain.KindSupplier, "p1", "Supplier One", 9.8, 36.2),
		unpositioned(domain.KindSupplier, "p2", "Supplier Two", "12 rue inconnue"),
	)
	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())

	require.NoError(t, engine.OnEntityUpserted(context.Background(), domain.KindWarehouse, "w1"))

	km, ok, err := idx.Lookup(context.Background(), domain.PairWarehouseSalePoint, "w1", "s1")
	require.NoError(t, err)
	require.True(t, ok)
	wantKm := domain.RoundKm(domain.Haversine(
		domain.Coordinates{Lon: 10, Lat: 36},
		domain.Coordinates{Lon: 10.1, Lat: 36},
	))
	assert.Equal(t, wantKm, km)

	_, ok, err = idx.Lookup(context.Background(), domain.PairWarehouseSalePoint, "w1", "s2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = idx.Lookup(context.Background(), domain.PairWarehouseSupplier, "w1", "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Unpositioned partners contribute no rows.
	_, ok, err = idx.Lookup(context.Background(), domain.PairWarehouseSupplier, "w1", "p2")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 3, idx.Len())
}

func TestOnEntityUpsertedSkipsUnpositionedEntity(t *testing.T) {
	store := newFakeEntityStore(
		unpositioned(domain.KindWarehouse, "w1", "Central", "5 avenue Habib Bourguiba"),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
	)
	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())

	require.NoError(t, engine.OnEntityUpserted(context.Background(), domain.KindWarehouse, "w1"))
	assert.Zero(t, idx.Len())
}

func TestSalePointUpsertCoversBothRelations(t *testing.T) {
	store := newFakeEntityStore(
		testEntity(domain.KindWarehouse, "w1", "Central", 10, 36),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
		testEntity(domain.KindSalePoint, "s2", "Shop B", 10.5, 36),
	)
	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())

	require.NoError(t, engine.OnEntityUpserted(context.Background(), domain.KindSalePoint, "s1"))

	_, ok, err := idx.Lookup(context.Background(), domain.PairWarehouseSalePoint, "s1", "w1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = idx.Lookup(context.Background(), domain.PairSalePointSalePoint, "s1", "s2")
	require.NoError(t, err)
	assert.True(t, ok)

	// A sale point never pairs with itself.
	assert.Equal(t, 2, idx.Len())
}

func TestOnEntityDeletedDropsAllRowsAndRebuilds(t *testing.T) {
	store := newFakeEntityStore(
		testEntity(domain.KindWarehouse, "w1", "Central", 10, 36),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
		testEntity(domain.KindSalePoint, "s2", "Shop B", 10.5, 36),
	)
	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())
	require.NoError(t, engine.RebuildAll(context.Background()))
	require.Equal(t, 3, idx.Len()) // w1-s1, w1-s2, s1-s2

	store.remove(domain.KindSalePoint, "s1")
	require.NoError(t, engine.OnEntityDeleted(context.Background(), domain.KindSalePoint, "s1"))

	assert.Zero(t, idx.RowsReferencing("s1"))

	// Surviving pairs are re-derived by the rebuild.
	_, ok, err := idx.Lookup(context.Background(), domain.PairWarehouseSalePoint, "w1", "s2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, idx.Len())
}

func TestRebuildAllWithNoSuppliers(t *testing.T) {
	store := newFakeEntityStore(
		testEntity(domain.KindWarehouse, "w1", "Central", 10, 36),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
	)
	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())

	require.NoError(t, engine.RebuildAll(context.Background()))
	assert.Equal(t, 1, idx.Len())
}

func TestRebuildAllSingleFlight(t *testing.T) {
	store := newFakeEntityStore(
		testEntity(domain.KindWarehouse, "w1", "Central", 10, 36),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
	)
	store.listGate = make(chan struct{})

	idx := index.NewMemory()
	metrics := obs.NopMetrics()
	engine := NewDistanceEngine(store, idx, metrics)

	done := make(chan error, 1)
	go func() { done <- engine.RebuildAll(context.Background()) }()

	// Wait until the first rebuild holds the flight flag, then race it.
	require.Eventually(t, func() bool {
		return engine.rebuilding.Load()
	}, time.Second, time.Millisecond)

	require.NoError(t, engine.RebuildAll(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RebuildSkipped))

	close(store.listGate)
	require.NoError(t, <-done)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RebuildRuns))
}
