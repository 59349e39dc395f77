package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nour0506/LogistiCo/internal/adapters/index"
	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
)

func optimizerFixture(t *testing.T) (*fakeEntityStore, *SourceOptimizer) {
	t.Helper()

	stock := func(q float64) domain.ProductStock {
		return domain.ProductStock{ProductID: "prod-1", Name: "Olive Oil", Quantity: q}
	}

	store := newFakeEntityStore(
		// Near the sale points, well stocked.
		testEntity(domain.KindWarehouse, "w-near", "Near Depot", 10.2, 36, stock(200)),
		// Far away, also stocked.
		testEntity(domain.KindWarehouse, "w-far", "Far Depot", 11.5, 37, stock(200)),
		// Nearest of all but holds nothing.
		testEntity(domain.KindWarehouse, "w-empty", "Empty Depot", 10.1, 36),
		testEntity(domain.KindSalePoint, "s1", "Shop A", 10.1, 36),
		testEntity(domain.KindSalePoint, "s2", "Shop B", 10.3, 36),
		testEntity(domain.KindSupplier, "p-near", "Near Supplier", 10.25, 36.05, stock(1000)),
		testEntity(domain.KindSupplier, "p-far", "Far Supplier", 12, 37.5, stock(1000)),
	)

	idx := index.NewMemory()
	engine := NewDistanceEngine(store, idx, obs.NopMetrics())
	require.NoError(t, engine.RebuildAll(context.Background()))

	return store, NewSourceOptimizer(store, idx, obs.NopMetrics())
}

func TestFindOptimalSourcePrefersNearestStockedWarehouse(t *testing.T) {
	_, opt := optimizerFixture(t)

	rec, err := opt.FindOptimalSource(context.Background(), SourceRequest{
		SalePointIDs: []string{"s1", "s2"},
		ProductID:    "prod-1",
		Quantity:     150,
	})
	require.NoError(t, err)

	assert.Equal(t, "w-near", rec.Warehouse.EntityID)
	assert.Nil(t, rec.Supplier)
	assert.Zero(t, rec.Shortfall)

	// Candidates come back ranked; the empty warehouse never appears.
	require.Len(t, rec.Candidates, 2)
	assert.Equal(t, "w-near", rec.Candidates[0].EntityID)
	assert.Equal(t, "w-far", rec.Candidates[1].EntityID)
	assert.Less(t, rec.Candidates[0].Score, rec.Candidates[1].Score)
}

func TestFindOptimalSourceFallsBackToSupplierForShortfall(t *testing.T) {
	_, opt := optimizerFixture(t)

	rec, err := opt.FindOptimalSource(context.Background(), SourceRequest{
		SalePointIDs: []string{"s1", "s2"},
		ProductID:    "prod-1",
		Quantity:     350, // more than any single warehouse holds
	})
	require.NoError(t, err)

	assert.Equal(t, "w-near", rec.Warehouse.EntityID)
	require.NotNil(t, rec.Supplier)
	assert.Equal(t, "p-near", rec.Supplier.EntityID)
	assert.Equal(t, 150.0, rec.Shortfall)
}

func TestFindOptimalSourceErrorsWhenNothingStocked(t *testing.T) {
	_, opt := optimizerFixture(t)

	_, err := opt.FindOptimalSource(context.Background(), SourceRequest{
		SalePointIDs: []string{"s1"},
		ProductID:    "prod-unknown",
		Quantity:     10,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no positioned warehouse")
}

func TestFindOptimalSourceErrorsWhenSupplierCannotCover(t *testing.T) {
	store, opt := optimizerFixture(t)
	store.remove(domain.KindSupplier, "p-near")
	store.remove(domain.KindSupplier, "p-far")

	_, err := opt.FindOptimalSource(context.Background(), SourceRequest{
		SalePointIDs: []string{"s1"},
		ProductID:    "prod-1",
		Quantity:     350,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no supplier")
}

func TestFindOptimalSourceValidatesInput(t *testing.T) {
	_, opt := optimizerFixture(t)

	_, err := opt.FindOptimalSource(context.Background(), SourceRequest{SalePointIDs: []string{"s1"}, Quantity: 0})
	assert.Error(t, err)

	_, err = opt.FindOptimalSource(context.Background(), SourceRequest{Quantity: 10})
	assert.Error(t, err)
}
