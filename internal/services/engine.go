package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// DistanceEngine keeps the pairwise distance index consistent with entity
// positions. Writes fan out from the changed entity to every positioned
// partner; deletions drop all rows referencing the entity and then rebuild
// the full index from scratch.
type DistanceEngine struct {
	store   ports.EntityStore
	index   ports.DistanceIndex
	metrics *obs.Metrics

	rebuilding atomic.Bool
}

func NewDistanceEngine(store ports.EntityStore, index ports.DistanceIndex, metrics *obs.Metrics) *DistanceEngine {
	if metrics == nil {
		metrics = obs.NopMetrics()
	}
	return &DistanceEngine{store: store, index: index, metrics: metrics}
}

// OnEntityUpserted refreshes every index row that involves the entity. An
// unpositioned entity contributes no rows; unpositioned partners are skipped.
// Each relation is written as one batch so a crash mid-update never leaves a
// half-written relation.
func (e *DistanceEngine) OnEntityUpserted(ctx context.Context, kind domain.EntityKind, id string) (err error) {
	defer obs.Time(ctx, "distance_upsert_fanout")(&err)

	entity, err := e.store.GetEntity(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("distance engine: get %s %s: %w", kind, id, err)
	}
	if !entity.Positioned() {
		log.Printf("op=distance_upsert kind=%s id=%s skipped=unpositioned", kind, id)
		return nil
	}

	for _, rel := range domain.PartnerRelations(kind) {
		partners, err := e.store.ListByKind(ctx, rel.Partner)
		if err != nil {
			return fmt.Errorf("distance engine: list %s: %w", rel.Partner, err)
		}

		pairs := make([]domain.DistancePair, 0, len(partners))
		for _, p := range partners {
			if p.ID == entity.ID || !p.Positioned() {
				continue
			}
			pair, err := domain.NewDistancePair(entity.ID, p.ID, domain.Haversine(*entity.Position, *p.Position))
			if err != nil {
				e.metrics.IndexWriteErrors.Inc()
				log.Printf("op=distance_upsert pair=%s/%s err=%v", entity.ID, p.ID, err)
				continue
			}
			pairs = append(pairs, pair)
		}
		if len(pairs) == 0 {
			continue
		}

		if err := e.index.UpsertBatch(ctx, rel.Type, pairs); err != nil {
			return fmt.Errorf("distance engine: upsert %s batch for %s: %w", rel.Type, entity.ID, err)
		}
		e.metrics.DistanceUpserts.Add(float64(len(pairs)))
	}

	return nil
}

// OnEntityDeleted removes every row referencing the entity, then rebuilds the
// whole index. The rebuild re-derives all surviving rows, so a delete that
// raced a concurrent upsert still converges.
func (e *DistanceEngine) OnEntityDeleted(ctx context.Context, kind domain.EntityKind, id string) (err error) {
	defer obs.Time(ctx, "distance_delete")(&err)

	if err := e.index.DeleteAllForEntity(ctx, id); err != nil {
		return fmt.Errorf("distance engine: delete rows for %s %s: %w", kind, id, err)
	}
	e.metrics.DistanceDeletes.Inc()

	if err := e.RebuildAll(ctx); err != nil {
		return fmt.Errorf("distance engine: rebuild after delete of %s: %w", id, err)
	}
	return nil
}

// RebuildAll recomputes every relation from current entity positions. At most
// one rebuild runs at a time; concurrent requests return immediately without
// error.
func (e *DistanceEngine) RebuildAll(ctx context.Context) error {
	if !e.rebuilding.CompareAndSwap(false, true) {
		e.metrics.RebuildSkipped.Inc()
		log.Printf("op=distance_rebuild skipped=in_flight")
		return nil
	}
	defer e.rebuilding.Store(false)

	start := time.Now()

	warehouses, err := e.positioned(ctx, domain.KindWarehouse)
	if err != nil {
		return err
	}
	suppliers, err := e.positioned(ctx, domain.KindSupplier)
	if err != nil {
		return err
	}
	salePoints, err := e.positioned(ctx, domain.KindSalePoint)
	if err != nil {
		return err
	}

	if err := e.rebuildRelation(ctx, domain.PairWarehouseSalePoint, warehouses, salePoints); err != nil {
		return err
	}
	if err := e.rebuildRelation(ctx, domain.PairWarehouseSupplier, warehouses, suppliers); err != nil {
		return err
	}
	if err := e.rebuildSalePointMesh(ctx, salePoints); err != nil {
		return err
	}

	e.metrics.RebuildRuns.Inc()
	e.metrics.RebuildDuration.Observe(time.Since(start).Seconds())
	log.Printf("op=distance_rebuild dur=%dms warehouses=%d suppliers=%d salepoints=%d",
		time.Since(start).Milliseconds(), len(warehouses), len(suppliers), len(salePoints))
	return nil
}

func (e *DistanceEngine) positioned(ctx context.Context, kind domain.EntityKind) ([]*domain.GeoEntity, error) {
	all, err := e.store.ListByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("distance engine: list %s: %w", kind, err)
	}
	out := all[:0]
	for _, en := range all {
		if en.Positioned() {
			out = append(out, en)
		}
	}
	return out, nil
}

func (e *DistanceEngine) rebuildRelation(ctx context.Context, pt domain.PairType, from, to []*domain.GeoEntity) error {
	pairs := make([]domain.DistancePair, 0, len(from)*len(to))
	for _, a := range from {
		for _, b := range to {
			pair, err := domain.NewDistancePair(a.ID, b.ID, domain.Haversine(*a.Position, *b.Position))
			if err != nil {
				e.metrics.IndexWriteErrors.Inc()
				continue
			}
			pairs = append(pairs, pair)
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	if err := e.index.UpsertBatch(ctx, pt, pairs); err != nil {
		return fmt.Errorf("distance engine: rebuild %s: %w", pt, err)
	}
	e.metrics.DistanceUpserts.Add(float64(len(pairs)))
	return nil
}

// rebuildSalePointMesh writes each unordered sale-point pair once.
func (e *DistanceEngine) rebuildSalePointMesh(ctx context.Context, salePoints []*domain.GeoEntity) error {
	if len(salePoints) < 2 {
		return nil
	}
	pairs := make([]domain.DistancePair, 0, len(salePoints)*(len(salePoints)-1)/2)
	for i := 0; i < len(salePoints); i++ {
		for j := i + 1; j < len(salePoints); j++ {
			pair, err := domain.NewDistancePair(salePoints[i].ID, salePoints[j].ID,
				domain.Haversine(*salePoints[i].Position, *salePoints[j].Position))
			if err != nil {
				e.metrics.IndexWriteErrors.Inc()
				continue
			}
			pairs = append(pairs, pair)
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	if err := e.index.UpsertBatch(ctx, domain.PairSalePointSalePoint, pairs); err != nil {
		return fmt.Errorf("distance engine: rebuild %s: %w", domain.PairSalePointSalePoint, err)
	}
	e.metrics.DistanceUpserts.Add(float64(len(pairs)))
	return nil
}
