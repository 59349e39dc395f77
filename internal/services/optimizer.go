package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// Weighting applied when ranking a fallback supplier: proximity to the
// delivery area dominates, proximity to the chosen warehouse breaks ties.
const (
	supplierCentroidWeight  = 0.7
	supplierWarehouseWeight = 0.3
)

// SourceRequest asks which warehouse (and, if its stock falls short, which
// supplier) should feed a delivery to the given sale points. WarehouseID,
// when set, pins the warehouse instead of ranking candidates.
type SourceRequest struct {
	SalePointIDs []string
	ProductID    string
	ProductName  string
	Quantity     float64
	WarehouseID  string
}

// RankedSource is one scored candidate. Score is the mean distance to the
// sale points for warehouses, or the weighted warehouse/centroid distance
// for suppliers; lower is better.
type RankedSource struct {
	EntityID  string
	Name      string
	Available float64
	Score     float64
}

// SourceRecommendation is the optimizer's answer. Supplier is nil when the
// warehouse alone covers the quantity; Shortfall is what the supplier must
// provide.
type SourceRecommendation struct {
	Warehouse  RankedSource
	Supplier   *RankedSource
	Shortfall  float64
	Candidates []RankedSource
}

// SourceOptimizer ranks warehouses and suppliers for a prospective contract
// before it is signed, using the same distance index the planner reads.
type SourceOptimizer struct {
	entities ports.EntityStore
	index    ports.DistanceIndex
	metrics  *obs.Metrics
}

func NewSourceOptimizer(entities ports.EntityStore, index ports.DistanceIndex, metrics *obs.Metrics) *SourceOptimizer {
	if metrics == nil {
		metrics = obs.NopMetrics()
	}
	return &SourceOptimizer{entities: entities, index: index, metrics: metrics}
}

// FindOptimalSource picks the stocked warehouse with the lowest mean distance
// to the sale points. When no warehouse covers the full quantity, it settles
// for the best-placed warehouse holding any stock and ranks suppliers to
// cover the shortfall.
func (o *SourceOptimizer) FindOptimalSource(ctx context.Context, req SourceRequest) (_ *SourceRecommendation, err error) {
	defer obs.Time(ctx, "find_optimal_source")(&err)

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("optimize source: quantity must be positive, got %v", req.Quantity)
	}
	if len(req.SalePointIDs) == 0 {
		return nil, fmt.Errorf("optimize source: at least one sale point is required")
	}

	salePoints, err := o.loadPositioned(ctx, domain.KindSalePoint, req.SalePointIDs)
	if err != nil {
		return nil, fmt.Errorf("optimize source: %w", err)
	}

	warehouses, err := o.entities.ListByKind(ctx, domain.KindWarehouse)
	if err != nil {
		return nil, fmt.Errorf("optimize source: list warehouses: %w", err)
	}

	candidates := make([]RankedSource, 0, len(warehouses))
	for _, wh := range warehouses {
		if req.WarehouseID != "" && wh.ID != req.WarehouseID {
			continue
		}
		if !wh.Positioned() {
			continue
		}
		stock, ok := wh.StockOf(req.ProductID, req.ProductName)
		if !ok || stock <= 0 {
			continue
		}
		candidates = append(candidates, RankedSource{
			EntityID:  wh.ID,
			Name:      wh.Name,
			Available: stock,
			Score:     o.meanDistance(ctx, wh, salePoints),
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("optimize source: no positioned warehouse stocks the product")
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score < candidates[j].Score
		}
		return candidates[i].EntityID < candidates[j].EntityID
	})

	// Prefer the nearest warehouse that covers the quantity outright.
	for _, c := range candidates {
		if c.Available >= req.Quantity {
			return &SourceRecommendation{Warehouse: c, Candidates: candidates}, nil
		}
	}

	best := candidates[0]
	shortfall := req.Quantity - best.Available

	supplier, err := o.rankSupplier(ctx, best, salePoints, req, shortfall)
	if err != nil {
		return nil, err
	}

	return &SourceRecommendation{
		Warehouse:  best,
		Supplier:   supplier,
		Shortfall:  shortfall,
		Candidates: candidates,
	}, nil
}

func (o *SourceOptimizer) rankSupplier(
	ctx context.Context,
	warehouse RankedSource,
	salePoints []*domain.GeoEntity,
	req SourceRequest,
	shortfall float64,
) (*RankedSource, error) {
	suppliers, err := o.entities.ListByKind(ctx, domain.KindSupplier)
	if err != nil {
		return nil, fmt.Errorf("optimize source: list suppliers: %w", err)
	}

	whEntity, err := o.entities.GetEntity(ctx, domain.KindWarehouse, warehouse.EntityID)
	if err != nil {
		return nil, fmt.Errorf("optimize source: reload warehouse %s: %w", warehouse.EntityID, err)
	}

	centroid := centroidOf(salePoints)

	var best *RankedSource
	for _, sup := range suppliers {
		if !sup.Positioned() {
			continue
		}
		stock, ok := sup.StockOf(req.ProductID, req.ProductName)
		if !ok || stock < shortfall {
			continue
		}

		toWarehouse := o.pairDistance(ctx, domain.PairWarehouseSupplier, whEntity, sup)
		toCentroid := domain.RoundKm(domain.Haversine(*sup.Position, centroid))
		score := supplierWarehouseWeight*toWarehouse + supplierCentroidWeight*toCentroid

		if best == nil || score < best.Score || (score == best.Score && sup.ID < best.EntityID) {
			best = &RankedSource{EntityID: sup.ID, Name: sup.Name, Available: stock, Score: score}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("optimize source: no supplier can cover the %.0f-unit shortfall", shortfall)
	}
	return best, nil
}

func (o *SourceOptimizer) meanDistance(ctx context.Context, wh *domain.GeoEntity, salePoints []*domain.GeoEntity) float64 {
	sum := 0.0
	for _, sp := range salePoints {
		sum += o.pairDistance(ctx, domain.PairWarehouseSalePoint, wh, sp)
	}
	return sum / float64(len(salePoints))
}

func (o *SourceOptimizer) pairDistance(ctx context.Context, pt domain.PairType, a, b *domain.GeoEntity) float64 {
	km, ok, err := o.index.Lookup(ctx, pt, a.ID, b.ID)
	if err == nil && ok {
		return km
	}
	o.metrics.IndexFallback.Inc()
	return domain.RoundKm(domain.Haversine(*a.Position, *b.Position))
}

func (o *SourceOptimizer) loadPositioned(ctx context.Context, kind domain.EntityKind, ids []string) ([]*domain.GeoEntity, error) {
	found, err := o.entities.GetMany(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	out := make([]*domain.GeoEntity, 0, len(ids))
	for _, id := range ids {
		e, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%s %s not found", kind, id)
		}
		if !e.Positioned() {
			return nil, fmt.Errorf("%s %s has no resolved position", kind, id)
		}
		out = append(out, e)
	}
	return out, nil
}

func centroidOf(entities []*domain.GeoEntity) domain.Coordinates {
	if len(entities) == 0 {
		return domain.Coordinates{}
	}
	var lon, lat float64
	for _, e := range entities {
		lon += e.Position.Lon
		lat += e.Position.Lat
	}
	n := float64(len(entities))
	return domain.Coordinates{Lon: lon / n, Lat: lat / n}
}
