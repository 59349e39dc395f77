package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// PlannerConfig carries the tunable policies of the route planner.
type PlannerConfig struct {
	// AvgSpeedKmh and PerStopMinutes feed the route time estimate:
	// floor(km / speed * 60) + stops * PerStopMinutes.
	AvgSpeedKmh    float64
	PerStopMinutes int

	// StrictCompanyCheck restricts transporter assignment to the truck's
	// company. AllowMissingDriver lets a plan ship without a transporter
	// when none qualifies.
	StrictCompanyCheck bool
	AllowMissingDriver bool

	// Concurrency bounds the number of contracts planned in parallel.
	Concurrency int
}

// PlanError records a contract that could not be planned. One contract
// failing never aborts the batch.
type PlanError struct {
	ContractID string
	Message    string
}

// PlanResult is the outcome of a planning run: successful plans plus
// per-contract failures.
type PlanResult struct {
	Plans  []*domain.DistributionPlan
	Errors []PlanError
}

// RoutePlanner builds distribution plans for contracts. Routes are greedy
// nearest-neighbor over index distances; optimality is explicitly not a goal,
// determinism and bounded lookups are.
type RoutePlanner struct {
	contracts ports.ContractRepository
	entities  ports.EntityStore
	fleet     ports.FleetRepository
	index     ports.DistanceIndex
	metrics   *obs.Metrics
	cfg       PlannerConfig
}

func NewRoutePlanner(
	contracts ports.ContractRepository,
	entities ports.EntityStore,
	fleet ports.FleetRepository,
	index ports.DistanceIndex,
	metrics *obs.Metrics,
	cfg PlannerConfig,
) *RoutePlanner {
	if metrics == nil {
		metrics = obs.NopMetrics()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = 96
	}
	return &RoutePlanner{
		contracts: contracts,
		entities:  entities,
		fleet:     fleet,
		index:     index,
		metrics:   metrics,
		cfg:       cfg,
	}
}

type contractResult struct {
	plans []*domain.DistributionPlan
	err   *PlanError
}

// PlanRoutes plans every requested contract for its delivery dates starting
// at planDate. Contracts are planned concurrently; the result aggregates all
// plans sorted by delivery date plus one error per failed contract.
func (p *RoutePlanner) PlanRoutes(ctx context.Context, contractIDs []string, planDate time.Time) (_ *PlanResult, err error) {
	defer obs.Time(ctx, "plan_routes")(&err)

	trucks, err := p.fleet.ListAvailableTrucks(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan routes: list trucks: %w", err)
	}
	transporters, err := p.fleet.ListAvailableTransporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan routes: list transporters: %w", err)
	}

	sem := make(chan struct{}, p.cfg.Concurrency)
	resultsCh := make(chan contractResult, len(contractIDs))
	var wg sync.WaitGroup

	for _, id := range contractIDs {
		wg.Add(1)
		go func(contractID string) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			plans, perr := p.planContract(ctx, contractID, planDate, trucks, transporters)
			resultsCh <- contractResult{plans: plans, err: perr}
		}(id)
	}

	wg.Wait()
	close(resultsCh)

	result := &PlanResult{}
	for res := range resultsCh {
		if res.err != nil {
			p.metrics.PlanErrors.Inc()
			result.Errors = append(result.Errors, *res.err)
			continue
		}
		result.Plans = append(result.Plans, res.plans...)
	}
	p.metrics.PlansBuilt.Add(float64(len(result.Plans)))

	sort.Slice(result.Plans, func(i, j int) bool {
		return result.Plans[i].DeliveryDate.Before(result.Plans[j].DeliveryDate)
	})
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].ContractID < result.Errors[j].ContractID
	})

	return result, nil
}

func (p *RoutePlanner) planContract(
	ctx context.Context,
	contractID string,
	planDate time.Time,
	trucks []*domain.Truck,
	transporters []*domain.Transporter,
) ([]*domain.DistributionPlan, *PlanError) {
	fail := func(format string, args ...any) *PlanError {
		return &PlanError{ContractID: contractID, Message: fmt.Sprintf(format, args...)}
	}

	contract, err := p.contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, fail("load contract: %v", err)
	}
	if !contract.ActiveOn(planDate) {
		return nil, fail("contract not active on %s", planDate.Format("2006-01-02"))
	}

	dates := ResolveDeliveryDates(contract, planDate)
	if len(dates) == 0 {
		return nil, fail("no delivery dates between %s and contract end", planDate.Format("2006-01-02"))
	}

	warehouse, err := p.entities.GetEntity(ctx, domain.KindWarehouse, contract.Warehouse.EntityID)
	if err != nil {
		return nil, fail("load warehouse %s: %v", contract.Warehouse.EntityID, err)
	}
	if !warehouse.Positioned() {
		return nil, fail("warehouse %s has no resolved position", warehouse.ID)
	}

	var supplier *domain.GeoEntity
	if contract.NeedsSupplier() {
		if contract.Supplier.EntityID == "" {
			return nil, fail("contract requires %.0f units but warehouse holds %.0f and no supplier is set",
				contract.Product.TotalQuantity, contract.Warehouse.Quantity)
		}
		supplier, err = p.entities.GetEntity(ctx, domain.KindSupplier, contract.Supplier.EntityID)
		if err != nil {
			return nil, fail("load supplier %s: %v", contract.Supplier.EntityID, err)
		}
		if !supplier.Positioned() {
			return nil, fail("supplier %s has no resolved position", supplier.ID)
		}
	}

	salePoints, err := p.loadSalePoints(ctx, contract.SalePointIDs)
	if err != nil {
		return nil, fail("%v", err)
	}

	truck := pickTruck(trucks, contract.Product.TotalQuantity)
	if truck == nil {
		return nil, fail("no available truck can carry %.0f units", contract.Product.TotalQuantity)
	}

	transporter := pickTransporter(transporters, truck, p.cfg.StrictCompanyCheck)
	if transporter == nil && !p.cfg.AllowMissingDriver {
		return nil, fail("no available transporter can drive truck %s (licence %s)", truck.ID, truck.Type)
	}

	route, err := p.buildRoute(ctx, warehouse, supplier, salePoints)
	if err != nil {
		return nil, fail("build route: %v", err)
	}

	plans := make([]*domain.DistributionPlan, 0, len(dates))
	for _, date := range dates {
		plan := &domain.DistributionPlan{
			ContractID:   contract.ID,
			ContractName: contract.Name,
			DeliveryDate: date,
			DayOfWeek:    domain.WeekdayName(date.Weekday()),
			Warehouse:    warehouse.Name,
			SalePoints:   salePointNames(salePoints),
			Product:      contract.Product.Name,
			Quantity:     contract.Product.TotalQuantity,
			Truck:        &domain.AssignedTruck{ID: truck.ID, Vehicle: truck.Vehicle, Type: truck.Type},
			Route:        *route,
		}
		if supplier != nil {
			plan.Supplier = supplier.Name
		}
		if transporter != nil {
			plan.Transporter = &domain.AssignedTransporter{
				ID:        transporter.ID,
				FirstName: transporter.FirstName,
				LastName:  transporter.LastName,
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (p *RoutePlanner) loadSalePoints(ctx context.Context, ids []string) ([]*domain.GeoEntity, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("contract names no sale points")
	}
	found, err := p.entities.GetMany(ctx, domain.KindSalePoint, ids)
	if err != nil {
		return nil, fmt.Errorf("load sale points: %w", err)
	}

	out := make([]*domain.GeoEntity, 0, len(ids))
	for _, id := range ids {
		sp, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("sale point %s not found", id)
		}
		if !sp.Positioned() {
			return nil, fmt.Errorf("sale point %s has no resolved position", id)
		}
		out = append(out, sp)
	}
	return out, nil
}

// pickTruck returns the first available truck with enough capacity. The
// fleet repository orders trucks by capacity, so the first match is also the
// tightest fit.
func pickTruck(trucks []*domain.Truck, quantity float64) *domain.Truck {
	for _, t := range trucks {
		if t.CanCarry(quantity) {
			return t
		}
	}
	return nil
}

func pickTransporter(transporters []*domain.Transporter, truck *domain.Truck, strictCompany bool) *domain.Transporter {
	for _, tr := range transporters {
		if tr.CanDrive(truck, strictCompany) {
			return tr
		}
	}
	return nil
}

// buildRoute orders the stops: warehouse, optional supplier pickup, then
// sale points by greedy nearest neighbor, then back to the warehouse.
func (p *RoutePlanner) buildRoute(ctx context.Context, warehouse, supplier *domain.GeoEntity, salePoints []*domain.GeoEntity) (*domain.Route, error) {
	waypoints := make([]domain.Waypoint, 0, len(salePoints)+3)
	cumulative := 0.0
	seq := 1

	add := func(kind domain.WaypointKind, e *domain.GeoEntity, leg float64) {
		cumulative = domain.RoundKm(cumulative + leg)
		waypoints = append(waypoints, domain.Waypoint{
			Kind:                 kind,
			EntityID:             e.ID,
			Name:                 e.Name,
			Location:             *e.Position,
			DistanceFromPrevious: leg,
			CumulativeDistance:   cumulative,
			Sequence:             seq,
		})
		seq++
	}

	add(domain.WaypointWarehouse, warehouse, 0)
	current := warehouse

	if supplier != nil {
		leg := p.distanceBetween(ctx, domain.PairWarehouseSupplier, warehouse, supplier)
		add(domain.WaypointSupplier, supplier, leg)
		current = supplier
	}

	remaining := make(map[string]*domain.GeoEntity, len(salePoints))
	for _, sp := range salePoints {
		remaining[sp.ID] = sp
	}

	// Sale-point legs repeat across greedy steps; resolve each unordered
	// pair once up front.
	spLegs := make(map[string]float64, len(salePoints)*(len(salePoints)-1)/2)
	for i := 0; i < len(salePoints); i++ {
		for j := i + 1; j < len(salePoints); j++ {
			a, b := salePoints[i], salePoints[j]
			spLegs[domain.PairID(a.ID, b.ID)] = p.distanceBetween(ctx, domain.PairSalePointSalePoint, a, b)
		}
	}

	// Greedy step: nearest remaining sale point wins; ties keep the first
	// one encountered in contract order for determinism.
	for len(remaining) > 0 {
		var best *domain.GeoEntity
		bestDist := math.MaxFloat64
		for _, sp := range salePoints {
			candidate, ok := remaining[sp.ID]
			if !ok {
				continue
			}
			var d float64
			if current.Kind == domain.KindSalePoint {
				d = spLegs[domain.PairID(current.ID, candidate.ID)]
			} else {
				d = p.legDistance(ctx, current, candidate)
			}
			if d < bestDist {
				bestDist = d
				best = candidate
			}
		}
		if best == nil {
			return nil, fmt.Errorf("no reachable next sale point from %s", current.ID)
		}

		add(domain.WaypointSalePoint, best, bestDist)
		delete(remaining, best.ID)
		current = best
	}

	returnLeg := p.legDistance(ctx, current, warehouse)
	add(domain.WaypointWarehouseReturn, warehouse, returnLeg)

	total := cumulative
	travelMinutes := total / p.cfg.AvgSpeedKmh * 60
	totalMinutes := int(math.Floor(travelMinutes)) + p.cfg.PerStopMinutes*len(waypoints)

	return &domain.Route{
		Waypoints:          waypoints,
		TotalDistanceKm:    total,
		TotalTimeMinutes:   totalMinutes,
		SalesPointsVisited: len(salePoints),
		HasSupplier:        supplier != nil,
	}, nil
}

// legDistance resolves the distance for a leg between two positioned
// entities, choosing the index relation from the entity kinds.
func (p *RoutePlanner) legDistance(ctx context.Context, a, b *domain.GeoEntity) float64 {
	pt, ok := relationBetween(a.Kind, b.Kind)
	if !ok {
		// No indexed relation covers this leg (e.g. supplier to sale
		// point); compute it directly.
		return domain.RoundKm(domain.Haversine(*a.Position, *b.Position))
	}
	return p.distanceBetween(ctx, pt, a, b)
}

// distanceBetween reads the index and falls back to direct computation on a
// miss or a read error. The index is derived data, never authoritative.
func (p *RoutePlanner) distanceBetween(ctx context.Context, pt domain.PairType, a, b *domain.GeoEntity) float64 {
	km, ok, err := p.index.Lookup(ctx, pt, a.ID, b.ID)
	if err == nil && ok {
		return km
	}
	p.metrics.IndexFallback.Inc()
	return domain.RoundKm(domain.Haversine(*a.Position, *b.Position))
}

func relationBetween(a, b domain.EntityKind) (domain.PairType, bool) {
	switch {
	case a == domain.KindSalePoint && b == domain.KindSalePoint:
		return domain.PairSalePointSalePoint, true
	case (a == domain.KindWarehouse && b == domain.KindSalePoint) || (a == domain.KindSalePoint && b == domain.KindWarehouse):
		return domain.PairWarehouseSalePoint, true
	case (a == domain.KindWarehouse && b == domain.KindSupplier) || (a == domain.KindSupplier && b == domain.KindWarehouse):
		return domain.PairWarehouseSupplier, true
	}
	return 0, false
}

func salePointNames(salePoints []*domain.GeoEntity) []string {
	names := make([]string, len(salePoints))
	for i, sp := range salePoints {
		names[i] = sp.Name
	}
	return names
}
