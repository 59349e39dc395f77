package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// PairType identifies one of the three pairwise-distance relations.
type PairType int

const (
	PairWarehouseSalePoint PairType = iota
	PairWarehouseSupplier
	PairSalePointSalePoint
)

func (p PairType) String() string {
	switch p {
	case PairWarehouseSalePoint:
		return "warehouse-salepoint"
	case PairWarehouseSupplier:
		return "warehouse-supplier"
	case PairSalePointSalePoint:
		return "salepoint-salepoint"
	}
	return fmt.Sprintf("PairType(%d)", int(p))
}

// PairTypes lists every relation, in a fixed order.
var PairTypes = []PairType{PairWarehouseSalePoint, PairWarehouseSupplier, PairSalePointSalePoint}

var (
	// ErrSelfPair is returned when a pair references the same entity twice.
	ErrSelfPair = errors.New("self-pair is invalid")
	// ErrInvalidDistance is returned for negative or non-finite distances.
	ErrInvalidDistance = errors.New("distance must be finite and non-negative")
)

// PairID builds the canonical, order-independent key for an unordered pair
// of entity ids: PairID(a, b) == PairID(b, a).
func PairID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// PartnerRelation names the relation an entity kind participates in together
// with the kind of the partner entities on the other side.
type PartnerRelation struct {
	Type    PairType
	Partner EntityKind
}

// PartnerRelations returns the relations an entity of the given kind takes
// part in. A warehouse pairs with every sale point and every supplier; a sale
// point pairs with every warehouse and every other sale point; a supplier
// pairs with every warehouse.
func PartnerRelations(kind EntityKind) []PartnerRelation {
	switch kind {
	case KindWarehouse:
		return []PartnerRelation{
			{Type: PairWarehouseSalePoint, Partner: KindSalePoint},
			{Type: PairWarehouseSupplier, Partner: KindSupplier},
		}
	case KindSalePoint:
		return []PartnerRelation{
			{Type: PairWarehouseSalePoint, Partner: KindWarehouse},
			{Type: PairSalePointSalePoint, Partner: KindSalePoint},
		}
	case KindSupplier:
		return []PartnerRelation{
			{Type: PairWarehouseSupplier, Partner: KindWarehouse},
		}
	}
	return nil
}

// RelationsFor returns the relations whose rows may reference an entity of
// the given kind. Used when cleaning the index up after a deletion.
func RelationsFor(kind EntityKind) []PairType {
	switch kind {
	case KindWarehouse:
		return []PairType{PairWarehouseSalePoint, PairWarehouseSupplier}
	case KindSalePoint:
		return []PairType{PairWarehouseSalePoint, PairSalePointSalePoint}
	case KindSupplier:
		return []PairType{PairWarehouseSupplier}
	}
	return nil
}

// DistancePair is one row of the distance index: a cached great-circle
// distance between two entities, keyed by the normalized pair id. It is a
// derived cache, never a source of truth.
type DistancePair struct {
	FromID     string
	ToID       string
	PairID     string
	DistanceKm float64
	UpdatedAt  time.Time
}

// NewDistancePair validates and normalizes a pair row.
func NewDistancePair(fromID, toID string, distanceKm float64) (DistancePair, error) {
	if fromID == toID {
		return DistancePair{}, fmt.Errorf("pair %q/%q: %w", fromID, toID, ErrSelfPair)
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return DistancePair{}, fmt.Errorf("pair %q/%q: distance %v: %w", fromID, toID, distanceKm, ErrInvalidDistance)
	}

	return DistancePair{
		FromID:     fromID,
		ToID:       toID,
		PairID:     PairID(fromID, toID),
		DistanceKm: distanceKm,
	}, nil
}
