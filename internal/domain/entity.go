package domain

import (
	"fmt"
	"time"
)

// EntityKind identifies the three geographic entity types tracked by the
// distance index.
type EntityKind string

const (
	KindWarehouse EntityKind = "warehouse"
	KindSupplier  EntityKind = "supplier"
	KindSalePoint EntityKind = "salepoint"
)

// ParseEntityKind validates a wire-level kind string.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindWarehouse, KindSupplier, KindSalePoint:
		return EntityKind(s), nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// ProductStock is a product line held by a warehouse or offered by a supplier.
type ProductStock struct {
	ProductID string
	Name      string
	Quantity  float64
}

// GeoEntity is a warehouse, supplier, or sale point as seen by this service:
// an identifier, an owner, and an optional resolved position. Domain
// attributes beyond routing inputs live with the CRUD layer.
type GeoEntity struct {
	ID        string
	Kind      EntityKind
	Name      string
	CompanyID string
	Address   string
	Position  *Coordinates
	Products  []ProductStock
	Status    string
	UpdatedAt time.Time
}

// Positioned reports whether the entity has usable coordinates.
// Entities at the (0,0) sentinel are treated as unpositioned.
func (e *GeoEntity) Positioned() bool {
	return e != nil && e.Position != nil && e.Position.Valid()
}

// StockOf returns the quantity of the given product held by the entity,
// matching by product id first and falling back to name.
func (e *GeoEntity) StockOf(productID, name string) (float64, bool) {
	for _, p := range e.Products {
		if (productID != "" && p.ProductID == productID) || (name != "" && p.Name == name) {
			return p.Quantity, true
		}
	}
	return 0, false
}
