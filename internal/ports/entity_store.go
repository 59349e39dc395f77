package ports

import (
	"context"
	"errors"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// ErrNotFound is returned when a referenced entity or contract is missing.
var ErrNotFound = errors.New("not found")

// EntityStore is the boundary to the geo-entity records owned by the CRUD
// layer. This service reads entities and writes back resolved positions;
// everything else belongs to the owner.
type EntityStore interface {
	// GetEntity retrieves one entity by kind and id.
	GetEntity(ctx context.Context, kind domain.EntityKind, id string) (*domain.GeoEntity, error)

	// ListByKind retrieves all entities of one kind, positioned or not.
	ListByKind(ctx context.Context, kind domain.EntityKind) ([]*domain.GeoEntity, error)

	// GetMany retrieves entities of one kind by id. Missing ids are simply
	// absent from the result; the caller decides whether that is an error.
	GetMany(ctx context.Context, kind domain.EntityKind, ids []string) (map[string]*domain.GeoEntity, error)

	// UpdatePosition persists freshly geocoded coordinates for an entity.
	UpdatePosition(ctx context.Context, kind domain.EntityKind, id string, pos domain.Coordinates) error
}
