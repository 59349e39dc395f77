package ports

import (
	"context"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// DistanceIndex is the persisted pairwise-distance cache: three relations,
// each row keyed by a normalized unordered pair id. Rows are derived data;
// callers must fall back to direct computation when a lookup misses.
type DistanceIndex interface {
	// Upsert stores or overwrites the row for the normalized pair.
	// Self-pairs and negative or non-finite distances are rejected.
	Upsert(ctx context.Context, pt domain.PairType, fromID, toID string, distanceKm float64) error

	// UpsertBatch writes many rows for one relation in a single round trip.
	UpsertBatch(ctx context.Context, pt domain.PairType, pairs []domain.DistancePair) error

	// Lookup returns the cached distance for the unordered pair (a, b).
	// An absent pair yields (0, false, nil), never an error.
	Lookup(ctx context.Context, pt domain.PairType, a, b string) (float64, bool, error)

	// DeleteAllForEntity removes every row across all three relations that
	// references the entity id.
	DeleteAllForEntity(ctx context.Context, entityID string) error
}
