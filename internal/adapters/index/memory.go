package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// Memory is an in-process DistanceIndex used by tests and local tooling.
// It applies the same validation rules as the Postgres implementation.
type Memory struct {
	mu   sync.RWMutex
	rows map[domain.PairType]map[string]domain.DistancePair
}

func NewMemory() *Memory {
	rows := make(map[domain.PairType]map[string]domain.DistancePair, len(domain.PairTypes))
	for _, pt := range domain.PairTypes {
		rows[pt] = make(map[string]domain.DistancePair)
	}
	return &Memory{rows: rows}
}

func (m *Memory) Upsert(ctx context.Context, pt domain.PairType, fromID, toID string, distanceKm float64) error {
	pair, err := domain.NewDistancePair(fromID, toID, distanceKm)
	if err != nil {
		return fmt.Errorf("upsert distance: %w", err)
	}
	return m.UpsertBatch(ctx, pt, []domain.DistancePair{pair})
}

func (m *Memory) UpsertBatch(_ context.Context, pt domain.PairType, pairs []domain.DistancePair) error {
	rel, ok := m.rows[pt]
	if !ok {
		return fmt.Errorf("upsert distance batch: unknown pair type %v", pt)
	}

	for _, pair := range pairs {
		if _, err := domain.NewDistancePair(pair.FromID, pair.ToID, pair.DistanceKm); err != nil {
			return fmt.Errorf("upsert distance batch: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pair := range pairs {
		pair.PairID = domain.PairID(pair.FromID, pair.ToID)
		pair.DistanceKm = domain.RoundKm(pair.DistanceKm)
		pair.UpdatedAt = time.Now().UTC()
		rel[pair.PairID] = pair
	}

	return nil
}

func (m *Memory) Lookup(_ context.Context, pt domain.PairType, a, b string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rel, ok := m.rows[pt]
	if !ok {
		return 0, false, fmt.Errorf("lookup distance: unknown pair type %v", pt)
	}

	pair, ok := rel[domain.PairID(a, b)]
	if !ok {
		return 0, false, nil
	}
	return pair.DistanceKm, true, nil
}

func (m *Memory) DeleteAllForEntity(_ context.Context, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rel := range m.rows {
		for id, pair := range rel {
			if pair.FromID == entityID || pair.ToID == entityID {
				delete(rel, id)
			}
		}
	}
	return nil
}

// Len returns the total number of rows across all relations.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, rel := range m.rows {
		n += len(rel)
	}
	return n
}

// RowsReferencing counts rows in any relation mentioning the entity id.
func (m *Memory) RowsReferencing(entityID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, rel := range m.rows {
		for _, pair := range rel {
			if pair.FromID == entityID || pair.ToID == entityID {
				n++
			}
		}
	}
	return n
}
