package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// Retry states reported by PendingRetries.
const (
	RetryPending   = "pending"
	RetrySucceeded = "succeeded"
	RetryFailed    = "failed"
)

// GeocodeRetry is one scheduled re-resolution of an entity address.
type GeocodeRetry struct {
	Kind     domain.EntityKind
	EntityID string
	Address  string
	Attempts int
	Status   string
	LastErr  string
	NextAt   time.Time
}

// GeocodeRetryQueue re-resolves addresses that failed to geocode on first
// contact. Entities in the queue keep the sentinel position until a retry
// succeeds, at which point the position is persisted and the distance index
// fan-out re-runs for the entity.
type GeocodeRetryQueue struct {
	store    ports.EntityStore
	geocoder ports.Geocoder
	engine   *DistanceEngine

	maxAttempts int
	backoff     time.Duration

	mu      sync.Mutex
	entries map[string]*GeocodeRetry
}

func NewGeocodeRetryQueue(store ports.EntityStore, geocoder ports.Geocoder, engine *DistanceEngine) *GeocodeRetryQueue {
	return &GeocodeRetryQueue{
		store:       store,
		geocoder:    geocoder,
		engine:      engine,
		maxAttempts: 5,
		backoff:     30 * time.Second,
		entries:     make(map[string]*GeocodeRetry),
	}
}

// Enqueue schedules a retry for the entity. Re-enqueueing an already pending
// entity replaces the address and resets the attempt counter.
func (q *GeocodeRetryQueue) Enqueue(kind domain.EntityKind, entityID, address string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[string(kind)+"/"+entityID] = &GeocodeRetry{
		Kind:     kind,
		EntityID: entityID,
		Address:  address,
		Status:   RetryPending,
		NextAt:   time.Now().Add(q.backoff),
	}
	log.Printf("op=geocode_retry_enqueue kind=%s id=%s", kind, entityID)
}

// Entries returns a snapshot of all tracked retries, including terminal ones.
func (q *GeocodeRetryQueue) Entries() []GeocodeRetry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]GeocodeRetry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, *e)
	}
	return out
}

// ProcessDue attempts every pending entry whose NextAt has passed. It returns
// the number of entries that resolved successfully this pass.
func (q *GeocodeRetryQueue) ProcessDue(ctx context.Context) int {
	now := time.Now()

	q.mu.Lock()
	due := make([]*GeocodeRetry, 0)
	for _, e := range q.entries {
		if e.Status == RetryPending && !e.NextAt.After(now) {
			due = append(due, e)
		}
	}
	q.mu.Unlock()

	resolved := 0
	for _, e := range due {
		if err := q.attempt(ctx, e); err != nil {
			q.recordFailure(e, err)
			continue
		}
		q.mu.Lock()
		e.Status = RetrySucceeded
		e.LastErr = ""
		q.mu.Unlock()
		resolved++
	}
	return resolved
}

// Run drives ProcessDue on a ticker until the context is cancelled.
func (q *GeocodeRetryQueue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.ProcessDue(ctx)
		}
	}
}

func (q *GeocodeRetryQueue) attempt(ctx context.Context, e *GeocodeRetry) error {
	q.mu.Lock()
	e.Attempts++
	q.mu.Unlock()

	entity, err := q.store.GetEntity(ctx, e.Kind, e.EntityID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Entity deleted since enqueue; not a failure.
			q.mu.Lock()
			delete(q.entries, string(e.Kind)+"/"+e.EntityID)
			q.mu.Unlock()
			return nil
		}
		return fmt.Errorf("geocode retry: get %s %s: %w", e.Kind, e.EntityID, err)
	}
	if entity.Positioned() {
		// Resolved elsewhere in the meantime.
		return nil
	}

	pos, err := q.geocoder.Resolve(ctx, e.Address, entity.Name)
	if err != nil {
		return fmt.Errorf("geocode retry: resolve %q: %w", e.Address, err)
	}

	if err := q.store.UpdatePosition(ctx, e.Kind, e.EntityID, pos); err != nil {
		return fmt.Errorf("geocode retry: persist position for %s %s: %w", e.Kind, e.EntityID, err)
	}
	if err := q.engine.OnEntityUpserted(ctx, e.Kind, e.EntityID); err != nil {
		return fmt.Errorf("geocode retry: refresh distances for %s %s: %w", e.Kind, e.EntityID, err)
	}

	log.Printf("op=geocode_retry_resolved kind=%s id=%s lon=%v lat=%v", e.Kind, e.EntityID, pos.Lon, pos.Lat)
	return nil
}

func (q *GeocodeRetryQueue) recordFailure(e *GeocodeRetry, cause error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e.LastErr = cause.Error()
	if e.Attempts >= q.maxAttempts {
		e.Status = RetryFailed
		log.Printf("op=geocode_retry_exhausted kind=%s id=%s attempts=%d err=%v", e.Kind, e.EntityID, e.Attempts, cause)
		return
	}
	e.NextAt = time.Now().Add(q.backoff * time.Duration(e.Attempts))
	log.Printf("op=geocode_retry_failed kind=%s id=%s attempt=%d err=%v", e.Kind, e.EntityID, e.Attempts, cause)
}
