package services

import (
	"context"
	"sort"
	"sync"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

func testEntity(kind domain.EntityKind, id, name string, lon, lat float64, products ...domain.ProductStock) *domain.GeoEntity {
	return &domain.GeoEntity{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Position: &domain.Coordinates{Lon: lon, Lat: lat},
		Products: products,
		Status:   "active",
	}
}

func unpositioned(kind domain.EntityKind, id, name, address string) *domain.GeoEntity {
	return &domain.GeoEntity{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Address:  address,
		Position: &domain.Coordinates{},
		Status:   "active",
	}
}

// fakeEntityStore is an in-memory ports.EntityStore. listGate, when set,
// blocks ListByKind until the channel closes; the rebuild single-flight test
// uses it to hold one rebuild open.
type fakeEntityStore struct {
	mu       sync.Mutex
	entities map[domain.EntityKind]map[string]*domain.GeoEntity
	listGate chan struct{}
}

func newFakeEntityStore(entities ...*domain.GeoEntity) *fakeEntityStore {
	s := &fakeEntityStore{entities: make(map[domain.EntityKind]map[string]*domain.GeoEntity)}
	for _, e := range entities {
		s.put(e)
	}
	return s
}

func (s *fakeEntityStore) put(e *domain.GeoEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entities[e.Kind] == nil {
		s.entities[e.Kind] = make(map[string]*domain.GeoEntity)
	}
	s.entities[e.Kind][e.ID] = e
}

func (s *fakeEntityStore) remove(kind domain.EntityKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entities[kind], id)
}

func (s *fakeEntityStore) GetEntity(_ context.Context, kind domain.EntityKind, id string) (*domain.GeoEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[kind][id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return e, nil
}

func (s *fakeEntityStore) ListByKind(_ context.Context, kind domain.EntityKind) ([]*domain.GeoEntity, error) {
	if s.listGate != nil {
		<-s.listGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.GeoEntity, 0, len(s.entities[kind]))
	for _, e := range s.entities[kind] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeEntityStore) GetMany(_ context.Context, kind domain.EntityKind, ids []string) (map[string]*domain.GeoEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*domain.GeoEntity, len(ids))
	for _, id := range ids {
		if e, ok := s.entities[kind][id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (s *fakeEntityStore) UpdatePosition(_ context.Context, kind domain.EntityKind, id string, pos domain.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[kind][id]
	if !ok {
		return ports.ErrNotFound
	}
	e.Position = &domain.Coordinates{Lon: pos.Lon, Lat: pos.Lat}
	return nil
}

type fakeContractRepo struct {
	contracts map[string]*domain.Contract
}

func (r *fakeContractRepo) GetContract(_ context.Context, id string) (*domain.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return c, nil
}

type fakeFleetRepo struct {
	trucks       []*domain.Truck
	transporters []*domain.Transporter
}

func (r *fakeFleetRepo) ListAvailableTrucks(_ context.Context) ([]*domain.Truck, error) {
	return r.trucks, nil
}

func (r *fakeFleetRepo) ListAvailableTransporters(_ context.Context) ([]*domain.Transporter, error) {
	return r.transporters, nil
}
