package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// Postgres-backed implementation of the EntityStore port. Entity rows are
// owned by the CRUD layer; this service reads them and writes back resolved
// positions only.
type PostgresEntityStore struct{ DB *sql.DB }

func NewPostgresEntityStore(db *sql.DB) *PostgresEntityStore {
	return &PostgresEntityStore{DB: db}
}

const entityColumns = `id, kind, name, company_id, address, lon, lat, status, updated_at`

func scanEntity(scanner interface{ Scan(...any) error }) (*domain.GeoEntity, error) {
	var (
		e        domain.GeoEntity
		kind     string
		lon, lat sql.NullFloat64
	)
	if err := scanner.Scan(&e.ID, &kind, &e.Name, &e.CompanyID, &e.Address, &lon, &lat, &e.Status, &e.UpdatedAt); err != nil {
		return nil, err
	}

	e.Kind = domain.EntityKind(kind)
	if lon.Valid && lat.Valid {
		e.Position = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
	}
	return &e, nil
}

// GetEntity retrieves one entity by kind and id, with its product stock.
func (s *PostgresEntityStore) GetEntity(ctx context.Context, kind domain.EntityKind, id string) (*domain.GeoEntity, error) {
	if s.DB == nil {
		return nil, errors.New("entity store: db is nil")
	}

	q := fmt.Sprintf(`SELECT %s FROM geo_entities WHERE kind = $1 AND id = $2;`, entityColumns)
	e, err := scanEntity(s.DB.QueryRowContext(ctx, q, string(kind), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entity %s/%s: %w", kind, id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entity %s/%s: %w", kind, id, err)
	}

	if err := s.attachProducts(ctx, map[string]*domain.GeoEntity{e.ID: e}); err != nil {
		return nil, fmt.Errorf("get entity %s/%s: %w", kind, id, err)
	}
	return e, nil
}

// ListByKind retrieves all entities of one kind, positioned or not.
func (s *PostgresEntityStore) ListByKind(ctx context.Context, kind domain.EntityKind) ([]*domain.GeoEntity, error) {
	if s.DB == nil {
		return nil, errors.New("entity store: db is nil")
	}

	q := fmt.Sprintf(`SELECT %s FROM geo_entities WHERE kind = $1 ORDER BY id;`, entityColumns)
	rows, err := s.DB.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s entities: query: %w", kind, err)
	}
	defer rows.Close()

	out := make([]*domain.GeoEntity, 0, 64)
	byID := make(map[string]*domain.GeoEntity)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s entities: scan: %w", kind, err)
		}
		out = append(out, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s entities: row iteration: %w", kind, err)
	}

	if err := s.attachProducts(ctx, byID); err != nil {
		return nil, fmt.Errorf("list %s entities: %w", kind, err)
	}
	return out, nil
}

// GetMany retrieves entities of one kind by id; missing ids are absent from
// the result.
func (s *PostgresEntityStore) GetMany(ctx context.Context, kind domain.EntityKind, ids []string) (map[string]*domain.GeoEntity, error) {
	if s.DB == nil {
		return nil, errors.New("entity store: db is nil")
	}
	if len(ids) == 0 {
		return map[string]*domain.GeoEntity{}, nil
	}

	q := fmt.Sprintf(`SELECT %s FROM geo_entities WHERE kind = $1 AND id = ANY($2::text[]);`, entityColumns)
	rows, err := s.DB.QueryContext(ctx, q, string(kind), ids)
	if err != nil {
		return nil, fmt.Errorf("get %s entities: query: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[string]*domain.GeoEntity, len(ids))
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("get %s entities: scan: %w", kind, err)
		}
		out[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get %s entities: row iteration: %w", kind, err)
	}

	if err := s.attachProducts(ctx, out); err != nil {
		return nil, fmt.Errorf("get %s entities: %w", kind, err)
	}
	return out, nil
}

// UpdatePosition persists freshly geocoded coordinates.
func (s *PostgresEntityStore) UpdatePosition(ctx context.Context, kind domain.EntityKind, id string, pos domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("entity store: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `
	UPDATE geo_entities SET lon = $1, lat = $2, updated_at = NOW()
	WHERE kind = $3 AND id = $4;
	`, pos.Lon, pos.Lat, string(kind), id)
	if err != nil {
		return fmt.Errorf("update position %s/%s: %w", kind, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update position %s/%s: rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("update position %s/%s: %w", kind, id, ports.ErrNotFound)
	}
	return nil
}

func (s *PostgresEntityStore) attachProducts(ctx context.Context, byID map[string]*domain.GeoEntity) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT entity_id, product_id, name, quantity
	FROM entity_products
	WHERE entity_id = ANY($1::text[]);
	`, ids)
	if err != nil {
		return fmt.Errorf("attach products: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entityID string
		var p domain.ProductStock
		if err := rows.Scan(&entityID, &p.ProductID, &p.Name, &p.Quantity); err != nil {
			return fmt.Errorf("attach products: scan: %w", err)
		}
		if e, ok := byID[entityID]; ok {
			e.Products = append(e.Products, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("attach products: row iteration: %w", err)
	}
	return nil
}
