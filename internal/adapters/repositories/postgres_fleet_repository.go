package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// Postgres-backed implementation of the FleetRepository port.
type PostgresFleetRepository struct{ DB *sql.DB }

func NewPostgresFleetRepository(db *sql.DB) *PostgresFleetRepository {
	return &PostgresFleetRepository{DB: db}
}

// ListAvailableTrucks returns trucks in "available" status, smallest first so
// the planner's first-match selection picks the tightest fitting vehicle.
func (r *PostgresFleetRepository) ListAvailableTrucks(ctx context.Context) ([]*domain.Truck, error) {
	if r.DB == nil {
		return nil, errors.New("fleet repository: db is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, vehicle, type, status, capacity, company_id
	FROM trucks
	WHERE status = $1
	ORDER BY capacity, id;
	`, domain.TruckAvailable)
	if err != nil {
		return nil, fmt.Errorf("list available trucks: query: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Truck, 0, 16)
	for rows.Next() {
		var t domain.Truck
		if err := rows.Scan(&t.ID, &t.Vehicle, &t.Type, &t.Status, &t.Capacity, &t.CompanyID); err != nil {
			return nil, fmt.Errorf("list available trucks: scan: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list available trucks: row iteration: %w", err)
	}

	return out, nil
}

// ListAvailableTransporters returns transporters in "available" status.
func (r *PostgresFleetRepository) ListAvailableTransporters(ctx context.Context) ([]*domain.Transporter, error) {
	if r.DB == nil {
		return nil, errors.New("fleet repository: db is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT id, first_name, last_name, company_id, licence, status
	FROM transporters
	WHERE status = $1
	ORDER BY id;
	`, domain.TransporterAvailable)
	if err != nil {
		return nil, fmt.Errorf("list available transporters: query: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Transporter, 0, 16)
	for rows.Next() {
		var tr domain.Transporter
		if err := rows.Scan(&tr.ID, &tr.FirstName, &tr.LastName, &tr.CompanyID, &tr.Licence, &tr.Status); err != nil {
			return nil, fmt.Errorf("list available transporters: scan: %w", err)
		}
		out = append(out, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list available transporters: row iteration: %w", err)
	}

	return out, nil
}
