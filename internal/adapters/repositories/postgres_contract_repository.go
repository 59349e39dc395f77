package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// Postgres-backed implementation of the ContractRepository port.
type PostgresContractRepository struct{ DB *sql.DB }

func NewPostgresContractRepository(db *sql.DB) *PostgresContractRepository {
	return &PostgresContractRepository{DB: db}
}

// GetContract retrieves one contract with its destination sale points.
func (r *PostgresContractRepository) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	if r.DB == nil {
		return nil, errors.New("contract repository: db is nil")
	}

	var (
		c            domain.Contract
		frequency    string
		deliveryDays string
		supplierID   sql.NullString
		supplierName sql.NullString
		supplierQty  sql.NullFloat64
	)
	err := r.DB.QueryRowContext(ctx, `
	SELECT id, name, start_date, end_date,
		warehouse_id, warehouse_name, warehouse_quantity,
		supplier_id, supplier_name, supplier_quantity,
		product_id, product_name, total_quantity,
		frequency, delivery_days
	FROM contracts
	WHERE id = $1;
	`, id).Scan(
		&c.ID, &c.Name, &c.StartDate, &c.EndDate,
		&c.Warehouse.EntityID, &c.Warehouse.Name, &c.Warehouse.Quantity,
		&supplierID, &supplierName, &supplierQty,
		&c.Product.ProductID, &c.Product.Name, &c.Product.TotalQuantity,
		&frequency, &deliveryDays,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get contract %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contract %s: %w", id, err)
	}

	c.Frequency = domain.Frequency(frequency)
	if supplierID.Valid {
		c.Supplier = domain.Allocation{
			EntityID: supplierID.String,
			Name:     supplierName.String,
			Quantity: supplierQty.Float64,
		}
	}

	// delivery_days is a comma-joined list of lowercase day names.
	for _, name := range strings.Split(deliveryDays, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		day, err := domain.ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("get contract %s: %w", id, err)
		}
		c.DeliveryDays = append(c.DeliveryDays, day)
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT sale_point_id FROM contract_sale_points
	WHERE contract_id = $1
	ORDER BY position;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get contract %s: sale points: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var spID string
		if err := rows.Scan(&spID); err != nil {
			return nil, fmt.Errorf("get contract %s: scan sale point: %w", id, err)
		}
		c.SalePointIDs = append(c.SalePointIDs, spID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get contract %s: sale point iteration: %w", id, err)
	}

	return &c, nil
}
