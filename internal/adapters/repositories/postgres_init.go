package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/google/uuid"
)

// Initialize the Postgres schema: geo entities and their product stock, the
// three distance-index relations, contracts, and the fleet.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS geo_entities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		company_id TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		lon DOUBLE PRECISION,
		lat DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'available',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
		`CREATE INDEX IF NOT EXISTS idx_geo_entities_kind ON geo_entities(kind);`,
		`
	CREATE TABLE IF NOT EXISTS entity_products (
		entity_id TEXT NOT NULL REFERENCES geo_entities(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (entity_id, product_id)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS wh_sp_distances (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		pair_id TEXT NOT NULL UNIQUE,
		distance_km DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS wh_sup_distances (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		pair_id TEXT NOT NULL UNIQUE,
		distance_km DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS sp_sp_distances (
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		pair_id TEXT NOT NULL UNIQUE,
		distance_km DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
		`CREATE INDEX IF NOT EXISTS idx_wh_sp_from ON wh_sp_distances(from_id);`,
		`CREATE INDEX IF NOT EXISTS idx_wh_sp_to ON wh_sp_distances(to_id);`,
		`CREATE INDEX IF NOT EXISTS idx_wh_sup_from ON wh_sup_distances(from_id);`,
		`CREATE INDEX IF NOT EXISTS idx_wh_sup_to ON wh_sup_distances(to_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sp_sp_from ON sp_sp_distances(from_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sp_sp_to ON sp_sp_distances(to_id);`,
		`
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		warehouse_id TEXT NOT NULL,
		warehouse_name TEXT NOT NULL DEFAULT '',
		warehouse_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		supplier_id TEXT,
		supplier_name TEXT,
		supplier_quantity DOUBLE PRECISION,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL DEFAULT '',
		total_quantity DOUBLE PRECISION NOT NULL,
		frequency TEXT NOT NULL DEFAULT 'weekly',
		delivery_days TEXT NOT NULL DEFAULT ''
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS contract_sale_points (
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		sale_point_id TEXT NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (contract_id, sale_point_id)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS trucks (
		id TEXT PRIMARY KEY,
		vehicle TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		capacity DOUBLE PRECISION NOT NULL,
		company_id TEXT NOT NULL DEFAULT ''
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS transporters (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		company_id TEXT NOT NULL DEFAULT '',
		licence TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available'
	);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type productSeed struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
}

type entitySeed struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	Name      string        `json:"name"`
	CompanyID string        `json:"company_id"`
	Address   string        `json:"address"`
	Lon       *float64      `json:"lon"`
	Lat       *float64      `json:"lat"`
	Status    string        `json:"status"`
	Products  []productSeed `json:"products"`
}

type allocationSeed struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

type contractSeed struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Warehouse    allocationSeed  `json:"warehouse"`
	Supplier     *allocationSeed `json:"supplier"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalQty     float64         `json:"total_quantity"`
	Frequency    string          `json:"frequency"`
	DeliveryDays []string        `json:"delivery_days"`
	SalePointIDs []string        `json:"sale_point_ids"`
}

type truckSeed struct {
	ID        string  `json:"id"`
	Vehicle   string  `json:"vehicle"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Capacity  float64 `json:"capacity"`
	CompanyID string  `json:"company_id"`
}

type transporterSeed struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CompanyID string `json:"company_id"`
	Licence   string `json:"licence"`
	Status    string `json:"status"`
}

type seedFile struct {
	Entities     []entitySeed      `json:"entities"`
	Contracts    []contractSeed    `json:"contracts"`
	Trucks       []truckSeed       `json:"trucks"`
	Transporters []transporterSeed `json:"transporters"`
}

// Populate the database with demo data from a JSON file. Records without an
// id get a generated one; re-running the seed is idempotent for records that
// keep their ids.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, e := range data.Entities {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err := domain.ParseEntityKind(e.Kind); err != nil {
			return fmt.Errorf("seed: entity #%d: %w", i+1, err)
		}
		if e.Status == "" {
			e.Status = "available"
		}

		_, err := tx.Exec(`
		INSERT INTO geo_entities (id, kind, name, company_id, address, lon, lat, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, company_id = EXCLUDED.company_id,
			address = EXCLUDED.address, lon = EXCLUDED.lon, lat = EXCLUDED.lat,
			status = EXCLUDED.status, updated_at = NOW();
		`, e.ID, e.Kind, e.Name, e.CompanyID, e.Address, e.Lon, e.Lat, e.Status)
		if err != nil {
			return fmt.Errorf("seed: entity %q: %w", e.ID, err)
		}

		for _, p := range e.Products {
			if p.ProductID == "" {
				p.ProductID = uuid.NewString()
			}
			_, err := tx.Exec(`
			INSERT INTO entity_products (entity_id, product_id, name, quantity)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (entity_id, product_id) DO UPDATE
			SET name = EXCLUDED.name, quantity = EXCLUDED.quantity;
			`, e.ID, p.ProductID, p.Name, p.Quantity)
			if err != nil {
				return fmt.Errorf("seed: entity %q product %q: %w", e.ID, p.Name, err)
			}
		}
	}

	for i, c := range data.Contracts {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Warehouse.ID == "" {
			return fmt.Errorf("seed: contract #%d: warehouse id is required", i+1)
		}
		if c.TotalQty <= 0 {
			return fmt.Errorf("seed: contract #%d: total_quantity must be positive", i+1)
		}
		if c.Frequency == "" {
			c.Frequency = string(domain.FrequencyWeekly)
		}
		for _, day := range c.DeliveryDays {
			if _, err := domain.ParseWeekday(day); err != nil {
				return fmt.Errorf("seed: contract #%d: %w", i+1, err)
			}
		}

		var supplierID, supplierName *string
		var supplierQty *float64
		if c.Supplier != nil {
			supplierID = &c.Supplier.ID
			supplierName = &c.Supplier.Name
			supplierQty = &c.Supplier.Quantity
		}

		_, err := tx.Exec(`
		INSERT INTO contracts (
			id, name, start_date, end_date,
			warehouse_id, warehouse_name, warehouse_quantity,
			supplier_id, supplier_name, supplier_quantity,
			product_id, product_name, total_quantity,
			frequency, delivery_days
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date, warehouse_id = EXCLUDED.warehouse_id,
			warehouse_name = EXCLUDED.warehouse_name,
			warehouse_quantity = EXCLUDED.warehouse_quantity,
			supplier_id = EXCLUDED.supplier_id, supplier_name = EXCLUDED.supplier_name,
			supplier_quantity = EXCLUDED.supplier_quantity,
			product_id = EXCLUDED.product_id, product_name = EXCLUDED.product_name,
			total_quantity = EXCLUDED.total_quantity, frequency = EXCLUDED.frequency,
			delivery_days = EXCLUDED.delivery_days;
		`, c.ID, c.Name, c.StartDate, c.EndDate,
			c.Warehouse.ID, c.Warehouse.Name, c.Warehouse.Quantity,
			supplierID, supplierName, supplierQty,
			c.ProductID, c.ProductName, c.TotalQty,
			c.Frequency, strings.Join(c.DeliveryDays, ","))
		if err != nil {
			return fmt.Errorf("seed: contract %q: %w", c.ID, err)
		}

		if _, err := tx.Exec(`DELETE FROM contract_sale_points WHERE contract_id = $1;`, c.ID); err != nil {
			return fmt.Errorf("seed: contract %q sale points: %w", c.ID, err)
		}
		for pos, spID := range c.SalePointIDs {
			_, err := tx.Exec(`
			INSERT INTO contract_sale_points (contract_id, sale_point_id, position)
			VALUES ($1, $2, $3);
			`, c.ID, spID, pos+1)
			if err != nil {
				return fmt.Errorf("seed: contract %q sale point %q: %w", c.ID, spID, err)
			}
		}
	}

	for _, t := range data.Trucks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.Status == "" {
			t.Status = domain.TruckAvailable
		}
		_, err := tx.Exec(`
		INSERT INTO trucks (id, vehicle, type, status, capacity, company_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET vehicle = EXCLUDED.vehicle, type = EXCLUDED.type,
			status = EXCLUDED.status, capacity = EXCLUDED.capacity,
			company_id = EXCLUDED.company_id;
		`, t.ID, t.Vehicle, t.Type, t.Status, t.Capacity, t.CompanyID)
		if err != nil {
			return fmt.Errorf("seed: truck %q: %w", t.ID, err)
		}
	}

	for _, tr := range data.Transporters {
		if tr.ID == "" {
			tr.ID = uuid.NewString()
		}
		if tr.Status == "" {
			tr.Status = domain.TransporterAvailable
		}
		_, err := tx.Exec(`
		INSERT INTO transporters (id, first_name, last_name, company_id, licence, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			company_id = EXCLUDED.company_id, licence = EXCLUDED.licence,
			status = EXCLUDED.status;
		`, tr.ID, tr.FirstName, tr.LastName, tr.CompanyID, tr.Licence, tr.Status)
		if err != nil {
			return fmt.Errorf("seed: transporter %q: %w", tr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
