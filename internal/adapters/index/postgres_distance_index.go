package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/platform/obs"
)

// PostgresDistanceIndex persists the three pairwise-distance relations, one
// table per relation, each row keyed by a unique normalized pair id.
type PostgresDistanceIndex struct {
	DB *sql.DB
}

func NewPostgresDistanceIndex(db *sql.DB) *PostgresDistanceIndex {
	return &PostgresDistanceIndex{DB: db}
}

func tableFor(pt domain.PairType) (string, error) {
	switch pt {
	case domain.PairWarehouseSalePoint:
		return "wh_sp_distances", nil
	case domain.PairWarehouseSupplier:
		return "wh_sup_distances", nil
	case domain.PairSalePointSalePoint:
		return "sp_sp_distances", nil
	}
	return "", fmt.Errorf("unknown pair type %v", pt)
}

// Upsert stores or overwrites the row for the normalized pair.
func (p *PostgresDistanceIndex) Upsert(
	ctx context.Context,
	pt domain.PairType,
	fromID, toID string,
	distanceKm float64,
) error {
	pair, err := domain.NewDistancePair(fromID, toID, distanceKm)
	if err != nil {
		return fmt.Errorf("upsert distance: %w", err)
	}
	return p.UpsertBatch(ctx, pt, []domain.DistancePair{pair})
}

// UpsertBatch writes many rows for one relation inside a single transaction.
// Every pair is validated before the transaction begins so a malformed pair
// never reaches the database.
func (p *PostgresDistanceIndex) UpsertBatch(
	ctx context.Context,
	pt domain.PairType,
	pairs []domain.DistancePair,
) (err error) {
	defer obs.Time(ctx, "index.UpsertBatch")(&err)

	if p.DB == nil {
		return errors.New("distance index: db is nil")
	}
	if len(pairs) == 0 {
		return nil
	}

	table, err := tableFor(pt)
	if err != nil {
		return fmt.Errorf("upsert distance batch: %w", err)
	}

	for _, pair := range pairs {
		if _, err := domain.NewDistancePair(pair.FromID, pair.ToID, pair.DistanceKm); err != nil {
			return fmt.Errorf("upsert distance batch: %w", err)
		}
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert distance batch: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Only the table name is interpolated, and it comes from the PairType
	// switch above; all values remain parameterized.
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO %s (from_id, to_id, pair_id, distance_km, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (pair_id) DO UPDATE
	SET from_id = EXCLUDED.from_id,
		to_id = EXCLUDED.to_id,
		distance_km = EXCLUDED.distance_km,
		updated_at = EXCLUDED.updated_at;
	`, table))
	if err != nil {
		return fmt.Errorf("upsert distance batch: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, pair := range pairs {
		pairID := pair.PairID
		if pairID == "" {
			pairID = domain.PairID(pair.FromID, pair.ToID)
		}

		km := domain.RoundKm(pair.DistanceKm)
		if _, err := stmt.ExecContext(ctx, pair.FromID, pair.ToID, pairID, km, now); err != nil {
			return fmt.Errorf("upsert distance batch: pair %q: %w", pairID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert distance batch: commit: %w", err)
	}

	return nil
}

// Lookup returns the cached distance for the unordered pair (a, b).
func (p *PostgresDistanceIndex) Lookup(
	ctx context.Context,
	pt domain.PairType,
	a, b string,
) (float64, bool, error) {
	if p.DB == nil {
		return 0, false, errors.New("distance index: db is nil")
	}

	table, err := tableFor(pt)
	if err != nil {
		return 0, false, fmt.Errorf("lookup distance: %w", err)
	}

	var km float64
	q := fmt.Sprintf(`SELECT distance_km FROM %s WHERE pair_id = $1;`, table)
	err = p.DB.QueryRowContext(ctx, q, domain.PairID(a, b)).Scan(&km)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup distance: query %s: %w", table, err)
	}

	return km, true, nil
}

// DeleteAllForEntity removes every row in every relation referencing the
// entity id. All three deletes run in one transaction so the subsequent
// rebuild never observes a half-cleaned index.
func (p *PostgresDistanceIndex) DeleteAllForEntity(ctx context.Context, entityID string) (err error) {
	defer obs.Time(ctx, "index.DeleteAllForEntity")(&err)

	if p.DB == nil {
		return errors.New("distance index: db is nil")
	}
	if entityID == "" {
		return errors.New("delete distances: entity id must not be empty")
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete distances: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, pt := range domain.PairTypes {
		table, err := tableFor(pt)
		if err != nil {
			return fmt.Errorf("delete distances: %w", err)
		}

		q := fmt.Sprintf(`DELETE FROM %s WHERE from_id = $1 OR to_id = $1;`, table)
		if _, err := tx.ExecContext(ctx, q, entityID); err != nil {
			return fmt.Errorf("delete distances: %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete distances: commit: %w", err)
	}

	return nil
}
