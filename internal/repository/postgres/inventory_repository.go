package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
	"github.com/jmoiron/sqlx"
)

type itemRow struct {
	SKU           string `db:"sku"`
	Name          string `db:"name"`
	DesiredOnHand int    `db:"desired_on_hand"`
	Season        string `db:"season"`
	CaseLot       int    `db:"case_lot"`
	Schedule      string `db:"schedule"`
}

type targetRow struct {
	SKU           string           `db:"sku"`
	Warehouse     domain.Warehouse `db:"warehouse"`
	DesiredOnHand int              `db:"desired_on_hand"`
}

// InventoryRepository serves stock levels and item policies from PostgreSQL and loads
// catalog files into it.
type InventoryRepository struct {
	db               *DB
	defaultWarehouse domain.Warehouse
}

func NewInventoryRepository(db *DB, defaultWarehouse domain.Warehouse) *InventoryRepository {
	if defaultWarehouse == "" {
		defaultWarehouse = domain.DefaultWarehouse
	}
	return &InventoryRepository{db: db, defaultWarehouse: defaultWarehouse}
}

func (r *InventoryRepository) OnHand(ctx context.Context, sku string, w domain.Warehouse) (int, error) {
	level, err := r.level(ctx, sku, w)
	if err != nil {
		return 0, err
	}
	return level.OnHand, nil
}

func (r *InventoryRepository) OnOrder(ctx context.Context, sku string, w domain.Warehouse) (int, error) {
	level, err := r.level(ctx, sku, w)
	if err != nil {
		return 0, err
	}
	return level.OnOrder, nil
}

// level returns a zero level when no row exists.
func (r *InventoryRepository) level(ctx context.Context, sku string, w domain.Warehouse) (domain.StockLevel, error) {
	var level domain.StockLevel
	query := `
		SELECT sku, warehouse, on_hand, on_order
		FROM stock_levels
		WHERE sku = $1 AND warehouse = $2
	`
	err := r.db.GetContext(ctx, &level, query, sku, w)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockLevel{SKU: sku, Warehouse: w}, nil
	}
	if err != nil {
		return level, fmt.Errorf("failed to get stock level for %s@%s: %w", sku, w, err)
	}
	return level, nil
}

func (r *InventoryRepository) StockItems(ctx context.Context) ([]*domain.Item, error) {
	var rows []itemRow
	query := `
		SELECT sku, name, desired_on_hand, season, case_lot, schedule
		FROM items
		ORDER BY sku
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var targets []targetRow
	if err := r.db.SelectContext(ctx, &targets, `SELECT sku, warehouse, desired_on_hand FROM item_targets`); err != nil {
		return nil, fmt.Errorf("failed to list item targets: %w", err)
	}

	return assembleItems(rows, targets)
}

// assembleItems joins item rows with their per-warehouse targets.
func assembleItems(rows []itemRow, targets []targetRow) ([]*domain.Item, error) {
	bySKU := make(map[string]map[domain.Warehouse]int)
	for _, t := range targets {
		if bySKU[t.SKU] == nil {
			bySKU[t.SKU] = make(map[domain.Warehouse]int)
		}
		bySKU[t.SKU][t.Warehouse] = t.DesiredOnHand
	}

	items := make([]*domain.Item, 0, len(rows))
	for _, row := range rows {
		season, err := domain.ParseSeason(row.Season)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", row.SKU, err)
		}
		schedule, err := domain.ParseSchedule(row.Schedule)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", row.SKU, err)
		}

		item := domain.NewItem(row.SKU, row.DesiredOnHand)
		item.Name = row.Name
		item.Season = season
		item.CaseLot = max(row.CaseLot, 1)
		item.Schedule = schedule
		item.WarehouseTargets = bySKU[row.SKU]
		items = append(items, item)
	}
	return items, nil
}

// SetRequiredOnHand follows the item's policy shape: per-warehouse rows are updated in place,
// a scalar baseline is updated for the default warehouse, and a scalar item escalated at
// another warehouse is converted into per-warehouse rows.
func (r *InventoryRepository) SetRequiredOnHand(ctx context.Context, sku string, w domain.Warehouse, amount int) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var desired int
		err := tx.GetContext(ctx, &desired, `SELECT desired_on_hand FROM items WHERE sku = $1 FOR UPDATE`, sku)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", repository.ErrItemNotFound, sku)
		}
		if err != nil {
			return fmt.Errorf("failed to lock item %s: %w", sku, err)
		}

		var targets int
		if err := tx.GetContext(ctx, &targets, `SELECT COUNT(*) FROM item_targets WHERE sku = $1`, sku); err != nil {
			return fmt.Errorf("failed to count targets for %s: %w", sku, err)
		}

		switch {
		case targets > 0:
			return upsertTarget(ctx, tx, sku, w, amount)
		case w == r.defaultWarehouse:
			_, err := tx.ExecContext(ctx, `UPDATE items SET desired_on_hand = $2, updated_at = NOW() WHERE sku = $1`, sku, amount)
			if err != nil {
				return fmt.Errorf("failed to update desired on-hand for %s: %w", sku, err)
			}
			return nil
		default:
			if err := upsertTarget(ctx, tx, sku, r.defaultWarehouse, desired); err != nil {
				return err
			}
			return upsertTarget(ctx, tx, sku, w, amount)
		}
	})
}

func upsertTarget(ctx context.Context, tx *sqlx.Tx, sku string, w domain.Warehouse, amount int) error {
	query := `
		INSERT INTO item_targets (sku, warehouse, desired_on_hand, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (sku, warehouse)
		DO UPDATE SET
			desired_on_hand = EXCLUDED.desired_on_hand,
			updated_at = NOW()
	`
	if _, err := tx.ExecContext(ctx, query, sku, w, amount); err != nil {
		return fmt.Errorf("failed to upsert target for %s@%s: %w", sku, w, err)
	}
	return nil
}
