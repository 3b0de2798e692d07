package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/jmoiron/sqlx"
)

// UpsertItems replaces item policies. Targets of each item are rewritten as a whole.
func (r *InventoryRepository) UpsertItems(ctx context.Context, items []*domain.Item) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO items (sku, name, desired_on_hand, season, case_lot, schedule, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			ON CONFLICT (sku)
			DO UPDATE SET
				name = EXCLUDED.name,
				desired_on_hand = EXCLUDED.desired_on_hand,
				season = EXCLUDED.season,
				case_lot = EXCLUDED.case_lot,
				schedule = EXCLUDED.schedule,
				updated_at = NOW()
		`
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			_, err := stmt.ExecContext(ctx,
				item.SKU,
				item.Name,
				item.DesiredOnHand,
				string(item.Season),
				item.BunchSize(),
				domain.ScheduleName(item.OrderingSchedule()),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", item.SKU, err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM item_targets WHERE sku = $1`, item.SKU); err != nil {
				return fmt.Errorf("failed to clear targets for %s: %w", item.SKU, err)
			}
			for w, qty := range item.WarehouseTargets {
				if err := upsertTarget(ctx, tx, item.SKU, w, qty); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *InventoryRepository) UpsertStockLevels(ctx context.Context, levels []domain.StockLevel) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO stock_levels (sku, warehouse, on_hand, on_order, updated_at)
			VALUES (:sku, :warehouse, :on_hand, :on_order, NOW())
			ON CONFLICT (sku, warehouse)
			DO UPDATE SET
				on_hand = EXCLUDED.on_hand,
				on_order = EXCLUDED.on_order,
				updated_at = NOW()
		`
		for _, level := range levels {
			if _, err := tx.NamedExecContext(ctx, query, level); err != nil {
				return fmt.Errorf("failed to upsert stock level %s@%s: %w", level.SKU, level.Warehouse, err)
			}
		}
		return nil
	})
}

func (r *InventoryRepository) UpsertPromotions(ctx context.Context, promotions []domain.Promotion) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO promotions (sku, warehouse, starts_on, ends_on)
			VALUES (:sku, :warehouse, :starts_on, :ends_on)
			ON CONFLICT (sku, warehouse, starts_on)
			DO UPDATE SET ends_on = EXCLUDED.ends_on
		`
		for _, p := range promotions {
			if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
				return fmt.Errorf("failed to upsert promotion for %s: %w", p.SKU, err)
			}
		}
		return nil
	})
}
