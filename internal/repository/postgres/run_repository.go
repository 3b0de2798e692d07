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

type runOrderRow struct {
	RunID string `db:"run_id"`
	domain.Order
}

type runEscalationRow struct {
	RunID string `db:"run_id"`
	domain.Escalation
}

type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) SaveRun(ctx context.Context, run *domain.ReorderRun) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Run header
		query := `
			INSERT INTO reorder_runs (id, run_date, dry_run, export_key, created_at)
			VALUES ($1, $2::date, $3, $4, $5)
			ON CONFLICT (id)
			DO UPDATE SET export_key = EXCLUDED.export_key
		`
		_, err := tx.ExecContext(ctx, query, run.ID, run.Date.Format(domain.DateLayout), run.DryRun, run.ExportKey, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save run %s: %w", run.ID, err)
		}

		// 2. Orders, in emission order
		if _, err := tx.ExecContext(ctx, `DELETE FROM reorder_orders WHERE run_id = $1`, run.ID); err != nil {
			return fmt.Errorf("failed to clear orders for run %s: %w", run.ID, err)
		}
		for i, o := range run.Orders {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO reorder_orders (run_id, position, sku, warehouse, quantity) VALUES ($1, $2, $3, $4, $5)`,
				run.ID, i, o.SKU, o.Warehouse, o.Quantity)
			if err != nil {
				return fmt.Errorf("failed to save order %s@%s: %w", o.SKU, o.Warehouse, err)
			}
		}

		// 3. Escalations
		if _, err := tx.ExecContext(ctx, `DELETE FROM reorder_escalations WHERE run_id = $1`, run.ID); err != nil {
			return fmt.Errorf("failed to clear escalations for run %s: %w", run.ID, err)
		}
		for _, e := range run.Escalations {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO reorder_escalations (run_id, sku, warehouse, from_qty, to_qty) VALUES ($1, $2, $3, $4, $5)`,
				run.ID, e.SKU, e.Warehouse, e.From, e.To)
			if err != nil {
				return fmt.Errorf("failed to save escalation %s@%s: %w", e.SKU, e.Warehouse, err)
			}
		}
		return nil
	})
}

func (r *RunRepository) GetRun(ctx context.Context, id string) (*domain.ReorderRun, error) {
	var run domain.ReorderRun
	query := `
		SELECT id, run_date, dry_run, export_key, created_at
		FROM reorder_runs
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	runs := []*domain.ReorderRun{&run}
	if err := r.loadLines(ctx, runs); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*domain.ReorderRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []*domain.ReorderRun
	query := `
		SELECT id, run_date, dry_run, export_key, created_at
		FROM reorder_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}
	if err := r.loadLines(ctx, runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// loadLines fills orders and escalations for a batch of runs with one query each.
func (r *RunRepository) loadLines(ctx context.Context, runs []*domain.ReorderRun) error {
	ids := make([]string, 0, len(runs))
	byID := make(map[string]*domain.ReorderRun, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
		byID[run.ID] = run
	}

	query, args, err := sqlx.In(`
		SELECT run_id, sku, warehouse, quantity
		FROM reorder_orders
		WHERE run_id IN (?)
		ORDER BY run_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to build orders query: %w", err)
	}
	var orders []runOrderRow
	if err := r.db.SelectContext(ctx, &orders, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load run orders: %w", err)
	}
	for _, row := range orders {
		run := byID[row.RunID]
		run.Orders = append(run.Orders, row.Order)
	}

	query, args, err = sqlx.In(`
		SELECT run_id, sku, warehouse, from_qty, to_qty
		FROM reorder_escalations
		WHERE run_id IN (?)
		ORDER BY run_id, sku, warehouse
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to build escalations query: %w", err)
	}
	var escalations []runEscalationRow
	if err := r.db.SelectContext(ctx, &escalations, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load run escalations: %w", err)
	}
	for _, row := range escalations {
		run := byID[row.RunID]
		run.Escalations = append(run.Escalations, row.Escalation)
	}
	return nil
}
