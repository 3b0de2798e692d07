package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

type PromotionRepository struct {
	db *DB
}

func NewPromotionRepository(db *DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// HasActivePromotion reports whether a promotion for the item covers the date, either at the
// warehouse or everywhere.
func (r *PromotionRepository) HasActivePromotion(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error) {
	var active bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM promotions
			WHERE sku = $1
			  AND (warehouse = '' OR warehouse = $2)
			  AND starts_on <= $3::date
			  AND ends_on >= $3::date
		)
	`
	if err := r.db.GetContext(ctx, &active, query, sku, w, date.Format(domain.DateLayout)); err != nil {
		return false, fmt.Errorf("failed to check promotion for %s@%s: %w", sku, w, err)
	}
	return active, nil
}
