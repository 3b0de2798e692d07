// Package marketing answers season and sale questions for the reorder engine.
package marketing

import (
	"context"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
)

// Calendar resolves the season of a date and whether an item is on sale.
type Calendar struct {
	promotions repository.PromotionRepository
}

// NewCalendar creates a Calendar. A nil repository means nothing is ever on sale.
func NewCalendar(promotions repository.PromotionRepository) *Calendar {
	return &Calendar{promotions: promotions}
}

func (c *Calendar) OnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error) {
	if c.promotions == nil {
		return false, nil
	}
	return c.promotions.HasActivePromotion(ctx, sku, w, date)
}

func (c *Calendar) Season(ctx context.Context, date time.Time) (domain.Season, error) {
	return domain.SeasonOf(date), nil
}

// PromotionList is an in-memory promotion repository loaded from a file.
type PromotionList struct {
	promotions []domain.Promotion
}

func NewPromotionList(promotions []domain.Promotion) *PromotionList {
	return &PromotionList{promotions: append([]domain.Promotion(nil), promotions...)}
}

func (l *PromotionList) HasActivePromotion(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error) {
	for _, p := range l.promotions {
		if p.Covers(sku, w, date) {
			return true, nil
		}
	}
	return false, nil
}
