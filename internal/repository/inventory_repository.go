package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrRunNotFound  = errors.New("reorder run not found")
)

// CatalogRepository loads catalog data into a store.
type CatalogRepository interface {
	UpsertItems(ctx context.Context, items []*domain.Item) error
	UpsertStockLevels(ctx context.Context, levels []domain.StockLevel) error
	UpsertPromotions(ctx context.Context, promotions []domain.Promotion) error
}

// PromotionRepository answers whether a promotion covers an item on a date.
type PromotionRepository interface {
	HasActivePromotion(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error)
}

// RunRepository persists reorder runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.ReorderRun) error
	GetRun(ctx context.Context, id string) (*domain.ReorderRun, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.ReorderRun, error)
}
