package reorder

import (
	"context"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

// InventoryStore supplies stock levels and the stocked catalog, and persists escalated
// desired on-hand quantities.
type InventoryStore interface {
	OnHand(ctx context.Context, sku string, w domain.Warehouse) (int, error)
	OnOrder(ctx context.Context, sku string, w domain.Warehouse) (int, error)
	StockItems(ctx context.Context) ([]*domain.Item, error)
	SetRequiredOnHand(ctx context.Context, sku string, w domain.Warehouse, amount int) error
}

// PromotionContext answers marketing questions about a date.
type PromotionContext interface {
	OnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error)
	Season(ctx context.Context, date time.Time) (domain.Season, error)
}
