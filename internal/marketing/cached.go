package marketing

import (
	"context"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/cache"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
	"github.com/rs/zerolog/log"
)

// CachedPromotions is a read-through cache in front of a promotion repository.
type CachedPromotions struct {
	repo  repository.PromotionRepository
	cache cache.PromotionCache
}

func NewCachedPromotions(repo repository.PromotionRepository, cacheImpl cache.PromotionCache) *CachedPromotions {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPromotionCache()
	}
	return &CachedPromotions{repo: repo, cache: cacheImpl}
}

func (c *CachedPromotions) HasActivePromotion(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error) {
	if onSale, ok, err := c.cache.GetOnSale(ctx, sku, w, date); err == nil && ok {
		return onSale, nil
	} else if err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("promotions: cache get failed")
	}

	onSale, err := c.repo.HasActivePromotion(ctx, sku, w, date)
	if err != nil {
		return false, err
	}

	if err := c.cache.SetOnSale(ctx, sku, w, date, onSale); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("promotions: cache set failed")
	}

	return onSale, nil
}
