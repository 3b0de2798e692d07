package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	promotionKeyPrefix     = "reorder:promotion"
	promotionScanBatchSize = 100
)

type PromotionCache interface {
	GetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, bool, error)
	SetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time, onSale bool) error
	InvalidateAll(ctx context.Context) error
}

type redisPromotionCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPromotionCache struct{}

func NewPromotionCache(cfg config.CacheConfig) (PromotionCache, error) {
	if !cfg.Enabled {
		return &noopPromotionCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPromotionCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPromotionCache() PromotionCache {
	return &noopPromotionCache{}
}

func (c *redisPromotionCache) GetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, bool, error) {
	val, err := c.client.Get(ctx, PromotionKey(sku, w, date)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis get failed: %w", err)
	}
	return val == "1", true, nil
}

func (c *redisPromotionCache) SetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time, onSale bool) error {
	val := "0"
	if onSale {
		val = "1"
	}
	if err := c.client.Set(ctx, PromotionKey(sku, w, date), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPromotionCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, promotionKeyPrefix, promotionScanBatchSize)
}

func (n *noopPromotionCache) GetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, bool, error) {
	return false, false, nil
}

func (n *noopPromotionCache) SetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time, onSale bool) error {
	return nil
}

func (n *noopPromotionCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// PromotionKey is the redis key of one on-sale answer. SKUs are case-sensitive.
func PromotionKey(sku string, w domain.Warehouse, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		promotionKeyPrefix,
		strings.TrimSpace(sku),
		w,
		date.Format(domain.DateLayout))
}
