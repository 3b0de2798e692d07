package marketing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/cache"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june3 = time.Date(2017, time.June, 3, 0, 0, 0, 0, time.UTC)

func TestCalendar_Season(t *testing.T) {
	season, err := NewCalendar(nil).Season(context.Background(), june3)
	require.NoError(t, err)
	assert.Equal(t, domain.Summer, season)
}

func TestCalendar_OnSale(t *testing.T) {
	ctx := context.Background()
	list := NewPromotionList([]domain.Promotion{
		{SKU: "A", StartsOn: june3.AddDate(0, 0, -2), EndsOn: june3},
		{SKU: "B", Warehouse: "ashford", StartsOn: june3, EndsOn: june3},
	})
	cal := NewCalendar(list)

	onSale, err := cal.OnSale(ctx, "A", "home", june3)
	require.NoError(t, err)
	assert.True(t, onSale)

	onSale, _ = cal.OnSale(ctx, "A", "home", june3.AddDate(0, 0, 1))
	assert.False(t, onSale)

	onSale, _ = cal.OnSale(ctx, "B", "home", june3)
	assert.False(t, onSale)

	onSale, _ = cal.OnSale(ctx, "B", "ashford", june3)
	assert.True(t, onSale)

	onSale, err = NewCalendar(nil).OnSale(ctx, "A", "home", june3)
	require.NoError(t, err)
	assert.False(t, onSale)
}

type countingRepo struct {
	calls  int
	onSale bool
	err    error
}

func (r *countingRepo) HasActivePromotion(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error) {
	r.calls++
	return r.onSale, r.err
}

type mapCache struct {
	values map[string]bool
	getErr error
	setErr error
}

func (c *mapCache) GetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, bool, error) {
	if c.getErr != nil {
		return false, false, c.getErr
	}
	v, ok := c.values[cache.PromotionKey(sku, w, date)]
	return v, ok, nil
}

func (c *mapCache) SetOnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time, onSale bool) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[cache.PromotionKey(sku, w, date)] = onSale
	return nil
}

func (c *mapCache) InvalidateAll(ctx context.Context) error {
	c.values = map[string]bool{}
	return nil
}

func TestCachedPromotions_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{onSale: true}
	c := &mapCache{values: map[string]bool{}}
	cached := NewCachedPromotions(repo, c)

	for i := 0; i < 3; i++ {
		onSale, err := cached.HasActivePromotion(ctx, "A", "home", june3)
		require.NoError(t, err)
		assert.True(t, onSale)
	}
	assert.Equal(t, 1, repo.calls)

	// A negative answer is cached too.
	repo.onSale = false
	_, _ = cached.HasActivePromotion(ctx, "B", "home", june3)
	_, _ = cached.HasActivePromotion(ctx, "B", "home", june3)
	assert.Equal(t, 2, repo.calls)
}

func TestCachedPromotions_CacheErrorsFallBackToRepository(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{onSale: true}
	cached := NewCachedPromotions(repo, &mapCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")})

	onSale, err := cached.HasActivePromotion(ctx, "A", "home", june3)
	require.NoError(t, err)
	assert.True(t, onSale)
	assert.Equal(t, 1, repo.calls)
}

func TestCachedPromotions_RepositoryErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	cached := NewCachedPromotions(&countingRepo{err: boom}, nil)

	_, err := cached.HasActivePromotion(context.Background(), "A", "home", june3)
	assert.ErrorIs(t, err, boom)
}

func TestCachedPromotions_SKUsDifferingOnlyInCaseAreCachedSeparately(t *testing.T) {
	ctx := context.Background()
	list := NewPromotionList([]domain.Promotion{
		{SKU: "abc", StartsOn: june3, EndsOn: june3},
	})
	cached := NewCachedPromotions(list, &mapCache{values: map[string]bool{}})

	onSale, err := cached.HasActivePromotion(ctx, "abc", "home", june3)
	require.NoError(t, err)
	assert.True(t, onSale)

	onSale, err = cached.HasActivePromotion(ctx, "ABC", "home", june3)
	require.NoError(t, err)
	assert.False(t, onSale)

	onSale, err = cached.HasActivePromotion(ctx, "abc", "home", june3)
	require.NoError(t, err)
	assert.True(t, onSale)
}
