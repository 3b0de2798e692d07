package reorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/reorder"
	"github.com/andresuchdata/autopo-reorder/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ashford domain.Warehouse = "ashford"

var (
	home     = domain.DefaultWarehouse
	firstDay = time.Date(2017, time.June, 1, 0, 0, 0, 0, time.UTC)
	notFirst = time.Date(2017, time.June, 2, 0, 0, 0, 0, time.UTC)
)

type stubPromotions struct {
	onSale bool
	season domain.Season
	err    error
}

func (s stubPromotions) OnSale(ctx context.Context, sku string, w domain.Warehouse, date time.Time) (bool, error) {
	return s.onSale, s.err
}

func (s stubPromotions) Season(ctx context.Context, date time.Time) (domain.Season, error) {
	return s.season, nil
}

type failingStore struct {
	*memory.InventoryStore
	err error
}

func (f failingStore) OnHand(ctx context.Context, sku string, w domain.Warehouse) (int, error) {
	return 0, f.err
}

func newStore(item *domain.Item, w domain.Warehouse, onHand, onOrder int) *memory.InventoryStore {
	store := memory.NewInventoryStore(home)
	store.AddItems(item)
	store.SetLevels(domain.StockLevel{SKU: item.SKU, Warehouse: w, OnHand: onHand, OnOrder: onOrder})
	return store
}

func seasonal(sku string, desired int, season domain.Season) *domain.Item {
	item := domain.NewItem(sku, desired)
	item.Season = season
	return item
}

func getOrders(t *testing.T, store reorder.InventoryStore, promos reorder.PromotionContext, date time.Time, warehouses ...domain.Warehouse) []domain.Order {
	t.Helper()
	m := reorder.NewManager(store, promos, reorder.Options{Warehouses: warehouses, DefaultWarehouse: home})
	orders, err := m.GetOrders(context.Background(), date)
	require.NoError(t, err)
	return orders
}

func TestGetOrders_NoStockItems(t *testing.T) {
	store := memory.NewInventoryStore(home)

	orders := getOrders(t, store, stubPromotions{onSale: true, season: domain.Fall}, firstDay)

	assert.Empty(t, orders)
}

func TestGetOrders_OrderEnoughStock(t *testing.T) {
	item := domain.NewItem("A", 16)
	store := newStore(item, home, 10, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst)

	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: home, Quantity: 6}}, orders)
}

func TestGetOrders_DoNotOrderIfHaveMore(t *testing.T) {
	store := newStore(domain.NewItem("A", 9), home, 10, 0)

	assert.Empty(t, getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst))
}

func TestGetOrders_DoNotOrderIfEqual(t *testing.T) {
	store := newStore(domain.NewItem("A", 10), home, 10, 0)

	assert.Empty(t, getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst))
}

func TestGetOrders_OnSaleNeedsMoreThanDesired(t *testing.T) {
	store := newStore(domain.NewItem("A", 9), home, 10, 0)

	orders := getOrders(t, store, stubPromotions{onSale: true, season: domain.Fall}, notFirst)

	require.Len(t, orders, 1)
	assert.Equal(t, 9+20-10, orders[0].Quantity)
}

func TestGetOrders_OnSaleKeepsExtraTwenty(t *testing.T) {
	store := newStore(domain.NewItem("A", 15), home, 9, 0)

	orders := getOrders(t, store, stubPromotions{onSale: true, season: domain.Fall}, notFirst)

	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: home, Quantity: 26}}, orders)
}

func TestGetOrders_OnSaleAndInSeasonAdditionLarger(t *testing.T) {
	store := newStore(seasonal("A", 15, domain.Fall), home, 3, 0)

	orders := getOrders(t, store, stubPromotions{onSale: true, season: domain.Fall}, notFirst)

	require.Len(t, orders, 1)
	assert.Equal(t, 15+20-3, orders[0].Quantity)
}

func TestGetOrders_OnSaleAndInSeasonMultiplicationLarger(t *testing.T) {
	store := newStore(seasonal("A", 25, domain.Fall), home, 8, 0)

	orders := getOrders(t, store, stubPromotions{onSale: true, season: domain.Fall}, notFirst)

	require.Len(t, orders, 1)
	assert.Equal(t, 25*2-8, orders[0].Quantity)
}

func TestGetOrders_KeepDoubleInventoryInSeason(t *testing.T) {
	store := newStore(seasonal("A", 22, domain.Fall), home, 7, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst)

	require.Len(t, orders, 1)
	assert.Equal(t, 22*2-7, orders[0].Quantity)
}

func TestGetOrders_OutOfSeasonIsPlainItem(t *testing.T) {
	store := newStore(seasonal("A", 22, domain.Winter), home, 7, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst)

	require.Len(t, orders, 1)
	assert.Equal(t, 15, orders[0].Quantity)
}

func TestGetOrders_FirstOfMonthSchedule(t *testing.T) {
	item := domain.NewItem("A", 15)
	item.Schedule = domain.FirstOfMonth{}
	store := newStore(item, home, 8, 0)
	promos := stubPromotions{season: domain.Fall}

	assert.Empty(t, getOrders(t, store, promos, notFirst))

	orders := getOrders(t, store, promos, firstDay)
	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: home, Quantity: 7}}, orders)
}

func TestGetOrders_CaseLotDoesNotOvershootDesired(t *testing.T) {
	item := domain.NewItem("A", 15)
	item.CaseLot = 6
	store := newStore(item, home, 8, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst)

	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: home, Quantity: 6}}, orders)
}

func TestGetOrders_SeasonalCaseLotDoesNotOvershootDesired(t *testing.T) {
	item := seasonal("A", 15, domain.Fall)
	item.CaseLot = 6
	store := newStore(item, home, 8, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst)

	require.Len(t, orders, 1)
	assert.Equal(t, 18, orders[0].Quantity)
}

func TestGetOrders_AlreadyOnOrder(t *testing.T) {
	store := newStore(domain.NewItem("A", 10), home, 5, 5)

	assert.Empty(t, getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst))
}

func TestGetOrders_SeasonalAlreadyOnOrder(t *testing.T) {
	store := newStore(seasonal("A", 10, domain.Fall), home, 5, 15)

	assert.Empty(t, getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst))
}

func TestGetOrders_OverEightyPercent(t *testing.T) {
	store := newStore(domain.NewItem("A", 10), home, 9, 0)

	assert.Empty(t, getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst))
}

func TestGetOrders_SeasonalOverEightyPercent(t *testing.T) {
	store := newStore(seasonal("A", 20, domain.Winter), home, 36, 0)

	assert.Empty(t, getOrders(t, store, stubPromotions{season: domain.Winter}, notFirst))
}

func TestGetOrders_StockOutEscalatesOnce(t *testing.T) {
	cases := []struct {
		name     string
		item     *domain.Item
		season   domain.Season
		want     int
		quantity int
	}{
		{"plain", domain.NewItem("A", 10), domain.Fall, 11, 11},
		{"plain rounded up", domain.NewItem("A", 19), domain.Fall, 21, 21},
		{"seasonal", seasonal("A", 10, domain.Winter), domain.Winter, 11, 22},
		{"seasonal rounded up", seasonal("A", 19, domain.Winter), domain.Winter, 21, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(tc.item, home, 0, 0)

			orders := getOrders(t, store, stubPromotions{season: tc.season}, notFirst)

			assert.Equal(t, 1, store.SetRequiredOnHandCalls("A", home))
			desired, ok := store.Desired("A", home)
			require.True(t, ok)
			assert.Equal(t, tc.want, desired)
			assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: home, Quantity: tc.quantity}}, orders)
		})
	}
}

func TestGetOrders_OrderFromOtherWarehouse(t *testing.T) {
	item := domain.NewItem("A", 0)
	item.WarehouseTargets = map[domain.Warehouse]int{ashford: 15}
	store := newStore(item, ashford, 5, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst, home, ashford)

	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: ashford, Quantity: 10}}, orders)
	assert.Zero(t, store.SetRequiredOnHandCalls("A", home))
}

func TestGetOrders_HaveInOneWarehouseButNeedInAnother(t *testing.T) {
	store := newStore(domain.NewItem("A", 15), ashford, 5, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst, home, ashford)

	// home is empty so its baseline escalates to 17 before ordering
	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: home, Quantity: 17}}, orders)
	assert.Equal(t, 1, store.SetRequiredOnHandCalls("A", home))
	assert.Zero(t, store.SetRequiredOnHandCalls("A", ashford))
}

func TestGetOrders_ZeroDesiredWarehouseNeverOrders(t *testing.T) {
	item := domain.NewItem("A", 0)
	item.WarehouseTargets = map[domain.Warehouse]int{home: 0, ashford: 4}
	store := newStore(item, home, 0, 0)

	orders := getOrders(t, store, stubPromotions{season: domain.Fall}, notFirst, home, ashford)

	assert.ElementsMatch(t, []domain.Order{{SKU: "A", Warehouse: ashford, Quantity: 5}}, orders)
	assert.Zero(t, store.SetRequiredOnHandCalls("A", home))
	assert.Equal(t, 1, store.SetRequiredOnHandCalls("A", ashford))
}

func TestGetOrders_CollaboratorErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	store := failingStore{InventoryStore: newStore(domain.NewItem("A", 10), home, 1, 0), err: boom}
	m := reorder.NewManager(store, stubPromotions{season: domain.Fall}, reorder.Options{})

	_, err := m.GetOrders(context.Background(), notFirst)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestGetOrders_PromotionErrorPropagates(t *testing.T) {
	boom := errors.New("calendar unavailable")
	store := newStore(domain.NewItem("A", 10), home, 1, 0)
	m := reorder.NewManager(store, stubPromotions{err: boom}, reorder.Options{})

	_, err := m.GetOrders(context.Background(), notFirst)

	assert.ErrorIs(t, err, boom)
}

func TestPlan_DoesNotWriteEscalations(t *testing.T) {
	store := newStore(domain.NewItem("A", 10), home, 0, 0)
	m := reorder.NewManager(store, stubPromotions{season: domain.Fall}, reorder.Options{})

	plan, err := m.Plan(context.Background(), notFirst)
	require.NoError(t, err)

	assert.Equal(t, []domain.Escalation{{SKU: "A", Warehouse: home, From: 10, To: 11}}, plan.Escalations)
	assert.Zero(t, store.SetRequiredOnHandCalls("A", home))

	require.NoError(t, m.Apply(context.Background(), plan))
	assert.Equal(t, 1, store.SetRequiredOnHandCalls("A", home))
}

func TestPlan_CountsSkipReasons(t *testing.T) {
	item := domain.NewItem("B", 10)
	item.Schedule = domain.FirstOfMonth{}
	store := newStore(domain.NewItem("A", 10), home, 10, 0)
	store.AddItems(item)
	m := reorder.NewManager(store, stubPromotions{season: domain.Fall}, reorder.Options{Warehouses: []domain.Warehouse{home, ashford}})

	plan, err := m.Plan(context.Background(), notFirst)
	require.NoError(t, err)

	assert.Empty(t, plan.Orders)
	assert.Equal(t, 1, plan.Skipped[reorder.ReasonAtTarget])
	assert.Equal(t, 1, plan.Skipped[reorder.ReasonNotStocked])
	assert.Equal(t, 2, plan.Skipped[reorder.ReasonSchedule])
}

func TestGetOrders_ParallelWarehousesKeepConfiguredOrder(t *testing.T) {
	warehouses := []domain.Warehouse{"north", "south", "east", "west"}
	item := domain.NewItem("A", 0)
	item.WarehouseTargets = map[domain.Warehouse]int{}
	store := memory.NewInventoryStore(home)
	for i, w := range warehouses {
		item.WarehouseTargets[w] = 10 + i
		store.SetLevels(domain.StockLevel{SKU: "A", Warehouse: w, OnHand: 1})
	}
	store.AddItems(item)

	m := reorder.NewManager(store, stubPromotions{season: domain.Fall}, reorder.Options{
		Warehouses:       warehouses,
		DefaultWarehouse: home,
		Workers:          len(warehouses),
	})
	orders, err := m.GetOrders(context.Background(), notFirst)
	require.NoError(t, err)

	assert.Equal(t, []domain.Order{
		{SKU: "A", Warehouse: "north", Quantity: 9},
		{SKU: "A", Warehouse: "south", Quantity: 10},
		{SKU: "A", Warehouse: "east", Quantity: 11},
		{SKU: "A", Warehouse: "west", Quantity: 12},
	}, orders)
}
