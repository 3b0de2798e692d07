// Package memory keeps an inventory in process memory. It backs file-driven CLI runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
)

type levelKey struct {
	sku       string
	warehouse domain.Warehouse
}

// InventoryStore is a concurrency-safe in-memory inventory.
type InventoryStore struct {
	mu               sync.RWMutex
	defaultWarehouse domain.Warehouse
	items            map[string]*domain.Item
	order            []string
	levels           map[levelKey]domain.StockLevel
	setCalls         map[levelKey]int
}

// NewInventoryStore creates an empty store. Scalar item baselines belong to
// defaultWarehouse.
func NewInventoryStore(defaultWarehouse domain.Warehouse) *InventoryStore {
	if defaultWarehouse == "" {
		defaultWarehouse = domain.DefaultWarehouse
	}
	return &InventoryStore{
		defaultWarehouse: defaultWarehouse,
		items:            make(map[string]*domain.Item),
		levels:           make(map[levelKey]domain.StockLevel),
		setCalls:         make(map[levelKey]int),
	}
}

// AddItems registers catalog items, replacing any with the same SKU.
func (s *InventoryStore) AddItems(items ...*domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if _, ok := s.items[item.SKU]; !ok {
			s.order = append(s.order, item.SKU)
		}
		s.items[item.SKU] = item.Clone()
	}
}

// SetLevels records stock levels.
func (s *InventoryStore) SetLevels(levels ...domain.StockLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range levels {
		s.levels[levelKey{l.SKU, l.Warehouse}] = l
	}
}

func (s *InventoryStore) OnHand(ctx context.Context, sku string, w domain.Warehouse) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels[levelKey{sku, w}].OnHand, nil
}

func (s *InventoryStore) OnOrder(ctx context.Context, sku string, w domain.Warehouse) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels[levelKey{sku, w}].OnOrder, nil
}

// StockItems returns copies of the registered items in registration order.
func (s *InventoryStore) StockItems(ctx context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*domain.Item, 0, len(s.order))
	for _, sku := range s.order {
		items = append(items, s.items[sku].Clone())
	}
	return items, nil
}

// SetRequiredOnHand rewrites the desired quantity of an item at a warehouse.
func (s *InventoryStore) SetRequiredOnHand(ctx context.Context, sku string, w domain.Warehouse, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[sku]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrItemNotFound, sku)
	}

	switch {
	case len(item.WarehouseTargets) > 0:
		item.WarehouseTargets[w] = amount
	case w == s.defaultWarehouse:
		item.DesiredOnHand = amount
	default:
		item.WarehouseTargets = item.Targets(s.defaultWarehouse)
		item.WarehouseTargets[w] = amount
	}
	s.setCalls[levelKey{sku, w}]++
	return nil
}

// Desired returns the current desired quantity of an item at a warehouse.
func (s *InventoryStore) Desired(sku string, w domain.Warehouse) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[sku]
	if !ok {
		return 0, false
	}
	return item.DesiredFor(w, s.defaultWarehouse)
}

// SetRequiredOnHandCalls counts writes for an item at a warehouse.
func (s *InventoryStore) SetRequiredOnHandCalls(sku string, w domain.Warehouse) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setCalls[levelKey{sku, w}]
}
