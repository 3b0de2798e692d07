package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

// LoadItems reads item policies. Columns: sku (required), name, desired_on_hand,
// warehouse_targets ("ashford=15;home=10"), season, case_lot, schedule.
func LoadItems(path string) ([]*domain.Item, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("sku"); err != nil {
		return nil, err
	}

	items := make([]*domain.Item, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		item, err := t.item(row, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (t *table) item(row []string, line int) (*domain.Item, error) {
	sku := t.get(row, "sku")
	if sku == "" {
		return nil, fmt.Errorf("%s line %d: sku is empty", t.path, line)
	}

	desired, err := t.intValue(row, line, "desired_on_hand", 0)
	if err != nil {
		return nil, err
	}
	caseLot, err := t.intValue(row, line, "case_lot", 1)
	if err != nil {
		return nil, err
	}
	targets, err := ParseTargets(t.get(row, "warehouse_targets"))
	if err != nil {
		return nil, fmt.Errorf("%s line %d: %w", t.path, line, err)
	}
	season, err := domain.ParseSeason(t.get(row, "season"))
	if err != nil {
		return nil, fmt.Errorf("%s line %d: %w", t.path, line, err)
	}
	schedule, err := domain.ParseSchedule(t.get(row, "schedule"))
	if err != nil {
		return nil, fmt.Errorf("%s line %d: %w", t.path, line, err)
	}

	item := domain.NewItem(sku, desired)
	item.Name = t.get(row, "name")
	item.WarehouseTargets = targets
	item.Season = season
	item.CaseLot = max(caseLot, 1)
	item.Schedule = schedule
	return item, nil
}

// ParseTargets parses "warehouse=qty" pairs separated by ';' or '|'.
func ParseTargets(raw string) (map[domain.Warehouse]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	targets := make(map[domain.Warehouse]int)
	for _, pair := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' }) {
		name, qty, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid warehouse target %q, expected name=qty", pair)
		}
		w := domain.ParseWarehouse(name)
		if w == "" {
			return nil, fmt.Errorf("invalid warehouse target %q: empty warehouse", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid warehouse target %q: quantity must be a non-negative integer", pair)
		}
		targets[w] = n
	}
	return targets, nil
}

// LoadStockLevels reads on-hand and on-order quantities. Columns: sku, warehouse, on_hand,
// on_order. A blank warehouse means defaultWarehouse.
func LoadStockLevels(path string, defaultWarehouse domain.Warehouse) ([]domain.StockLevel, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("sku", "on_hand"); err != nil {
		return nil, err
	}

	levels := make([]domain.StockLevel, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		level := domain.StockLevel{
			SKU:       t.get(row, "sku"),
			Warehouse: domain.ParseWarehouse(t.get(row, "warehouse")),
		}
		if level.SKU == "" {
			return nil, fmt.Errorf("%s line %d: sku is empty", t.path, line)
		}
		if level.Warehouse == "" {
			level.Warehouse = defaultWarehouse
		}
		if level.OnHand, err = t.intValue(row, line, "on_hand", 0); err != nil {
			return nil, err
		}
		if level.OnOrder, err = t.intValue(row, line, "on_order", 0); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// LoadPromotions reads sale windows. Columns: sku, warehouse (blank = all), starts_on,
// ends_on (YYYY-MM-DD, inclusive; blank ends_on means a one-day sale).
func LoadPromotions(path string) ([]domain.Promotion, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require("sku", "starts_on"); err != nil {
		return nil, err
	}

	promotions := make([]domain.Promotion, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		p := domain.Promotion{
			SKU:       t.get(row, "sku"),
			Warehouse: domain.ParseWarehouse(t.get(row, "warehouse")),
		}
		if p.StartsOn, err = domain.ParseDate(t.get(row, "starts_on")); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", t.path, line, err)
		}
		p.EndsOn = p.StartsOn
		if ends := t.get(row, "ends_on"); ends != "" {
			if p.EndsOn, err = domain.ParseDate(ends); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", t.path, line, err)
			}
		}
		if p.EndsOn.Before(p.StartsOn) {
			return nil, fmt.Errorf("%s line %d: ends_on before starts_on", t.path, line)
		}
		promotions = append(promotions, p)
	}
	return promotions, nil
}
