package domain

// Item is a stocked entity and its demand policy.
//
// A scalar DesiredOnHand applies to the default warehouse only. When WarehouseTargets is
// non-empty it replaces the scalar and warehouses absent from it are never ordered for.
type Item struct {
	SKU              string            `json:"sku" db:"sku"`
	Name             string            `json:"name" db:"name"`
	DesiredOnHand    int               `json:"desired_on_hand" db:"desired_on_hand"`
	WarehouseTargets map[Warehouse]int `json:"warehouse_targets,omitempty" db:"-"`
	Season           Season            `json:"season,omitempty" db:"season"`
	CaseLot          int               `json:"case_lot" db:"case_lot"`
	Schedule         Schedule          `json:"-" db:"-"`
}

// NewItem returns an item with a scalar baseline, no season, no case lot and the AnyDay
// schedule.
func NewItem(sku string, desiredOnHand int) *Item {
	return &Item{
		SKU:           sku,
		DesiredOnHand: desiredOnHand,
		CaseLot:       1,
		Schedule:      AnyDay{},
	}
}

// DesiredFor resolves the desired on-hand quantity for a warehouse. The boolean is false
// when the item is not stocked there.
func (i *Item) DesiredFor(w, defaultWarehouse Warehouse) (int, bool) {
	if len(i.WarehouseTargets) > 0 {
		qty, ok := i.WarehouseTargets[w]
		return qty, ok
	}
	if w != defaultWarehouse {
		return 0, false
	}
	return i.DesiredOnHand, true
}

// Targets flattens the policy into one entry per stocked warehouse.
func (i *Item) Targets(defaultWarehouse Warehouse) map[Warehouse]int {
	if len(i.WarehouseTargets) > 0 {
		out := make(map[Warehouse]int, len(i.WarehouseTargets))
		for w, qty := range i.WarehouseTargets {
			out[w] = qty
		}
		return out
	}
	return map[Warehouse]int{defaultWarehouse: i.DesiredOnHand}
}

// BunchSize is the case-lot size, never less than 1.
func (i *Item) BunchSize() int {
	if i.CaseLot < 1 {
		return 1
	}
	return i.CaseLot
}

// OrderingSchedule returns the item's schedule, defaulting to AnyDay.
func (i *Item) OrderingSchedule() Schedule {
	if i.Schedule == nil {
		return AnyDay{}
	}
	return i.Schedule
}

// InSeason reports whether the item's season matches the current one.
func (i *Item) InSeason(current Season) bool {
	return i.Season != NoSeason && i.Season == current
}

// Clone returns a deep copy so stores can hand items out without sharing target maps.
func (i *Item) Clone() *Item {
	c := *i
	if i.WarehouseTargets != nil {
		c.WarehouseTargets = make(map[Warehouse]int, len(i.WarehouseTargets))
		for w, qty := range i.WarehouseTargets {
			c.WarehouseTargets[w] = qty
		}
	}
	return &c
}
