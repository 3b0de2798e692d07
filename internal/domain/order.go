package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidQuantity = errors.New("order quantity must be positive")

// Order is a replenishment request. It is a comparable value: two orders are equal when
// SKU, warehouse and quantity match.
type Order struct {
	SKU       string    `json:"sku" db:"sku"`
	Warehouse Warehouse `json:"warehouse" db:"warehouse"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// NewOrder validates the quantity before building the order.
func NewOrder(sku string, w Warehouse, quantity int) (Order, error) {
	if quantity <= 0 {
		return Order{}, fmt.Errorf("%w: %s@%s got %d", ErrInvalidQuantity, sku, w, quantity)
	}
	return Order{SKU: sku, Warehouse: w, Quantity: quantity}, nil
}

// Escalation raises the desired on-hand of an item at a warehouse after a stock-out.
type Escalation struct {
	SKU       string    `json:"sku" db:"sku"`
	Warehouse Warehouse `json:"warehouse" db:"warehouse"`
	From      int       `json:"from" db:"from_qty"`
	To        int       `json:"to" db:"to_qty"`
}

// StockLevel is the on-hand and on-order quantity of an item at a warehouse.
type StockLevel struct {
	SKU       string    `json:"sku" db:"sku"`
	Warehouse Warehouse `json:"warehouse" db:"warehouse"`
	OnHand    int       `json:"on_hand" db:"on_hand"`
	OnOrder   int       `json:"on_order" db:"on_order"`
}

// Promotion puts an item on sale between two dates, inclusive. An empty warehouse applies
// the promotion everywhere.
type Promotion struct {
	SKU       string    `json:"sku" db:"sku"`
	Warehouse Warehouse `json:"warehouse,omitempty" db:"warehouse"`
	StartsOn  time.Time `json:"starts_on" db:"starts_on"`
	EndsOn    time.Time `json:"ends_on" db:"ends_on"`
}

// Covers reports whether the promotion is active for the warehouse on the date.
func (p Promotion) Covers(sku string, w Warehouse, date time.Time) bool {
	if p.SKU != sku {
		return false
	}
	if p.Warehouse != "" && p.Warehouse != w {
		return false
	}
	day := truncateDay(date)
	return !day.Before(truncateDay(p.StartsOn)) && !day.After(truncateDay(p.EndsOn))
}

// ReorderRun records one evaluation of the whole catalog for a date.
type ReorderRun struct {
	ID          string       `json:"id" db:"id"`
	Date        time.Time    `json:"date" db:"run_date"`
	DryRun      bool         `json:"dry_run" db:"dry_run"`
	Orders      []Order      `json:"orders"`
	Escalations []Escalation `json:"escalations"`
	ExportKey   string       `json:"export_key,omitempty" db:"export_key"`
	ExportPath  string       `json:"export_path,omitempty" db:"-"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// TotalQuantity sums the quantity of every order in the run.
func (r *ReorderRun) TotalQuantity() int {
	total := 0
	for _, o := range r.Orders {
		total += o.Quantity
	}
	return total
}

// DateLayout is the wire format for run dates.
const DateLayout = "2006-01-02"

// ParseDate parses a run date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
