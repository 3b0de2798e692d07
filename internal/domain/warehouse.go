package domain

import "strings"

// Warehouse identifies a stocking location.
type Warehouse string

// DefaultWarehouse is used when configuration does not name one.
const DefaultWarehouse Warehouse = "home"

// ParseWarehouse normalizes a warehouse name read from config or files.
func ParseWarehouse(name string) Warehouse {
	return Warehouse(strings.ToLower(strings.TrimSpace(name)))
}

func (w Warehouse) String() string {
	return string(w)
}
