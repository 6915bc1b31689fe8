package inventory

import "time"

// StockRow is one target row of inventory.inventory_stocks. Store and item
// names form the natural key; the legacy source has no stable surrogate id
// for a store/drug pairing.
type StockRow struct {
	StoreName    string
	ItemName     string
	Quantity     int64
	ReorderPoint int64
	Status       string
	CreatedAt    time.Time
}
