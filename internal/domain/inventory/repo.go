package inventory

import "context"

// Repository is the target-side store for the inventory flow.
type Repository interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, storeName, itemName string) (bool, error)
	Insert(ctx context.Context, row *StockRow) error
}
