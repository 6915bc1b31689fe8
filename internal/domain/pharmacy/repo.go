package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the target-side store for the pharmacy flows.
type Repository interface {
	EnsureSchema(ctx context.Context) error

	// Flat lookup tables.
	HasLookup(ctx context.Context, kind Lookup, value string) (bool, error)
	AddLookup(ctx context.Context, kind Lookup, value string) error
	// FindLookup returns the id of an existing value, ok=false when absent.
	FindLookup(ctx context.Context, kind Lookup, value string) (uuid.UUID, bool, error)
	// EnsureLookup finds the value's id, creating the row first if needed.
	EnsureLookup(ctx context.Context, kind Lookup, value string) (uuid.UUID, error)

	// Categories carry a description, so they sit outside the flat lookups.
	HasCategory(ctx context.Context, name string) (bool, error)
	AddCategory(ctx context.Context, name, description string) error
	EnsureCategory(ctx context.Context, name string) (uuid.UUID, error)

	// EnsureFormulation finds or creates the (type, dosage, route) row.
	// created reports whether this call inserted it.
	EnsureFormulation(ctx context.Context, typeID, dosageID, routeID uuid.UUID) (id uuid.UUID, created bool, err error)

	MedicineExists(ctx context.Context, brandName string, genericID, categoryID, formulationID uuid.UUID) (bool, error)
	InsertMedicine(ctx context.Context, m *Medicine) error

	// LocationIDsByName returns the ids of the named locations that already
	// exist, keyed by name.
	LocationIDsByName(ctx context.Context, names []string) (map[string]int64, error)
	InsertLocation(ctx context.Context, l *Location) (int64, error)

	ListStockSeeds(ctx context.Context) ([]StockSeed, error)
	StockExists(ctx context.Context, locationID int64, medicineID uuid.UUID) (bool, error)
	InsertStock(ctx context.Context, s *Stock) error
}
