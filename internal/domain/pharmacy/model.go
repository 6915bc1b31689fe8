// Package pharmacy migrates the legacy drug inventory into the normalized
// pharmacy schema: catalog lookups, formulations, medicines, the location
// tree and initial stock rows.
package pharmacy

import (
	"github.com/google/uuid"
)

// Lookup identifies one of the flat (id, value) catalog tables.
type Lookup string

const (
	LookupRoute           Lookup = "route"
	LookupManufacturer    Lookup = "manufacturer"
	LookupDosage          Lookup = "dosage"
	LookupGenericName     Lookup = "generic_name"
	LookupFormulationType Lookup = "formulation_type"
)

// Fixed seed data. The legacy system had no manufacturer concept, so every
// medicine is attributed to the single placeholder manufacturer.
var (
	StaticRoutes = []string{
		"Oral", "Injection/IV", "Topical", "Respiratory",
		"Ophthalmic", "Nasal", "Rectal/Vaginal", "Other",
	}
	StaticManufacturers = []string{"Bangladesh Medicine Ltd."}
)

// Medicine is one target row in pharmacy.medicines.
type Medicine struct {
	BrandName      string
	GenericNameID  uuid.UUID
	CategoryID     uuid.UUID
	ManufacturerID uuid.UUID
	FormulationID  uuid.UUID
	OrganizationID uuid.UUID
	HospitalID     uuid.UUID
}

// Location is one node of the pharmacy location tree. IDs are bigint
// identity values because downstream systems address stores by small
// numeric ids.
type Location struct {
	OrganizationID   uuid.UUID
	HospitalID       uuid.UUID
	Name             string
	LocationType     string
	ParentLocationID int64
}

// locationNode describes one node of the fixed tree the locations flow
// seeds. Parent refers to the previously created node by name; "" means
// root (parent id 0).
type locationNode struct {
	Name         string
	LocationType string
	Parent       string
}

// locationTree is the fixed 4-node hierarchy: warehouse, central store and
// the two dispensing sub-stores.
var locationTree = []locationNode{
	{Name: "SKH-warehouse", LocationType: "WAREHOUSE"},
	{Name: "SKH-mainstore", LocationType: "CENTRAL_STORE", Parent: "SKH-warehouse"},
	{Name: "Pharmacy Indoor", LocationType: "SUB_STORE", Parent: "SKH-mainstore"},
	{Name: "Pharmacy Outdoor", LocationType: "SUB_STORE", Parent: "SKH-mainstore"},
}

// StockSeed is the projection of one migrated medicine the stocks flow
// expands into per-location rows. CategoryName feeds the SKU prefix.
type StockSeed struct {
	MedicineID    uuid.UUID
	Name          string
	CategoryName  string
	CategoryID    uuid.UUID
	FormulationID uuid.UUID
}

// Stock is one target row in pharmacy.pharmacy_stocks. Initial stocks are
// empty: zero quantity, OUT_OF_STOCK, a fixed reorder level and a
// placeholder challan number.
type Stock struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	HospitalID     uuid.UUID
	LocationID     int64
	RefMedicineID  uuid.UUID
	SKU            string
	Name           string
	CategoryID     uuid.UUID
	FormulationID  uuid.UUID
	StockStatus    string
	Quantity       int
	RemainsAfter   int
	ReorderLevel   int
	ChallanNumber  string
}

// CatalogResult is the catalog flow's per-category summary.
type CatalogResult struct {
	TotalMigrated map[string]int      `json:"totalMigrated"`
	SkippedItems  map[string][]string `json:"skippedItems"`
}

func newCatalogResult() *CatalogResult {
	r := &CatalogResult{
		TotalMigrated: map[string]int{},
		SkippedItems:  map[string][]string{},
	}
	for _, cat := range []string{"routes", "manufacturers", "dosage", "categories", "genericNames", "formulationTypes"} {
		r.TotalMigrated[cat] = 0
		r.SkippedItems[cat] = []string{}
	}
	return r
}

// Flow-specific skip reasons.
const (
	ReasonDuplicateFormulation = "Duplicate formulation"
	ReasonDuplicateMedicine    = "Duplicate medicine"
	ReasonDuplicateStock       = "Duplicate stock entry"
	ReasonDuplicateLocation    = "Duplicate location"
)
