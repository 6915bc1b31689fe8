// Package legacy reads the OpenMRS-style MySQL database the hospital is
// migrating away from. Everything here is read-only; the structs mirror the
// handful of legacy columns the flows actually consume, with sql.Null types
// wherever the legacy data is allowed to be absent.
package legacy

import (
	"database/sql"
	"time"
)

// Patient is one row of the legacy patient table. Demographics live in the
// auxiliary person/person_name/person_address tables and are resolved
// separately.
type Patient struct {
	PatientID   int64
	Creator     sql.NullInt64
	ChangedBy   sql.NullInt64
	Voided      bool
	VoidReason  sql.NullString
	DateCreated sql.NullTime
	DateChanged sql.NullTime
}

// Person carries the demographic columns of the legacy person table.
type Person struct {
	Gender        sql.NullString
	Birthdate     sql.NullTime
	Dead          bool
	DeathDatetime sql.NullTime
	CauseOfDeath  sql.NullString
}

// PersonName is one row of person_name.
type PersonName struct {
	GivenName  sql.NullString
	MiddleName sql.NullString
	FamilyName sql.NullString
}

// PersonAddress is one row of person_address.
type PersonAddress struct {
	Address1       sql.NullString
	CityVillage    sql.NullString
	CountyDistrict sql.NullString
}

// PatientSearch is one row of the denormalized patient_search table. The
// patient flow only reads the phone number; the patient-search flow copies
// the whole row into the document store.
type PatientSearch struct {
	PatientID    int64
	Identifier   sql.NullString
	FullName     sql.NullString
	GivenName    sql.NullString
	MiddleName   sql.NullString
	FamilyName   sql.NullString
	Gender       sql.NullString
	Birthdate    sql.NullString
	Age          sql.NullInt64
	PersonNameID sql.NullInt64
	PhoneNo      sql.NullString
}

// PatientBundle is the Lookup Resolver's output for one patient: every
// auxiliary record needed to assemble a target row. Missing sub-records are
// zero values, never errors.
type PatientBundle struct {
	Identifier     string
	Person         Person
	Name           PersonName
	Address        *PersonAddress
	Search         *PatientSearch
	Email          string // raw attribute value, validated downstream
	NationalID     string
	WorkPlace      string
	Designation    string
	InFamilyMaster bool // appears in family_member_master_table
	InFamilyDetail bool // appears in family_member_master_table_details
}

// FamilyMaster is one row of family_member_master_table, the head-of-family
// registry keyed by the external patient identifier.
type FamilyMaster struct {
	MasterID   int64
	Identifier string
	GivenName  sql.NullString
	MiddleName sql.NullString
	FamilyName sql.NullString
}

// FamilyDetail is one dependant row of family_member_master_table_details.
type FamilyDetail struct {
	MasterID     int64
	Identifier   string
	RelationType sql.NullString
	GivenName    sql.NullString
	MiddleName   sql.NullString
	FamilyName   sql.NullString
}

// CodedObs is one observation row whose value is a coded concept
// (investigations, diagnoses, referrals).
type CodedObs struct {
	PatientIdentifier string
	Value             sql.NullString
	VisitedDate       sql.NullTime
}

// TextObs is one observation row whose value is free text (chief
// complaints, advice).
type TextObs struct {
	PatientIdentifier string
	Value             sql.NullString
	VisitedDate       sql.NullTime
}

// DrugCategory is one row of inventory_drug_category.
type DrugCategory struct {
	Name        sql.NullString
	Description sql.NullString
}

// FormulationPair is one (formulation type, dosage) row of
// inventory_drug_formulation.
type FormulationPair struct {
	TypeName sql.NullString
	Dosage   sql.NullString
}

// MedicineRow is one joined drug row feeding the medicines flow.
type MedicineRow struct {
	FormulationType sql.NullString
	Dosage          sql.NullString
	BrandName       sql.NullString
	GenericName     sql.NullString
	CategoryName    sql.NullString
}

// StoreStock is one legacy store-level stock row feeding the inventory flow.
type StoreStock struct {
	StoreName    sql.NullString
	ItemName     sql.NullString
	Quantity     sql.NullInt64
	ReorderPoint sql.NullInt64
}

// Department and its children are copied verbatim into the document store.
type Department struct {
	ID        int64
	Name      string
	Retired   bool
	CreatedOn time.Time
	CreatedBy string
}

type DepartmentConcept struct {
	ID           int64
	DepartmentID int64
	ConceptID    int64
	TypeConcept  string
	CreatedOn    time.Time
	CreatedBy    string
}

type DepartmentWard struct {
	DepartmentID int64
	WardID       int64
}
