// Package patient migrates legacy patient rows into the normalized
// registration schema and resolves family relationships in a second pass.
package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusVoided Status = "VOIDED"
)

// Type classifies a patient by presence in the legacy family-membership
// tables. Dependants take precedence over heads of family.
type Type string

const (
	TypeGovernment    Type = "GOVERNMENT"
	TypeDependent     Type = "DEPENDENT"
	TypeNonGovernment Type = "NON_GOVERNMENT"
)

// RelationType is the canonical relationship enum written into the
// relationship document.
type RelationType string

const (
	RelationFather        RelationType = "FATHER"
	RelationMother        RelationType = "MOTHER"
	RelationSon           RelationType = "SON"
	RelationDaughter      RelationType = "DAUGHTER"
	RelationBrother       RelationType = "BROTHER"
	RelationSister        RelationType = "SISTER"
	RelationSpouse        RelationType = "SPOUSE"
	RelationSonInLaw      RelationType = "SON_IN_LAW"
	RelationDaughterInLaw RelationType = "DAUGHTER_IN_LAW"
	RelationUncle         RelationType = "UNCLE"
	RelationAunt          RelationType = "AUNT"
	RelationNephew        RelationType = "NEPHEW"
	RelationNiece         RelationType = "NIECE"
	RelationGrandfather   RelationType = "GRANDFATHER"
	RelationGrandmother   RelationType = "GRANDMOTHER"
	RelationGrandson      RelationType = "GRANDSON"
	RelationGranddaughter RelationType = "GRANDDAUGHTER"
	RelationFatherInLaw   RelationType = "FATHER_IN_LAW"
	RelationMotherInLaw   RelationType = "MOTHER_IN_LAW"
	RelationOther         RelationType = "OTHER"
)

// RelationshipEntry is one element of a patient's relationship document.
type RelationshipEntry struct {
	RelationType      RelationType `json:"relationType"`
	PatientID         string       `json:"patientId"`
	PatientIdentifier string       `json:"patientIdentifier"`
	PatientName       string       `json:"patientName"`
}

// Info is the patient_info document. Every field is an empty string at
// migration time; the consuming system fills them in later. Fields are
// never null so consumers can index unconditionally.
type Info struct {
	BloodGroup        string `json:"bloodGroup"`
	MaritalStatus     string `json:"maritalStatus"`
	Religion          string `json:"religion"`
	FatherNameEnglish string `json:"fatherNameEnglish"`
	MotherNameEnglish string `json:"motherNameEnglish"`
	SpouseName        string `json:"spouseName"`
	RelativeName      string `json:"relativeName"`
}

// Address is the address document, built from the legacy person_address
// row. Absent fields are empty strings.
type Address struct {
	Address     string `json:"address"`
	Division    string `json:"division"`
	District    string `json:"district"`
	Upazila     string `json:"upazila"`
	AddressLine string `json:"addressLine"`
}

// ContactInfo is the contact_info document.
type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Workplace is one element of the workplaces document, sourced from the
// legacy person attributes.
type Workplace struct {
	WorkPlace   string `json:"workPlace"`
	Designation string `json:"designation"`
}

// Patient is one target row in registration.patient. The natural key is
// PatientIdentifier; PatientID is a freshly generated opaque identifier.
type Patient struct {
	ID                uuid.UUID
	PatientID         uuid.UUID
	PatientIdentifier string
	OrganizationID    uuid.UUID
	HospitalID        uuid.UUID

	Name       string
	FirstName  string
	MiddleName string
	LastName   string
	NID        string
	DOB        *time.Time
	Gender     Gender

	Status         Status
	ReasonToDelete string
	IsDead         bool
	DeathDate      *time.Time
	DeathReason    string

	PatientInfo  Info
	Address      *Address
	ContactInfo  *ContactInfo
	Workplaces   []Workplace
	Relationship []RelationshipEntry
	IsDependant  bool
	PatientType  Type

	CreatedAt *time.Time
	UpdatedAt *time.Time
	CreatedBy *uuid.UUID
	UpdatedBy *uuid.UUID
}

// Ref is the slice of a target row the relationship pass needs.
type Ref struct {
	PatientID         uuid.UUID
	PatientIdentifier string
	Gender            Gender
	PatientType       Type
}
