package department

import "time"

// ConceptLink mirrors one department_concept row inside the document.
type ConceptLink struct {
	ID           int64     `bson:"id" json:"id"`
	DepartmentID int64     `bson:"department_id" json:"department_id"`
	ConceptID    int64     `bson:"concept_id" json:"concept_id"`
	TypeConcept  string    `bson:"type_concept" json:"type_concept"`
	CreatedOn    time.Time `bson:"created_on" json:"created_on"`
	CreatedBy    string    `bson:"created_by" json:"created_by"`
}

// WardLink mirrors one department_ward row inside the document.
type WardLink struct {
	DepartmentID int64 `bson:"department_id" json:"department_id"`
	WardID       int64 `bson:"ward_id" json:"ward_id"`
}

// Document is one department with its concept and ward links embedded,
// stored whole in the departments collection. Retired stays numeric the
// way the legacy tinyint column had it.
type Document struct {
	LegacyID  int64         `bson:"id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Retired   int           `bson:"retired" json:"retired"`
	CreatedOn time.Time     `bson:"created_on" json:"created_on"`
	CreatedBy string        `bson:"created_by" json:"created_by"`
	Concepts  []ConceptLink `bson:"department_concept" json:"department_concept"`
	Wards     []WardLink    `bson:"department_ward" json:"department_ward"`
}
