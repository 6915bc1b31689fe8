package patientsearch

// Document is one denormalized patient_search row stored in the patients
// collection. Field names follow the legacy columns so the search frontend
// keeps working against the migrated store.
type Document struct {
	PatientID    int64  `bson:"patient_id" json:"patient_id"`
	Identifier   string `bson:"identifier" json:"identifier"`
	FullName     string `bson:"fullname" json:"fullname"`
	GivenName    string `bson:"given_name" json:"given_name"`
	MiddleName   string `bson:"middle_name" json:"middle_name"`
	FamilyName   string `bson:"family_name" json:"family_name"`
	Gender       string `bson:"gender" json:"gender"`
	Birthdate    string `bson:"birthdate" json:"birthdate"`
	Age          int64  `bson:"age" json:"age"`
	PersonNameID int64  `bson:"person_name_id" json:"person_name_id"`
	PhoneNo      string `bson:"phone_no" json:"phone_no"`
}
