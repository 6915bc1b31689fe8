package patientsearch

import "context"

// Repository is the document-store side of the patient-search flow.
type Repository interface {
	EnsureIndexes(ctx context.Context) error
	Exists(ctx context.Context, patientID int64) (bool, error)
	Insert(ctx context.Context, doc *Document) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]Document, error)
}
