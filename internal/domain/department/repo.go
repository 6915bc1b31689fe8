package department

import "context"

// Repository is the document-store side of the department flow.
type Repository interface {
	// EnsureIndexes puts the unique index on the legacy id in place so a
	// racing duplicate insert fails instead of doubling the document.
	EnsureIndexes(ctx context.Context) error
	Exists(ctx context.Context, legacyID int64) (bool, error)
	Insert(ctx context.Context, doc *Document) error
}
