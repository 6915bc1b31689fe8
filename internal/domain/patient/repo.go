package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the target-side store for the patient flows.
type Repository interface {
	// EnsureSchema creates the registration schema and patient table if
	// absent. Idempotent; called at the start of every run.
	EnsureSchema(ctx context.Context) error

	// ExistsByIdentifier reports whether a row with the natural key is
	// already present.
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)

	Insert(ctx context.Context, p *Patient) error

	// ListRefs returns the slim projection of every target row the
	// relationship pass joins against.
	ListRefs(ctx context.Context) ([]Ref, error)

	// UpdateRelationships replaces one patient's relationship document and
	// dependant flag, touching updated_at.
	UpdateRelationships(ctx context.Context, patientID uuid.UUID, entries []RelationshipEntry, isDependant bool) error
}
