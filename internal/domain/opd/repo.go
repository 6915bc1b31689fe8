package opd

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the target-side store for OPD prescriptions.
type Repository interface {
	EnsureSchema(ctx context.Context) error
	// ExistsByPatient reports whether the patient already has a migrated
	// prescription row, making reruns skip instead of duplicating.
	ExistsByPatient(ctx context.Context, patientID uuid.UUID) (bool, error)
	Insert(ctx context.Context, p *Prescription) error
}

// PatientDirectory resolves a legacy patient identifier to the migrated
// patient id. It is backed by the registration database, which is a
// different pool than the prescription target.
type PatientDirectory interface {
	PatientIDByIdentifier(ctx context.Context, identifier string) (uuid.UUID, bool, error)
}
