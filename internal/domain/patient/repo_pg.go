package patient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/migrator/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const createPatientTable = `
CREATE TABLE IF NOT EXISTS registration.patient (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	patient_id UUID NOT NULL UNIQUE DEFAULT gen_random_uuid(),
	patient_identifier VARCHAR(255) NOT NULL UNIQUE,
	organization_id UUID,
	hospital_id UUID,
	name VARCHAR(255),
	first_name VARCHAR(255),
	middle_name VARCHAR(255),
	last_name VARCHAR(255),
	nid VARCHAR(255),
	dob TIMESTAMP,
	gender VARCHAR(50),
	status VARCHAR(50),
	reason_to_delete TEXT,
	is_dead BOOLEAN NOT NULL DEFAULT FALSE,
	death_date TIMESTAMP,
	death_reason VARCHAR(255),
	patient_info JSONB NOT NULL DEFAULT '{}',
	address JSONB,
	contact_info JSONB,
	workplaces JSONB NOT NULL DEFAULT '[]',
	relationship JSONB NOT NULL DEFAULT '[]',
	is_dependant BOOLEAN NOT NULL DEFAULT FALSE,
	patient_type VARCHAR(50),
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE,
	created_by UUID,
	updated_by UUID
)`

func (r *patientRepoPG) EnsureSchema(ctx context.Context) error {
	// One statement per Exec; pgx rejects multi-statement strings over the
	// extended protocol.
	for _, stmt := range []string{
		`CREATE SCHEMA IF NOT EXISTS registration`,
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		createPatientTable,
	} {
		if _, err := r.conn(ctx).Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure registration.patient: %w", err)
		}
	}
	return nil
}

func (r *patientRepoPG) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM registration.patient WHERE patient_identifier = $1)`,
		identifier).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check patient %s: %w", identifier, err)
	}
	return exists, nil
}

func (r *patientRepoPG) Insert(ctx context.Context, p *Patient) error {
	info, err := json.Marshal(p.PatientInfo)
	if err != nil {
		return fmt.Errorf("marshal patient_info: %w", err)
	}

	// Address and contact documents stay NULL when the legacy source had
	// nothing to say; the inner fields are empty strings, never null.
	var address, contact []byte
	if p.Address != nil {
		if address, err = json.Marshal(p.Address); err != nil {
			return fmt.Errorf("marshal address: %w", err)
		}
	}
	if p.ContactInfo != nil {
		if contact, err = json.Marshal(p.ContactInfo); err != nil {
			return fmt.Errorf("marshal contact_info: %w", err)
		}
	}

	workplaces := p.Workplaces
	if workplaces == nil {
		workplaces = []Workplace{}
	}
	wp, err := json.Marshal(workplaces)
	if err != nil {
		return fmt.Errorf("marshal workplaces: %w", err)
	}

	relationship := p.Relationship
	if relationship == nil {
		relationship = []RelationshipEntry{}
	}
	rel, err := json.Marshal(relationship)
	if err != nil {
		return fmt.Errorf("marshal relationship: %w", err)
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO registration.patient (
			patient_id, patient_identifier, organization_id, hospital_id,
			name, first_name, middle_name, last_name, nid, dob, gender,
			status, reason_to_delete, is_dead, death_date, death_reason,
			patient_info, address, contact_info, workplaces, relationship,
			is_dependant, patient_type, created_at, updated_at, created_by, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)`,
		p.PatientID, p.PatientIdentifier, p.OrganizationID, p.HospitalID,
		p.Name, p.FirstName, p.MiddleName, p.LastName, p.NID, p.DOB, p.Gender,
		p.Status, p.ReasonToDelete, p.IsDead, p.DeathDate, p.DeathReason,
		info, address, contact, wp, rel,
		p.IsDependant, p.PatientType, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert patient %s: %w", p.PatientIdentifier, err)
	}
	return nil
}

func (r *patientRepoPG) ListRefs(ctx context.Context) ([]Ref, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT patient_id, patient_identifier, gender, patient_type
		FROM registration.patient
		ORDER BY patient_identifier`)
	if err != nil {
		return nil, fmt.Errorf("list patient refs: %w", err)
	}
	defer rows.Close()

	var refs []Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.PatientID, &ref.PatientIdentifier, &ref.Gender, &ref.PatientType); err != nil {
			return nil, fmt.Errorf("scan patient ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *patientRepoPG) UpdateRelationships(ctx context.Context, patientID uuid.UUID, entries []RelationshipEntry, isDependant bool) error {
	if entries == nil {
		entries = []RelationshipEntry{}
	}
	rel, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal relationship: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE registration.patient
		SET relationship = $1, is_dependant = $2, updated_at = NOW()
		WHERE patient_id = $3`,
		rel, isDependant, patientID)
	if err != nil {
		return fmt.Errorf("update relationships for %s: %w", patientID, err)
	}
	return nil
}
