package opd

import (
	"context"
	"errors"
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

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) Repository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const createPrescriptionTable = `
CREATE TABLE IF NOT EXISTS opd.opd_prescriptions (
	id BIGSERIAL PRIMARY KEY,
	hospital_id UUID NOT NULL,
	doctor_id UUID NOT NULL,
	patient_id UUID NOT NULL,
	speciality_id UUID NOT NULL,
	consultation_id UUID NOT NULL,
	is_final BOOLEAN NOT NULL,
	prescription_data TEXT,
	uuid UUID DEFAULT gen_random_uuid() UNIQUE NOT NULL,
	status VARCHAR(50) DEFAULT 'ACTIVE',
	created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP WITH TIME ZONE,
	created_by VARCHAR(255),
	updated_by VARCHAR(255),
	reason_to_update TEXT,
	reason_to_delete TEXT
)`

func (r *prescriptionRepoPG) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE SCHEMA IF NOT EXISTS opd`,
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		createPrescriptionTable,
	} {
		if _, err := r.conn(ctx).Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure opd.opd_prescriptions: %w", err)
		}
	}
	return nil
}

func (r *prescriptionRepoPG) ExistsByPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM opd.opd_prescriptions WHERE patient_id = $1)`,
		patientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check prescription for %s: %w", patientID, err)
	}
	return exists, nil
}

func (r *prescriptionRepoPG) Insert(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO opd.opd_prescriptions (
			hospital_id, doctor_id, patient_id, speciality_id, consultation_id,
			is_final, prescription_data, uuid, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.HospitalID, p.DoctorID, p.PatientID, p.SpecialityID, p.ConsultationID,
		p.IsFinal, p.Data, p.UUID, p.Status, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prescription for %s: %w", p.PatientID, err)
	}
	return nil
}

// patientDirectoryPG looks migrated patients up by identifier against the
// registration pool. Lookups run outside any prescription transaction.
type patientDirectoryPG struct{ pool *pgxpool.Pool }

func NewPatientDirectoryPG(pool *pgxpool.Pool) PatientDirectory {
	return &patientDirectoryPG{pool: pool}
}

func (d *patientDirectoryPG) PatientIDByIdentifier(ctx context.Context, identifier string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := d.pool.QueryRow(ctx, `
		SELECT patient_id FROM registration.patient WHERE patient_identifier = $1`,
		identifier).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("resolve patient %s: %w", identifier, err)
	}
	return id, true, nil
}
