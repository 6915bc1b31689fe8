package opd

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
	"github.com/hms/migrator/internal/platform/db"
)

// source is the slice of the legacy reader the OPD flow consumes.
type source interface {
	ObsPatientIdentifiers(ctx context.Context, limit, offset int) ([]string, error)
	Investigations(ctx context.Context) ([]legacy.CodedObs, error)
	Diagnoses(ctx context.Context) ([]legacy.CodedObs, error)
	Referrals(ctx context.Context) ([]legacy.CodedObs, error)
	ChiefComplaints(ctx context.Context) ([]legacy.TextObs, error)
	Advice(ctx context.Context) ([]legacy.TextObs, error)
}

// obsIndex holds the five observation categories indexed by patient
// identifier. Built once per run; the probe over identifiers then never
// touches the legacy database again.
type obsIndex struct {
	investigations  map[string][]legacy.CodedObs
	diagnoses       map[string][]legacy.CodedObs
	referrals       map[string][]legacy.CodedObs
	chiefComplaints map[string][]legacy.TextObs
	advice          map[string][]legacy.TextObs
}

func (ix *obsIndex) empty(identifier string) bool {
	return len(ix.investigations[identifier]) == 0 &&
		len(ix.chiefComplaints[identifier]) == 0 &&
		len(ix.diagnoses[identifier]) == 0 &&
		len(ix.advice[identifier]) == 0 &&
		len(ix.referrals[identifier]) == 0
}

// Migrator aggregates legacy observations into one prescription row per
// patient.
type Migrator struct {
	src      source
	repo     Repository
	patients PatientDirectory
	runTx    func(ctx context.Context, fn func(ctx context.Context) error) error
	pageSize int
	hospital uuid.UUID
	log      zerolog.Logger
}

func NewMigrator(src *legacy.Reader, repo Repository, patients PatientDirectory, pool *pgxpool.Pool, cfg *config.Config, log zerolog.Logger) *Migrator {
	return &Migrator{
		src:      src,
		repo:     repo,
		patients: patients,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		pageSize: cfg.PageSize,
		hospital: uuid.MustParse(cfg.HospitalID),
		log:      log.With().Str("flow", "opd-prescriptions").Logger(),
	}
}

// MigratePrescriptions writes one opd.opd_prescriptions row per legacy
// patient that has observations. Patients missing from registration and
// patients with no observation in any category are skipped; each page of
// identifiers commits atomically.
func (m *Migrator) MigratePrescriptions(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	index, err := m.buildIndex(ctx)
	if err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err = migrate.ForEachPage(ctx, m.pageSize, m.src.ObsPatientIdentifiers,
		func(ctx context.Context, page []string) error {
			return m.runTx(ctx, func(ctx context.Context) error {
				for _, identifier := range page {
					if err := m.migrateOne(ctx, identifier, index, summary); err != nil {
						return err
					}
				}
				return nil
			})
		})
	if err != nil {
		m.log.Error().Err(err).
			Int("migrated", summary.TotalMigrated).
			Int("skipped", summary.SkippedCount).
			Msg("opd migration aborted")
		return nil, err
	}

	m.log.Info().
		Int("migrated", summary.TotalMigrated).
		Int("skipped", summary.SkippedCount).
		Msg("opd migration finished")
	return summary, nil
}

func (m *Migrator) buildIndex(ctx context.Context) (*obsIndex, error) {
	investigations, err := m.src.Investigations(ctx)
	if err != nil {
		return nil, err
	}
	diagnoses, err := m.src.Diagnoses(ctx)
	if err != nil {
		return nil, err
	}
	referrals, err := m.src.Referrals(ctx)
	if err != nil {
		return nil, err
	}
	complaints, err := m.src.ChiefComplaints(ctx)
	if err != nil {
		return nil, err
	}
	advice, err := m.src.Advice(ctx)
	if err != nil {
		return nil, err
	}

	index := &obsIndex{
		investigations:  make(map[string][]legacy.CodedObs),
		diagnoses:       make(map[string][]legacy.CodedObs),
		referrals:       make(map[string][]legacy.CodedObs),
		chiefComplaints: make(map[string][]legacy.TextObs),
		advice:          make(map[string][]legacy.TextObs),
	}
	for _, o := range investigations {
		index.investigations[o.PatientIdentifier] = append(index.investigations[o.PatientIdentifier], o)
	}
	for _, o := range diagnoses {
		index.diagnoses[o.PatientIdentifier] = append(index.diagnoses[o.PatientIdentifier], o)
	}
	for _, o := range referrals {
		index.referrals[o.PatientIdentifier] = append(index.referrals[o.PatientIdentifier], o)
	}
	for _, o := range complaints {
		index.chiefComplaints[o.PatientIdentifier] = append(index.chiefComplaints[o.PatientIdentifier], o)
	}
	for _, o := range advice {
		index.advice[o.PatientIdentifier] = append(index.advice[o.PatientIdentifier], o)
	}
	return index, nil
}

func (m *Migrator) migrateOne(ctx context.Context, identifier string, index *obsIndex, summary *migrate.Summary) error {
	patientID, found, err := m.patients.PatientIDByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if !found {
		m.log.Warn().Str("identifier", identifier).Msg("patient not migrated, skipping prescription")
		summary.Skip(identifier, ReasonPatientNotMigrated)
		return nil
	}

	if index.empty(identifier) {
		summary.Skip(identifier, ReasonNoObservations)
		return nil
	}

	exists, err := m.repo.ExistsByPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if exists {
		summary.SkipRecord(migrate.Skip{
			Key:    identifier,
			Reason: migrate.ReasonDuplicate,
			Fields: map[string]string{"patientId": patientID.String()},
		})
		return nil
	}

	data := buildPrescriptionData(identifier, index)
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	// The legacy source has no doctor or consultation records; both ids
	// are fresh opaque placeholders, like the speciality id inside the
	// payload.
	p := &Prescription{
		HospitalID:     m.hospital,
		DoctorID:       uuid.New(),
		PatientID:      patientID,
		SpecialityID:   uuid.MustParse(data.SpecialityID),
		ConsultationID: uuid.New(),
		IsFinal:        true,
		Data:           string(payload),
		UUID:           uuid.New(),
		Status:         "ACTIVE",
		CreatedAt:      time.Now(),
	}
	if err := m.repo.Insert(ctx, p); err != nil {
		return err
	}
	summary.Migrated()
	return nil
}

// buildPrescriptionData assembles the consultation document for one
// patient. Pure; investigations split into radiology and plain lists,
// everything the observation store never recorded degrades to an empty
// placeholder.
func buildPrescriptionData(identifier string, index *obsIndex) *PrescriptionData {
	data := &PrescriptionData{
		Investigations:  []ObservationEntry{},
		ChiefComplaints: []ComplaintEntry{},
		Diagnoses:       []DiagnosisEntry{},
		Advice:          []ObservationEntry{},
		Radiology:       []ObservationEntry{},
		FollowUp:        FollowUp{Type: "duration"},
		SpecialityID:    uuid.NewString(),
	}

	for _, o := range index.investigations[identifier] {
		entry := ObservationEntry{
			ID:          uuid.NewString(),
			Entity:      "investigation",
			Entry:       o.Value.String,
			Score:       1,
			VisitedDate: formatVisited(o.VisitedDate),
		}
		if IsRadiology(o.Value.String) {
			data.Radiology = append(data.Radiology, entry)
		} else {
			data.Investigations = append(data.Investigations, entry)
		}
	}

	for _, o := range index.chiefComplaints[identifier] {
		data.ChiefComplaints = append(data.ChiefComplaints, ComplaintEntry{
			ID:          uuid.NewString(),
			Entity:      "chief complaint",
			Entry:       o.Value.String,
			Score:       1,
			VisitedDate: formatVisited(o.VisitedDate),
		})
	}

	for _, o := range index.diagnoses[identifier] {
		data.Diagnoses = append(data.Diagnoses, DiagnosisEntry{
			Title:       o.Value.String,
			Order:       "Primary",
			Certainty:   "Confirmed",
			VisitedDate: formatVisited(o.VisitedDate),
		})
	}

	for _, o := range index.advice[identifier] {
		data.Advice = append(data.Advice, ObservationEntry{
			ID:          uuid.NewString(),
			Entity:      "advice",
			Entry:       o.Value.String,
			Score:       1,
			VisitedDate: formatVisited(o.VisitedDate),
		})
	}

	if referrals := index.referrals[identifier]; len(referrals) > 0 {
		room := referrals[0].Value.String
		data.ReferredTo.SelectedRoom = &room
	}

	return data
}

func formatVisited(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}
