package patient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
	"github.com/hms/migrator/internal/platform/db"
)

// source is the slice of the legacy reader the patient flows consume.
type source interface {
	FetchPatients(ctx context.Context, limit, offset int) ([]legacy.Patient, error)
	Identifier(ctx context.Context, patientID int64) (string, error)
	ResolvePatient(ctx context.Context, patientID int64, identifier string) (*legacy.PatientBundle, error)
	FamilyMasters(ctx context.Context) ([]legacy.FamilyMaster, error)
	FamilyDetails(ctx context.Context) ([]legacy.FamilyDetail, error)
}

// Migrator runs the patient flow and the relationship second pass.
type Migrator struct {
	src      source
	repo     Repository
	runTx    func(ctx context.Context, fn func(ctx context.Context) error) error
	pageSize int
	orgID    uuid.UUID
	hospital uuid.UUID
	log      zerolog.Logger
}

func NewMigrator(src *legacy.Reader, repo Repository, pool *pgxpool.Pool, cfg *config.Config, log zerolog.Logger) *Migrator {
	return &Migrator{
		src:  src,
		repo: repo,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		pageSize: cfg.PageSize,
		orgID:    uuid.MustParse(cfg.OrganizationID),
		hospital: uuid.MustParse(cfg.HospitalID),
		log:      log.With().Str("flow", "patients").Logger(),
	}
}

// MigratePatients copies every legacy patient into registration.patient.
// Records without an identifier and records whose identifier already exists
// in the target are skipped; each page commits atomically.
func (m *Migrator) MigratePatients(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err := migrate.ForEachPage(ctx, m.pageSize, m.src.FetchPatients,
		func(ctx context.Context, page []legacy.Patient) error {
			return m.runTx(ctx, func(ctx context.Context) error {
				for _, row := range page {
					if err := m.migrateOne(ctx, row, summary); err != nil {
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
			Msg("patient migration aborted")
		return nil, err
	}

	m.log.Info().
		Int("migrated", summary.TotalMigrated).
		Int("skipped", summary.SkippedCount).
		Msg("patient migration finished")
	return summary, nil
}

func (m *Migrator) migrateOne(ctx context.Context, row legacy.Patient, summary *migrate.Summary) error {
	key := strconv.FormatInt(row.PatientID, 10)

	identifier, err := m.src.Identifier(ctx, row.PatientID)
	if err != nil {
		return err
	}
	if identifier == "" {
		summary.Skip(key, migrate.ReasonMissingFields)
		return nil
	}
	identifier = SanitizeIdentifier(identifier)

	exists, err := m.repo.ExistsByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if exists {
		m.log.Warn().Str("identifier", identifier).Msg("patient already migrated, skipping")
		summary.SkipRecord(migrate.Skip{
			Key:    key,
			Reason: migrate.ReasonDuplicate,
			Fields: map[string]string{"identifier": identifier},
		})
		return nil
	}

	bundle, err := m.src.ResolvePatient(ctx, row.PatientID, identifier)
	if err != nil {
		return err
	}

	if err := m.repo.Insert(ctx, m.buildPatient(row, identifier, bundle)); err != nil {
		return err
	}
	summary.Migrated()
	return nil
}

// buildPatient assembles one target row from the raw legacy row and its
// resolved bundle. Pure; every lookup miss degrades to an empty field.
func (m *Migrator) buildPatient(row legacy.Patient, identifier string, b *legacy.PatientBundle) *Patient {
	p := &Patient{
		PatientID:         uuid.New(),
		PatientIdentifier: identifier,
		OrganizationID:    m.orgID,
		HospitalID:        m.hospital,

		Name:       FullName(b.Name.GivenName.String, b.Name.MiddleName.String, b.Name.FamilyName.String),
		FirstName:  b.Name.GivenName.String,
		MiddleName: b.Name.MiddleName.String,
		LastName:   b.Name.FamilyName.String,
		NID:        ValidNationalID(b.NationalID),
		DOB:        CoerceDate(b.Person.Birthdate),
		Gender:     MapGender(b.Person.Gender.String),

		Status:         StatusActive,
		ReasonToDelete: row.VoidReason.String,
		IsDead:         b.Person.Dead,
		DeathDate:      CoerceDate(b.Person.DeathDatetime),
		DeathReason:    b.Person.CauseOfDeath.String,

		Relationship: []RelationshipEntry{},
		PatientType:  classify(b),

		CreatedAt: CoerceDate(row.DateCreated),
		UpdatedAt: CoerceDate(row.DateChanged),
	}

	if row.Voided {
		p.Status = StatusVoided
	}

	// The legacy audit user ids have no counterpart in the target user
	// store; presence maps to a fresh opaque id, absence to NULL.
	if row.Creator.Valid {
		id := uuid.New()
		p.CreatedBy = &id
	}
	if row.ChangedBy.Valid {
		id := uuid.New()
		p.UpdatedBy = &id
	}

	if b.Address != nil {
		p.Address = &Address{
			District:    b.Address.CountyDistrict.String,
			Upazila:     b.Address.CityVillage.String,
			AddressLine: b.Address.Address1.String,
		}
	}

	email := ValidEmail(b.Email)
	if b.Search != nil || email != "" {
		contact := &ContactInfo{Email: email}
		if b.Search != nil {
			contact.Phone = b.Search.PhoneNo.String
		}
		p.ContactInfo = contact
	}

	if b.WorkPlace != "" || b.Designation != "" {
		p.Workplaces = []Workplace{{WorkPlace: b.WorkPlace, Designation: b.Designation}}
	}

	return p
}

func classify(b *legacy.PatientBundle) Type {
	switch {
	case b.InFamilyDetail:
		return TypeDependent
	case b.InFamilyMaster:
		return TypeGovernment
	default:
		return TypeNonGovernment
	}
}

// MigrateRelationships is the second pass: it joins every migrated patient
// against the legacy family tables in memory and rewrites the relationship
// documents. Heads of family list their dependants; dependants list their
// head. The whole pass commits as one transaction.
func (m *Migrator) MigrateRelationships(ctx context.Context) (*migrate.Summary, error) {
	log := m.log.With().Str("flow", "relationships").Logger()

	masters, err := m.src.FamilyMasters(ctx)
	if err != nil {
		return nil, err
	}
	details, err := m.src.FamilyDetails(ctx)
	if err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err = m.runTx(ctx, func(ctx context.Context) error {
		refs, err := m.repo.ListRefs(ctx)
		if err != nil {
			return err
		}

		// Build phase: index everything once so the probe over patients
		// stays O(N+M) instead of re-scanning per patient.
		byIdentifier := make(map[string]Ref, len(refs))
		for _, ref := range refs {
			byIdentifier[ref.PatientIdentifier] = ref
		}
		masterByIdentifier := make(map[string]legacy.FamilyMaster, len(masters))
		masterByID := make(map[int64]legacy.FamilyMaster, len(masters))
		for _, fm := range masters {
			masterByIdentifier[fm.Identifier] = fm
			masterByID[fm.MasterID] = fm
		}
		detailByIdentifier := make(map[string]legacy.FamilyDetail, len(details))
		detailsByMaster := make(map[int64][]legacy.FamilyDetail)
		for _, fd := range details {
			detailByIdentifier[fd.Identifier] = fd
			detailsByMaster[fd.MasterID] = append(detailsByMaster[fd.MasterID], fd)
		}

		for _, ref := range refs {
			entries, isDependant := resolveRelationships(ref, byIdentifier,
				masterByIdentifier, masterByID, detailByIdentifier, detailsByMaster)
			if len(entries) == 0 {
				continue
			}
			if err := m.repo.UpdateRelationships(ctx, ref.PatientID, entries, isDependant); err != nil {
				return err
			}
			summary.Migrated()
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("updated", summary.TotalMigrated).Msg("relationship pass aborted")
		return nil, fmt.Errorf("relationship pass: %w", err)
	}

	log.Info().Int("updated", summary.TotalMigrated).Msg("relationship pass finished")
	return summary, nil
}

func resolveRelationships(
	ref Ref,
	byIdentifier map[string]Ref,
	masterByIdentifier map[string]legacy.FamilyMaster,
	masterByID map[int64]legacy.FamilyMaster,
	detailByIdentifier map[string]legacy.FamilyDetail,
	detailsByMaster map[int64][]legacy.FamilyDetail,
) ([]RelationshipEntry, bool) {
	switch ref.PatientType {
	case TypeGovernment:
		master, ok := masterByIdentifier[ref.PatientIdentifier]
		if !ok {
			return nil, false
		}
		var entries []RelationshipEntry
		for _, dep := range detailsByMaster[master.MasterID] {
			depRef, ok := byIdentifier[dep.Identifier]
			if !ok {
				continue
			}
			entries = append(entries, RelationshipEntry{
				RelationType:      NormalizeRelation(dep.RelationType.String, depRef.Gender, ref.Gender),
				PatientID:         depRef.PatientID.String(),
				PatientIdentifier: dep.Identifier,
				PatientName:       FullName(dep.GivenName.String, dep.MiddleName.String, dep.FamilyName.String),
			})
		}
		return entries, false

	case TypeDependent:
		detail, ok := detailByIdentifier[ref.PatientIdentifier]
		if !ok {
			return nil, false
		}
		master, ok := masterByID[detail.MasterID]
		if !ok {
			return nil, false
		}
		masterRef, ok := byIdentifier[master.Identifier]
		if !ok {
			return nil, false
		}
		return []RelationshipEntry{{
			RelationType:      NormalizeRelation(detail.RelationType.String, ref.Gender, masterRef.Gender),
			PatientID:         masterRef.PatientID.String(),
			PatientIdentifier: master.Identifier,
			PatientName:       FullName(master.GivenName.String, master.MiddleName.String, master.FamilyName.String),
		}}, true
	}
	return nil, false
}
