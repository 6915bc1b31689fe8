package patient

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
)

type mockSource struct {
	patients   []legacy.Patient
	ids        map[int64]string
	bundles    map[int64]*legacy.PatientBundle
	masters    []legacy.FamilyMaster
	details    []legacy.FamilyDetail
	fetchCalls int
}

func (m *mockSource) FetchPatients(_ context.Context, limit, offset int) ([]legacy.Patient, error) {
	m.fetchCalls++
	if offset >= len(m.patients) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.patients) {
		end = len(m.patients)
	}
	return m.patients[offset:end], nil
}

func (m *mockSource) Identifier(_ context.Context, patientID int64) (string, error) {
	return m.ids[patientID], nil
}

func (m *mockSource) ResolvePatient(_ context.Context, patientID int64, identifier string) (*legacy.PatientBundle, error) {
	if b, ok := m.bundles[patientID]; ok {
		return b, nil
	}
	return &legacy.PatientBundle{Identifier: identifier}, nil
}

func (m *mockSource) FamilyMasters(_ context.Context) ([]legacy.FamilyMaster, error) {
	return m.masters, nil
}

func (m *mockSource) FamilyDetails(_ context.Context) ([]legacy.FamilyDetail, error) {
	return m.details, nil
}

type relUpdate struct {
	entries     []RelationshipEntry
	isDependant bool
}

type mockRepo struct {
	byIdentifier map[string]*Patient
	refs         []Ref
	updates      map[uuid.UUID]relUpdate
	insertErr    error
	ensured      int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byIdentifier: map[string]*Patient{},
		updates:      map[uuid.UUID]relUpdate{},
	}
}

func (m *mockRepo) EnsureSchema(context.Context) error {
	m.ensured++
	return nil
}

func (m *mockRepo) ExistsByIdentifier(_ context.Context, identifier string) (bool, error) {
	_, ok := m.byIdentifier[identifier]
	return ok, nil
}

func (m *mockRepo) Insert(_ context.Context, p *Patient) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.byIdentifier[p.PatientIdentifier] = p
	return nil
}

func (m *mockRepo) ListRefs(context.Context) ([]Ref, error) {
	return m.refs, nil
}

func (m *mockRepo) UpdateRelationships(_ context.Context, patientID uuid.UUID, entries []RelationshipEntry, isDependant bool) error {
	m.updates[patientID] = relUpdate{entries: entries, isDependant: isDependant}
	return nil
}

func newTestMigrator(src *mockSource, repo *mockRepo) *Migrator {
	return &Migrator{
		src:  src,
		repo: repo,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
		pageSize: 1000,
		orgID:    uuid.New(),
		hospital: uuid.New(),
		log:      zerolog.Nop(),
	}
}

func nstr(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func TestMigratePatients_BasicScenario(t *testing.T) {
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &mockSource{
		patients: []legacy.Patient{{PatientID: 100}},
		ids:      map[int64]string{100: "H001"},
		bundles: map[int64]*legacy.PatientBundle{
			100: {
				Identifier: "H001",
				Person: legacy.Person{
					Gender:    nstr("M"),
					Birthdate: sql.NullTime{Time: dob, Valid: true},
				},
				Name: legacy.PersonName{GivenName: nstr("Jon"), FamilyName: nstr("Doe")},
			},
		},
	}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	summary, err := m.MigratePatients(context.Background())
	if err != nil {
		t.Fatalf("MigratePatients: %v", err)
	}
	if summary.TotalMigrated != 1 || summary.SkippedCount != 0 {
		t.Fatalf("summary = %d migrated, %d skipped; want 1, 0",
			summary.TotalMigrated, summary.SkippedCount)
	}

	p := repo.byIdentifier["H001"]
	if p == nil {
		t.Fatal("patient H001 not inserted")
	}
	if p.Gender != GenderMale {
		t.Errorf("gender = %s, want MALE", p.Gender)
	}
	if p.Name != "Jon Doe" {
		t.Errorf("name = %q, want %q", p.Name, "Jon Doe")
	}
	if p.Status != StatusActive {
		t.Errorf("status = %s, want ACTIVE", p.Status)
	}
	if p.DOB == nil || !p.DOB.Equal(dob) {
		t.Errorf("dob = %v, want %v", p.DOB, dob)
	}
	if p.PatientType != TypeNonGovernment {
		t.Errorf("patient type = %s, want NON_GOVERNMENT", p.PatientType)
	}
	if len(p.Relationship) != 0 {
		t.Errorf("relationship = %v, want empty", p.Relationship)
	}
}

func TestMigratePatients_SecondRunSkipsEverything(t *testing.T) {
	src := &mockSource{
		patients: []legacy.Patient{{PatientID: 100}},
		ids:      map[int64]string{100: "H001"},
	}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	first, err := m.MigratePatients(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := m.MigratePatients(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.TotalMigrated != 0 {
		t.Errorf("second run migrated %d, want 0", second.TotalMigrated)
	}
	if second.SkippedCount != first.TotalMigrated {
		t.Errorf("second run skipped %d, want %d", second.SkippedCount, first.TotalMigrated)
	}
	if second.SkippedItems[0].Reason != migrate.ReasonDuplicate {
		t.Errorf("skip reason = %q, want %q", second.SkippedItems[0].Reason, migrate.ReasonDuplicate)
	}
}

func TestMigratePatients_MissingIdentifierSkipped(t *testing.T) {
	src := &mockSource{
		patients: []legacy.Patient{{PatientID: 100}, {PatientID: 101}},
		ids:      map[int64]string{101: "H002"},
	}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	summary, err := m.MigratePatients(context.Background())
	if err != nil {
		t.Fatalf("MigratePatients: %v", err)
	}
	if summary.TotalMigrated != 1 {
		t.Errorf("migrated = %d, want 1", summary.TotalMigrated)
	}
	if summary.SkippedCount != 1 {
		t.Fatalf("skipped = %d, want 1", summary.SkippedCount)
	}
	if summary.SkippedItems[0].Key != "100" {
		t.Errorf("skip key = %q, want %q", summary.SkippedItems[0].Key, "100")
	}
	if summary.SkippedItems[0].Reason != migrate.ReasonMissingFields {
		t.Errorf("skip reason = %q, want %q", summary.SkippedItems[0].Reason, migrate.ReasonMissingFields)
	}
}

func TestMigratePatients_SanitizesWideNumericIdentifier(t *testing.T) {
	src := &mockSource{
		patients: []legacy.Patient{{PatientID: 100}},
		ids:      map[int64]string{100: "12345678901234567890"},
	}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	if _, err := m.MigratePatients(context.Background()); err != nil {
		t.Fatalf("MigratePatients: %v", err)
	}
	if _, ok := repo.byIdentifier["SANITIZED_12345678901234567890"]; !ok {
		t.Error("sanitized identifier not used as natural key")
	}
}

func TestMigratePatients_InsertErrorAbortsRun(t *testing.T) {
	src := &mockSource{
		patients: []legacy.Patient{{PatientID: 100}},
		ids:      map[int64]string{100: "H001"},
	}
	repo := newMockRepo()
	repo.insertErr = errors.New("constraint violation")
	m := newTestMigrator(src, repo)

	if _, err := m.MigratePatients(context.Background()); err == nil {
		t.Fatal("expected insert error to abort the run")
	}
}

func TestMigratePatients_VoidedRowKeepsVoidMetadata(t *testing.T) {
	src := &mockSource{
		patients: []legacy.Patient{{
			PatientID:  100,
			Voided:     true,
			VoidReason: nstr("duplicate entry"),
		}},
		ids: map[int64]string{100: "H001"},
	}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)

	if _, err := m.MigratePatients(context.Background()); err != nil {
		t.Fatalf("MigratePatients: %v", err)
	}
	p := repo.byIdentifier["H001"]
	if p.Status != StatusVoided {
		t.Errorf("status = %s, want VOIDED", p.Status)
	}
	if p.ReasonToDelete != "duplicate entry" {
		t.Errorf("reason = %q, want %q", p.ReasonToDelete, "duplicate entry")
	}
}

func TestMigrateRelationships_LinksBothDirections(t *testing.T) {
	headID := uuid.New()
	wifeID := uuid.New()

	src := &mockSource{
		masters: []legacy.FamilyMaster{{
			MasterID: 1, Identifier: "H001",
			GivenName: nstr("Jon"), FamilyName: nstr("Doe"),
		}},
		details: []legacy.FamilyDetail{{
			MasterID: 1, Identifier: "H002",
			RelationType: nstr("WIFE"),
			GivenName:    nstr("Jane"), FamilyName: nstr("Doe"),
		}},
	}
	repo := newMockRepo()
	repo.refs = []Ref{
		{PatientID: headID, PatientIdentifier: "H001", Gender: GenderMale, PatientType: TypeGovernment},
		{PatientID: wifeID, PatientIdentifier: "H002", Gender: GenderFemale, PatientType: TypeDependent},
	}
	m := newTestMigrator(src, repo)

	summary, err := m.MigrateRelationships(context.Background())
	if err != nil {
		t.Fatalf("MigrateRelationships: %v", err)
	}
	if summary.TotalMigrated != 2 {
		t.Fatalf("updated = %d, want 2", summary.TotalMigrated)
	}

	head := repo.updates[headID]
	if len(head.entries) != 1 {
		t.Fatalf("head entries = %d, want 1", len(head.entries))
	}
	if head.entries[0].RelationType != RelationSpouse {
		t.Errorf("head relation = %s, want SPOUSE", head.entries[0].RelationType)
	}
	if head.entries[0].PatientIdentifier != "H002" {
		t.Errorf("head relation identifier = %q, want H002", head.entries[0].PatientIdentifier)
	}
	if head.entries[0].PatientName != "Jane Doe" {
		t.Errorf("head relation name = %q, want %q", head.entries[0].PatientName, "Jane Doe")
	}
	if head.isDependant {
		t.Error("head marked dependant")
	}

	wife := repo.updates[wifeID]
	if len(wife.entries) != 1 {
		t.Fatalf("dependant entries = %d, want 1", len(wife.entries))
	}
	if wife.entries[0].RelationType != RelationSpouse {
		t.Errorf("dependant relation = %s, want SPOUSE", wife.entries[0].RelationType)
	}
	if wife.entries[0].PatientID != headID.String() {
		t.Errorf("dependant relation points at %q, want head", wife.entries[0].PatientID)
	}
	if !wife.isDependant {
		t.Error("dependant not marked dependant")
	}
}

func TestMigrateRelationships_GenderInvertsDependantLabel(t *testing.T) {
	headID := uuid.New()
	depID := uuid.New()

	src := &mockSource{
		masters: []legacy.FamilyMaster{{MasterID: 1, Identifier: "H001", GivenName: nstr("Jon")}},
		details: []legacy.FamilyDetail{{
			MasterID: 1, Identifier: "H003",
			RelationType: nstr("SON"),
			GivenName:    nstr("Mary"),
		}},
	}
	repo := newMockRepo()
	repo.refs = []Ref{
		{PatientID: headID, PatientIdentifier: "H001", Gender: GenderMale, PatientType: TypeGovernment},
		{PatientID: depID, PatientIdentifier: "H003", Gender: GenderFemale, PatientType: TypeDependent},
	}
	m := newTestMigrator(src, repo)

	if _, err := m.MigrateRelationships(context.Background()); err != nil {
		t.Fatalf("MigrateRelationships: %v", err)
	}

	// The raw SON label describes a female dependant, so both directions
	// record DAUGHTER.
	head := repo.updates[headID]
	if head.entries[0].RelationType != RelationDaughter {
		t.Errorf("head relation = %s, want DAUGHTER", head.entries[0].RelationType)
	}
	dep := repo.updates[depID]
	if dep.entries[0].RelationType != RelationDaughter {
		t.Errorf("dependant relation = %s, want DAUGHTER", dep.entries[0].RelationType)
	}
}

func TestMigrateRelationships_UnmigratedDependantIgnored(t *testing.T) {
	headID := uuid.New()
	src := &mockSource{
		masters: []legacy.FamilyMaster{{MasterID: 1, Identifier: "H001"}},
		details: []legacy.FamilyDetail{{MasterID: 1, Identifier: "H999", RelationType: nstr("SON")}},
	}
	repo := newMockRepo()
	repo.refs = []Ref{
		{PatientID: headID, PatientIdentifier: "H001", Gender: GenderMale, PatientType: TypeGovernment},
	}
	m := newTestMigrator(src, repo)

	summary, err := m.MigrateRelationships(context.Background())
	if err != nil {
		t.Fatalf("MigrateRelationships: %v", err)
	}
	if summary.TotalMigrated != 0 {
		t.Errorf("updated = %d, want 0", summary.TotalMigrated)
	}
	if _, ok := repo.updates[headID]; ok {
		t.Error("head updated despite no migrated dependants")
	}
}

func TestMigratePatients_PaginationTermination(t *testing.T) {
	patients := make([]legacy.Patient, 4)
	ids := map[int64]string{}
	for i := range patients {
		patients[i] = legacy.Patient{PatientID: int64(i + 1)}
		ids[int64(i+1)] = uuid.NewString()
	}
	src := &mockSource{patients: patients, ids: ids}
	repo := newMockRepo()
	m := newTestMigrator(src, repo)
	m.pageSize = 2

	summary, err := m.MigratePatients(context.Background())
	if err != nil {
		t.Fatalf("MigratePatients: %v", err)
	}
	if src.fetchCalls != 3 {
		t.Errorf("fetch calls = %d, want 3 (two full pages, one empty)", src.fetchCalls)
	}
	if summary.TotalMigrated != 4 {
		t.Errorf("migrated = %d, want 4", summary.TotalMigrated)
	}
}
