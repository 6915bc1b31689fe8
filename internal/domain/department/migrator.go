package department

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
)

type source interface {
	Departments(ctx context.Context) ([]legacy.Department, error)
	DepartmentConcepts(ctx context.Context, departmentID int64) ([]legacy.DepartmentConcept, error)
	DepartmentWards(ctx context.Context, departmentID int64) ([]legacy.DepartmentWard, error)
}

// Migrator copies legacy departments with their concept and ward links
// into the document store. The table is small, so the flow reads it whole
// and writes document by document without a transaction.
type Migrator struct {
	src  source
	repo Repository
	log  zerolog.Logger
}

func NewMigrator(src *legacy.Reader, repo Repository, log zerolog.Logger) *Migrator {
	return &Migrator{
		src:  src,
		repo: repo,
		log:  log.With().Str("flow", "departments").Logger(),
	}
}

func (m *Migrator) MigrateDepartments(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	departments, err := m.src.Departments(ctx)
	if err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	for _, dept := range departments {
		if err := m.migrateOne(ctx, dept, summary); err != nil {
			m.log.Error().Err(err).
				Int("migrated", summary.TotalMigrated).
				Int("skipped", summary.SkippedCount).
				Msg("department migration aborted")
			return nil, err
		}
	}

	m.log.Info().
		Int("migrated", summary.TotalMigrated).
		Int("skipped", summary.SkippedCount).
		Msg("department migration finished")
	return summary, nil
}

func (m *Migrator) migrateOne(ctx context.Context, dept legacy.Department, summary *migrate.Summary) error {
	key := strconv.FormatInt(dept.ID, 10)

	exists, err := m.repo.Exists(ctx, dept.ID)
	if err != nil {
		return err
	}
	if exists {
		summary.SkipRecord(migrate.Skip{
			Key:    key,
			Reason: migrate.ReasonDuplicate,
			Fields: map[string]string{"name": dept.Name},
		})
		return nil
	}

	concepts, err := m.src.DepartmentConcepts(ctx, dept.ID)
	if err != nil {
		return err
	}
	wards, err := m.src.DepartmentWards(ctx, dept.ID)
	if err != nil {
		return err
	}

	if err := m.repo.Insert(ctx, buildDocument(dept, concepts, wards)); err != nil {
		return err
	}
	summary.Migrated()
	return nil
}

func buildDocument(dept legacy.Department, concepts []legacy.DepartmentConcept, wards []legacy.DepartmentWard) *Document {
	doc := &Document{
		LegacyID:  dept.ID,
		Name:      dept.Name,
		CreatedOn: dept.CreatedOn,
		CreatedBy: dept.CreatedBy,
		Concepts:  []ConceptLink{},
		Wards:     []WardLink{},
	}
	if dept.Retired {
		doc.Retired = 1
	}
	for _, c := range concepts {
		doc.Concepts = append(doc.Concepts, ConceptLink{
			ID:           c.ID,
			DepartmentID: c.DepartmentID,
			ConceptID:    c.ConceptID,
			TypeConcept:  c.TypeConcept,
			CreatedOn:    c.CreatedOn,
			CreatedBy:    c.CreatedBy,
		})
	}
	for _, w := range wards {
		doc.Wards = append(doc.Wards, WardLink{DepartmentID: w.DepartmentID, WardID: w.WardID})
	}
	return doc
}
