package patientsearch

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
)

type source interface {
	PatientSearchPage(ctx context.Context, limit, offset int) ([]legacy.PatientSearch, error)
}

// Migrator copies the denormalized patient_search table into the document
// store the search frontend reads from.
type Migrator struct {
	src      source
	repo     Repository
	pageSize int
	log      zerolog.Logger
}

func NewMigrator(src *legacy.Reader, repo Repository, cfg *config.Config, log zerolog.Logger) *Migrator {
	return &Migrator{
		src:      src,
		repo:     repo,
		pageSize: cfg.PageSize,
		log:      log.With().Str("flow", "patient-search").Logger(),
	}
}

// MigrateSearch pages over patient_search and inserts one document per
// legacy patient id not yet present in the collection.
func (m *Migrator) MigrateSearch(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err := migrate.ForEachPage(ctx, m.pageSize, m.src.PatientSearchPage,
		func(ctx context.Context, page []legacy.PatientSearch) error {
			for _, row := range page {
				if err := m.migrateOne(ctx, row, summary); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		m.log.Error().Err(err).
			Int("migrated", summary.TotalMigrated).
			Int("skipped", summary.SkippedCount).
			Msg("patient-search migration aborted")
		return nil, err
	}

	m.log.Info().
		Int("migrated", summary.TotalMigrated).
		Int("skipped", summary.SkippedCount).
		Msg("patient-search migration finished")
	return summary, nil
}

func (m *Migrator) migrateOne(ctx context.Context, row legacy.PatientSearch, summary *migrate.Summary) error {
	exists, err := m.repo.Exists(ctx, row.PatientID)
	if err != nil {
		return err
	}
	if exists {
		summary.Skip(strconv.FormatInt(row.PatientID, 10), migrate.ReasonDuplicate)
		return nil
	}

	if err := m.repo.Insert(ctx, buildDocument(row)); err != nil {
		return err
	}
	summary.Migrated()
	return nil
}

// ListPatients returns one page of migrated search documents along with
// the collection total.
func (m *Migrator) ListPatients(ctx context.Context, limit, offset int) ([]Document, int64, error) {
	total, err := m.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	docs, err := m.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func buildDocument(row legacy.PatientSearch) *Document {
	return &Document{
		PatientID:    row.PatientID,
		Identifier:   row.Identifier.String,
		FullName:     row.FullName.String,
		GivenName:    row.GivenName.String,
		MiddleName:   row.MiddleName.String,
		FamilyName:   row.FamilyName.String,
		Gender:       row.Gender.String,
		Birthdate:    row.Birthdate.String,
		Age:          row.Age.Int64,
		PersonNameID: row.PersonNameID.Int64,
		PhoneNo:      row.PhoneNo.String,
	}
}
