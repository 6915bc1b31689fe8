package pharmacy

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
	"github.com/hms/migrator/internal/platform/db"
)

// source is the slice of the legacy reader the pharmacy flows consume.
type source interface {
	Dosages(ctx context.Context) ([]sql.NullString, error)
	GenericNames(ctx context.Context) ([]sql.NullString, error)
	FormulationTypes(ctx context.Context) ([]sql.NullString, error)
	DrugCategories(ctx context.Context) ([]legacy.DrugCategory, error)
	FormulationPairs(ctx context.Context) ([]legacy.FormulationPair, error)
	MedicineRows(ctx context.Context) ([]legacy.MedicineRow, error)
}

// Migrator runs the five pharmacy flows. Each flow commits as a single
// transaction; the data volumes (hundreds of catalog rows, a few thousand
// medicines) make per-page batching unnecessary here.
type Migrator struct {
	src      source
	repo     Repository
	runTx    func(ctx context.Context, fn func(ctx context.Context) error) error
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
		orgID:    uuid.MustParse(cfg.OrganizationID),
		hospital: uuid.MustParse(cfg.HospitalID),
		log:      log.With().Str("flow", "pharmacy").Logger(),
	}
}

// MigrateCatalog seeds the static routes and manufacturer, then copies the
// legacy dosages, categories, generic names and formulation types. Every
// value is deduplicated by exact name.
func (m *Migrator) MigrateCatalog(ctx context.Context) (*CatalogResult, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	dosages, err := m.src.Dosages(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := m.src.DrugCategories(ctx)
	if err != nil {
		return nil, err
	}
	genericNames, err := m.src.GenericNames(ctx)
	if err != nil {
		return nil, err
	}
	formulationTypes, err := m.src.FormulationTypes(ctx)
	if err != nil {
		return nil, err
	}

	result := newCatalogResult()
	err = m.runTx(ctx, func(ctx context.Context) error {
		if err := m.seedLookup(ctx, LookupRoute, StaticRoutes, result, "routes"); err != nil {
			return err
		}
		if err := m.seedLookup(ctx, LookupManufacturer, StaticManufacturers, result, "manufacturers"); err != nil {
			return err
		}
		if err := m.seedLookup(ctx, LookupDosage, values(dosages), result, "dosage"); err != nil {
			return err
		}

		for _, cat := range categories {
			name := strings.TrimSpace(cat.Name.String)
			if name == "" {
				result.SkippedItems["categories"] = append(result.SkippedItems["categories"], name)
				continue
			}
			exists, err := m.repo.HasCategory(ctx, name)
			if err != nil {
				return err
			}
			if exists {
				result.SkippedItems["categories"] = append(result.SkippedItems["categories"], name)
				continue
			}
			if err := m.repo.AddCategory(ctx, name, strings.TrimSpace(cat.Description.String)); err != nil {
				return err
			}
			result.TotalMigrated["categories"]++
		}

		if err := m.seedLookup(ctx, LookupGenericName, values(genericNames), result, "genericNames"); err != nil {
			return err
		}
		return m.seedLookup(ctx, LookupFormulationType, values(formulationTypes), result, "formulationTypes")
	})
	if err != nil {
		m.log.Error().Err(err).Msg("catalog migration aborted")
		return nil, err
	}

	m.log.Info().Interface("totalMigrated", result.TotalMigrated).Msg("catalog migration finished")
	return result, nil
}

func (m *Migrator) seedLookup(ctx context.Context, kind Lookup, vals []string, result *CatalogResult, category string) error {
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			result.SkippedItems[category] = append(result.SkippedItems[category], v)
			continue
		}
		exists, err := m.repo.HasLookup(ctx, kind, v)
		if err != nil {
			return err
		}
		if exists {
			result.SkippedItems[category] = append(result.SkippedItems[category], v)
			continue
		}
		if err := m.repo.AddLookup(ctx, kind, v); err != nil {
			return err
		}
		result.TotalMigrated[category]++
	}
	return nil
}

func values(vals []sql.NullString) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String
	}
	return out
}

// MigrateFormulations creates one formulation per legacy (type, dosage)
// pair, classifying the administration route from the type name. Lookup
// rows missing from the catalog are created on the fly.
func (m *Migrator) MigrateFormulations(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	pairs, err := m.src.FormulationPairs(ctx)
	if err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err = m.runTx(ctx, func(ctx context.Context) error {
		for _, pair := range pairs {
			typeName := strings.TrimSpace(pair.TypeName.String)
			dosage := strings.TrimSpace(pair.Dosage.String)
			if typeName == "" || dosage == "" {
				summary.SkipRecord(migrate.Skip{
					Key:    typeName,
					Reason: migrate.ReasonMissingFields,
					Fields: map[string]string{"formulationType": typeName, "dosage": dosage},
				})
				continue
			}

			typeID, err := m.repo.EnsureLookup(ctx, LookupFormulationType, typeName)
			if err != nil {
				return err
			}
			dosageID, err := m.repo.EnsureLookup(ctx, LookupDosage, dosage)
			if err != nil {
				return err
			}
			routeID, err := m.repo.EnsureLookup(ctx, LookupRoute, ClassifyRoute(typeName))
			if err != nil {
				return err
			}

			_, created, err := m.repo.EnsureFormulation(ctx, typeID, dosageID, routeID)
			if err != nil {
				return err
			}
			if !created {
				summary.SkipRecord(migrate.Skip{
					Key:    typeName,
					Reason: ReasonDuplicateFormulation,
					Fields: map[string]string{"formulationType": typeName, "dosage": dosage},
				})
				continue
			}
			summary.Migrated()
		}
		return nil
	})
	if err != nil {
		m.log.Error().Err(err).Msg("formulations migration aborted")
		return nil, err
	}

	m.log.Info().Int("migrated", summary.TotalMigrated).Int("skipped", summary.SkippedCount).
		Msg("formulations migration finished")
	return summary, nil
}

// MigrateMedicines copies the joined legacy drug rows, resolving every
// lookup by name and deduplicating on the full natural tuple. All
// medicines are attributed to the fixed placeholder manufacturer, which
// must have been seeded by the catalog flow.
func (m *Migrator) MigrateMedicines(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := m.src.MedicineRows(ctx)
	if err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err = m.runTx(ctx, func(ctx context.Context) error {
		manufacturerID, ok, err := m.repo.FindLookup(ctx, LookupManufacturer, StaticManufacturers[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("manufacturer %q not found; run the catalog migration first", StaticManufacturers[0])
		}

		for _, row := range rows {
			typeName := strings.ToUpper(strings.TrimSpace(row.FormulationType.String))
			dosage := strings.TrimSpace(row.Dosage.String)
			brand := strings.TrimSpace(row.BrandName.String)
			generic := strings.TrimSpace(row.GenericName.String)
			category := strings.TrimSpace(row.CategoryName.String)

			if brand == "" || generic == "" || category == "" || typeName == "" || dosage == "" {
				summary.SkipRecord(migrate.Skip{
					Key:    brand,
					Reason: migrate.ReasonMissingFields,
					Fields: map[string]string{
						"brandName": brand, "genericName": generic, "categoryName": category,
						"formulationType": typeName, "dosage": dosage,
					},
				})
				continue
			}

			genericID, err := m.repo.EnsureLookup(ctx, LookupGenericName, generic)
			if err != nil {
				return err
			}
			categoryID, err := m.repo.EnsureCategory(ctx, category)
			if err != nil {
				return err
			}
			typeID, err := m.repo.EnsureLookup(ctx, LookupFormulationType, typeName)
			if err != nil {
				return err
			}
			dosageID, err := m.repo.EnsureLookup(ctx, LookupDosage, dosage)
			if err != nil {
				return err
			}
			routeID, err := m.repo.EnsureLookup(ctx, LookupRoute, ClassifyRoute(typeName))
			if err != nil {
				return err
			}
			formulationID, _, err := m.repo.EnsureFormulation(ctx, typeID, dosageID, routeID)
			if err != nil {
				return err
			}

			exists, err := m.repo.MedicineExists(ctx, brand, genericID, categoryID, formulationID)
			if err != nil {
				return err
			}
			if exists {
				summary.SkipRecord(migrate.Skip{
					Key:    brand,
					Reason: ReasonDuplicateMedicine,
					Fields: map[string]string{"brandName": brand, "categoryName": category},
				})
				continue
			}

			err = m.repo.InsertMedicine(ctx, &Medicine{
				BrandName:      brand,
				GenericNameID:  genericID,
				CategoryID:     categoryID,
				ManufacturerID: manufacturerID,
				FormulationID:  formulationID,
				OrganizationID: m.orgID,
				HospitalID:     m.hospital,
			})
			if err != nil {
				return err
			}
			summary.Migrated()
		}
		return nil
	})
	if err != nil {
		m.log.Error().Err(err).Msg("medicines migration aborted")
		return nil, err
	}

	m.log.Info().Int("migrated", summary.TotalMigrated).Int("skipped", summary.SkippedCount).
		Msg("medicines migration finished")
	return summary, nil
}

// MigrateLocations seeds the fixed location tree. Nodes that already exist
// are skipped and their ids reused as parents, so re-running the flow never
// duplicates the hierarchy.
func (m *Migrator) MigrateLocations(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err := m.runTx(ctx, func(ctx context.Context) error {
		names := make([]string, len(locationTree))
		for i, node := range locationTree {
			names[i] = node.Name
		}
		existing, err := m.repo.LocationIDsByName(ctx, names)
		if err != nil {
			return err
		}

		for _, node := range locationTree {
			if _, ok := existing[node.Name]; ok {
				summary.Skip(node.Name, ReasonDuplicateLocation)
				continue
			}
			var parentID int64
			if node.Parent != "" {
				id, ok := existing[node.Parent]
				if !ok {
					return fmt.Errorf("parent location %q missing for %q", node.Parent, node.Name)
				}
				parentID = id
			}
			id, err := m.repo.InsertLocation(ctx, &Location{
				OrganizationID:   m.orgID,
				HospitalID:       m.hospital,
				Name:             node.Name,
				LocationType:     node.LocationType,
				ParentLocationID: parentID,
			})
			if err != nil {
				return err
			}
			existing[node.Name] = id
			summary.Migrated()
		}
		return nil
	})
	if err != nil {
		m.log.Error().Err(err).Msg("locations migration aborted")
		return nil, err
	}

	m.log.Info().Int("migrated", summary.TotalMigrated).Msg("locations migration finished")
	return summary, nil
}

// MigrateStocks creates one empty stock row per (location, medicine) pair.
// The SKU is the category prefix plus a random suffix; collisions are left
// to the unique constraint rather than retried.
func (m *Migrator) MigrateStocks(ctx context.Context) (*migrate.Summary, error) {
	if err := m.repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	summary := migrate.NewSummary()
	err := m.runTx(ctx, func(ctx context.Context) error {
		names := make([]string, len(locationTree))
		for i, node := range locationTree {
			names[i] = node.Name
		}
		locations, err := m.repo.LocationIDsByName(ctx, names)
		if err != nil {
			return err
		}
		if len(locations) != len(locationTree) {
			return fmt.Errorf("found %d of %d pharmacy locations; run the locations migration first",
				len(locations), len(locationTree))
		}

		seeds, err := m.repo.ListStockSeeds(ctx)
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return fmt.Errorf("no medicines found; run the medicines migration first")
		}

		for _, seed := range seeds {
			if seed.Name == "" || seed.CategoryName == "" {
				summary.SkipRecord(migrate.Skip{
					Key:    seed.MedicineID.String(),
					Reason: migrate.ReasonMissingFields,
					Fields: map[string]string{"name": seed.Name},
				})
				continue
			}

			for _, node := range locationTree {
				locationID := locations[node.Name]
				exists, err := m.repo.StockExists(ctx, locationID, seed.MedicineID)
				if err != nil {
					return err
				}
				if exists {
					summary.SkipRecord(migrate.Skip{
						Key:    seed.MedicineID.String(),
						Reason: ReasonDuplicateStock,
						Fields: map[string]string{"location": node.Name},
					})
					continue
				}

				err = m.repo.InsertStock(ctx, &Stock{
					ID:             uuid.New(),
					OrganizationID: m.orgID,
					HospitalID:     m.hospital,
					LocationID:     locationID,
					RefMedicineID:  seed.MedicineID,
					SKU:            GenerateSKU(seed.CategoryName),
					Name:           seed.Name,
					CategoryID:     seed.CategoryID,
					FormulationID:  seed.FormulationID,
					StockStatus:    "OUT_OF_STOCK",
					Quantity:       0,
					RemainsAfter:   0,
					ReorderLevel:   100,
					ChallanNumber:  "initial-0000",
				})
				if err != nil {
					return err
				}
				summary.Migrated()
			}
		}
		return nil
	})
	if err != nil {
		m.log.Error().Err(err).Msg("stocks migration aborted")
		return nil, err
	}

	m.log.Info().Int("migrated", summary.TotalMigrated).Int("skipped", summary.SkippedCount).
		Msg("stocks migration finished")
	return summary, nil
}

const skuCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSKU builds a stock SKU from the first five characters of the
// category name, uppercased, and a random five-character suffix, e.g.
// "VITAM-D8C78". Collision probability is non-zero and not retried; a true
// collision trips the sku unique constraint.
func GenerateSKU(categoryName string) string {
	prefix := strings.ToUpper(categoryName)
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = skuCharset[rand.Intn(len(skuCharset))]
	}
	return prefix + "-" + string(suffix)
}
