package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hms/migrator/internal/config"
	"github.com/hms/migrator/internal/domain/department"
	"github.com/hms/migrator/internal/domain/inventory"
	"github.com/hms/migrator/internal/domain/opd"
	"github.com/hms/migrator/internal/domain/patient"
	"github.com/hms/migrator/internal/domain/patientsearch"
	"github.com/hms/migrator/internal/domain/pharmacy"
	"github.com/hms/migrator/internal/legacy"
	"github.com/hms/migrator/internal/migrate"
	"github.com/hms/migrator/internal/platform/db"
)

// app wires the legacy stores, the per-domain target pools and the flow
// migrators together. Built once per process.
type app struct {
	mysql *sql.DB
	pools map[string]*pgxpool.Pool
	mongo *mongo.Client

	patients      *patient.Migrator
	pharmacy      *pharmacy.Migrator
	opd           *opd.Migrator
	inventory     *inventory.Migrator
	departments   *department.Migrator
	patientSearch *patientsearch.Migrator
}

func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{pools: make(map[string]*pgxpool.Pool)}

	mysql, err := db.NewMySQL(ctx, cfg.MySQLDSN, int(cfg.DBMaxConns))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.mysql = mysql
	reader := legacy.NewReader(mysql)

	// One pool per distinct target URL; domains sharing a database share
	// the pool.
	pool := func(domain string) (*pgxpool.Pool, error) {
		url := cfg.TargetURL(domain)
		if p, ok := a.pools[url]; ok {
			return p, nil
		}
		p, err := db.NewPool(ctx, url, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("connect %s target: %w", domain, err)
		}
		a.pools[url] = p
		return p, nil
	}

	registrationPool, err := pool("registration")
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	pharmacyPool, err := pool("pharmacy")
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	opdPool, err := pool("opd")
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	inventoryPool, err := pool("inventory")
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.patients = patient.NewMigrator(reader, patient.NewPatientRepoPG(registrationPool), registrationPool, cfg, logger)
	a.pharmacy = pharmacy.NewMigrator(reader, pharmacy.NewPharmacyRepoPG(pharmacyPool), pharmacyPool, cfg, logger)
	a.opd = opd.NewMigrator(reader, opd.NewPrescriptionRepoPG(opdPool),
		opd.NewPatientDirectoryPG(registrationPool), opdPool, cfg, logger)
	a.inventory = inventory.NewMigrator(reader, inventory.NewStockRepoPG(inventoryPool), inventoryPool, cfg, logger)

	// The document-store flows only come up when the legacy Mongo URI is
	// configured.
	if cfg.MongoURI != "" {
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.mongo = client
		mongoDB := client.Database(cfg.MongoDB)

		a.departments = department.NewMigrator(reader, department.NewDepartmentRepoMongo(mongoDB), logger)
		a.patientSearch = patientsearch.NewMigrator(reader, patientsearch.NewSearchRepoMongo(mongoDB), cfg, logger)
	}

	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if a.mysql != nil {
		_ = a.mysql.Close()
	}
	for _, p := range a.pools {
		p.Close()
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
}

// RegisterRoutes hangs every flow trigger off the migrations group and the
// read endpoints off the api group.
func (a *app) RegisterRoutes(migrations, api *echo.Group) {
	patient.NewHandler(a.patients).RegisterRoutes(migrations)
	pharmacy.NewHandler(a.pharmacy).RegisterRoutes(migrations)
	opd.NewHandler(a.opd).RegisterRoutes(migrations)
	inventory.NewHandler(a.inventory).RegisterRoutes(migrations)
	if a.departments != nil {
		department.NewHandler(a.departments).RegisterRoutes(migrations)
	}
	if a.patientSearch != nil {
		patientsearch.NewHandler(a.patientSearch).RegisterRoutes(migrations, api)
	}
}

type flowFunc func(ctx context.Context) (*migrate.Summary, error)

// allFlows is the dependency order: patients before relationships and OPD,
// catalog before formulations/medicines, locations and medicines before
// stocks.
var allFlows = []string{
	"patients", "relationships",
	"pharmacy-catalog", "pharmacy-formulations", "pharmacy-medicines",
	"pharmacy-locations", "pharmacy-stocks",
	"opd", "inventory", "departments", "patient-search",
}

var flowUsage = strings.Join(allFlows, ", ")

func (a *app) flows() map[string]flowFunc {
	flows := map[string]flowFunc{
		"patients":      a.patients.MigratePatients,
		"relationships": a.patients.MigrateRelationships,
		"pharmacy-catalog": func(ctx context.Context) (*migrate.Summary, error) {
			result, err := a.pharmacy.MigrateCatalog(ctx)
			if err != nil {
				return nil, err
			}
			return catalogSummary(result), nil
		},
		"pharmacy-formulations": a.pharmacy.MigrateFormulations,
		"pharmacy-medicines":    a.pharmacy.MigrateMedicines,
		"pharmacy-locations":    a.pharmacy.MigrateLocations,
		"pharmacy-stocks":       a.pharmacy.MigrateStocks,
		"opd":                   a.opd.MigratePrescriptions,
		"inventory":             a.inventory.MigrateStocks,
	}
	if a.departments != nil {
		flows["departments"] = a.departments.MigrateDepartments
	}
	if a.patientSearch != nil {
		flows["patient-search"] = a.patientSearch.MigrateSearch
	}
	return flows
}

// catalogSummary flattens the per-category catalog result into the common
// summary contract so the CLI and the skip report can treat every flow the
// same way.
func catalogSummary(result *pharmacy.CatalogResult) *migrate.Summary {
	summary := migrate.NewSummary()
	for _, count := range result.TotalMigrated {
		summary.TotalMigrated += count
	}
	for category, values := range result.SkippedItems {
		for _, v := range values {
			summary.SkipRecord(migrate.Skip{
				Key:    v,
				Reason: migrate.ReasonDuplicate,
				Fields: map[string]string{"category": category},
			})
		}
	}
	return summary
}
