package pharmacy

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

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyRepoPG(pool *pgxpool.Pool) Repository {
	return &pharmacyRepoPG{pool: pool}
}

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// lookupColumn maps each flat lookup table to its value column. The two
// differ for historical reasons in the target schema.
var lookupColumn = map[Lookup]string{
	LookupRoute:           "route",
	LookupManufacturer:    "manufacturer",
	LookupDosage:          "dosage",
	LookupGenericName:     "name",
	LookupFormulationType: "formulation_type",
}

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS pharmacy`,
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS pharmacy.dosage (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		dosage VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.medicine_categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		atc_code VARCHAR(50),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE,
		created_by VARCHAR(50),
		updated_by VARCHAR(50)
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.generic_name (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.formulation_type (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		formulation_type VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.manufacturer (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		manufacturer VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.route (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		route VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.formulations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		formulation_type_id UUID NOT NULL,
		dosage_id UUID NOT NULL,
		route_id UUID NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE,
		created_by VARCHAR(50),
		updated_by VARCHAR(50),
		FOREIGN KEY (formulation_type_id) REFERENCES pharmacy.formulation_type(id),
		FOREIGN KEY (dosage_id) REFERENCES pharmacy.dosage(id),
		FOREIGN KEY (route_id) REFERENCES pharmacy.route(id)
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.medicines (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		organization_id UUID,
		hospital_id UUID,
		brand_name VARCHAR(255) NOT NULL,
		generic_name_id UUID NOT NULL,
		category_id UUID NOT NULL,
		manufacturer_id UUID NOT NULL,
		formulation_id UUID NOT NULL,
		ref_code VARCHAR(50),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE,
		created_by VARCHAR(50),
		updated_by VARCHAR(50),
		FOREIGN KEY (generic_name_id) REFERENCES pharmacy.generic_name(id),
		FOREIGN KEY (category_id) REFERENCES pharmacy.medicine_categories(id),
		FOREIGN KEY (manufacturer_id) REFERENCES pharmacy.manufacturer(id),
		FOREIGN KEY (formulation_id) REFERENCES pharmacy.formulations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.pharmacy_locations (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		organization_id UUID NOT NULL,
		hospital_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		location_type VARCHAR(50) NOT NULL,
		address VARCHAR(255),
		parent_location_id BIGINT,
		uuid UUID DEFAULT gen_random_uuid() UNIQUE NOT NULL,
		created_at TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITHOUT TIME ZONE,
		created_by UUID,
		updated_by UUID,
		status VARCHAR(20),
		reason_to_update TEXT,
		reason_to_delete TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pharmacy_locations_hospital_id
		ON pharmacy.pharmacy_locations (hospital_id)`,
	`CREATE INDEX IF NOT EXISTS idx_pharmacy_locations_organization_id
		ON pharmacy.pharmacy_locations (organization_id)`,
	`CREATE TABLE IF NOT EXISTS pharmacy.pharmacy_stocks (
		id UUID DEFAULT gen_random_uuid() PRIMARY KEY,
		organization_id UUID NOT NULL,
		hospital_id UUID NOT NULL,
		location_id BIGINT NOT NULL,
		ref_medicine_id UUID NOT NULL,
		sku VARCHAR(100) NOT NULL,
		name VARCHAR(255) NOT NULL,
		category_id UUID NOT NULL,
		formulation_id UUID NOT NULL,
		stock_status VARCHAR(50) NOT NULL,
		quantity INTEGER NOT NULL,
		remains_after_hold_quantity INTEGER NOT NULL,
		reorder_level INTEGER NOT NULL,
		challan_number VARCHAR(255),
		uuid UUID DEFAULT gen_random_uuid() UNIQUE,
		created_at TIMESTAMP WITHOUT TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITHOUT TIME ZONE,
		created_by UUID,
		updated_by UUID,
		status VARCHAR(20),
		reason_to_update TEXT,
		reason_to_delete TEXT,
		CONSTRAINT pharmacy_stocks_sku_key UNIQUE (sku),
		CONSTRAINT uk_location_ref_medicine UNIQUE (location_id, ref_medicine_id),
		CONSTRAINT fk_pharmacy_stocks_location FOREIGN KEY (location_id)
			REFERENCES pharmacy.pharmacy_locations (id),
		CONSTRAINT chk_pharmacy_quantity CHECK (quantity >= 0),
		CONSTRAINT chk_pharmacy_remains_after_hold_quantity CHECK (remains_after_hold_quantity >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pharmacy_stock_medicine
		ON pharmacy.pharmacy_stocks (ref_medicine_id)`,
}

func (r *pharmacyRepoPG) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.conn(ctx).Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure pharmacy schema: %w", err)
		}
	}
	return nil
}

func (r *pharmacyRepoPG) HasLookup(ctx context.Context, kind Lookup, value string) (bool, error) {
	col := lookupColumn[kind]
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM pharmacy.%s WHERE %s = $1)`, kind, col),
		value).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s %q: %w", kind, value, err)
	}
	return exists, nil
}

func (r *pharmacyRepoPG) AddLookup(ctx context.Context, kind Lookup, value string) error {
	col := lookupColumn[kind]
	_, err := r.conn(ctx).Exec(ctx,
		fmt.Sprintf(`INSERT INTO pharmacy.%s (%s) VALUES ($1)`, kind, col), value)
	if err != nil {
		return fmt.Errorf("insert %s %q: %w", kind, value, err)
	}
	return nil
}

func (r *pharmacyRepoPG) FindLookup(ctx context.Context, kind Lookup, value string) (uuid.UUID, bool, error) {
	col := lookupColumn[kind]
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM pharmacy.%s WHERE %s = $1`, kind, col), value).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find %s %q: %w", kind, value, err)
	}
	return id, true, nil
}

func (r *pharmacyRepoPG) EnsureLookup(ctx context.Context, kind Lookup, value string) (uuid.UUID, error) {
	id, ok, err := r.FindLookup(ctx, kind, value)
	if err != nil {
		return uuid.Nil, err
	}
	if ok {
		return id, nil
	}
	if err := r.AddLookup(ctx, kind, value); err != nil {
		return uuid.Nil, err
	}
	id, _, err = r.FindLookup(ctx, kind, value)
	return id, err
}

func (r *pharmacyRepoPG) HasCategory(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pharmacy.medicine_categories WHERE name = $1)`,
		name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category %q: %w", name, err)
	}
	return exists, nil
}

func (r *pharmacyRepoPG) AddCategory(ctx context.Context, name, description string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy.medicine_categories (name, description, created_at)
		VALUES ($1, NULLIF($2, ''), NOW())`, name, description)
	if err != nil {
		return fmt.Errorf("insert category %q: %w", name, err)
	}
	return nil
}

func (r *pharmacyRepoPG) EnsureCategory(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id FROM pharmacy.medicine_categories WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := r.AddCategory(ctx, name, ""); err != nil {
			return uuid.Nil, err
		}
		err = r.conn(ctx).QueryRow(ctx,
			`SELECT id FROM pharmacy.medicine_categories WHERE name = $1`, name).Scan(&id)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure category %q: %w", name, err)
	}
	return id, nil
}

func (r *pharmacyRepoPG) EnsureFormulation(ctx context.Context, typeID, dosageID, routeID uuid.UUID) (uuid.UUID, bool, error) {
	const find = `
		SELECT id FROM pharmacy.formulations
		WHERE formulation_type_id = $1 AND dosage_id = $2 AND route_id = $3`

	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx, find, typeID, dosageID, routeID).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("find formulation: %w", err)
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy.formulations (formulation_type_id, dosage_id, route_id, created_at)
		VALUES ($1, $2, $3, NOW())`, typeID, dosageID, routeID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("insert formulation: %w", err)
	}
	if err := r.conn(ctx).QueryRow(ctx, find, typeID, dosageID, routeID).Scan(&id); err != nil {
		return uuid.Nil, false, fmt.Errorf("reread formulation: %w", err)
	}
	return id, true, nil
}

func (r *pharmacyRepoPG) MedicineExists(ctx context.Context, brandName string, genericID, categoryID, formulationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pharmacy.medicines
			WHERE brand_name = $1 AND generic_name_id = $2 AND category_id = $3 AND formulation_id = $4
		)`, brandName, genericID, categoryID, formulationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check medicine %q: %w", brandName, err)
	}
	return exists, nil
}

func (r *pharmacyRepoPG) InsertMedicine(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy.medicines (
			brand_name, generic_name_id, category_id, manufacturer_id, formulation_id,
			organization_id, hospital_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
		m.BrandName, m.GenericNameID, m.CategoryID, m.ManufacturerID, m.FormulationID,
		m.OrganizationID, m.HospitalID)
	if err != nil {
		return fmt.Errorf("insert medicine %q: %w", m.BrandName, err)
	}
	return nil
}

func (r *pharmacyRepoPG) LocationIDsByName(ctx context.Context, names []string) (map[string]int64, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name FROM pharmacy.pharmacy_locations WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	defer rows.Close()

	ids := map[string]int64{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func (r *pharmacyRepoPG) InsertLocation(ctx context.Context, l *Location) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pharmacy.pharmacy_locations (
			organization_id, hospital_id, name, location_type, parent_location_id, status, created_at
		) VALUES ($1,$2,$3,$4,$5,'ACTIVE',NOW())
		RETURNING id`,
		l.OrganizationID, l.HospitalID, l.Name, l.LocationType, l.ParentLocationID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert location %q: %w", l.Name, err)
	}
	return id, nil
}

func (r *pharmacyRepoPG) ListStockSeeds(ctx context.Context) ([]StockSeed, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.brand_name, COALESCE(mc.name, ''), m.category_id, m.formulation_id
		FROM pharmacy.medicines m
		LEFT JOIN pharmacy.medicine_categories mc ON m.category_id = mc.id
		ORDER BY m.brand_name`)
	if err != nil {
		return nil, fmt.Errorf("list stock seeds: %w", err)
	}
	defer rows.Close()

	var seeds []StockSeed
	for rows.Next() {
		var s StockSeed
		if err := rows.Scan(&s.MedicineID, &s.Name, &s.CategoryName, &s.CategoryID, &s.FormulationID); err != nil {
			return nil, fmt.Errorf("scan stock seed: %w", err)
		}
		seeds = append(seeds, s)
	}
	return seeds, rows.Err()
}

func (r *pharmacyRepoPG) StockExists(ctx context.Context, locationID int64, medicineID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pharmacy.pharmacy_stocks
			WHERE location_id = $1 AND ref_medicine_id = $2
		)`, locationID, medicineID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check stock: %w", err)
	}
	return exists, nil
}

func (r *pharmacyRepoPG) InsertStock(ctx context.Context, s *Stock) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy.pharmacy_stocks (
			id, organization_id, hospital_id, location_id, ref_medicine_id, sku, name,
			category_id, formulation_id, stock_status, quantity, remains_after_hold_quantity,
			reorder_level, challan_number, status, reason_to_update, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,'ACTIVE','Auto Generated',NOW())`,
		s.ID, s.OrganizationID, s.HospitalID, s.LocationID, s.RefMedicineID, s.SKU, s.Name,
		s.CategoryID, s.FormulationID, s.StockStatus, s.Quantity, s.RemainsAfter,
		s.ReorderLevel, s.ChallanNumber)
	if err != nil {
		return fmt.Errorf("insert stock %q: %w", s.SKU, err)
	}
	return nil
}
