package legacy

import (
	"context"
	"database/sql"
	"fmt"
)

// Dosages returns the distinct trimmed dosage strings found in the legacy
// formulation table. The legacy column is spelled "dozage".
func (r *Reader) Dosages(ctx context.Context) ([]sql.NullString, error) {
	return r.stringColumn(ctx, `
		SELECT TRIM(dozage)
		FROM inventory_drug_formulation
		GROUP BY dozage
		ORDER BY dozage`)
}

// GenericNames returns the distinct drug names, which the legacy system
// used as both brand and generic name.
func (r *Reader) GenericNames(ctx context.Context) ([]sql.NullString, error) {
	return r.stringColumn(ctx, `
		SELECT TRIM(name)
		FROM inventory_drug
		GROUP BY name
		ORDER BY name`)
}

// FormulationTypes returns the distinct formulation-type names, uppercased
// at the source so the target catalog is case-normalized.
func (r *Reader) FormulationTypes(ctx context.Context) ([]sql.NullString, error) {
	return r.stringColumn(ctx, `
		SELECT DISTINCT UPPER(TRIM(name))
		FROM inventory_drug_formulation
		ORDER BY UPPER(TRIM(name))`)
}

func (r *Reader) stringColumn(ctx context.Context, query string) ([]sql.NullString, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog column: %w", err)
	}
	defer rows.Close()

	var values []sql.NullString
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan catalog value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// DrugCategories returns every legacy drug category with its description.
func (r *Reader) DrugCategories(ctx context.Context) ([]DrugCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TRIM(ic.name), TRIM(ic.description)
		FROM inventory_drug_category ic
		ORDER BY ic.name`)
	if err != nil {
		return nil, fmt.Errorf("fetch drug categories: %w", err)
	}
	defer rows.Close()

	var categories []DrugCategory
	for rows.Next() {
		var c DrugCategory
		if err := rows.Scan(&c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan drug category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FormulationPairs returns every (formulation type, dosage) combination in
// the legacy formulation table.
func (r *Reader) FormulationPairs(ctx context.Context) ([]FormulationPair, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT UPPER(TRIM(name)), TRIM(dozage)
		FROM inventory_drug_formulation
		ORDER BY UPPER(TRIM(name)), dozage`)
	if err != nil {
		return nil, fmt.Errorf("fetch formulation pairs: %w", err)
	}
	defer rows.Close()

	var pairs []FormulationPair
	for rows.Next() {
		var p FormulationPair
		if err := rows.Scan(&p.TypeName, &p.Dosage); err != nil {
			return nil, fmt.Errorf("scan formulation pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// MedicineRows joins each legacy drug to its formulation and category.
func (r *Reader) MedicineRows(ctx context.Context) ([]MedicineRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT idff.name, idff.dozage, id.name, id.name, idc.name
		FROM inventory_drug id
		LEFT JOIN inventory_drug_formulations idf ON id.drug_id = idf.drug_id
		LEFT JOIN inventory_drug_formulation idff ON idf.formulation_id = idff.id
		LEFT JOIN inventory_drug_category idc ON id.category_id = idc.id
		ORDER BY id.drug_id`)
	if err != nil {
		return nil, fmt.Errorf("fetch medicine rows: %w", err)
	}
	defer rows.Close()

	var medicines []MedicineRow
	for rows.Next() {
		var m MedicineRow
		if err := rows.Scan(&m.FormulationType, &m.Dosage, &m.BrandName, &m.GenericName, &m.CategoryName); err != nil {
			return nil, fmt.Errorf("scan medicine row: %w", err)
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

// StoreStocks returns one page of legacy store-level stock rows for the
// inventory flow.
func (r *Reader) StoreStocks(ctx context.Context, limit, offset int) ([]StoreStock, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TRIM(s.name), TRIM(d.name), isd.quantity, isd.reorder_point
		FROM inventory_store_drug isd
		LEFT JOIN inventory_store s ON isd.store_id = s.store_id
		LEFT JOIN inventory_drug d ON isd.drug_id = d.drug_id
		ORDER BY isd.id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch store stocks page: %w", err)
	}
	defer rows.Close()

	var stocks []StoreStock
	for rows.Next() {
		var s StoreStock
		if err := rows.Scan(&s.StoreName, &s.ItemName, &s.Quantity, &s.ReorderPoint); err != nil {
			return nil, fmt.Errorf("scan store stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}
