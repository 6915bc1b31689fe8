package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Reader executes the read-only queries against the legacy MySQL database.
// One Reader serves every flow; it owns no state beyond the handle.
type Reader struct {
	db *sql.DB
}

func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// FetchPatients returns one page of legacy patient rows. The explicit ORDER
// BY keeps pagination stable across calls; the legacy schema has no other
// ordering guarantee.
func (r *Reader) FetchPatients(ctx context.Context, limit, offset int) ([]Patient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT patient_id, creator, changed_by, voided, void_reason, date_created, date_changed
		FROM patient
		ORDER BY patient_id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch patients page: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.PatientID, &p.Creator, &p.ChangedBy, &p.Voided,
			&p.VoidReason, &p.DateCreated, &p.DateChanged); err != nil {
			return nil, fmt.Errorf("scan patient row: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// Identifier returns the patient's external identifier, or "" when the
// identifier record is absent. Absence is the cheapest skip signal the
// patient flow has, so it is checked before any other lookup.
func (r *Reader) Identifier(ctx context.Context, patientID int64) (string, error) {
	var identifier sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT identifier FROM patient_identifier
		WHERE patient_id = ?
		ORDER BY patient_identifier_id
		LIMIT 1`, patientID).Scan(&identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup identifier for patient %d: %w", patientID, err)
	}
	return identifier.String, nil
}

// ResolvePatient performs the fixed set of auxiliary lookups for one legacy
// patient. Missing sub-records come back as zero values; only query failures
// are errors.
func (r *Reader) ResolvePatient(ctx context.Context, patientID int64, identifier string) (*PatientBundle, error) {
	b := &PatientBundle{Identifier: identifier}

	err := r.db.QueryRowContext(ctx, `
		SELECT gender, birthdate, dead, death_datetime, cause_of_death
		FROM person WHERE person_id = ?`, patientID).
		Scan(&b.Person.Gender, &b.Person.Birthdate, &b.Person.Dead,
			&b.Person.DeathDatetime, &b.Person.CauseOfDeath)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup person %d: %w", patientID, err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT given_name, middle_name, family_name
		FROM person_name WHERE person_id = ?
		ORDER BY person_name_id LIMIT 1`, patientID).
		Scan(&b.Name.GivenName, &b.Name.MiddleName, &b.Name.FamilyName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup person_name %d: %w", patientID, err)
	}

	var addr PersonAddress
	err = r.db.QueryRowContext(ctx, `
		SELECT address1, city_village, county_district
		FROM person_address WHERE person_id = ?
		ORDER BY person_address_id LIMIT 1`, patientID).
		Scan(&addr.Address1, &addr.CityVillage, &addr.CountyDistrict)
	switch {
	case err == nil:
		b.Address = &addr
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup person_address %d: %w", patientID, err)
	}

	var search PatientSearch
	err = r.db.QueryRowContext(ctx, `
		SELECT patient_id, identifier, fullname, given_name, middle_name, family_name,
		       gender, birthdate, age, person_name_id, phone_no
		FROM patient_search WHERE patient_id = ?
		LIMIT 1`, patientID).
		Scan(&search.PatientID, &search.Identifier, &search.FullName,
			&search.GivenName, &search.MiddleName, &search.FamilyName,
			&search.Gender, &search.Birthdate, &search.Age,
			&search.PersonNameID, &search.PhoneNo)
	switch {
	case err == nil:
		b.Search = &search
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup patient_search %d: %w", patientID, err)
	}

	for attr, dst := range map[string]*string{
		"Email Address": &b.Email,
		"National ID":   &b.NationalID,
		"Work Place":    &b.WorkPlace,
		"Designation":   &b.Designation,
	} {
		val, err := r.attributeValue(ctx, identifier, attr)
		if err != nil {
			return nil, err
		}
		*dst = val
	}

	if b.InFamilyMaster, err = r.existsByIdentifier(ctx, "family_member_master_table", identifier); err != nil {
		return nil, err
	}
	if b.InFamilyDetail, err = r.existsByIdentifier(ctx, "family_member_master_table_details", identifier); err != nil {
		return nil, err
	}

	return b, nil
}

// attributeValue fetches the latest free-text person attribute of the named
// type for the given external identifier.
func (r *Reader) attributeValue(ctx context.Context, identifier, attrType string) (string, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT pa.value
		FROM person_attribute pa
		LEFT JOIN person_attribute_type pat ON pa.person_attribute_type_id = pat.person_attribute_type_id
		LEFT JOIN patient_identifier pi ON pa.person_id = pi.patient_id
		WHERE pat.name = ? AND pi.identifier = ?
		ORDER BY pa.date_created DESC
		LIMIT 1`, attrType, identifier).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup attribute %q for %s: %w", attrType, identifier, err)
	}
	return value.String, nil
}

func (r *Reader) existsByIdentifier(ctx context.Context, table, identifier string) (bool, error) {
	// table is one of two fixed names, never user input.
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE identifier = ?`, identifier).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count %s for %s: %w", table, identifier, err)
	}
	return n > 0, nil
}

// FamilyMasters loads the whole head-of-family registry. The relationship
// pass indexes it in memory instead of issuing per-identifier lookups.
func (r *Reader) FamilyMasters(ctx context.Context) ([]FamilyMaster, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT master_id, identifier, given_name, middle_name, family_name
		FROM family_member_master_table
		ORDER BY master_id`)
	if err != nil {
		return nil, fmt.Errorf("fetch family masters: %w", err)
	}
	defer rows.Close()

	var masters []FamilyMaster
	for rows.Next() {
		var m FamilyMaster
		if err := rows.Scan(&m.MasterID, &m.Identifier, &m.GivenName, &m.MiddleName, &m.FamilyName); err != nil {
			return nil, fmt.Errorf("scan family master: %w", err)
		}
		masters = append(masters, m)
	}
	return masters, rows.Err()
}

// FamilyDetails loads every dependant row.
func (r *Reader) FamilyDetails(ctx context.Context) ([]FamilyDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT master_id, identifier, relationType, given_name, middle_name, family_name
		FROM family_member_master_table_details
		ORDER BY master_id, identifier`)
	if err != nil {
		return nil, fmt.Errorf("fetch family details: %w", err)
	}
	defer rows.Close()

	var details []FamilyDetail
	for rows.Next() {
		var d FamilyDetail
		if err := rows.Scan(&d.MasterID, &d.Identifier, &d.RelationType, &d.GivenName, &d.MiddleName, &d.FamilyName); err != nil {
			return nil, fmt.Errorf("scan family detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
