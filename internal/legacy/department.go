package legacy

import (
	"context"
	"fmt"
)

// Departments loads every legacy department row. The table holds a few
// dozen rows at most, so the flow reads it whole.
func (r *Reader) Departments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, retired, created_on, created_by
		FROM department
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetch departments: %w", err)
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Retired, &d.CreatedOn, &d.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// DepartmentConcepts returns the concept links of one department.
func (r *Reader) DepartmentConcepts(ctx context.Context, departmentID int64) ([]DepartmentConcept, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, department_id, concept_id, type_concept, created_on, created_by
		FROM department_concept
		WHERE department_id = ?
		ORDER BY id`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch concepts for department %d: %w", departmentID, err)
	}
	defer rows.Close()

	var concepts []DepartmentConcept
	for rows.Next() {
		var c DepartmentConcept
		if err := rows.Scan(&c.ID, &c.DepartmentID, &c.ConceptID, &c.TypeConcept, &c.CreatedOn, &c.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan department concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// DepartmentWards returns the ward links of one department.
func (r *Reader) DepartmentWards(ctx context.Context, departmentID int64) ([]DepartmentWard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT department_id, ward_id
		FROM department_ward
		WHERE department_id = ?
		ORDER BY ward_id`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch wards for department %d: %w", departmentID, err)
	}
	defer rows.Close()

	var wards []DepartmentWard
	for rows.Next() {
		var w DepartmentWard
		if err := rows.Scan(&w.DepartmentID, &w.WardID); err != nil {
			return nil, fmt.Errorf("scan department ward: %w", err)
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

// PatientSearchPage returns one page of the denormalized patient_search
// table for the document-store flow.
func (r *Reader) PatientSearchPage(ctx context.Context, limit, offset int) ([]PatientSearch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT patient_id, identifier, fullname, given_name, middle_name, family_name,
		       gender, birthdate, age, person_name_id, phone_no
		FROM patient_search
		ORDER BY patient_id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch patient_search page: %w", err)
	}
	defer rows.Close()

	var patients []PatientSearch
	for rows.Next() {
		var p PatientSearch
		if err := rows.Scan(&p.PatientID, &p.Identifier, &p.FullName,
			&p.GivenName, &p.MiddleName, &p.FamilyName,
			&p.Gender, &p.Birthdate, &p.Age, &p.PersonNameID, &p.PhoneNo); err != nil {
			return nil, fmt.Errorf("scan patient_search row: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}
