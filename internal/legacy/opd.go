package legacy

import (
	"context"
	"fmt"
)

// ObsPatientIdentifiers returns one page of distinct patient identifiers
// that have at least one observation.
func (r *Reader) ObsPatientIdentifiers(ctx context.Context, limit, offset int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT pi.identifier
		FROM obs
		LEFT JOIN patient_identifier pi ON obs.person_id = pi.patient_id
		WHERE pi.identifier IS NOT NULL
		ORDER BY pi.identifier
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch obs identifiers page: %w", err)
	}
	defer rows.Close()

	var identifiers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan obs identifier: %w", err)
		}
		identifiers = append(identifiers, id)
	}
	return identifiers, rows.Err()
}

// codedObsQuery selects observations whose value is a coded concept,
// filtered by the fully-specified concept name of the observation type.
const codedObsQuery = `
	SELECT pi.identifier, cn1.name, obs.obs_datetime
	FROM obs
	LEFT JOIN concept_name cn ON obs.concept_id = cn.concept_id
	LEFT JOIN concept_name cn1 ON obs.value_coded = cn1.concept_id
	LEFT JOIN patient_identifier pi ON obs.person_id = pi.patient_id
	WHERE pi.identifier IS NOT NULL
	  AND cn.name = ?
	  AND cn.concept_name_type = 'FULLY_SPECIFIED'
	  AND cn1.concept_name_type = 'FULLY_SPECIFIED'
	ORDER BY pi.identifier, obs.obs_datetime`

func (r *Reader) codedObs(ctx context.Context, conceptName string) ([]CodedObs, error) {
	rows, err := r.db.QueryContext(ctx, codedObsQuery, conceptName)
	if err != nil {
		return nil, fmt.Errorf("fetch %s observations: %w", conceptName, err)
	}
	defer rows.Close()

	var obs []CodedObs
	for rows.Next() {
		var o CodedObs
		if err := rows.Scan(&o.PatientIdentifier, &o.Value, &o.VisitedDate); err != nil {
			return nil, fmt.Errorf("scan %s observation: %w", conceptName, err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// textObs selects observations whose value is free text. requireText drops
// rows whose text is NULL or blank (hospital advice keeps only real notes).
func (r *Reader) textObs(ctx context.Context, conceptName string, requireText bool) ([]TextObs, error) {
	query := `
		SELECT pi.identifier, obs.value_text, obs.obs_datetime
		FROM obs
		LEFT JOIN concept_name cn ON obs.concept_id = cn.concept_id
		LEFT JOIN patient_identifier pi ON obs.person_id = pi.patient_id
		WHERE pi.identifier IS NOT NULL
		  AND cn.name = ?
		  AND cn.concept_name_type = 'FULLY_SPECIFIED'`
	if requireText {
		query += `
		  AND obs.value_text IS NOT NULL
		  AND TRIM(obs.value_text) != ''`
	}
	query += `
		ORDER BY pi.identifier, obs.obs_datetime`

	rows, err := r.db.QueryContext(ctx, query, conceptName)
	if err != nil {
		return nil, fmt.Errorf("fetch %s observations: %w", conceptName, err)
	}
	defer rows.Close()

	var obs []TextObs
	for rows.Next() {
		var o TextObs
		if err := rows.Scan(&o.PatientIdentifier, &o.Value, &o.VisitedDate); err != nil {
			return nil, fmt.Errorf("scan %s observation: %w", conceptName, err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// The five observation categories the OPD flow aggregates. Each loads the
// whole category once per run; the flow indexes them by identifier in
// memory rather than re-querying per patient.

func (r *Reader) Investigations(ctx context.Context) ([]CodedObs, error) {
	return r.codedObs(ctx, "INVESTIGATION")
}

func (r *Reader) Diagnoses(ctx context.Context) ([]CodedObs, error) {
	return r.codedObs(ctx, "PROVISIONAL DIAGNOSIS")
}

func (r *Reader) Referrals(ctx context.Context) ([]CodedObs, error) {
	return r.codedObs(ctx, "INTERNAL REFERRAL")
}

func (r *Reader) ChiefComplaints(ctx context.Context) ([]TextObs, error) {
	return r.textObs(ctx, "CHIEF COMPLAIN", false)
}

func (r *Reader) Advice(ctx context.Context) ([]TextObs, error) {
	return r.textObs(ctx, "HOSPITAL ADVICE", true)
}
