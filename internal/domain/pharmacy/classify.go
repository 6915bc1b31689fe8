package pharmacy

import "strings"

// routeByFormulationType maps every formulation-type spelling observed in
// the legacy data, typos included, to its administration route. The legacy
// operators free-typed these names, so the table matches them verbatim.
var routeByFormulationType = map[string]string{}

func init() {
	entries := map[string][]string{
		"Oral": {
			"TABLET", "CAPSULE", "CAPSUL", "CAPSULES", "SYRUP", "LIQUID SYRUP", "ORAL",
			"ORAL GEL", "PACKET", "DRY SYRUP", "SUSPENSION", "SUSPENSION 125", "VITAMIN",
		},
		"Injection/IV": {
			"INJECTION", "INJECTION 100ML", "INJECTION- 200MG", "IV 600", "IV 600 INFUSION",
			"IV 600 INFUSION-300ML", "IV400 INFUSION", "INFUSION", "INFUTION", "INFUTION-",
			"INSULIN", "INSULIN-", "BI PHASIC PREMIX", "GLARGINE", "NEUTRAL ISOPHANE", "R 100",
			"REGULAR",
		},
		"Topical": {
			"CREAM", "GEL", "LOTION", "SKIN OINMENT", "SHAMPOO", "APPLICATION", "OINMENT", "JEL",
		},
		"Respiratory": {
			"INHALER", "INHALER HFA", "NEBULE", "NEBULIZER", "2 PUFF S/L",
		},
		"Ophthalmic": {
			"EYE DROP", "EYE OINMENT",
		},
		"Nasal": {
			"NASAL DROP",
		},
		"Rectal/Vaginal": {
			"SUPPOSITORY", "CONDOM",
		},
		"Other": {
			"MOUTHWASH", "SPRAY", "SALINE", "BAG", "SOLUTION", "WATER", "FORTE 400", "WRONG", "N/A",
		},
	}
	for route, types := range entries {
		for _, t := range types {
			routeByFormulationType[t] = route
		}
	}
}

// ClassifyRoute returns the administration route for a formulation-type
// name, "Other" when unmatched. Total: never fails.
func ClassifyRoute(formulationType string) string {
	if route, ok := routeByFormulationType[strings.TrimSpace(formulationType)]; ok {
		return route
	}
	return "Other"
}
