package pharmacy

import "testing"

func TestClassifyRoute(t *testing.T) {
	cases := map[string]string{
		"TABLET":      "Oral",
		"CAPSULE":     "Oral",
		"DRY SYRUP":   "Oral",
		"INJECTION":   "Injection/IV",
		"INSULIN":     "Injection/IV",
		"CREAM":       "Topical",
		"JEL":         "Topical",
		"INHALER":     "Respiratory",
		"EYE DROP":    "Ophthalmic",
		"NASAL DROP":  "Nasal",
		"SUPPOSITORY": "Rectal/Vaginal",
		"MOUTHWASH":   "Other",
		"XYZQ":        "Other",
		"":            "Other",
	}
	for in, want := range cases {
		if got := ClassifyRoute(in); got != want {
			t.Errorf("ClassifyRoute(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifyRoute_TrimsInput(t *testing.T) {
	if got := ClassifyRoute("  TABLET  "); got != "Oral" {
		t.Errorf("ClassifyRoute with padding = %q, want Oral", got)
	}
}
