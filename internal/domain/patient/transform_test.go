package patient

import (
	"database/sql"
	"testing"
	"time"
)

func TestMapGender(t *testing.T) {
	cases := map[string]Gender{
		"M": GenderMale,
		"F": GenderFemale,
		"U": GenderOther,
		"":  GenderOther,
	}
	for raw, want := range cases {
		if got := MapGender(raw); got != want {
			t.Errorf("MapGender(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"numeric 20 digits rewritten", "12345678901234567890", "SANITIZED_12345678901234567890"},
		{"numeric 19 digits unchanged", "1234567890123456789", "1234567890123456789"},
		{"non-numeric long unchanged", "H0123456789012345678901", "H0123456789012345678901"},
		{"short identifier unchanged", "H001", "H001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeIdentifier(tt.in); got != tt.want {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	if got := ValidEmail("a@b.co"); got != "a@b.co" {
		t.Errorf("valid email rejected: %q", got)
	}
	for _, bad := range []string{"not-an-email", "a@b", "a b@c.co", ""} {
		if got := ValidEmail(bad); got != "" {
			t.Errorf("ValidEmail(%q) = %q, want empty", bad, got)
		}
	}
}

func TestValidNationalID(t *testing.T) {
	if got := ValidNationalID("1234567890123"); got == "" {
		t.Error("13-digit national ID rejected")
	}
	if got := ValidNationalID("1234567890"); got == "" {
		t.Error("10-digit national ID rejected")
	}
	if got := ValidNationalID("12345678901234567"); got == "" {
		t.Error("17-digit national ID rejected")
	}
	for _, bad := range []string{"12345678901", "12345abc90", ""} {
		if got := ValidNationalID(bad); got != "" {
			t.Errorf("ValidNationalID(%q) = %q, want empty", bad, got)
		}
	}
}

func TestCoerceDate(t *testing.T) {
	if got := CoerceDate(sql.NullTime{}); got != nil {
		t.Errorf("absent time coerced to %v, want nil", got)
	}
	ts := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	got := CoerceDate(sql.NullTime{Time: ts, Valid: true})
	if got == nil || !got.Equal(ts) {
		t.Errorf("CoerceDate = %v, want %v", got, ts)
	}
}

func TestFullName(t *testing.T) {
	if got := FullName("Jon", "", "Doe"); got != "Jon Doe" {
		t.Errorf("FullName = %q, want %q", got, "Jon Doe")
	}
	if got := FullName("Jon", "M", "Doe"); got != "Jon M Doe" {
		t.Errorf("FullName = %q, want %q", got, "Jon M Doe")
	}
	if got := FullName("", "", ""); got != "" {
		t.Errorf("FullName of empty parts = %q, want empty", got)
	}
}

func TestNormalizeRelation_GenderAwareInversion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		subject Gender
		related Gender
		want    RelationType
	}{
		{"father stays father for male subject", "father", GenderMale, GenderFemale, RelationFather},
		{"father becomes mother for female subject", "father", GenderFemale, GenderMale, RelationMother},
		{"mother becomes father for non-female subject", "mother", GenderMale, GenderFemale, RelationFather},
		{"wife is spouse regardless of gender", "wife", GenderMale, GenderFemale, RelationSpouse},
		{"husband is spouse regardless of gender", "husband", GenderFemale, GenderMale, RelationSpouse},
		{"son inverts on subject gender", "son", GenderFemale, GenderMale, RelationDaughter},
		{"father in law keys on related gender", "father in law", GenderFemale, GenderMale, RelationFatherInLaw},
		{"father in law inverts on related female", "father in law", GenderMale, GenderFemale, RelationMotherInLaw},
		{"mother in law inverts on related male", "mother in law", GenderFemale, GenderMale, RelationFatherInLaw},
		{"hyphenated relation collapses to other", "father-in-law", GenderMale, GenderMale, RelationOther},
		{"granddaughter inverts for male subject", "granddaughter", GenderMale, GenderFemale, RelationGrandson},
		{"unknown maps to other", "cousin twice removed?", GenderMale, GenderFemale, RelationOther},
		{"empty maps to other", "", GenderMale, GenderFemale, RelationOther},
		{"whitespace maps to other", "   ", GenderMale, GenderFemale, RelationOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRelation(tt.raw, tt.subject, tt.related); got != tt.want {
				t.Errorf("NormalizeRelation(%q, %s, %s) = %s, want %s",
					tt.raw, tt.subject, tt.related, got, tt.want)
			}
		})
	}
}

func TestNormalizeRelation_CleansPunctuationAndCase(t *testing.T) {
	if got := NormalizeRelation("  Father  In  Law!! ", GenderMale, GenderMale); got != RelationFatherInLaw {
		t.Errorf("punctuated relation normalized to %s, want FATHER_IN_LAW", got)
	}
	if got := NormalizeRelation("wife2", GenderMale, GenderFemale); got != RelationSpouse {
		t.Errorf("relation with digits normalized to %s, want SPOUSE", got)
	}
}
