package patient

import (
	"database/sql"
	"regexp"
	"strings"
	"time"
)

// MapGender maps the legacy single-letter gender codes.
func MapGender(raw string) Gender {
	switch raw {
	case "M":
		return GenderMale
	case "F":
		return GenderFemale
	default:
		return GenderOther
	}
}

// maxNumericIdentifierLen is the widest purely numeric identifier that fits
// downstream integer columns without overflow.
const maxNumericIdentifierLen = 19

var numericRe = regexp.MustCompile(`^[0-9]+$`)

// SanitizeIdentifier rewrites purely numeric identifiers wider than 19
// characters to a synthetic SANITIZED_ value. Everything else passes
// through unchanged.
func SanitizeIdentifier(id string) string {
	if len(id) > maxNumericIdentifierLen && numericRe.MatchString(id) {
		return "SANITIZED_" + id
	}
	return id
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail returns the input when it looks like an email address, ""
// otherwise.
func ValidEmail(s string) string {
	if emailRe.MatchString(s) {
		return s
	}
	return ""
}

// ValidNationalID accepts only the national ID lengths issued to date:
// 10, 13 or 17 numeric digits.
func ValidNationalID(s string) string {
	switch len(s) {
	case 10, 13, 17:
		if numericRe.MatchString(s) {
			return s
		}
	}
	return ""
}

// CoerceDate converts a nullable legacy timestamp to a pointer, nil when
// absent.
func CoerceDate(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// FullName joins the non-empty name parts with single spaces.
func FullName(given, middle, family string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{given, middle, family} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

var (
	nonAlphaRe   = regexp.MustCompile(`[^a-zA-Z\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// relationRule maps one raw relation kind to its canonical value. Gendered
// kinds carry the gender that keeps the labeled direction and the value to
// use otherwise; in-law kinds key on the related person's gender instead of
// the subject's.
type relationRule struct {
	fixed     RelationType
	onRelated bool
	match     Gender
	keep      RelationType
	invert    RelationType
}

var relationRules = map[string]relationRule{
	"FATHER_IN_LAW":   {onRelated: true, match: GenderMale, keep: RelationFatherInLaw, invert: RelationMotherInLaw},
	"MOTHER_IN_LAW":   {onRelated: true, match: GenderFemale, keep: RelationMotherInLaw, invert: RelationFatherInLaw},
	"FATHER":          {match: GenderMale, keep: RelationFather, invert: RelationMother},
	"MOTHER":          {match: GenderFemale, keep: RelationMother, invert: RelationFather},
	"SON":             {match: GenderMale, keep: RelationSon, invert: RelationDaughter},
	"DAUGHTER":        {match: GenderFemale, keep: RelationDaughter, invert: RelationSon},
	"BROTHER":         {match: GenderMale, keep: RelationBrother, invert: RelationSister},
	"SISTER":          {match: GenderFemale, keep: RelationSister, invert: RelationBrother},
	"SPOUSE":          {fixed: RelationSpouse},
	"WIFE":            {fixed: RelationSpouse},
	"HUSBAND":         {fixed: RelationSpouse},
	"SON_IN_LAW":      {match: GenderMale, keep: RelationSonInLaw, invert: RelationDaughterInLaw},
	"DAUGHTER_IN_LAW": {match: GenderFemale, keep: RelationDaughterInLaw, invert: RelationSonInLaw},
	"UNCLE":           {match: GenderMale, keep: RelationUncle, invert: RelationAunt},
	"AUNT":            {match: GenderFemale, keep: RelationAunt, invert: RelationUncle},
	"NEPHEW":          {match: GenderMale, keep: RelationNephew, invert: RelationNiece},
	"NIECE":           {match: GenderFemale, keep: RelationNiece, invert: RelationNephew},
	"GRANDFATHER":     {match: GenderMale, keep: RelationGrandfather, invert: RelationGrandmother},
	"GRANDMOTHER":     {match: GenderFemale, keep: RelationGrandmother, invert: RelationGrandfather},
	"GRANDSON":        {match: GenderMale, keep: RelationGrandson, invert: RelationGranddaughter},
	"GRANDDAUGHTER":   {match: GenderFemale, keep: RelationGranddaughter, invert: RelationGrandson},
}

// NormalizeRelation maps a raw legacy relation string to the canonical
// enum. subjectGender is the gender of the person the label describes;
// relatedGender that of the other party. Total: anything unrecognized or
// empty maps to OTHER.
func NormalizeRelation(raw string, subjectGender, relatedGender Gender) RelationType {
	if strings.TrimSpace(raw) == "" {
		return RelationOther
	}

	key := nonAlphaRe.ReplaceAllString(raw, "")
	key = strings.ToUpper(strings.TrimSpace(key))
	key = whitespaceRe.ReplaceAllString(key, "_")

	rule, ok := relationRules[key]
	if !ok {
		return RelationOther
	}
	if rule.fixed != "" {
		return rule.fixed
	}

	g := subjectGender
	if rule.onRelated {
		g = relatedGender
	}
	if g == rule.match {
		return rule.keep
	}
	return rule.invert
}
