// Package validation checks raw census input and produces a normalized record.
//
// Every rule runs; callers receive the full list of field violations rather
// than the first failure.
package validation

import (
	"sort"
	"strings"

	"censusdesk/internal/census/models"
	dErrors "censusdesk/pkg/domain-errors"
	pkgvalidation "censusdesk/pkg/validation"
)

const (
	FieldFamilyHeadName             = "family_head_name"
	FieldNumberOfDependents         = "number_of_dependents"
	FieldNumberOfEducatedMembers    = "number_of_educated_members"
	FieldNumberOfNonEducatedMembers = "number_of_non_educated_members"
	FieldIdentityProofType          = "identity_proof_type"
	FieldIdentityNumber             = "identity_number"
	FieldTerritory                  = "territory"
)

// fieldOrder keeps violations in form order regardless of which rule produced them.
var fieldOrder = map[string]int{
	FieldFamilyHeadName:             0,
	FieldNumberOfDependents:         1,
	FieldNumberOfEducatedMembers:    2,
	FieldNumberOfNonEducatedMembers: 3,
	FieldIdentityProofType:          4,
	FieldIdentityNumber:             5,
	FieldTerritory:                  6,
}

const (
	msgCountExceeded = "Total of educated and non-educated members cannot exceed the number of dependents."
	msgInvalidRecord = "census record is invalid"
)

// textFields holds the string inputs checked through struct tags.
type textFields struct {
	FamilyHeadName    string `json:"family_head_name" validate:"min=2"`
	IdentityProofType string `json:"identity_proof_type" validate:"identityprooftype"`
	IdentityNumber    string `json:"identity_number" validate:"required"`
	Territory         string `json:"territory" validate:"territory"`
}

func (textFields) ValidationMessages() map[string]string {
	return map[string]string{
		FieldFamilyHeadName:    "Family head name is required.",
		FieldIdentityProofType: "Invalid ID proof type selected.",
		FieldIdentityNumber:    "ID number is required.",
		FieldTerritory:         "Invalid territory selected.",
	}
}

type countRule struct {
	field    string
	label    string
	count    models.Count
	assignTo *int
}

// Validate checks every rule against input. On success it returns the
// normalized record; otherwise a CodeValidation error listing all violations.
func Validate(input models.RawInput) (*models.ValidatedRecord, error) {
	text := textFields{
		FamilyHeadName:    strings.TrimSpace(input.FamilyHeadName),
		IdentityProofType: strings.TrimSpace(input.IdentityProofType),
		IdentityNumber:    strings.TrimSpace(input.IdentityNumber),
		Territory:         strings.TrimSpace(input.Territory),
	}
	violations := pkgvalidation.Check(text)

	out := &models.ValidatedRecord{
		FamilyHeadName:    text.FamilyHeadName,
		IdentityProofType: models.IdentityProofType(text.IdentityProofType),
		IdentityNumber:    text.IdentityNumber,
		Territory:         models.Territory(text.Territory),
	}

	countsOK := true
	for _, rule := range []countRule{
		{FieldNumberOfDependents, "Number of dependents", input.NumberOfDependents, &out.NumberOfDependents},
		{FieldNumberOfEducatedMembers, "Number of educated members", input.NumberOfEducatedMembers, &out.NumberOfEducatedMembers},
		{FieldNumberOfNonEducatedMembers, "Number of non-educated members", input.NumberOfNonEducatedMembers, &out.NumberOfNonEducatedMembers},
	} {
		n, err := rule.count.Int()
		switch {
		case err != nil:
			violations = append(violations, dErrors.FieldViolation{Field: rule.field, Message: rule.label + " must be a whole number."})
			countsOK = false
		case n < 0:
			violations = append(violations, dErrors.FieldViolation{Field: rule.field, Message: rule.label + " cannot be negative."})
			countsOK = false
		default:
			*rule.assignTo = n
		}
	}

	// Both counts are non-negative here, so the subtraction cannot overflow.
	if countsOK && out.NumberOfEducatedMembers > out.NumberOfDependents-out.NumberOfNonEducatedMembers {
		violations = append(violations, dErrors.FieldViolation{Field: FieldNumberOfDependents, Message: msgCountExceeded})
	}

	// An empty number only fails "required"; the format rule would add noise.
	if out.IdentityNumber != "" && out.IdentityProofType.IsValid() {
		if msg, ok := CheckIdentityFormat(out.IdentityProofType, out.IdentityNumber); !ok {
			violations = append(violations, dErrors.FieldViolation{Field: FieldIdentityNumber, Message: msg})
		}
	}

	if len(violations) > 0 {
		sort.SliceStable(violations, func(i, j int) bool {
			return fieldOrder[violations[i].Field] < fieldOrder[violations[j].Field]
		})
		return nil, dErrors.NewValidation(msgInvalidRecord, violations)
	}
	return out, nil
}
