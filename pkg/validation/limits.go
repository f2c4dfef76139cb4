package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "censusdesk/pkg/domain-errors"
)

const (
	// MaxBodySize is the maximum accepted request body (64 KB).
	MaxBodySize = 64 * 1024

	// MaxSearchLength caps the free-text filter.
	MaxSearchLength = 100
)

// CheckStringLength fails when value has more than max characters.
func CheckStringLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		msg := fmt.Sprintf("%s exceeds max length of %d", field, max)
		return dErrors.NewValidation(msg, []dErrors.FieldViolation{{Field: field, Message: msg}})
	}
	return nil
}
