package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	dErrors "censusdesk/pkg/domain-errors"
)

var (
	defaultValidator = newValidator()
	registerMu       sync.Mutex
)

// MessageOverrider lets a request type replace default messages. Keys are
// "<json field>.<tag>" or "<json field>" for every tag on that field.
type MessageOverrider interface {
	ValidationMessages() map[string]string
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Register adds a custom tag to the shared validator. It is meant for package init.
func Register(tag string, fn validator.Func) error {
	registerMu.Lock()
	defer registerMu.Unlock()
	return defaultValidator.RegisterValidation(tag, fn)
}

// Validate checks struct tags and returns a CodeValidation error listing every violation.
func Validate(req any) error {
	violations := Check(req)
	if len(violations) == 0 {
		return nil
	}
	return dErrors.NewValidation(violations[0].Message, violations)
}

// Check runs struct tag validation and returns the violations without wrapping them.
func Check(req any) []dErrors.FieldViolation {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []dErrors.FieldViolation{{Message: "invalid request body"}}
	}

	var overrides map[string]string
	if o, ok := req.(MessageOverrider); ok {
		overrides = o.ValidationMessages()
	}

	violations := make([]dErrors.FieldViolation, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fe.Field()
		msg, ok := overrides[field+"."+fe.Tag()]
		if !ok {
			msg, ok = overrides[field]
		}
		if !ok {
			msg = ErrorMessage(fe)
		}
		violations = append(violations, dErrors.FieldViolation{Field: field, Message: msg})
	}
	return violations
}

// ErrorMessage converts a single field error into a human-readable message.
func ErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
