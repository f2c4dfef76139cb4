// Package domainerrors carries outcome codes from stores and services up to
// the transports, which alone decide how a code is rendered.
package domainerrors

import (
	"context"
	"errors"
)

type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation errors list every violated rule in Fields.
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
)

// FieldViolation names one input field and the message shown for it.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Code    Code
	Message string
	Err     error
	Fields  []FieldViolation
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code alone, so errors.Is(err, &Error{Code: CodeConflict})
// finds a conflict anywhere in the chain.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func NewValidation(msg string, fields []FieldViolation) error {
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// NewFieldError blames a single input field.
func NewFieldError(code Code, field, msg string) error {
	return &Error{Code: code, Message: msg, Fields: []FieldViolation{{Field: field, Message: msg}}}
}

// Wrap attaches msg to err. A domain error already in the chain keeps its
// code and fields; code applies only to foreign errors.
func Wrap(err error, code Code, msg string) error {
	if existing, ok := asError(err); ok {
		return &Error{Code: existing.Code, Message: msg, Err: err, Fields: existing.Fields}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// WrapInfra wraps a store or broker failure: cancellation and deadlines
// become CodeTimeout, anything else CodeInternal.
func WrapInfra(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, CodeTimeout, msg)
	}
	return Wrap(err, CodeInternal, msg)
}

// CodeOf returns the code of the outermost domain error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

func FieldsOf(err error) []FieldViolation {
	if e, ok := asError(err); ok {
		return e.Fields
	}
	return nil
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
