package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	dErrors "censusdesk/pkg/domain-errors"
)

const msgInvalidBody = "invalid request body"

// DecodeJSON decodes a single JSON object into T. Unknown fields, trailing
// data and oversized bodies are rejected. On failure it writes a 400 naming
// the offending field when there is one, and returns nil, false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&req)
	if err == nil && dec.More() {
		err = errTrailingData
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, bodyError(err))
		return nil, false
	}
	return &req, true
}

var errTrailingData = errors.New("unexpected data after JSON object")

// bodyError turns a json decoding failure into a client-facing domain error.
func bodyError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	case errors.As(err, &maxErr):
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		msg := fmt.Sprintf("%s has the wrong type", typeErr.Field)
		return dErrors.NewFieldError(dErrors.CodeBadRequest, typeErr.Field, msg)
	}
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return dErrors.NewFieldError(dErrors.CodeBadRequest, field, fmt.Sprintf("%s is not a recognized field", field))
	}
	return dErrors.New(dErrors.CodeBadRequest, msgInvalidBody)
}

type Validatable interface {
	Validate() error
}

type Normalizable interface {
	Normalize()
}

type Sanitizable interface {
	Sanitize()
}

// PrepareRequest runs Sanitize, Normalize and Validate, in that order, for
// whichever of them req implements.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare is DecodeJSON followed by PrepareRequest. Validation
// failures keep their field list.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		var domainErr *dErrors.Error
		if !errors.As(err, &domainErr) {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
