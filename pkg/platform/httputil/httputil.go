package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/requestcontext"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       string                   `json:"error"`
	Description string                   `json:"error_description,omitempty"`
	Fields      []dErrors.FieldViolation `json:"fields,omitempty"`
}

type wireError struct {
	status int
	code   string
}

var internalError = wireError{http.StatusInternalServerError, "internal_error"}

var wireErrors = map[dErrors.Code]wireError{
	dErrors.CodeNotFound:           {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:         {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:         {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation: {http.StatusBadRequest, "validation_error"},
	dErrors.CodeConflict:           {http.StatusConflict, "conflict"},
	dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:          {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:            {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodeInternal:           internalError,
}

// StatusFor returns the HTTP status and wire code for a domain error code.
// Unknown codes are internal errors.
func StatusFor(code dErrors.Code) (int, string) {
	we, ok := wireErrors[code]
	if !ok {
		we = internalError
	}
	return we.status, we.code
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already sent; an encode failure only truncates the body.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError renders err. Errors without a domain code become a bare 500 so
// driver messages never reach clients. Validation errors keep every field.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, internalError.status, ErrorResponse{Error: internalError.code})
		return
	}
	status, code := StatusFor(domainErr.Code)
	WriteJSON(w, status, ErrorResponse{
		Error:       code,
		Description: domainErr.Message,
		Fields:      domainErr.Fields,
	})
}

// RequireActorID reads the actor set by the auth middleware. Its absence
// means a route was mounted outside the authenticated group.
func RequireActorID(ctx context.Context, logger *slog.Logger, requestID string) (id.ActorID, error) {
	actorID := requestcontext.ActorID(ctx)
	if !actorID.IsNil() {
		return actorID, nil
	}
	if logger != nil {
		logger.ErrorContext(ctx, "route reached without an authenticated actor",
			"request_id", requestID)
	}
	return id.ActorID{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
}
