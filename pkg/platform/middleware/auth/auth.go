package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/httputil"
	"censusdesk/pkg/requestcontext"
)

const (
	msgMissingToken = "Missing or invalid Authorization header"
	msgBadToken     = "Invalid or expired token"
)

// JWTValidator checks a bearer token from the identity provider.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries identity only. Role and territory come from the profile
// store so a token can never grant them.
type JWTClaims struct {
	ActorID string
	Email   string
}

// bearerToken returns the credentials of an "Authorization: Bearer" header.
// The scheme is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth admits requests with a valid bearer token and puts the actor ID
// and contact e-mail into the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(reason, msg string, err error) {
				logger.WarnContext(ctx, "unauthorized request",
					"reason", reason,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="censusdesk"`)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, msg))
			}

			token, ok := bearerToken(r)
			if !ok {
				reject("missing_token", msgMissingToken, nil)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject("invalid_token", msgBadToken, err)
				return
			}
			actorID, err := id.ParseActorID(claims.ActorID)
			if err == nil && actorID.IsNil() {
				err = dErrors.New(dErrors.CodeInvalidInput, "nil subject")
			}
			if err != nil {
				reject("malformed_subject", msgBadToken, err)
				return
			}

			ctx = requestcontext.WithActorID(ctx, actorID)
			ctx = requestcontext.WithActorContact(ctx, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
