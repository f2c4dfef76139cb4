// Package middleware attaches the caller's profile to authenticated requests.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/httputil"
	"censusdesk/pkg/requestcontext"
)

type contextKey struct{}

// Resolver loads the profile for an authenticated actor.
type Resolver interface {
	Resolve(ctx context.Context, actorID id.ActorID) (*models.Profile, error)
}

// RequireProfile must run after auth.RequireAuth. Requests whose identity has
// no profile are rejected before reaching a handler.
func RequireProfile(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			actorID, err := httputil.RequireActorID(ctx, logger, requestID)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			profile, err := resolver.Resolve(ctx, actorID)
			if err != nil {
				logger.WarnContext(ctx, "failed to resolve actor profile",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithProfile(ctx, profile)))
		})
	}
}

func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// ProfileFrom returns the resolved profile, or nil outside RequireProfile.
func ProfileFrom(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(contextKey{}).(*models.Profile)
	return p
}
