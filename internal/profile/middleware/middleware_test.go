package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/requestcontext"
	"censusdesk/pkg/testutil"
)

type stubResolver struct {
	profile *models.Profile
	err     error
}

func (r stubResolver) Resolve(context.Context, id.ActorID) (*models.Profile, error) {
	return r.profile, r.err
}

func TestRequireProfile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec := testutil.NewExecutiveBuilder().Build()

	serve := func(resolver Resolver, actorID id.ActorID) (*httptest.ResponseRecorder, *models.Profile) {
		var seen *models.Profile
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = ProfileFrom(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, "/census/records", nil)
		if !actorID.IsNil() {
			req = req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
		}
		w := httptest.NewRecorder()
		RequireProfile(resolver, logger)(next).ServeHTTP(w, req)
		return w, seen
	}

	t.Run("attaches the profile", func(t *testing.T) {
		w, seen := serve(stubResolver{profile: exec}, exec.ID)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, exec, seen)
	})

	t.Run("unknown identity is rejected", func(t *testing.T) {
		w, seen := serve(stubResolver{err: dErrors.New(dErrors.CodeUnauthorized, "no profile")}, exec.ID)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, seen)
	})

	t.Run("missing actor is a wiring error", func(t *testing.T) {
		w, _ := serve(stubResolver{profile: exec}, id.ActorID{})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no profile outside the middleware", func(t *testing.T) {
		assert.Nil(t, ProfileFrom(context.Background()))
	})
}
