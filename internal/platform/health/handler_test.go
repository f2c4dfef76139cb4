package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func readiness(t *testing.T, h *Handler, wantCode int) ReadinessResponse {
	t.Helper()
	w := serve(h, "/health/ready")
	require.Equal(t, wantCode, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test", WithVersion("1.2.3"))

	assert.Equal(t, http.StatusOK, serve(h, "/health/live").Code)

	w := serve(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, "test", status.Environment)
	assert.Equal(t, "1.2.3", status.Version)
}

func TestReadiness(t *testing.T) {
	t.Run("no checks is ready", func(t *testing.T) {
		resp := readiness(t, New("test"), http.StatusOK)
		assert.Equal(t, "ready", resp.Status)
		assert.Empty(t, resp.Checks)
	})

	t.Run("all checks up", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })
		h.RegisterCheck("database", func(context.Context) error { return nil })
		h.RegisterCheck("ignored", nil)

		resp := readiness(t, h, http.StatusOK)
		require.Len(t, resp.Checks, 2)
		assert.Equal(t, "database", resp.Checks[0].Name)
		assert.Equal(t, "redis", resp.Checks[1].Name)
		assert.Equal(t, "up", resp.Checks[0].Status)
	})

	t.Run("a failing check makes the service not ready", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(context.Context) error { return nil })
		h.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		resp := readiness(t, h, http.StatusServiceUnavailable)
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "down", resp.Checks[1].Status)
		assert.Equal(t, "connection refused", resp.Checks[1].Error)
	})

	t.Run("re-registering replaces the check", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("kafka", func(context.Context) error { return errors.New("down") })
		h.RegisterCheck("kafka", func(context.Context) error { return nil })

		resp := readiness(t, h, http.StatusOK)
		assert.Len(t, resp.Checks, 1)
	})

	t.Run("checks share one deadline", func(t *testing.T) {
		h := New("test", WithCheckTimeout(50*time.Millisecond))
		for _, name := range []string{"a", "b", "c"} {
			h.RegisterCheck(name, func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})
		}
		start := time.Now()
		resp := readiness(t, h, http.StatusServiceUnavailable)
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, context.DeadlineExceeded.Error(), resp.Checks[2].Error)
	})
}
