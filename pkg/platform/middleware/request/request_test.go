package request

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"censusdesk/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(got *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*got = requestcontext.RequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("generates UUID when no header provided", func(t *testing.T) {
		var captured string
		w := httptest.NewRecorder()
		RequestID(capture(&captured)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/census/records", nil))

		assert.Len(t, captured, 36)
		assert.Equal(t, captured, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a valid client-provided ID", func(t *testing.T) {
		var captured string
		req := httptest.NewRequest(http.MethodGet, "/census/records", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		w := httptest.NewRecorder()
		RequestID(capture(&captured)).ServeHTTP(w, req)

		assert.Equal(t, "trace.span_1234", captured)
	})

	t.Run("replaces unsafe or oversized IDs", func(t *testing.T) {
		for _, bad := range []string{"abc\ninjected", "a b", strings.Repeat("a", MaxRequestIDLength+1)} {
			var captured string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", bad)
			RequestID(capture(&captured)).ServeHTTP(httptest.NewRecorder(), req)
			assert.NotEqual(t, bad, captured)
			assert.Len(t, captured, 36)
		}
	})
}

func TestRequestTime(t *testing.T) {
	var first, second time.Time
	handler := RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(2 * time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, first, second)
	assert.Equal(t, time.UTC, first.Location())
}

func TestClientIP(t *testing.T) {
	var ip string
	handler := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.1.2.3", ip)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestContentTypeJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("rejects form posts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/census/records", strings.NewReader("a=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		ContentTypeJSON(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("accepts json with charset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/census/records/x", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		w := httptest.NewRecorder()
		ContentTypeJSON(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("ignores GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/census/records", nil)
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		ContentTypeJSON(ok).ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))

	require.Error(t, readErr)
}

func TestLatencyMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/census/records/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	route := func(r *http.Request) string {
		if r.URL.Path == "/nowhere" {
			return ""
		}
		return "/census/records/{id}"
	}

	h := LatencyMiddleware(m, route)(next)
	for _, path := range []string{"/census/records/abc", "/census/records/def", "/census/records/missing", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
	assert.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/census/records/{id}", "2xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/census/records/{id}", "4xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("GET", unmatchedRoute, "2xx")), 0)

	rec := httptest.NewRecorder()
	LatencyMiddleware(nil, nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusNoContent))
	assert.Equal(t, "5xx", statusClass(http.StatusGatewayTimeout))
	assert.Equal(t, "other", statusClass(0))
}
