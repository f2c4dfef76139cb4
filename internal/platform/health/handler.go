// Package health serves liveness, readiness and status endpoints.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"censusdesk/pkg/platform/httputil"
)

const defaultCheckTimeout = 2 * time.Second

// CheckFunc reports nil when a dependency is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

type Handler struct {
	started      time.Time
	environment  string
	version      string
	checkTimeout time.Duration

	mu     sync.RWMutex
	checks []check
}

type Option func(*Handler)

func WithVersion(v string) Option {
	return func(h *Handler) { h.version = v }
}

// WithCheckTimeout bounds the whole readiness probe, not each check.
func WithCheckTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.checkTimeout = d
		}
	}
}

func New(environment string, opts ...Option) *Handler {
	h := &Handler{
		started:      time.Now(),
		environment:  environment,
		version:      "dev",
		checkTimeout: defaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterCheck adds a named readiness check, replacing one with the same
// name. A nil check is ignored.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.checks {
		if h.checks[i].name == name {
			h.checks[i].fn = fn
			return
		}
	}
	h.checks = append(h.checks, check{name: name, fn: fn})
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

type CheckResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// HandleReadiness runs the registered checks in parallel and answers 503 if
// any of them fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			err := c.fn(ctx)
			results[i] = CheckResult{Name: c.name, Status: "up", DurationMS: time.Since(start).Milliseconds()}
			if err != nil {
				results[i].Status = "down"
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	resp := ReadinessResponse{Status: "ready", Checks: results}
	status := http.StatusOK
	for _, res := range results {
		if res.Status != "up" {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			break
		}
	}
	httputil.WriteJSON(w, status, resp)
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       h.version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
