package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	profilemw "censusdesk/internal/profile/middleware"
	"censusdesk/pkg/platform/middleware/auth"
	"censusdesk/pkg/platform/middleware/request"
	"censusdesk/pkg/validation"
)

// Registrar mounts a bounded context's routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries everything the router mounts. API handlers sit
// behind token validation and profile resolution; Public ones do not.
// MaxBodyBytes defaults to validation.MaxBodySize.
type RouterConfig struct {
	Logger         *slog.Logger
	Tokens         auth.JWTValidator
	Profiles       profilemw.Resolver
	Public         []Registrar
	API            []Registrar
	Metrics        http.Handler
	RequestMetrics *request.Metrics
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientIP)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.RequestMetrics, routePattern))

	for _, h := range cfg.Public {
		h.Register(r)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}
		maxBody := cfg.MaxBodyBytes
		if maxBody <= 0 {
			maxBody = validation.MaxBodySize
		}
		r.Use(request.BodyLimit(maxBody))
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(cfg.Tokens, cfg.Logger))
		r.Use(profilemw.RequireProfile(cfg.Profiles, cfg.Logger))
		for _, h := range cfg.API {
			h.Register(r)
		}
	})

	return r
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
