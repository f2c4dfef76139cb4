package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	profilemw "censusdesk/internal/profile/middleware"
	"censusdesk/internal/profile/models"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/httputil"
	"censusdesk/pkg/requestcontext"
)

// Service defines the profile operations exposed over HTTP.
type Service interface {
	RegisterExecutive(ctx context.Context, actor *models.Profile, req *models.RegisterExecutiveRequest) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actor *models.Profile, req *models.UpdateProfileRequest) (*models.Profile, error)
	ListExecutives(ctx context.Context, actor *models.Profile) ([]*models.Profile, error)
}

// Handler serves the caller's own profile and admin executive management.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts routes on a router already guarded by RequireAuth and RequireProfile.
func (h *Handler) Register(r chi.Router) {
	r.Get("/profiles/me", h.handleGetMe)
	r.Put("/profiles/me", h.handleUpdateMe)
	r.Post("/admin/executives", h.handleRegisterExecutive)
	r.Get("/admin/executives", h.handleListExecutives)
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(actor))
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	updated, err := h.service.UpdateProfile(ctx, actor, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update profile",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(updated))
}

func (h *Handler) handleRegisterExecutive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only admins can register executives"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.RegisterExecutiveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	created, err := h.service.RegisterExecutive(ctx, actor, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to register executive",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToResponse(created))
}

func (h *Handler) handleListExecutives(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListExecutives(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := models.ExecutiveListResponse{
		Executives: make([]models.ProfileResponse, 0, len(list)),
		Total:      len(list),
	}
	for _, p := range list {
		resp.Executives = append(resp.Executives, models.ToResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) requireProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	actor := profilemw.ProfileFrom(r.Context())
	if actor == nil {
		h.logger.ErrorContext(r.Context(), "profile missing from context despite profile middleware",
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return nil, false
	}
	return actor, true
}
