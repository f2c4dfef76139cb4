package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"censusdesk/internal/audit"
	"censusdesk/internal/census/models"
	"censusdesk/internal/census/report"
	profilemw "censusdesk/internal/profile/middleware"
	profile "censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/platform/httputil"
	"censusdesk/pkg/requestcontext"
)

// Service defines the census record operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, actor *profile.Profile, raw models.RawInput) (*models.Record, error)
	Update(ctx context.Context, actor *profile.Profile, recordID id.RecordID, raw models.RawInput) (*models.Record, error)
	Delete(ctx context.Context, actor *profile.Profile, recordID id.RecordID) error
	Get(ctx context.Context, actor *profile.Profile, recordID id.RecordID) (*models.Record, error)
	History(ctx context.Context, actor *profile.Profile, recordID id.RecordID) ([]audit.Event, error)
	ListFor(ctx context.Context, actor *profile.Profile, filter models.Filter) ([]*models.Record, error)
	Dashboard(ctx context.Context, actor *profile.Profile) (*models.Dashboard, error)
	Defaults(actor *profile.Profile) models.Defaults
	Export(ctx context.Context, actor *profile.Profile, filter models.Filter, w io.Writer) (int, error)
}

// Handler serves census record endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts routes on a router already guarded by RequireAuth and RequireProfile.
func (h *Handler) Register(r chi.Router) {
	r.Route("/census", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)
		r.Route("/records", func(r chi.Router) {
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleList)
			r.Get("/defaults", h.handleDefaults)
			r.Get("/export", h.handleExport)
			r.Get("/{id}", h.handleGet)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
			r.Get("/{id}/history", h.handleHistory)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}

	raw, ok := httputil.DecodeJSON[models.RawInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	record, err := h.service.Create(ctx, actor, *raw)
	if err != nil {
		h.logFailure(ctx, "failed to create census record", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(record))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.service.ListFor(ctx, actor, filter)
	if err != nil {
		h.logFailure(ctx, "failed to list census records", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(records))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r)
	if !ok {
		return
	}
	record, err := h.service.Get(ctx, actor, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r)
	if !ok {
		return
	}

	raw, ok := httputil.DecodeJSON[models.RawInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	record, err := h.service.Update(ctx, actor, recordID, *raw)
	if err != nil {
		h.logFailure(ctx, "failed to update census record", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, actor, recordID); err != nil {
		h.logFailure(ctx, "failed to delete census record", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	recordID, ok := h.recordID(w, r)
	if !ok {
		return
	}
	events, err := h.service.History(ctx, actor, recordID)
	if err != nil {
		h.logFailure(ctx, "failed to load record history", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(recordID, events))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	dash, err := h.service.Dashboard(ctx, actor)
	if err != nil {
		h.logFailure(ctx, "failed to build dashboard", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDashboardResponse(dash))
}

func (h *Handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDefaultsResponse(h.service.Defaults(actor)))
}

// handleExport renders the workbook in memory so a failure can still become
// a JSON error response.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireProfile(w, r)
	if !ok {
		return
	}
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.service.Export(ctx, actor, filter, &buf); err != nil {
		h.logFailure(ctx, "failed to export census records", err)
		httputil.WriteError(w, err)
		return
	}

	filename := fmt.Sprintf("census-records-%s.xlsx", requestcontext.Now(ctx).UTC().Format("20060102"))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (id.RecordID, bool) {
	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid census record id"))
		return id.RecordID{}, false
	}
	return recordID, true
}

func (h *Handler) requireProfile(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
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

// logFailure logs expected business outcomes at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeConflict),
		dErrors.HasCode(err, dErrors.CodeForbidden),
		dErrors.HasCode(err, dErrors.CodeNotFound):
		h.logger.WarnContext(ctx, msg, attrs...)
	default:
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
}
