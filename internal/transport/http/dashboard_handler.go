package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "revpulse/internal/errors"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/services"
	api "revpulse/pkg/contracts/api/v1"
)

// DashboardHandler serves the dashboard read API and load control.
type DashboardHandler struct {
	service      DashboardServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("handler", "dashboard")),
		errorHandler: errorHandler,
	}
}

// Routes sets up the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Overview)
	r.Get("/records", h.Records)
	r.Get("/charts/monthly", h.MonthlyChart)
	r.Get("/charts/entities", h.EntityChart)
	r.Get("/load", h.LoadStatus)
	r.Post("/reload", customMiddleware.LoadTraceHandler("api", h.Reload))

	return r
}

// Overview handles GET /api/dashboard
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	req, err := filterFromQuery(h.validation, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	overview, err := h.service.Overview(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "overview")
		return
	}

	h.logger.DebugContext(r.Context(), "overview served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("filtered_records", overview.Stats.RecordCount),
		slog.String("load_state", string(overview.Load.State)))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   overview,
	})
}

// Records handles GET /api/dashboard/records
func (h *DashboardHandler) Records(w http.ResponseWriter, r *http.Request) {
	req, err := filterFromQuery(h.validation, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.Records(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "records")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// MonthlyChart handles GET /api/dashboard/charts/monthly
func (h *DashboardHandler) MonthlyChart(w http.ResponseWriter, r *http.Request) {
	req, err := filterFromQuery(h.validation, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points, err := h.service.MonthlyTrend(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "monthly chart")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   points,
		"count":  len(points),
	})
}

// EntityChart handles GET /api/dashboard/charts/entities
func (h *DashboardHandler) EntityChart(w http.ResponseWriter, r *http.Request) {
	req, err := filterFromQuery(h.validation, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	entities, err := h.service.EntityBreakdown(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "entity chart")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   entities,
		"count":  len(entities),
	})
}

// LoadStatus handles GET /api/dashboard/load
func (h *DashboardHandler) LoadStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.LoadStatus(r.Context()),
	})
}

// Reload handles POST /api/dashboard/reload. It answers immediately with
// 202 and the loading status; progress is observable on /load and over the
// WebSocket load:state channel.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	status := h.service.Reload(r.Context(), "api")

	h.logger.InfoContext(r.Context(), "reload accepted",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Uint64("generation", status.Generation))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// handleServiceError maps service sentinels onto API errors before
// delegating to the shared error handler.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.logger.ErrorContext(r.Context(), op+" failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrInvalidFilter):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("month", err.Error()))
	case errors.Is(err, services.ErrInvalidFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// filterFromQuery binds the name and month query parameters and validates
// them against the FilterRequest contract. Missing parameters stay empty
// and normalize to the wildcard downstream.
func filterFromQuery(v *customMiddleware.ValidationMiddleware, r *http.Request) (api.FilterRequest, error) {
	req := api.FilterRequest{
		Name:  strings.TrimSpace(r.URL.Query().Get("name")),
		Month: strings.TrimSpace(r.URL.Query().Get("month")),
	}

	if err := v.ValidateStruct(req); err != nil {
		return api.FilterRequest{}, err
	}

	return req, nil
}
