package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "revpulse/internal/errors"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/services"
)

// InsightHandler serves the best-effort collaborator reading of the
// filtered view. The endpoint never fails on collaborator trouble; the
// service substitutes the fallback sentence and the response stays 200.
type InsightHandler struct {
	service      InsightServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(service InsightServiceInterface, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InsightHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("handler", "insight")),
		errorHandler: errorHandler,
	}
}

// Routes sets up the insight routes
func (h *InsightHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Insight)
	return r
}

// Insight handles GET /api/insight
func (h *InsightHandler) Insight(w http.ResponseWriter, r *http.Request) {
	req, err := filterFromQuery(h.validation, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Insight(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "insight failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))

		if errors.Is(err, services.ErrInvalidFilter) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("month", err.Error()))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "insight served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Bool("generated", result.Generated),
		slog.Int("records", result.RecordCount))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}
