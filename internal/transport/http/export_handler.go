package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apierrors "revpulse/internal/errors"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/services"
	api "revpulse/pkg/contracts/api/v1"
)

// ExportHandler streams the filtered table as a download attachment.
type ExportHandler struct {
	service      DashboardServiceInterface
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DashboardServiceInterface, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("handler", "export")),
		errorHandler: errorHandler,
	}
}

// Routes sets up the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{format}", h.Export)
	return r
}

// Export handles GET /api/export/{format}. The body is buffered so headers
// are only committed once the service reports success; exports are tens of
// records, never large.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := api.ExportRequest{
		FilterRequest: api.FilterRequest{
			Name:  strings.TrimSpace(r.URL.Query().Get("name")),
			Month: strings.TrimSpace(r.URL.Query().Get("month")),
		},
		Format: chi.URLParam(r, "format"),
	}

	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	result, err := h.service.Export(r.Context(), req, &buf)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("format", req.Format),
			slog.String("error", err.Error()))

		switch {
		case errors.Is(err, services.ErrInvalidFormat):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		case errors.Is(err, services.ErrInvalidFilter):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("month", err.Error()))
		default:
			h.errorHandler.HandleError(w, r, apierrors.ExportError(req.Format, err))
		}
		return
	}

	h.logger.InfoContext(r.Context(), "export served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("filename", result.Filename),
		slog.Int("records", result.RecordCount),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		// Headers are already gone; nothing to send the client but a log.
		h.logger.WarnContext(r.Context(), "export body write interrupted",
			slog.String("error", err.Error()))
	}
}
