package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// FrontendHandler serves the embedded dashboard frontend. Paths that match
// an embedded asset are served as-is; everything else falls back to
// index.html so deep links land on the single-page app.
type FrontendHandler struct {
	assets fs.FS
	files  http.Handler
	logger *slog.Logger
}

// NewFrontendHandler creates a handler over the embedded web assets.
func NewFrontendHandler(assets fs.FS, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		assets: assets,
		files:  http.FileServer(http.FS(assets)),
		logger: logger.With(slog.String("handler", "frontend")),
	}
}

// ServeHTTP serves a static asset when one exists and the SPA shell
// otherwise.
func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" || name == "." {
		h.serveIndex(w, r)
		return
	}

	if _, err := fs.Stat(h.assets, name); err != nil {
		h.serveIndex(w, r)
		return
	}

	h.files.ServeHTTP(w, r)
}

// serveIndex renders the SPA shell with no-store so clients always pick up
// fresh assets after a deploy.
func (h *FrontendHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index, err := fs.ReadFile(h.assets, "index.html")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "frontend shell missing",
			slog.String("error", err.Error()))
		http.Error(w, "frontend not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(index); err != nil {
		h.logger.WarnContext(r.Context(), "frontend shell write interrupted",
			slog.String("error", err.Error()))
	}
}
