package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"revpulse/internal/config"
	apierrors "revpulse/internal/errors"
	"revpulse/internal/infrastructure"
	"revpulse/internal/insight"
	"revpulse/internal/loader"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/security"
	"revpulse/internal/services"
	handlers "revpulse/internal/transport/http"
	"revpulse/internal/webhook"
	ws "revpulse/internal/websocket"
	"revpulse/pkg/contracts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

// Application wires configuration, services, and the HTTP server together.
// All components are constructed once in NewApplication and share the single
// infrastructure logger.
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Hub              *ws.Hub
	Loader           *loader.Loader
	DashboardService *services.DashboardService
	InsightService   *services.InsightService
	HealthService    *services.HealthService
	Logger           *slog.Logger
	Metrics          *infrastructure.BusinessMetrics
	OTelProviders    *infrastructure.OTelProviders
	FrontendFS       fs.FS

	sysCollector *infrastructure.SystemMetricsCollector
}

// NewApplication creates a fully wired application instance. frontendFS is
// the embedded dashboard frontend; nil is allowed and serves the API only.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("build", contracts.GetFullVersionString()))

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	if err := ws.InitOTelMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize WebSocket metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		FrontendFS:    frontendFS,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service graph: webhook fetcher feeding the
// generation-guarded loader, the websocket hub receiving its state
// transitions, and the dashboard, insight, and health services on top.
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	if a.OTelProviders.Meter != nil {
		collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create system metrics collector: %w", err)
		}
		a.sysCollector = collector
	}

	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.Hub = hub

	fetcher := webhook.NewClient(a.Config.Webhook.URL, a.Config.Webhook.Timeout, a.Logger)
	a.Loader = loader.New(fetcher, hub, metrics, a.Logger)

	generator := insight.NewClient(a.resolveInsightKey(), a.Config.Insight.Model, a.Logger)

	a.DashboardService = services.NewDashboardService(a.Loader, metrics, a.Logger)
	a.InsightService = services.NewInsightService(
		generator,
		a.Loader,
		a.Config.Insight.Model,
		a.Config.Insight.Timeout,
		metrics,
		a.Logger,
	)
	a.HealthService = services.NewHealthService(a.Loader, hub, generator, a.Logger)

	return nil
}

// resolveInsightKey returns the Gemini API key, preferring the environment
// over the encrypted credentials file. An empty key leaves the insight
// collaborator disabled, which is a supported configuration: the endpoint
// then serves its fixed fallback sentence.
func (a *Application) resolveInsightKey() string {
	if key := a.Config.Insight.APIKey; key != "" {
		return key
	}

	if a.Config.Insight.Passphrase == "" {
		a.Logger.Info("No insight credential configured, insight serves fallback text")
		return ""
	}

	path := a.Config.Insight.CredentialsFile
	if path == "" {
		if paths, err := config.GetPaths(); err == nil {
			path = paths.CredentialsFile
		}
	}

	store := security.NewCredentialStore(path, a.Logger)
	key, err := store.Load(a.Config.Insight.Passphrase)
	if err != nil {
		a.Logger.Warn("Insight credential unavailable, insight serves fallback text",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return ""
	}

	return key
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that does not wrap the ResponseWriter goes here, so
	// the WebSocket upgrade still sees an http.Hijacker.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// WebSocket route registered before the full group for the same reason.
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.BusinessMetricsMiddleware(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	// Prometheus scrapes stay outside the group: they should not produce
	// request logs or spans about themselves.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures the JSON API under /api.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Unknown API routes answer with a problem document instead of
		// falling through to the frontend wildcard.
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/version", healthHandler.Version)

			dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, validation, a.Logger, errorHandler)
			r.Mount("/dashboard", dashboardHandler.Routes())

			exportHandler := handlers.NewExportHandler(a.DashboardService, validation, a.Logger, errorHandler)
			r.Mount("/export", exportHandler.Routes())
		})

		// Insight gets a longer budget than the regular API timeout: the
		// model call may use most of its configured timeout before the
		// fallback sentence goes out.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Insight.Timeout+5*time.Second, a.Logger))

			insightHandler := handlers.NewInsightHandler(a.InsightService, validation, a.Logger, errorHandler)
			r.Mount("/insight", insightHandler.Routes())
		})
	})
}

// setupFrontendRoutes serves the embedded frontend for everything the API
// did not claim. Must be registered last so the wildcard does not shadow
// API routes.
func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("Frontend filesystem not available, serving API only")
		return
	}

	// The page loads Chart.js from jsDelivr and talks to /ws, so HTML
	// responses replace the strict API policy with the dashboard CSP.
	secure := customMiddleware.DefaultSecureHeaders()
	secure.DevMode = a.isDevelopmentMode()

	frontend := handlers.NewFrontendHandler(a.FrontendFS, a.Logger)
	r.With(secure.Handler, customMiddleware.Compress(5)).Handle("/*", frontend)
}

// handleWebSocket upgrades the connection and registers the client with the
// hub, which then pushes load state transitions until the peer goes away.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	reqID := customMiddleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}

	ctx := infrastructure.WithTraceID(r.Context(), reqID)
	a.Logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// No Origin header means a same-origin or non-browser client.
			if origin == "" {
				return true
			}
			if a.isDevelopmentMode() {
				return true
			}
			for _, allowed := range a.getCORSConfig().AllowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}

			a.Logger.WarnContext(ctx, "WebSocket origin rejected",
				slog.String("origin", origin))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.ErrorContext(ctx, "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader.Error already logged the details.
		return
	}

	client := ws.NewClientWithTrace(a.Hub, conn, reqID, a.Logger)
	a.Hub.Register(client)

	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("clients", a.Hub.ClientCount()))

	go client.WritePump()
	go client.ReadPump()
}

// getCORSConfig returns the CORS policy. The server's own origin is always
// allowed; development mode adds the usual frontend dev server ports.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: []string{
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	if a.isDevelopmentMode() {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		)
	}

	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cfg
}

// isDevelopmentMode reports whether the server runs with relaxed origin
// checks. GO_ENV=development forces it regardless of config.
func (a *Application) isDevelopmentMode() bool {
	if os.Getenv("GO_ENV") == "development" {
		return true
	}
	return a.Config.Logging.Development
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the HTTP server and kicks off the first data load. A
// listen failure cancels the provided context so Run can unwind.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if a.sysCollector != nil {
		go a.sysCollector.Start(ctx)
	}

	// First load generation. The dashboard renders immediately either way;
	// until the load settles the status reads loading.
	status := a.DashboardService.Reload(ctx, "startup")
	a.Logger.InfoContext(ctx, "Initial data load started",
		slog.Uint64("generation", status.Generation))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings",
			slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	go a.openBrowserWhenReady(ctx)

	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.sysCollector != nil {
		a.sysCollector.Stop()
		a.sysCollector = nil
	}
	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutting down after server error")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the directories the server writes to.
// Failures are warnings; the dashboard itself works from memory.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	var warnings []string

	directories := map[string]string{
		"Exports": paths.ExportsDir,
		"Logs":    paths.LogsDir,
	}
	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

// openBrowserWhenReady waits for the health endpoint to answer, then opens
// the default browser on the dashboard. Best effort: when no browser can be
// launched, instructions are printed instead.
func (a *Application) openBrowserWhenReady(ctx context.Context) {
	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	healthURL := url + "/api/health"

	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if err := openBrowser(url); err != nil {
					a.Logger.Error("Failed to open browser",
						slog.String("error", err.Error()),
						slog.String("url", url))
					fmt.Printf("\n%s is running. Open your browser at:\n  %s\n\n", config.AppName, url)
				}
				return
			}
		}

		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.Error("Server did not become ready for browser opening",
		slog.String("url", url))
}

// openBrowser opens the default browser to the specified URL. The launcher
// process is left running detached; only a failed Start moves on to the next
// method.
func openBrowser(url string) error {
	var lastErr error

	for _, method := range getBrowserOpenMethods(url) {
		cmd := exec.Command(method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		go cmd.Wait()
		return nil
	}

	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// browserMethod is one way of launching a browser on the current platform.
type browserMethod struct {
	cmd  string
	args []string
}

// getBrowserOpenMethods returns platform-specific browser launch commands in
// preference order.
func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{cmd: "cmd", args: []string{"/c", "start", "", url}},
			{cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
		}
	case "darwin":
		return []browserMethod{
			{cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{cmd: "xdg-open", args: []string{url}},
			{cmd: "sensible-browser", args: []string{url}},
		}
	}
}
