package config

import "time"

// AppName is the application identity used in logs and window titles. The
// version itself lives in pkg/contracts so ldflags can stamp build info.
const AppName = "RevPulse"

// Network defaults.
const (
	// DefaultWebhookURL points at a placeholder endpoint. Deployments set
	// REVPULSE_WEBHOOK_URL; an unreachable webhook degrades to mock data
	// rather than failing, so the default is safe for local runs.
	DefaultWebhookURL     = "https://hooks.example.com/revpulse/opportunities"
	DefaultWebhookTimeout = 15 * time.Second

	DefaultInsightModel   = "gemini-1.5-flash"
	DefaultInsightTimeout = 20 * time.Second
)

// Rate limiting defaults.
const (
	DefaultRateLimitRPS   = 100
	DefaultRateLimitBurst = 50
)

// WebSocket defaults.
const (
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
)

// File locations relative to the executable.
const (
	DefaultDataDir      = "data"
	DefaultExportsDir   = "data/exports"
	DefaultLogsDir      = "logs"
	DefaultWebDir       = "web"
	CredentialsFileName = "credentials.dat"
)
