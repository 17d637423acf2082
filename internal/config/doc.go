// Package config provides centralized configuration management for RevPulse.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for accessing configuration values throughout the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern REVPULSE_* for namespacing:
//
//	REVPULSE_SERVER_PORT=8080
//	REVPULSE_WEBHOOK_URL=https://hooks.example.com/finance/opportunities
//	REVPULSE_INSIGHT_API_KEY=...
//	REVPULSE_LOGGING_LEVEL=info
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which resolves all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	logPath := paths.GetLogPath("web.log")
package config
