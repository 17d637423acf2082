package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWebhookURL, cfg.Webhook.URL)
	assert.Equal(t, DefaultWebhookTimeout, cfg.Webhook.Timeout)
	assert.Equal(t, DefaultInsightModel, cfg.Insight.Model)
	assert.Empty(t, cfg.Insight.APIKey)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultExportsDir, cfg.Export.Dir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REVPULSE_SERVER_PORT", "9090")
	t.Setenv("REVPULSE_WEBHOOK_URL", "https://hooks.test.local/opportunities")
	t.Setenv("REVPULSE_WEBHOOK_TIMEOUT", "5s")
	t.Setenv("REVPULSE_INSIGHT_API_KEY", "sk-env-key")
	t.Setenv("REVPULSE_SECURITY_ALLOWED_ORIGINS", "http://a.local,http://b.local")
	t.Setenv("REVPULSE_LOGGING_LEVEL", "debug")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://hooks.test.local/opportunities", cfg.Webhook.URL)
	assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, "sk-env-key", cfg.Insight.APIKey)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9001
webhook:
  url: https://hooks.file.local/opportunities
insight:
  model: gemini-1.5-pro
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "https://hooks.file.local/opportunities", cfg.Webhook.URL)
	assert.Equal(t, "gemini-1.5-pro", cfg.Insight.Model)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWebhookTimeout, cfg.Webhook.Timeout)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o644))
	t.Setenv("REVPULSE_SERVER_PORT", "9002")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9002, cfg.Server.Port)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "empty webhook url",
			mutate:  func(c *Config) { c.Webhook.URL = "" },
			wantErr: "webhook url must be set",
		},
		{
			name:    "zero webhook timeout",
			mutate:  func(c *Config) { c.Webhook.Timeout = 0 },
			wantErr: "webhook timeout must be positive",
		},
		{
			name:    "empty insight model",
			mutate:  func(c *Config) { c.Insight.Model = "" },
			wantErr: "insight model must be set",
		},
		{
			name: "cors without origins",
			mutate: func(c *Config) {
				c.Security.EnableCORS = true
				c.Security.AllowedOrigins = nil
			},
			wantErr: "allowed origin",
		},
		{
			name: "rate limit without rps",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = true
				c.Security.RateLimit.RPS = 0
			},
			wantErr: "rate limit rps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestValidateKeepsTextFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "console"

	require.NoError(t, cfg.validate())

	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
}
