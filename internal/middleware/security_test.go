package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveSecureHeaders(sh *SecureHeaders, req *http.Request) *httptest.ResponseRecorder {
	handler := sh.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSecureHeadersDashboardCSP(t *testing.T) {
	rec := serveSecureHeaders(DefaultSecureHeaders(), httptest.NewRequest("GET", "/", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net",
		"the page loads Chart.js from jsDelivr")
	assert.Contains(t, csp, "connect-src 'self' ws: wss:",
		"the page opens a WebSocket for load state")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "camera=()")
}

func TestSecureHeadersSkipsWebSocketUpgrade(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Upgrade", "websocket")

	rec := serveSecureHeaders(DefaultSecureHeaders(), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("X-Frame-Options"))
}

func TestSecureHeadersDevMode(t *testing.T) {
	sh := DefaultSecureHeaders()
	sh.DevMode = true

	rec := serveSecureHeaders(sh, httptest.NewRequest("GET", "/", nil))

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'unsafe-eval'", "dev mode relaxes the script policy")
	assert.Contains(t, csp, "connect-src *")
	assert.Empty(t, rec.Header().Get("Permissions-Policy"))
}

func TestSecureHeadersCustomCSPOverridesDefault(t *testing.T) {
	sh := DefaultSecureHeaders()
	sh.ContentSecurityPolicy = "default-src 'self'"

	rec := serveSecureHeaders(sh, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
}

func TestSecureHeadersHSTSRequiresTLS(t *testing.T) {
	rec := serveSecureHeaders(DefaultSecureHeaders(), httptest.NewRequest("GET", "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}
