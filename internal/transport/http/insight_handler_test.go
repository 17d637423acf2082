package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "revpulse/internal/errors"
	"revpulse/internal/insight"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/services"
	"revpulse/pkg/contracts/domain"
)

// stubGenerator answers with a fixed sentence.
type stubGenerator struct {
	text string
}

func (s *stubGenerator) Generate(ctx context.Context, records []domain.DataRecord) string {
	return s.text
}

func (s *stubGenerator) Enabled() bool { return true }

func newInsightRouter(t *testing.T, text string) http.Handler {
	t.Helper()

	svc := services.NewInsightService(&stubGenerator{text: text}, loadedLoader(t, happyFetch),
		"gemini-1.5-flash", time.Second, nil, testLogger())

	logger := testLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := customMiddleware.NewValidationMiddleware(logger, errorHandler)

	return NewInsightHandler(svc, validation, logger, errorHandler).Routes()
}

func TestInsightEndpointGenerated(t *testing.T) {
	router := newInsightRouter(t, "Collections are strongest in January.")

	rec := get(router, "/?name=Acme")

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "success", envelope["status"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "Collections are strongest in January.", data["text"])
	assert.Equal(t, true, data["generated"])
	assert.InDelta(t, 2, data["recordCount"], 0.01)
}

func TestInsightEndpointFallbackStaysOK(t *testing.T) {
	router := newInsightRouter(t, insight.Fallback)

	rec := get(router, "/")

	require.Equal(t, http.StatusOK, rec.Code, "fallback is never an API failure")
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, insight.Fallback, data["text"])
	assert.Equal(t, false, data["generated"])
}

func TestInsightEndpointRejectsMalformedMonth(t *testing.T) {
	router := newInsightRouter(t, "anything")

	rec := get(router, "/?month=99/2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}
