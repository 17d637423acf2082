package http

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "revpulse/internal/errors"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/services"
)

func newExportRouter(t *testing.T) http.Handler {
	t.Helper()

	svc := services.NewDashboardService(loadedLoader(t, happyFetch), nil, testLogger())

	logger := testLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := customMiddleware.NewValidationMiddleware(logger, errorHandler)

	return NewExportHandler(svc, validation, logger, errorHandler).Routes()
}

func TestExportEndpointCSV(t *testing.T) {
	router := newExportRouter(t)

	rec := get(router, "/csv?name=Acme")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "revpulse-export-")
	assert.Contains(t, disposition, ".csv")

	length, err := strconv.Atoi(rec.Header().Get("Content-Length"))
	require.NoError(t, err)
	assert.Equal(t, rec.Body.Len(), length)

	body := rec.Body.String()
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\xef\xbb\xbf")), "csv starts with a UTF-8 BOM")
	assert.Contains(t, body, "Opportunity ID,Name,Month")
	assert.Contains(t, body, "Acme")
	assert.NotContains(t, body, "Globex", "name filter applies to exports")
}

func TestExportEndpointXLSX(t *testing.T) {
	router := newExportRouter(t)

	rec := get(router, "/xlsx")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx bodies are zip archives")
}

func TestExportEndpointHonorsMonthFilter(t *testing.T) {
	router := newExportRouter(t)

	rec := get(router, "/csv?month=02/2024")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "opp-2")
	assert.NotContains(t, body, "opp-1")
	assert.NotContains(t, body, "opp-3")
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	router := newExportRouter(t)

	rec := get(router, "/pdf")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	assert.Empty(t, rec.Header().Get("Content-Disposition"), "no attachment headers on failure")
}

func TestExportEndpointRejectsMalformedMonth(t *testing.T) {
	router := newExportRouter(t)

	rec := get(router, "/csv?month=00/2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}
