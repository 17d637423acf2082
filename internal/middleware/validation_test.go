package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "revpulse/internal/errors"
)

func newTestValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	logger := discardLogger()
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

// decodeProblemBody decodes a problem response including extension fields.
func decodeProblemBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	return m
}

func TestValidateStructMonthFilter(t *testing.T) {
	type filterPayload struct {
		Month string `json:"month" validate:"omitempty,eq=All|monthyear"`
	}

	m := newTestValidation(t)

	tests := []struct {
		name    string
		month   string
		wantErr bool
	}{
		{name: "All passes", month: "All"},
		{name: "well formed month passes", month: "02/2024"},
		{name: "single digit month passes", month: "3/2024"},
		{name: "empty month passes via omitempty", month: ""},
		{name: "ISO month fails", month: "2024-01", wantErr: true},
		{name: "month out of range fails", month: "13/2024", wantErr: true},
		{name: "two digit year fails", month: "02/24", wantErr: true},
		{name: "missing separator fails", month: "022024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(filterPayload{Month: tt.month})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok, "details should carry per-field validation errors")
			require.Len(t, details.Errors, 1)
			assert.Equal(t, "month", details.Errors[0].Field, "field names come from json tags")
			assert.Equal(t, "month must be All or a MM/YYYY month", details.Errors[0].Message)
		})
	}
}

func TestValidateStructExportFormat(t *testing.T) {
	type exportPayload struct {
		Format string `json:"format" validate:"required,oneof=csv xlsx"`
	}

	m := newTestValidation(t)

	tests := []struct {
		name    string
		format  string
		wantMsg string
	}{
		{name: "csv passes", format: "csv"},
		{name: "xlsx passes", format: "xlsx"},
		{name: "unsupported format fails", format: "pdf", wantMsg: "format must be one of: csv, xlsx"},
		{name: "missing format fails", format: "", wantMsg: "format is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(exportPayload{Format: tt.format})
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.Len(t, details.Errors, 1)
			assert.Equal(t, tt.wantMsg, details.Errors[0].Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          string
		contentLength int64
		wantStatus    int
		wantErrorCode string
	}{
		{
			name:       "GET passes through without body checks",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid JSON body passes",
			method:     http.MethodPost,
			body:       `{"month":"All"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:          "invalid JSON is rejected",
			method:        http.MethodPost,
			body:          `{"month":`,
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "INVALID_JSON",
		},
		{
			name:          "oversized payload is rejected before reading",
			method:        http.MethodPost,
			body:          `{}`,
			contentLength: 11 * 1024 * 1024,
			wantStatus:    http.StatusRequestEntityTooLarge,
			wantErrorCode: "PAYLOAD_TOO_LARGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestValidation(t)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/api/export", body)
			if tt.contentLength != 0 {
				req.ContentLength = tt.contentLength
			}

			rec := httptest.NewRecorder()
			m.ValidateRequest(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, nextCalled)

			if tt.wantErrorCode != "" {
				problem := decodeProblemBody(t, rec)
				assert.Equal(t, tt.wantErrorCode, problem["error_code"])
				assert.Equal(t, float64(tt.wantStatus), problem["status"])
			}
		})
	}
}

func TestValidateRequestRestoresBody(t *testing.T) {
	m := newTestValidation(t)

	const payload = `{"month":"02/2024","format":"csv"}`

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(b)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	m.ValidateRequest(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, seen, "handlers must see the full body after validation")
}
