package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"revpulse/internal/app"
)

// FallbackFlowSuite covers the degraded path: the webhook answers correctly
// but with an empty collection, so every load cycle substitutes the
// synthetic dataset and the API says so.
type FallbackFlowSuite struct {
	suite.Suite
	webhook *httptest.Server
	app     *app.Application
	server  *httptest.Server
}

func TestFallbackFlowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e flow in short mode")
	}
	suite.Run(t, new(FallbackFlowSuite))
}

func (s *FallbackFlowSuite) SetupSuite() {
	s.webhook = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	}))

	t := s.T()
	t.Setenv("REVPULSE_LOGGING_OUTPUT", "console")
	t.Setenv("REVPULSE_LOGGING_LEVEL", "error")
	t.Setenv("REVPULSE_WEBHOOK_URL", s.webhook.URL)
	t.Setenv("REVPULSE_WEBHOOK_TIMEOUT", "2s")
	t.Setenv("REVPULSE_INSIGHT_API_KEY", "")

	frontend := fstest.MapFS{
		"index.html": {Data: []byte("<!DOCTYPE html><html><body>RevPulse</body></html>")},
	}

	application, err := app.NewApplication(frontend)
	require.NoError(t, err)
	s.app = application
	s.server = httptest.NewServer(application.Router)
}

func (s *FallbackFlowSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.app.Stop(ctx)
	}
	if s.webhook != nil {
		s.webhook.Close()
	}
}

func (s *FallbackFlowSuite) getJSON(path string) map[string]any {
	resp, err := http.Get(s.server.URL + path)
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "GET %s", path)

	var body map[string]any
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (s *FallbackFlowSuite) TestEmptyDatasetFallback() {
	s.Run("reload_substitutes_the_synthetic_dataset", func() {
		resp, err := http.Post(s.server.URL+"/api/dashboard/reload", "application/json", nil)
		require.NoError(s.T(), err)
		resp.Body.Close()
		require.Equal(s.T(), http.StatusAccepted, resp.StatusCode)

		var load map[string]any
		require.Eventually(s.T(), func() bool {
			load = s.getJSON("/api/dashboard/load")["data"].(map[string]any)
			return load["state"] == "success"
		}, loadSettleTimeout, 50*time.Millisecond)

		assert.Equal(s.T(), true, load["using_mock_data"])
		assert.Equal(s.T(), "empty_dataset", load["fallback_reason"])
		assert.InDelta(s.T(), 25, load["record_count"], 0.01)
	})

	s.Run("synthetic_records_satisfy_the_dataset_relations", func() {
		records := s.getJSON("/api/dashboard/records")["data"].([]any)
		require.Len(s.T(), records, 25)

		for _, raw := range records {
			rec := raw.(map[string]any)
			potential := rec["potentialRevenue"].(float64)
			invoice := rec["invoiceAmount"].(float64)
			collected := rec["dollarsCollected"].(float64)
			expense := rec["expenseIncurred"].(float64)
			net := rec["netRevenue"].(float64)

			assert.InDelta(s.T(), potential*0.85, invoice, 0.01, "record %v", rec["id"])
			assert.GreaterOrEqual(s.T(), collected, invoice*0.7-0.01)
			assert.Less(s.T(), collected, invoice)
			assert.GreaterOrEqual(s.T(), expense, 500.0)
			assert.Less(s.T(), expense, 4500.0)
			assert.InDelta(s.T(), collected-expense, net, 0.01)
		}
	})

	s.Run("options_span_the_synthetic_entities_and_months", func() {
		data := s.getJSON("/api/dashboard")["data"].(map[string]any)
		options := data["options"].(map[string]any)
		assert.Len(s.T(), options["names"].([]any), 6, "wildcard plus five entities")
		assert.Len(s.T(), options["months"].([]any), 6, "wildcard plus five months")
		assert.Equal(s.T(), "All", options["names"].([]any)[0])
		assert.Equal(s.T(), "All", options["months"].([]any)[0])
	})

	s.Run("health_degrades_while_serving_synthetic_data", func() {
		health := s.getJSON("/api/health")
		assert.Equal(s.T(), "degraded", health["status"])

		load := health["services"].(map[string]any)["load"].(map[string]any)
		assert.Equal(s.T(), true, load["using_mock_data"])
		assert.Equal(s.T(), "empty_dataset", load["fallback_reason"])
	})
}
