package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<html>shell</html>")},
		"app.js":     &fstest.MapFile{Data: []byte("console.log('rev')")},
	}
}

func TestFrontendServesAsset(t *testing.T) {
	h := NewFrontendHandler(testAssets(), testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log('rev')", rec.Body.String())
}

func TestFrontendServesShellAtRoot(t *testing.T) {
	h := NewFrontendHandler(testAssets(), testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestFrontendFallsBackToShellForDeepLinks(t *testing.T) {
	h := NewFrontendHandler(testAssets(), testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/march", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())
}

func TestFrontendRejectsNonGet(t *testing.T) {
	h := NewFrontendHandler(testAssets(), testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/app.js", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFrontendMissingShell(t *testing.T) {
	h := NewFrontendHandler(fstest.MapFS{}, testLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
