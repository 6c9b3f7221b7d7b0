package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/app"
	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(dir, "badger")
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.AI.DefaultProvider = common.AIProviderMock
	cfg.Strategy.PhaseDelay = "0s"

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	return New(application)
}

func serve(t *testing.T, s *Server, method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestServer_SystemRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody(t, rec)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "mock", health["ai_provider"])

	rec = serve(t, s, http.MethodGet, "/api/v1/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodGet, "/api/v1/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/api/v1/nope", decodeBody(t, rec)["path"])

	rec = serve(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ideasmatter_http_requests_total")
}

func TestServer_SessionRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{
		"title":       "Dog walking marketplace",
		"description": "On-demand dog walkers for busy city dwellers",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = serve(t, s, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeBody(t, rec)["id"])

	rec = serve(t, s, http.MethodPatch, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "DELETE, GET, PUT", rec.Header().Get("Allow"))
	assert.Equal(t, "Method not allowed", decodeBody(t, rec)["error"])

	rec = serve(t, s, http.MethodGet, "/api/v1/market-analysis/"+id+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["has_analysis"])

	rec = serve(t, s, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, s, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DeleteSessionRemovesStrategies(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"title": "Meal kits"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sessionID, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, sessionID)

	rec = serve(t, s, http.MethodPost, "/api/v1/research-strategy/initiate", map[string]string{
		"session_id":        sessionID,
		"research_approach": "quick_validation",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	strategy, _ := decodeBody(t, rec)["strategy"].(map[string]interface{})
	strategyID, _ := strategy["id"].(string)
	require.NotEmpty(t, strategyID)

	rec = serve(t, s, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, s, http.MethodGet, "/api/v1/research-strategy/strategies/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeBody(t, rec)["total"])

	rec = serve(t, s, http.MethodPost, "/api/v1/research-strategy/execute/"+strategyID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StrategyRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/v1/research-strategy/approaches", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodPost, "/api/v1/research-strategy/approaches", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, s, http.MethodGet, "/api/v1/research-strategy/progress/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, s, http.MethodPut, "/api/v1/research-strategy/strategies/missing", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "DELETE, GET", rec.Header().Get("Allow"))
}

func TestServer_MaintenanceRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/v1/maintenance/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["running"])
	jobs, _ := body["jobs"].([]interface{})
	assert.Len(t, jobs, 2)

	rec = serve(t, s, http.MethodPost, "/api/v1/maintenance/jobs/unknown_job/trigger", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodOptions, "/api/v1/sessions", nil, "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	rec = serve(t, s, http.MethodGet, "/api/v1/health", nil, "Origin", "http://evil.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	s.app.Config.App.CORSOrigins = []string{"*"}
	rec = serve(t, s, http.MethodGet, "/api/v1/health", nil, "Origin", "http://evil.example")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RecoveryMiddleware(t *testing.T) {
	s := newTestServer(t)

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
}
