package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/events"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/export"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/market"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/strategy"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/swot"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/badger"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/memory"
)

type fixture struct {
	storage  *badger.Manager
	research *ResearchHandler
	market   *MarketHandler
	strategy *StrategyHandler
	files    *FilesHandler
	runner   *strategy.Runner
	events   interfaces.EventService
}

func newFixture(t *testing.T, provider interfaces.AIProvider) *fixture {
	t.Helper()
	logger := arbor.NewLogger()

	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	aiService := ai.NewServiceWithProvider(provider, &common.AIConfig{}, logger)
	pdfService := pdf.NewService(logger)
	eventService := events.NewService(logger)
	store := memory.NewProgressStore(logger)

	strategyConfig := &common.StrategyConfig{PhaseDelay: "0s", ExecutionTimeout: "30s"}
	runner := strategy.NewRunner(ctx, strategy.NewService(aiService, strategyConfig, logger), store, manager, eventService, strategyConfig, logger)

	exports, err := export.NewService(store, pdfService, &common.ExportConfig{Dir: t.TempDir(), TTL: "24h"}, "/api/v1", logger)
	require.NoError(t, err)

	return &fixture{
		storage:  manager,
		research: NewResearchHandler(research.NewService(manager, store, aiService, pdfService, logger), swot.NewService(manager, aiService, pdfService, logger), logger),
		market:   NewMarketHandler(market.NewService(manager, aiService, pdfService, logger), logger),
		strategy: NewStrategyHandler(runner, exports, logger),
		files:    NewFilesHandler(exports, logger),
		runner:   runner,
		events:   eventService,
	}
}

func (f *fixture) waitForRuns(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, f.runner.Wait(ctx))
}

// call invokes handler with an optional JSON body and path values given as name, value pairs
func call(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "error", body["status"])
	return body["error"]
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", interfaces.ErrNotFound, http.StatusNotFound},
		{"invalid input", interfaces.ErrInvalidInput, http.StatusBadRequest},
		{"invalid state", interfaces.ErrInvalidState, http.StatusBadRequest},
		{"ai unavailable", interfaces.ErrAIUnavailable, http.StatusServiceUnavailable},
		{"other", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestDecodeRequest_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"session_id":"s","research_approach":"slow"}`))
	var body initiateStrategyRequest
	assert.False(t, DecodeRequest(rec, req, &body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "research_approach must be one of")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/", bytes.NewBufferString(`not json`))
	assert.False(t, DecodeRequest(rec, req, &body))
	assert.Equal(t, "Invalid request body", errorMessage(t, rec))
}

func TestGetPaginationParams(t *testing.T) {
	skip, limit := GetPaginationParams(httptest.NewRequest("GET", "/sessions", nil))
	assert.Equal(t, 0, skip)
	assert.Equal(t, 100, limit)

	skip, limit = GetPaginationParams(httptest.NewRequest("GET", "/sessions?skip=5&limit=20", nil))
	assert.Equal(t, 5, skip)
	assert.Equal(t, 20, limit)

	skip, limit = GetPaginationParams(httptest.NewRequest("GET", "/sessions?skip=-1&limit=5000", nil))
	assert.Equal(t, 0, skip)
	assert.Equal(t, 100, limit)
}

func TestAPIHandler(t *testing.T) {
	h := NewAPIHandler("Ideas Matter", ai.NewServiceWithProvider(ai.NewMockProvider(), &common.AIConfig{}, arbor.NewLogger()), arbor.NewLogger())

	rec := call(t, h.HealthHandler, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "mock", body["ai_provider"])

	rec = call(t, h.VersionHandler, "POST", "/api/v1/version", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = call(t, h.NotFoundHandler, "GET", "/api/v1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
