package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/strategy"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.ProgressStore, string) {
	t.Helper()
	logger := arbor.NewLogger()
	dir := filepath.Join(t.TempDir(), "exports")
	store := memory.NewProgressStore(logger)

	service, err := NewService(store, pdf.NewService(logger), &common.ExportConfig{Dir: dir, TTL: "1h"}, "/api/v1", logger)
	require.NoError(t, err)
	return service, store, dir
}

func seedCompleted(t *testing.T, store *memory.ProgressStore, id string) {
	t.Helper()
	options := strategy.GenerateStrategicOptions("Meal kits", 2)
	require.NoError(t, store.Save(context.Background(), &models.StrategyRecord{
		Strategy: &models.ResearchStrategy{
			ID:        id,
			SessionID: "ses_1",
			Approach:  models.ApproachQuickValidation,
			Title:     "Quick Validation Analysis: Meal kits",
			Status:    models.StrategyCompleted,
			CreatedAt: time.Now().UTC(),
		},
		IdeaTitle: "Meal kits",
		Progress:  100,
		Result: &models.AnalysisResult{
			StrategyID:        id,
			Approach:          models.ApproachQuickValidation,
			MarketContext:     &models.MarketContext{IndustryOverview: "Food", ConfidenceScore: 0.85},
			StrategicOptions:  options,
			RecommendedOption: &options[0],
			NextSteps:         []string{"Talk to customers"},
		},
	}))
}

func TestExport_Formats(t *testing.T) {
	service, store, dir := newTestService(t)
	seedCompleted(t, store, "stg_1")
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		file, err := service.Export(ctx, Request{SessionID: "ses_1", Format: FormatJSON, IncludeRawData: true})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(file.FileName, "research_analysis_ses_1_"))
		assert.True(t, strings.HasSuffix(file.FileName, ".json"))
		assert.Equal(t, "/api/v1/files/download/"+file.FileName, file.DownloadURL)

		data, err := os.ReadFile(filepath.Join(dir, file.FileName))
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), file.FileSizeBytes)

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		result := doc["result"].(map[string]interface{})
		assert.Contains(t, result, "market_context")
	})

	t.Run("json without raw data drops phase results", func(t *testing.T) {
		file, err := service.Export(ctx, Request{SessionID: "ses_1", Format: "JSON"})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, file.FileName))
		require.NoError(t, err)
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		result := doc["result"].(map[string]interface{})
		assert.NotContains(t, result, "market_context")
		assert.Contains(t, result, "strategic_options")
	})

	t.Run("yaml uses json field names", func(t *testing.T) {
		file, err := service.Export(ctx, Request{SessionID: "ses_1", Format: FormatYAML})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, file.FileName))
		require.NoError(t, err)
		var doc map[string]interface{}
		require.NoError(t, yaml.Unmarshal(data, &doc))
		assert.Equal(t, "Meal kits", doc["idea_title"])
	})

	t.Run("csv lists options", func(t *testing.T) {
		file, err := service.Export(ctx, Request{SessionID: "ses_1", Format: FormatCSV})
		require.NoError(t, err)

		f, err := os.Open(filepath.Join(dir, file.FileName))
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, csvHeader, rows[0])
		assert.Equal(t, "market_leader_challenge", rows[1][0])
		assert.Equal(t, "true", rows[1][7])
		assert.Equal(t, "false", rows[2][7])
	})

	t.Run("pdf", func(t *testing.T) {
		file, err := service.Export(ctx, Request{SessionID: "ses_1", Format: FormatPDF})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, file.FileName))
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(data[:4]))
	})
}

func TestExport_Rejections(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Export(ctx, Request{SessionID: "ses_1", Format: FormatJSON})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	seedCompleted(t, store, "stg_1")

	_, err = service.Export(ctx, Request{SessionID: "ses_1", Format: FormatDOCX})
	assert.ErrorIs(t, err, interfaces.ErrInvalidInput)

	_, err = service.Export(ctx, Request{SessionID: "ses_1", Format: "xlsx"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidInput)

	_, err = service.Export(ctx, Request{SessionID: "ses_1", StrategyID: "stg_other", Format: FormatJSON})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestOpenAndCleanup(t *testing.T) {
	service, store, dir := newTestService(t)
	seedCompleted(t, store, "stg_1")
	ctx := context.Background()

	file, err := service.Export(ctx, Request{SessionID: "ses_1", StrategyID: "stg_1", Format: FormatJSON})
	require.NoError(t, err)

	path, err := service.Open(file.FileName)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, file.FileName), path)

	_, err = service.Open("../secrets.txt")
	assert.ErrorIs(t, err, interfaces.ErrInvalidInput)
	_, err = service.Open("missing.json")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	removed, err := service.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	service.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	_, err = service.Open(file.FileName)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = service.Export(ctx, Request{SessionID: "ses_1", Format: FormatCSV})
	require.NoError(t, err)

	removed, err = service.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
