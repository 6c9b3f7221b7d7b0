package market

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/badger"
)

const marketReply = `Here is the analysis:
{
  "market_overview": {"industry": "Food Delivery", "market_category": "Meal Kits", "geographic_scope": "National"},
  "market_size": {"tam": 20000000000, "sam": 4000000000, "som": 200000000, "cagr": 12, "market_maturity": "Growth"},
  "market_dynamics": {"market_drivers": ["Convenience"], "market_barriers": ["Logistics"]},
  "customer_analysis": {
    "customer_segments": [{"name": "Busy parents", "size_percentage": 40, "attractiveness_score": 0.9}],
    "customer_pain_points": ["Time"],
    "price_sensitivity": 0.4
  },
  "competitive_landscape": {
    "direct_competitors": [
      {"name": "HelloFresh", "market_share": 45, "threat_level": 0.9},
      {"name": "Blue Apron", "market_share": 20}
    ],
    "indirect_competitors": [{"name": "Grocery stores"}]
  },
  "market_trends": {"emerging_trends": [{"name": "Plant based", "impact_level": 0.7}]},
  "opportunities": {"market_gaps": [{"title": "Allergy friendly kits"}]}
}`

func newTestService(t *testing.T, provider interfaces.AIProvider) (*Service, *badger.Manager) {
	t.Helper()
	logger := arbor.NewLogger()

	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	aiService := ai.NewServiceWithProvider(provider, &common.AIConfig{}, logger)
	service := NewService(manager, aiService, pdf.NewService(logger), logger)
	service.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return service, manager
}

func seedSession(t *testing.T, manager *badger.Manager) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, manager.SessionStorage().SaveSession(ctx, &models.ResearchSession{
		ID:          "ses_1",
		Title:       "Meal kits",
		Description: "Weekly recipe boxes",
		Status:      models.SessionStatusActive,
	}))
	require.NoError(t, manager.InsightStorage().SaveInsight(ctx, &models.ResearchInsight{
		ID:          "ins_1",
		SessionID:   "ses_1",
		Category:    models.CategoryTargetMarket,
		Title:       "Urban professionals",
		Description: "Time poor",
	}))
	require.NoError(t, manager.InsightStorage().SaveInsight(ctx, &models.ResearchInsight{
		ID:          "ins_2",
		SessionID:   "ses_1",
		Category:    models.CategoryCostModel,
		Title:       "Packaging cost",
		Description: "High",
	}))
}

func TestGenerateComprehensive_UsesAIResponse(t *testing.T) {
	provider := ai.NewMockProvider(marketReply)
	service, manager := newTestService(t, provider)
	seedSession(t, manager)

	bundle, err := service.GenerateComprehensive(context.Background(), "ses_1")
	require.NoError(t, err)

	assert.Equal(t, "Food Delivery", bundle.Analysis.Industry)
	assert.Equal(t, 20_000_000_000.0, bundle.Analysis.TAMValue)
	assert.Equal(t, 0.7, bundle.Analysis.ConfidenceScore)
	assert.Equal(t, []string{"AI Analysis", "Market Research"}, bundle.Analysis.DataSources)
	assert.Equal(t, 0.4, bundle.Analysis.PriceSensitivity)

	require.Len(t, bundle.Competitors, 3)
	assert.Equal(t, models.CompetitorDirect, bundle.Competitors[0].Tier)
	assert.Equal(t, 0.9, bundle.Competitors[0].ThreatLevel)
	assert.Equal(t, 0.5, bundle.Competitors[1].ThreatLevel)
	assert.Equal(t, 0.6, bundle.Competitors[1].DataCompleteness)
	assert.Equal(t, models.CompetitorIndirect, bundle.Competitors[2].Tier)
	assert.Equal(t, 0.3, bundle.Competitors[2].ThreatLevel)
	assert.Equal(t, 0.5, bundle.Competitors[2].DataCompleteness)

	require.Len(t, bundle.Segments, 1)
	assert.Equal(t, "Secondary", bundle.Segments[0].PriorityLevel)
	assert.Equal(t, 0.5, bundle.Segments[0].AccessibilityScore)

	require.Len(t, bundle.Trends, 1)
	assert.Equal(t, models.TrendEmerging, bundle.Trends[0].TrendType)
	assert.Equal(t, "Medium-term", bundle.Trends[0].TimeHorizon)

	require.Len(t, bundle.Opportunities, 1)
	assert.Equal(t, "Gap", bundle.Opportunities[0].OpportunityType)
	assert.Equal(t, 0.6, bundle.Opportunities[0].AttractivenessScore)
	assert.Equal(t, "Medium", bundle.Opportunities[0].PriorityLevel)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "target_market: Urban professionals - Time poor")
	assert.NotContains(t, calls[0], "Packaging cost")
}

func TestGenerateComprehensive_FallsBackOnUnusableReply(t *testing.T) {
	tests := []struct {
		name     string
		provider *ai.MockProvider
	}{
		{name: "ai unavailable", provider: ai.NewMockProvider()},
		{name: "no json", provider: ai.NewMockProvider("I cannot help with that")},
		{name: "schema violation", provider: ai.NewMockProvider(`{"market_overview": {"industry": "X"}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, manager := newTestService(t, tt.provider)
			seedSession(t, manager)

			bundle, err := service.GenerateComprehensive(context.Background(), "ses_1")
			require.NoError(t, err)

			assert.Equal(t, "Technology", bundle.Analysis.Industry)
			assert.Equal(t, 10_000_000_000.0, bundle.Analysis.TAMValue)
			assert.Equal(t, 15.0, bundle.Analysis.CAGR)
			assert.Len(t, bundle.Segments, 3)
			assert.Empty(t, bundle.Competitors)
		})
	}
}

func TestGenerateComprehensive_ReplacesPreviousAnalysis(t *testing.T) {
	service, manager := newTestService(t, ai.NewMockProvider(marketReply))
	seedSession(t, manager)
	ctx := context.Background()

	first, err := service.GenerateComprehensive(ctx, "ses_1")
	require.NoError(t, err)
	second, err := service.GenerateComprehensive(ctx, "ses_1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Analysis.ID, second.Analysis.ID)

	bundle, err := service.Get(ctx, "ses_1")
	require.NoError(t, err)
	assert.Equal(t, second.Analysis.ID, bundle.Analysis.ID)
	assert.Len(t, bundle.Competitors, 3)
	assert.Len(t, bundle.Trends, 1)
}

func TestGenerateComprehensive_UnknownSession(t *testing.T) {
	service, _ := newTestService(t, ai.NewMockProvider(marketReply))

	_, err := service.GenerateComprehensive(context.Background(), "ses_missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestStatusAndDelete(t *testing.T) {
	service, manager := newTestService(t, ai.NewMockProvider(marketReply))
	seedSession(t, manager)
	ctx := context.Background()

	status, err := service.Status(ctx, "ses_1")
	require.NoError(t, err)
	assert.False(t, status.HasAnalysis)
	assert.Nil(t, status.ConfidenceScore)

	_, err = service.GenerateComprehensive(ctx, "ses_1")
	require.NoError(t, err)

	status, err = service.Status(ctx, "ses_1")
	require.NoError(t, err)
	assert.True(t, status.HasAnalysis)
	assert.Equal(t, 3, status.CompetitorsCount)
	assert.Equal(t, 1, status.SegmentsCount)
	require.NotNil(t, status.ConfidenceScore)
	assert.Equal(t, 0.7, *status.ConfidenceScore)

	require.NoError(t, service.Delete(ctx, "ses_1"))

	_, err = service.Get(ctx, "ses_1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, "ses_1"), interfaces.ErrNotFound)

	_, err = service.Status(ctx, "ses_missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestSizing(t *testing.T) {
	service, _ := newTestService(t, ai.NewMockProvider())

	t.Run("stored values with national scope", func(t *testing.T) {
		sizing := service.computeSizing(&models.MarketAnalysis{
			TAMValue:        20_000_000_000,
			CAGR:            10,
			MarketMaturity:  "Emerging",
			MarketSizeYear:  2025,
			ConfidenceScore: 0.7,
		}, SizingRequest{GeographicScope: "National", TargetSegments: []string{"a", "b"}})

		assert.InDelta(t, 2_000_000_000, sizing.TAM, 1)
		assert.InDelta(t, 600_000_000, sizing.SAM, 1)
		assert.InDelta(t, 60_000_000, sizing.SOM, 1)
		assert.InDelta(t, 10, sizing.Breakdown["penetration_rate"], 0.0001)
		require.Len(t, sizing.Projections, 5)
		assert.Equal(t, 2026, sizing.Projections[0].Year)
		assert.InDelta(t, 2_000_000_000*1.1, sizing.Projections[1].MarketValue, 1)
		assert.Contains(t, sizing.Assumptions, "Geographic scope: national")
		assert.Contains(t, sizing.Assumptions, "Analysis based on 2025 market data")
		assert.Equal(t, 0.7, sizing.ConfidenceScore)
	})

	t.Run("defaults", func(t *testing.T) {
		sizing := service.computeSizing(&models.MarketAnalysis{}, SizingRequest{})

		assert.InDelta(t, 1_000_000_000, sizing.TAM, 1)
		assert.InDelta(t, 300_000_000, sizing.SAM, 1)
		assert.InDelta(t, 15_000_000, sizing.SOM, 1)
		assert.Equal(t, 5.0, sizing.Projections[0].GrowthRate)
		assert.Contains(t, sizing.Assumptions, "Analysis based on current market data")
		assert.Equal(t, 0.6, sizing.ConfidenceScore)
	})

	t.Run("segment share is capped", func(t *testing.T) {
		sizing := service.computeSizing(&models.MarketAnalysis{TAMValue: 100}, SizingRequest{
			TargetSegments: []string{"a", "b", "c", "d", "e"},
		})
		assert.InDelta(t, 50, sizing.SAM, 0.0001)
	})
}

func TestSizing_WithoutAnalysisUsesFallback(t *testing.T) {
	service, manager := newTestService(t, ai.NewMockProvider())
	seedSession(t, manager)

	sizing, err := service.Sizing(context.Background(), "ses_1", SizingRequest{})
	require.NoError(t, err)
	assert.Equal(t, 10_000_000_000.0, sizing.TAM)
	assert.Equal(t, 5.0, sizing.Breakdown["penetration_rate"])
	assert.Equal(t, 0.4, sizing.ConfidenceScore)
	assert.Equal(t, []string{"Estimated market sizing", "15% CAGR assumed", "Global market scope"}, sizing.Assumptions)
}

func TestBuildLandscape(t *testing.T) {
	t.Run("empty market", func(t *testing.T) {
		landscape := BuildLandscape(nil)
		assert.Equal(t, 0.3, landscape.CompetitiveIntensity)
		assert.Equal(t, "fragmented", landscape.MarketConcentration)
		assert.Nil(t, landscape.MarketLeader)
		assert.NotNil(t, landscape.DirectCompetitors)
	})

	t.Run("concentrated market", func(t *testing.T) {
		landscape := BuildLandscape([]*models.CompetitorAnalysis{
			{Name: "B", Tier: models.CompetitorDirect, MarketShare: 20, ThreatLevel: 0.5},
			{Name: "A", Tier: models.CompetitorDirect, MarketShare: 45, ThreatLevel: 0.9},
			{Name: "C", Tier: models.CompetitorDirect, MarketShare: 10, ThreatLevel: 0.4},
			{Name: "Grocers", Tier: models.CompetitorIndirect, ThreatLevel: 0.3},
			{Name: "Takeaway", Tier: models.CompetitorSubstitute, ThreatLevel: 0.4},
		})

		require.NotNil(t, landscape.MarketLeader)
		assert.Equal(t, "A", landscape.MarketLeader.Name)
		assert.Equal(t, "highly_concentrated", landscape.MarketConcentration)
		assert.Len(t, landscape.DirectCompetitors, 3)
		assert.Len(t, landscape.IndirectCompetitors, 1)
		assert.Len(t, landscape.SubstituteProducts, 1)
		assert.Equal(t, 5, landscape.TotalCompetitorsCount)
		// average threat 0.5, five competitors
		assert.InDelta(t, 0.4, landscape.CompetitiveIntensity, 0.0001)
	})

	t.Run("moderate concentration", func(t *testing.T) {
		landscape := BuildLandscape([]*models.CompetitorAnalysis{
			{Name: "A", Tier: models.CompetitorDirect, MarketShare: 25, ThreatLevel: 1},
			{Name: "B", Tier: models.CompetitorDirect, MarketShare: 20, ThreatLevel: 1},
		})
		assert.Equal(t, "moderately_concentrated", landscape.MarketConcentration)
		assert.InDelta(t, 0.6, landscape.CompetitiveIntensity, 0.0001)
	})
}

func TestAddCompetitor(t *testing.T) {
	provider := ai.NewMockProvider(marketReply,
		`{"description": "Regional meal kit startup", "tier": "Indirect", "market_share": 3, "threat_level": 0.2, "strengths": ["Local sourcing"]}`)
	service, manager := newTestService(t, provider)
	seedSession(t, manager)
	ctx := context.Background()

	_, err := service.AddCompetitor(ctx, "ses_1", "Local Kits", "")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = service.AddCompetitor(ctx, "ses_1", "  ", "")
	assert.ErrorIs(t, err, interfaces.ErrInvalidInput)

	bundle, err := service.GenerateComprehensive(ctx, "ses_1")
	require.NoError(t, err)

	competitor, err := service.AddCompetitor(ctx, "ses_1", "Local Kits", "deep")
	require.NoError(t, err)
	assert.Equal(t, bundle.Analysis.ID, competitor.MarketAnalysisID)
	assert.Equal(t, models.CompetitorIndirect, competitor.Tier)
	assert.Equal(t, 0.2, competitor.ThreatLevel)
	assert.Equal(t, []string{"Local sourcing"}, competitor.Strengths)

	calls := provider.Calls()
	last := calls[len(calls)-1]
	assert.Contains(t, last, `"Local Kits"`)
	assert.Contains(t, last, "Research depth: deep")

	stored, err := manager.MarketStorage().GetCompetitorsByAnalysis(ctx, bundle.Analysis.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestResearchCompetitor_UpdatesInPlaceWithFallback(t *testing.T) {
	service, manager := newTestService(t, ai.NewMockProvider())
	seedSession(t, manager)
	ctx := context.Background()

	require.NoError(t, manager.MarketStorage().SaveCompetitor(ctx, &models.CompetitorAnalysis{
		ID:               "cmp_1",
		MarketAnalysisID: "mkt_1",
		SessionID:        "ses_1",
		Name:             "HelloFresh",
		Tier:             models.CompetitorIndirect,
		MarketShare:      45,
	}))

	competitor, err := service.ResearchCompetitor(ctx, "cmp_1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "cmp_1", competitor.ID)
	assert.Equal(t, "HelloFresh", competitor.Name)
	assert.Equal(t, "Competitor in the market space", competitor.Description)
	assert.Equal(t, models.CompetitorDirect, competitor.Tier)
	assert.Equal(t, 0.3, competitor.DataCompleteness)

	stored, err := manager.MarketStorage().GetCompetitor(ctx, "cmp_1")
	require.NoError(t, err)
	assert.Equal(t, "Competitor in the market space", stored.Description)

	_, err = service.ResearchCompetitor(ctx, "cmp_missing", "X", "")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestExportPDF(t *testing.T) {
	service, manager := newTestService(t, ai.NewMockProvider(marketReply))
	seedSession(t, manager)
	ctx := context.Background()

	_, _, err := service.ExportPDF(ctx, "ses_1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = service.GenerateComprehensive(ctx, "ses_1")
	require.NoError(t, err)

	data, name, err := service.ExportPDF(ctx, "ses_1")
	require.NoError(t, err)
	assert.Equal(t, "market_analysis_20260301.pdf", name)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}
