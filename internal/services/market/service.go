package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
)

const (
	analysisConfidence = 0.7
	fallbackConfidence = 0.4
	systemInstruction  = "You are a market research analyst. Be specific with numbers and provide realistic estimates."
)

// contextCategories are the insight categories fed into the market prompt
var contextCategories = []models.InsightCategory{
	models.CategoryTargetMarket,
	models.CategoryCustomerProfile,
	models.CategoryProblemSolution,
}

// Status summarises whether a session has a market analysis
type Status struct {
	HasAnalysis      bool       `json:"has_analysis"`
	AnalysisDate     *time.Time `json:"analysis_date"`
	LastUpdated      *time.Time `json:"last_updated,omitempty"`
	ConfidenceScore  *float64   `json:"confidence_score"`
	CompetitorsCount int        `json:"competitors_count"`
	SegmentsCount    int        `json:"segments_count"`
	TrendsCount      int        `json:"trends_count"`
	Opportunities    int        `json:"opportunities_count"`
}

// Service produces and stores market analyses for research sessions
type Service struct {
	storage interfaces.StorageManager
	ai      interfaces.AIService
	pdf     *pdf.Service
	logger  arbor.ILogger
	now     func() time.Time
}

// NewService creates a new market analysis service
func NewService(storage interfaces.StorageManager, aiService interfaces.AIService, pdfService *pdf.Service, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		ai:      aiService,
		pdf:     pdfService,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GenerateComprehensive builds a full market analysis for the session,
// replacing any previous one. Unusable AI output falls back to a canned
// market; a storage failure while writing children leaves a bare analysis.
func (s *Service) GenerateComprehensive(ctx context.Context, sessionID string) (*models.MarketAnalysisBundle, error) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	insights, err := s.storage.InsightStorage().GetInsightsByCategory(ctx, sessionID, contextCategories...)
	if err != nil {
		return nil, err
	}

	payload := s.generatePayload(ctx, session, insights)

	if err := s.storage.MarketStorage().DeleteMarketDataBySession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear previous market analysis: %w", err)
	}

	bundle, err := s.persist(ctx, sessionID, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to store market analysis, keeping bare analysis")
		return s.persistBare(ctx, sessionID)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("competitors", len(bundle.Competitors)).
		Int("segments", len(bundle.Segments)).
		Msg("Market analysis generated")

	return bundle, nil
}

func (s *Service) generatePayload(ctx context.Context, session *models.ResearchSession, insights []*models.ResearchInsight) *marketPayload {
	text, err := s.ai.Generate(ctx, buildPrompt(session, insights), interfaces.GenerateOptions{
		SystemInstruction: systemInstruction,
		JSON:              true,
	})
	if err == nil {
		var payload marketPayload
		if err = ai.DecodeJSON(text, marketSchema, &payload); err == nil {
			return &payload
		}
	}

	s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Market analysis AI reply unusable, using fallback market data")
	metrics.AIFallbacks.WithLabelValues("market").Inc()
	return fallbackPayload()
}

func buildPrompt(session *models.ResearchSession, insights []*models.ResearchInsight) string {
	title := orDefault(session.Title, "Business Idea")
	description := orDefault(session.Description, "Market analysis for business concept")

	var existing strings.Builder
	for _, insight := range insights {
		fmt.Fprintf(&existing, "%s: %s - %s\n", insight.Category, insight.Title, insight.Description)
	}
	if existing.Len() == 0 {
		existing.WriteString("No existing market insights available\n")
	}

	return fmt.Sprintf(`Analyze the market for this business idea and provide comprehensive market analysis data.

Idea: %s
Description: %s

Existing Research Context:
%s
Respond with JSON containing:
- market_overview: industry, market_category, geographic_scope, target_demographics
- market_size (USD): tam, sam, som, cagr (percent), market_maturity
- market_dynamics: market_drivers, market_barriers, regulatory_factors, technology_trends (3-5 items each)
- customer_analysis: customer_segments (3-4 with name, description, size_percentage, attractiveness_score),
  customer_pain_points (5-7), buying_behavior, price_sensitivity (0.0-1.0)
- competitive_landscape: direct_competitors (5-8) and indirect_competitors (3-5), each with name,
  description, market_share, strengths, weaknesses, threat_level (0.0-1.0)
- market_trends: emerging_trends (3-5 with name, description, impact_level, time_horizon)
- opportunities: market_gaps (3-4 with title, description, type, attractiveness_score, feasibility_score)`,
		title, description, existing.String())
}

func (s *Service) persist(ctx context.Context, sessionID string, p *marketPayload) (*models.MarketAnalysisBundle, error) {
	store := s.storage.MarketStorage()
	now := s.now()

	segmentsRaw := make([]map[string]interface{}, 0, len(p.CustomerAnalysis.CustomerSegments))
	for _, seg := range p.CustomerAnalysis.CustomerSegments {
		segmentsRaw = append(segmentsRaw, map[string]interface{}{
			"name":                 seg.Name,
			"size_percentage":      seg.SizePercentage,
			"attractiveness_score": valueOr(seg.AttractivenessScore, 0.5),
		})
	}

	analysis := &models.MarketAnalysis{
		ID:                 common.NewID(common.PrefixMarket),
		SessionID:          sessionID,
		Industry:           p.MarketOverview.Industry,
		MarketCategory:     p.MarketOverview.MarketCategory,
		GeographicScope:    orDefault(p.MarketOverview.GeographicScope, "Global"),
		TargetDemographics: p.MarketOverview.TargetDemographics,
		TAMValue:           p.MarketSize.TAM,
		SAMValue:           p.MarketSize.SAM,
		SOMValue:           p.MarketSize.SOM,
		MarketSizeYear:     now.Year(),
		CAGR:               p.MarketSize.CAGR,
		MarketMaturity:     p.MarketSize.MarketMaturity,
		MarketDrivers:      nonNil(p.MarketDynamics.MarketDrivers),
		MarketBarriers:     nonNil(p.MarketDynamics.MarketBarriers),
		RegulatoryFactors:  nonNil(p.MarketDynamics.RegulatoryFactors),
		TechnologyTrends:   nonNil(p.MarketDynamics.TechnologyTrends),
		CustomerSegments:   segmentsRaw,
		CustomerPainPoints: nonNil(p.CustomerAnalysis.CustomerPainPoints),
		BuyingBehavior:     p.CustomerAnalysis.BuyingBehavior,
		PriceSensitivity:   valueOr(p.CustomerAnalysis.PriceSensitivity, 0.5),
		ConfidenceScore:    analysisConfidence,
		DataSources:        []string{"AI Analysis", "Market Research"},
		AnalysisDate:       now,
	}
	if err := store.SaveMarketAnalysis(ctx, analysis); err != nil {
		return nil, err
	}

	bundle := &models.MarketAnalysisBundle{
		Analysis:      analysis,
		Competitors:   []*models.CompetitorAnalysis{},
		Segments:      []*models.MarketSegment{},
		Trends:        []*models.MarketTrendAnalysis{},
		Opportunities: []*models.MarketOpportunity{},
	}

	addCompetitor := func(c competitorPayload, tier models.CompetitorTier, threat, completeness float64) error {
		competitor := &models.CompetitorAnalysis{
			ID:               common.NewID(common.PrefixCompetitor),
			MarketAnalysisID: analysis.ID,
			SessionID:        sessionID,
			Name:             orDefault(c.Name, "Unknown Competitor"),
			Description:      c.Description,
			Tier:             tier,
			MarketShare:      c.MarketShare,
			Revenue:          c.Revenue,
			Strengths:        nonNil(c.Strengths),
			Weaknesses:       nonNil(c.Weaknesses),
			ThreatLevel:      valueOr(c.ThreatLevel, threat),
			DataCompleteness: completeness,
			LastResearched:   now,
		}
		if err := store.SaveCompetitor(ctx, competitor); err != nil {
			return err
		}
		bundle.Competitors = append(bundle.Competitors, competitor)
		return nil
	}
	for _, c := range p.CompetitiveLandscape.DirectCompetitors {
		if err := addCompetitor(c, models.CompetitorDirect, 0.5, 0.6); err != nil {
			return nil, err
		}
	}
	for _, c := range p.CompetitiveLandscape.IndirectCompetitors {
		if err := addCompetitor(c, models.CompetitorIndirect, 0.3, 0.5); err != nil {
			return nil, err
		}
	}

	for _, seg := range p.CustomerAnalysis.CustomerSegments {
		segment := &models.MarketSegment{
			ID:                   common.NewID(common.PrefixSegment),
			MarketAnalysisID:     analysis.ID,
			SessionID:            sessionID,
			SegmentName:          orDefault(seg.Name, "Market Segment"),
			Description:          seg.Description,
			SizePercentage:       seg.SizePercentage,
			AgeRange:             seg.AgeRange,
			IncomeRange:          seg.IncomeRange,
			BehaviorTraits:       seg.BehaviorTraits,
			AttractivenessScore:  valueOr(seg.AttractivenessScore, 0.5),
			AccessibilityScore:   valueOr(seg.AccessibilityScore, 0.5),
			CompetitionIntensity: valueOr(seg.CompetitionIntensity, 0.5),
			PriorityLevel:        orDefault(seg.PriorityLevel, "Secondary"),
		}
		if err := store.SaveSegment(ctx, segment); err != nil {
			return nil, err
		}
		bundle.Segments = append(bundle.Segments, segment)
	}

	for _, t := range p.MarketTrends.EmergingTrends {
		trend := &models.MarketTrendAnalysis{
			ID:              common.NewID(common.PrefixTrend),
			SessionID:       sessionID,
			TrendName:       orDefault(t.Name, "Market Trend"),
			TrendType:       models.TrendEmerging,
			Description:     t.Description,
			ImpactLevel:     valueOr(t.ImpactLevel, 0.5),
			TimeHorizon:     orDefault(t.TimeHorizon, "Medium-term"),
			Opportunities:   t.Opportunities,
			Threats:         t.Threats,
			ConfidenceLevel: 0.6,
			AnalysisDate:    now,
		}
		if err := store.SaveTrend(ctx, trend); err != nil {
			return nil, err
		}
		bundle.Trends = append(bundle.Trends, trend)
	}

	for _, o := range p.Opportunities.MarketGaps {
		opportunity := &models.MarketOpportunity{
			ID:                  common.NewID(common.PrefixOpportunity),
			SessionID:           sessionID,
			Title:               orDefault(o.Title, "Market Opportunity"),
			Description:         o.Description,
			OpportunityType:     orDefault(o.Type, "Gap"),
			MarketSize:          o.MarketSize,
			AttractivenessScore: valueOr(o.AttractivenessScore, 0.6),
			FeasibilityScore:    valueOr(o.FeasibilityScore, 0.5),
			UrgencyScore:        valueOr(o.UrgencyScore, 0.5),
			RiskFactors:         o.RiskFactors,
			PriorityLevel:       orDefault(o.PriorityLevel, "Medium"),
		}
		if err := store.SaveOpportunity(ctx, opportunity); err != nil {
			return nil, err
		}
		bundle.Opportunities = append(bundle.Opportunities, opportunity)
	}

	return bundle, nil
}

// persistBare stores the minimal analysis used when the full write fails
func (s *Service) persistBare(ctx context.Context, sessionID string) (*models.MarketAnalysisBundle, error) {
	if err := s.storage.MarketStorage().DeleteMarketDataBySession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear partial market analysis: %w", err)
	}

	analysis := &models.MarketAnalysis{
		ID:              common.NewID(common.PrefixMarket),
		SessionID:       sessionID,
		Industry:        "Technology",
		MarketCategory:  "Software/Services",
		GeographicScope: "Global",
		TAMValue:        10_000_000_000,
		SAMValue:        1_000_000_000,
		SOMValue:        50_000_000,
		MarketSizeYear:  s.now().Year(),
		CAGR:            15.0,
		MarketMaturity:  "Growth",
		ConfidenceScore: fallbackConfidence,
		AnalysisDate:    s.now(),
	}
	if err := s.storage.MarketStorage().SaveMarketAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to store market analysis: %w", err)
	}

	return &models.MarketAnalysisBundle{
		Analysis:      analysis,
		Competitors:   []*models.CompetitorAnalysis{},
		Segments:      []*models.MarketSegment{},
		Trends:        []*models.MarketTrendAnalysis{},
		Opportunities: []*models.MarketOpportunity{},
	}, nil
}

// Get returns the session's current market analysis with its child records
func (s *Service) Get(ctx context.Context, sessionID string) (*models.MarketAnalysisBundle, error) {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	store := s.storage.MarketStorage()
	analysis, err := store.GetMarketAnalysisBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	competitors, err := store.GetCompetitorsByAnalysis(ctx, analysis.ID)
	if err != nil {
		return nil, err
	}
	segments, err := store.GetSegmentsByAnalysis(ctx, analysis.ID)
	if err != nil {
		return nil, err
	}
	trends, err := store.GetTrendsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	opportunities, err := store.GetOpportunitiesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.MarketAnalysisBundle{
		Analysis:      analysis,
		Competitors:   nonNil(competitors),
		Segments:      nonNil(segments),
		Trends:        nonNil(trends),
		Opportunities: nonNil(opportunities),
	}, nil
}

// Delete removes the session's market analysis and its child records
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.storage.MarketStorage().GetMarketAnalysisBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.storage.MarketStorage().DeleteMarketDataBySession(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("Market analysis deleted")
	return nil
}

// Status reports whether an analysis exists and how much it holds
func (s *Service) Status(ctx context.Context, sessionID string) (*Status, error) {
	bundle, err := s.Get(ctx, sessionID)
	if errors.Is(err, interfaces.ErrNotFound) {
		// A missing session is still an error; a missing analysis is not
		if _, sessErr := s.storage.SessionStorage().GetSession(ctx, sessionID); sessErr != nil {
			return nil, sessErr
		}
		return &Status{HasAnalysis: false}, nil
	}
	if err != nil {
		return nil, err
	}

	a := bundle.Analysis
	return &Status{
		HasAnalysis:      true,
		AnalysisDate:     &a.AnalysisDate,
		LastUpdated:      &a.LastUpdated,
		ConfidenceScore:  &a.ConfidenceScore,
		CompetitorsCount: len(bundle.Competitors),
		SegmentsCount:    len(bundle.Segments),
		TrendsCount:      len(bundle.Trends),
		Opportunities:    len(bundle.Opportunities),
	}, nil
}

// ExportPDF renders the session's market analysis.
// Returns the document and a file name.
func (s *Service) ExportPDF(ctx context.Context, sessionID string) ([]byte, string, error) {
	bundle, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.pdf.RenderMarketAnalysis(session, bundle)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render market analysis: %w", err)
	}
	return data, fmt.Sprintf("market_analysis_%s.pdf", s.now().Format("20060102")), nil
}
