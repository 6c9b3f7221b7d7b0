package research

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
)

const (
	defaultInsightConfidence = 0.5
	defaultOptionScore       = 0.5
	recommendThreshold       = 0.7
)

// categoryAliases maps loose AI category names onto the six fixed categories
var categoryAliases = map[string]models.InsightCategory{
	"market":       models.CategoryTargetMarket,
	"customer":     models.CategoryCustomerProfile,
	"customers":    models.CategoryCustomerProfile,
	"problem":      models.CategoryProblemSolution,
	"solution":     models.CategoryProblemSolution,
	"growth":       models.CategoryGrowthTargets,
	"cost":         models.CategoryCostModel,
	"costs":        models.CategoryCostModel,
	"revenue":      models.CategoryRevenueModel,
	"monetization": models.CategoryRevenueModel,
}

// readinessCategories must all be present for a full category score
var readinessCategories = []models.InsightCategory{
	models.CategoryTargetMarket,
	models.CategoryCustomerProfile,
	models.CategoryProblemSolution,
	models.CategoryRevenueModel,
}

// NormalizeCategory maps an arbitrary category name to one of the six
// insight categories. Unknown names become target_market.
func NormalizeCategory(category string) models.InsightCategory {
	key := strings.ToLower(strings.TrimSpace(category))
	for _, c := range models.InsightCategories {
		if string(c) == key {
			return c
		}
	}
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return models.CategoryTargetMarket
}

// AddInsight stores an insight built from a loosely typed AI or client payload.
// An explicit "data" object becomes the insight data, otherwise the whole payload does.
func (s *Service) AddInsight(ctx context.Context, sessionID string, raw map[string]interface{}) (*models.ResearchInsight, error) {
	insight := &models.ResearchInsight{
		ID:              common.NewID(common.PrefixInsight),
		SessionID:       sessionID,
		Category:        NormalizeCategory(stringValue(raw, "category")),
		Subcategory:     stringValue(raw, "subcategory"),
		Title:           stringValue(raw, "title"),
		Description:     stringValue(raw, "description"),
		ConfidenceScore: floatValue(raw, "confidence_score", defaultInsightConfidence),
		Sources:         stringList(raw, "sources"),
		Data:            raw,
	}
	if data, ok := raw["data"].(map[string]interface{}); ok {
		insight.Data = data
	}
	if err := s.storage.InsightStorage().SaveInsight(ctx, insight); err != nil {
		return nil, err
	}
	return insight, nil
}

// AddOption stores an option built from a loosely typed payload.
// Recommended is derived here once and never re-evaluated.
func (s *Service) AddOption(ctx context.Context, sessionID string, raw map[string]interface{}) (*models.ResearchOption, error) {
	option := &models.ResearchOption{
		ID:               common.NewID(common.PrefixOption),
		SessionID:        sessionID,
		Category:         stringValue(raw, "category"),
		Title:            stringValue(raw, "title"),
		Description:      stringValue(raw, "description"),
		Pros:             stringList(raw, "pros"),
		Cons:             stringList(raw, "cons"),
		FeasibilityScore: floatValue(raw, "feasibility_score", defaultOptionScore),
		ImpactScore:      floatValue(raw, "impact_score", defaultOptionScore),
		RiskScore:        floatValue(raw, "risk_score", defaultOptionScore),
		Metadata:         raw,
	}
	option.Recommended = option.Score() > recommendThreshold

	if err := s.storage.OptionStorage().SaveOption(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

// CategorizedAnalysis groups the session's insights by category and
// summarises options, statistics and a readiness score.
func (s *Service) CategorizedAnalysis(ctx context.Context, sessionID string) (*CategorizedAnalysis, error) {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	options, err := s.storage.OptionStorage().GetOptionsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].ConfidenceScore > insights[j].ConfidenceScore
	})
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Score() > options[j].Score()
	})

	grouped := make(map[models.InsightCategory][]InsightView, len(models.InsightCategories))
	for _, c := range models.InsightCategories {
		grouped[c] = []InsightView{}
	}

	stats := AnalysisStatistics{
		InsightsByCategory: make(map[string]CategoryStat),
		OptionsByCategory:  make(map[string]CategoryStat),
		TotalInsights:      len(insights),
		TotalOptions:       len(options),
		LastUpdated:        s.now(),
	}

	var confidenceSum float64
	for _, insight := range insights {
		grouped[insight.Category] = append(grouped[insight.Category], InsightView{
			ID:              insight.ID,
			Title:           insight.Title,
			Description:     insight.Description,
			ConfidenceScore: insight.ConfidenceScore,
			Category:        insight.Category,
			Subcategory:     insight.Subcategory,
			Data:            insight.Data,
			IsValidated:     insight.IsValidated,
		})

		stat := stats.InsightsByCategory[string(insight.Category)]
		stat.AvgConfidence = (stat.AvgConfidence*float64(stat.Count) + insight.ConfidenceScore) / float64(stat.Count+1)
		stat.Count++
		stats.InsightsByCategory[string(insight.Category)] = stat

		confidenceSum += insight.ConfidenceScore
		if insight.IsValidated {
			stats.ValidatedInsights++
		}
	}

	recommended := []*models.ResearchOption{}
	for _, option := range options {
		stat := stats.OptionsByCategory[option.Category]
		stat.AvgScore = (stat.AvgScore*float64(stat.Count) + option.Score()) / float64(stat.Count+1)
		stat.Count++
		stats.OptionsByCategory[option.Category] = stat

		if option.Recommended {
			recommended = append(recommended, option)
		}
	}

	if len(insights) > 0 {
		stats.AvgConfidence = confidenceSum / float64(len(insights))
	}
	stats.ResearchCompletion = stats.AvgConfidence

	return &CategorizedAnalysis{
		SessionID:          sessionID,
		Insights:           grouped,
		AllOptions:         nonNil(options),
		RecommendedOptions: recommended,
		Statistics:         stats,
		ReadinessScore:     ReadinessScore(insights),
	}, nil
}

// ReadinessScore weighs core category coverage (50%), average confidence
// (30%) and the validated share (20%), capped at 1.
func ReadinessScore(insights []*models.ResearchInsight) float64 {
	present := make(map[models.InsightCategory]bool)
	var confidenceSum float64
	validated := 0
	for _, insight := range insights {
		present[insight.Category] = true
		confidenceSum += insight.ConfidenceScore
		if insight.IsValidated {
			validated++
		}
	}

	covered := 0
	for _, c := range readinessCategories {
		if present[c] {
			covered++
		}
	}
	categoryScore := float64(covered) / float64(len(readinessCategories))

	avgConfidence := defaultInsightConfidence
	total := 1
	if len(insights) > 0 {
		avgConfidence = confidenceSum / float64(len(insights))
		total = len(insights)
	}

	score := categoryScore*0.5 + avgConfidence*0.3 + float64(validated)/float64(total)*0.2
	if score > 1 {
		return 1
	}
	return score
}

type factCheckReply struct {
	VerificationStatus string   `json:"verification_status"`
	ConfidenceLevel    string   `json:"confidence_level"`
	Sources            []string `json:"sources"`
	Notes              string   `json:"notes"`
}

var factCheckSchema = ai.ObjectSchema(map[string]interface{}{
	"verification_status": map[string]interface{}{
		"type": "string",
		"enum": []interface{}{models.VerificationVerified, models.VerificationDisputed, models.VerificationUnverified},
	},
	"confidence_level": map[string]interface{}{
		"type": "string",
		"enum": []interface{}{"high", "medium", "low"},
	},
	"sources": ai.StringArray(),
	"notes":   map[string]interface{}{"type": "string"},
}, "verification_status", "confidence_level")

// ValidateInsight fact-checks claim against the insight and records the
// outcome. A verified claim marks the insight as validated.
func (s *Service) ValidateInsight(ctx context.Context, insightID, claim string) (*models.ResearchFactCheck, error) {
	insight, err := s.storage.InsightStorage().GetInsight(ctx, insightID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claim) == "" {
		claim = insight.Description
	}

	reply := s.factCheck(ctx, claim, map[string]interface{}{
		"insight_title":       insight.Title,
		"insight_description": insight.Description,
		"insight_category":    insight.Category,
	})

	fc := &models.ResearchFactCheck{
		ID:                 common.NewID(common.PrefixFactCheck),
		InsightID:          insight.ID,
		SessionID:          insight.SessionID,
		Claim:              claim,
		VerificationStatus: reply.VerificationStatus,
		Sources:            nonNil(reply.Sources),
		ConfidenceLevel:    reply.ConfidenceLevel,
		Notes:              reply.Notes,
		CreatedAt:          s.now(),
	}
	if err := s.storage.FactCheckStorage().SaveFactCheck(ctx, fc); err != nil {
		return nil, err
	}

	if fc.VerificationStatus == models.VerificationVerified && !insight.IsValidated {
		insight.IsValidated = true
		if err := s.storage.InsightStorage().SaveInsight(ctx, insight); err != nil {
			return nil, fmt.Errorf("failed to mark insight validated: %w", err)
		}
	}

	s.logger.Info().
		Str("insight_id", insightID).
		Str("status", fc.VerificationStatus).
		Msg("Insight fact-checked")

	return fc, nil
}

func (s *Service) factCheck(ctx context.Context, claim string, claimContext map[string]interface{}) factCheckReply {
	prompt := fmt.Sprintf("Claim: %s\nContext: %s\n\nVerify this claim. Respond with JSON: "+
		`{"verification_status": "verified|disputed|unverified", "confidence_level": "high|medium|low", "sources": [], "notes": ""}`,
		claim, toJSON(claimContext))

	text, err := s.ai.Generate(ctx, prompt, interfaces.GenerateOptions{
		SystemInstruction: "You are a fact-checker. Verify claims and provide verification status with sources.",
		JSON:              true,
	})
	if err == nil {
		var reply factCheckReply
		if err = ai.DecodeJSON(text, factCheckSchema, &reply); err == nil {
			return reply
		}
	}

	s.logger.Warn().Err(err).Msg("Fact-check unavailable, recording claim as unverified")
	metrics.AIFallbacks.WithLabelValues("fact_check").Inc()
	return factCheckReply{
		VerificationStatus: models.VerificationUnverified,
		ConfidenceLevel:    "low",
		Sources:            []string{},
		Notes:              "Unable to verify at this time",
	}
}
