package strategy

import (
	"fmt"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// defaultConfidence is used when no phase reported a confidence score
const defaultConfidence = 0.7

var defaultCriteria = []string{
	"Investment Required",
	"Time to Market",
	"Success Probability",
	"Risk Level",
	"Market Potential",
}

var baseNextSteps = map[models.ResearchApproach][]string{
	models.ApproachQuickValidation: {
		"Validate key assumptions with target customers",
		"Create minimum viable product (MVP) prototype",
		"Test value proposition with early adopters",
		"Gather initial customer feedback",
	},
	models.ApproachMarketDeepDive: {
		"Conduct detailed customer interviews",
		"Develop comprehensive business model",
		"Create detailed go-to-market strategy",
		"Assess funding requirements and options",
		"Build strategic partnerships",
	},
	models.ApproachLaunchStrategy: {
		"Finalize product roadmap and specifications",
		"Secure initial funding or investment",
		"Build founding team and key partnerships",
		"Create detailed launch timeline and milestones",
		"Establish success metrics and tracking systems",
		"Develop risk mitigation strategies",
	},
}

// GenerateStrategicOptions builds count canned options in the fixed
// strategic approach order. Scores fall with position and the first
// option is recommended.
func GenerateStrategicOptions(ideaTitle string, count int) []models.StrategicOption {
	if count > len(strategicApproaches) {
		count = len(strategicApproaches)
	}
	if count < 0 {
		count = 0
	}

	options := make([]models.StrategicOption, 0, count)
	for i, approach := range strategicApproaches[:count] {
		name := spaced(string(approach))
		options = append(options, models.StrategicOption{
			Approach:                      approach,
			Title:                         fmt.Sprintf("%s Strategy", humanize(string(approach))),
			Description:                   fmt.Sprintf("Strategic approach focusing on %s for %s", name, ideaTitle),
			TargetCustomerSegment:         "Primary target segment identified in analysis",
			ValueProposition:              "Unique value proposition tailored to customer needs",
			GoToMarketStrategy:            "Direct sales, digital marketing, and strategic partnerships",
			EstimatedInvestmentUSD:        float64(500_000 + i*250_000),
			TimelineToMarketMonths:        12 + i*6,
			TimelineToProfitabilityMonths: 18 + i*8,
			SuccessProbabilityPercent:     float64(75 - i*5),
			RiskFactors:                   []string{"Market competition", "Technical challenges", "Regulatory changes"},
			MitigationStrategies:          []string{"Focused execution", "Strong partnerships", "Agile development"},
			ResourceRequirements: []models.ResourceRequirement{
				{
					Category:         "financial",
					Description:      "Initial funding for development and marketing",
					EstimatedCostUSD: 300_000,
					TimelineMonths:   6,
					Criticality:      "critical",
				},
				{
					Category:       "human",
					Description:    "Technical and marketing team",
					TimelineMonths: 12,
					Criticality:    "critical",
				},
			},
			SuccessMetrics: []models.SuccessMetric{
				{MetricName: "Customer Acquisition", TargetValue: 1000, Timeframe: "12 months", MeasurementMethod: "Monthly active users"},
				{MetricName: "Revenue Growth", TargetValue: "$500K", Timeframe: "18 months", MeasurementMethod: "Monthly recurring revenue"},
			},
			SwotAnalysis: &models.SwotAnalysis{
				Strengths:              []string{"Clear value proposition", "Strong team", "Market opportunity"},
				Weaknesses:             []string{"Limited resources", "New brand", "Market competition"},
				Opportunities:          []string{"Growing market", "Technology trends", "Strategic partnerships"},
				Threats:                []string{"Competition", "Market changes", "Resource constraints"},
				StrategicImplications:  []string{fmt.Sprintf("Focus on %s execution", name)},
				CriticalSuccessFactors: []string{"Customer acquisition", "Product quality", "Market timing"},
				ConfidenceScore:        0.8,
			},
			CustomerSegments:       []models.CustomerSegment{},
			CompetitivePositioning: "Differentiated positioning focusing on unique value proposition",
			OverallScore:           8.0 - float64(i)*0.5,
			Recommended:            i == 0,
		})
	}
	return options
}

// recommendedOption returns the option with the highest overall score.
// Ties keep the earlier option.
func recommendedOption(options []models.StrategicOption) *models.StrategicOption {
	if len(options) == 0 {
		return nil
	}
	best := 0
	for i := range options {
		if options[i].OverallScore > options[best].OverallScore {
			best = i
		}
	}
	option := options[best]
	return &option
}

func overallConfidence(results *phaseResults) float64 {
	scores := results.confidences()
	if len(scores) == 0 {
		return defaultConfidence
	}
	total := 0.0
	for _, score := range scores {
		total += score
	}
	return total / float64(len(scores))
}

func nextSteps(recommended *models.StrategicOption, approach models.ResearchApproach) []string {
	steps := append([]string{}, baseNextSteps[approach]...)
	if recommended != nil {
		steps = append(steps,
			fmt.Sprintf("Execute %s strategy", spaced(string(recommended.Approach))),
			fmt.Sprintf("Focus on %s segment", recommended.TargetCustomerSegment),
			"Monitor success metrics and adjust strategy as needed",
		)
	}
	return steps
}

// CompareOptions lays a completed result's options side by side.
// Empty criteria select the default set.
func CompareOptions(sessionID string, result *models.AnalysisResult, criteria []string) *models.OptionComparison {
	if len(criteria) == 0 {
		criteria = append([]string{}, defaultCriteria...)
	}

	tradeOffs := make(map[string]string, len(result.StrategicOptions))
	for i, option := range result.StrategicOptions {
		tradeOffs[fmt.Sprintf("Option %d", i+1)] = fmt.Sprintf("%s: %g%% success probability, %d months to market",
			option.Title, option.SuccessProbabilityPercent, option.TimelineToMarketMonths)
	}

	best := "the top option"
	if result.RecommendedOption != nil {
		best = result.RecommendedOption.Title
	}

	return &models.OptionComparison{
		SessionID:               sessionID,
		Options:                 result.StrategicOptions,
		ComparisonCriteria:      criteria,
		RecommendationReasoning: fmt.Sprintf("Based on analysis, %s offers the best balance of opportunity and feasibility.", best),
		TradeOffAnalysis:        tradeOffs,
	}
}

// Demo returns a fixed completed analysis for exercising clients
func Demo(approach models.ResearchApproach, now time.Time) *models.AnalysisResult {
	niche := models.StrategicOption{
		Approach:                  models.StrategicNicheDomination,
		Title:                     "Niche Market Leader",
		Description:               "Focus on specialized market segment with tailored solution",
		TargetCustomerSegment:     "Early Adopters",
		ValueProposition:          "Specialized solution for specific needs",
		GoToMarketStrategy:        "Direct sales and content marketing",
		TimelineToMarketMonths:    12,
		SuccessProbabilityPercent: 75,
		RiskFactors:               []string{},
		MitigationStrategies:      []string{},
		ResourceRequirements:      []models.ResourceRequirement{},
		SuccessMetrics:            []models.SuccessMetric{},
		CustomerSegments:          []models.CustomerSegment{},
		OverallScore:              8.2,
		Recommended:               true,
	}
	challenger := niche
	challenger.Approach = models.StrategicMarketLeaderChallenge
	challenger.Title = "Market Challenger"
	challenger.Description = "Compete directly with market leaders"
	challenger.TargetCustomerSegment = "Mainstream market"
	challenger.ValueProposition = "Better features at competitive price"
	challenger.GoToMarketStrategy = "Digital marketing and partnerships"
	challenger.TimelineToMarketMonths = 18
	challenger.SuccessProbabilityPercent = 60
	challenger.OverallScore = 7.1
	challenger.Recommended = false

	assessment := strategicAssessmentTemplate()
	assessment.StrategicFitAnalysis = "Strong strategic fit with market opportunities"
	assessment.Reasoning = "Market opportunity outweighs risks with proper execution"

	market := marketContextTemplate("")
	market.IndustryOverview = "Demo industry analysis for UI testing"

	competitive := competitiveIntelligenceTemplate("")
	competitive.CompetitiveLandscapeSummary = "Competitive landscape shows moderate competition with room for innovation"

	recommended := niche
	return &models.AnalysisResult{
		StrategyID:              "demo",
		Approach:                approach,
		MarketContext:           market,
		CompetitiveIntelligence: competitive,
		CustomerUnderstanding:   customerUnderstandingTemplate(),
		StrategicAssessment:     assessment,
		StrategicOptions:        []models.StrategicOption{niche, challenger},
		RecommendedOption:       &recommended,
		AnalysisConfidence:      0.81,
		AnalysisCompleteness:    100,
		NextSteps: []string{
			"Validate assumptions with target customers",
			"Develop MVP prototype",
			"Create detailed business plan",
			"Secure initial funding",
		},
		GeneratedAt: now,
	}
}
