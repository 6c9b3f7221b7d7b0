package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
)

// phaseInput is what every phase handler sees
type phaseInput struct {
	IdeaTitle       string
	IdeaDescription string
	Depth           string
	Results         *phaseResults
}

// phaseResults accumulates the output of completed phases
type phaseResults struct {
	MarketContext           *models.MarketContext
	CompetitiveIntelligence *models.CompetitiveIntelligence
	CustomerUnderstanding   *models.CustomerUnderstanding
	StrategicAssessment     *models.StrategicAssessment
}

// confidences returns the confidence score of every completed phase
func (r *phaseResults) confidences() []float64 {
	var scores []float64
	if r.MarketContext != nil {
		scores = append(scores, r.MarketContext.ConfidenceScore)
	}
	if r.CompetitiveIntelligence != nil {
		scores = append(scores, r.CompetitiveIntelligence.ConfidenceScore)
	}
	if r.CustomerUnderstanding != nil {
		scores = append(scores, r.CustomerUnderstanding.ConfidenceScore)
	}
	if r.StrategicAssessment != nil {
		scores = append(scores, r.StrategicAssessment.ConfidenceScore)
	}
	return scores
}

var phaseSchema = ai.ObjectSchema(map[string]interface{}{
	"confidence_score": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
})

// runPhase fills in the template result for phase, then lets the AI
// refine it when enrichment is on. Enrichment failures keep the template.
func (s *Service) runPhase(ctx context.Context, phase models.AnalysisPhase, in *phaseInput) error {
	switch phase {
	case models.PhaseMarketContext:
		in.Results.MarketContext = enrich(ctx, s, phase, in, marketContextTemplate(in.IdeaTitle))
	case models.PhaseCompetitiveIntelligence:
		in.Results.CompetitiveIntelligence = enrich(ctx, s, phase, in, competitiveIntelligenceTemplate(in.IdeaTitle))
	case models.PhaseCustomerUnderstanding:
		in.Results.CustomerUnderstanding = enrich(ctx, s, phase, in, customerUnderstandingTemplate())
	case models.PhaseStrategicAssessment:
		in.Results.StrategicAssessment = enrich(ctx, s, phase, in, strategicAssessmentTemplate())
	default:
		return fmt.Errorf("unknown analysis phase %q: %w", phase, interfaces.ErrInvalidInput)
	}
	return nil
}

// enrich overlays the AI reply onto a copy of template. Fields the reply
// omits keep their template values; any failure returns template as is.
func enrich[T any](ctx context.Context, s *Service, phase models.AnalysisPhase, in *phaseInput, template *T) *T {
	if !s.aiEnrichment || s.ai == nil {
		return template
	}

	prompt := fmt.Sprintf(`Perform the %s phase of a %s business research analysis.

Idea: %s
Description: %s

Respond with a single JSON object using the snake_case field names of a %s result
and include a confidence_score between 0.0 and 1.0.`,
		spaced(string(phase)), in.Depth, in.IdeaTitle, in.IdeaDescription, spaced(string(phase)))

	text, err := s.ai.Generate(ctx, prompt, interfaces.GenerateOptions{
		SystemInstruction: "You are a business strategy analyst producing structured research data.",
		JSON:              true,
	})

	var candidate *T
	if err == nil {
		candidate, err = cloneJSON(template)
	}
	if err == nil {
		err = ai.DecodeJSON(text, phaseSchema, candidate)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("phase", string(phase)).Msg("Phase enrichment failed, keeping template data")
		metrics.AIFallbacks.WithLabelValues("strategy").Inc()
		return template
	}
	return candidate
}

func cloneJSON[T any](value *T) (*T, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func marketContextTemplate(ideaTitle string) *models.MarketContext {
	return &models.MarketContext{
		IndustryOverview:      fmt.Sprintf("Industry analysis for %s", ideaTitle),
		MarketSizeUSD:         5_000_000_000,
		GrowthRateCAGR:        12.5,
		MaturityStage:         "growth",
		KeyTrends:             []string{"Digital transformation", "AI adoption", "Sustainability"},
		RegulatoryEnvironment: "Moderate regulation with upcoming changes",
		TechnologicalFactors:  []string{"Cloud computing", "Machine learning", "IoT"},
		ConfidenceScore:       0.85,
	}
}

func competitiveIntelligenceTemplate(ideaTitle string) *models.CompetitiveIntelligence {
	return &models.CompetitiveIntelligence{
		CompetitiveLandscapeSummary: fmt.Sprintf("Competitive analysis for %s", ideaTitle),
		DirectCompetitors:           []models.CompetitorProfile{},
		IndirectCompetitors:         []models.CompetitorProfile{},
		SubstituteSolutions:         []models.CompetitorProfile{},
		CompetitiveAdvantages:       []string{"Innovation", "Customer focus", "Technology"},
		BarriersToEntry:             []string{"Capital requirements", "Technical expertise", "Regulations"},
		ConfidenceScore:             0.80,
	}
}

func customerUnderstandingTemplate() *models.CustomerUnderstanding {
	return &models.CustomerUnderstanding{
		PrimaryTargetSegment: "Tech-savvy professionals",
		CustomerSegments: []models.CustomerSegment{
			{
				Name:                "Early Adopters",
				Description:         "Technology enthusiasts willing to try new solutions",
				SizeEstimate:        100000,
				Demographics:        map[string]interface{}{"age_range": "25-45", "income": "high"},
				PainPoints:          []string{"Time constraints", "Complexity", "Cost"},
				JobsToBeDone:        []string{"Increase productivity", "Reduce costs", "Improve quality"},
				ValuePropositions:   []string{"Time savings", "Cost reduction", "Better outcomes"},
				AcquisitionChannels: []string{},
				PriorityScore:       0.9,
			},
		},
		CustomerJourneyInsights:  []string{"Awareness", "Consideration", "Purchase", "Usage"},
		UnmetNeeds:               []string{"Simplified interface", "Better integration", "Lower cost"},
		MarketValidationEvidence: []string{"Customer interviews", "Survey data", "Usage analytics"},
		ConfidenceScore:          0.75,
	}
}

func strategicAssessmentTemplate() *models.StrategicAssessment {
	return &models.StrategicAssessment{
		SwotAnalysis: models.SwotAnalysis{
			Strengths:              []string{"Innovation", "Technical expertise", "Market timing"},
			Weaknesses:             []string{"Limited brand recognition", "Resource constraints", "Market competition"},
			Opportunities:          []string{"Growing market", "Technology trends", "Unmet customer needs"},
			Threats:                []string{"Strong competition", "Market saturation", "Regulatory changes"},
			StrategicImplications:  []string{"Focus on differentiation", "Build strategic partnerships"},
			CriticalSuccessFactors: []string{"Product quality", "Customer acquisition", "Market timing"},
			ConfidenceScore:        0.8,
		},
		OpportunityScoring: models.OpportunityScoring{
			MarketOpportunityScore:    8.0,
			CompetitivePositionScore:  6.5,
			ExecutionFeasibilityScore: 7.5,
			FinancialPotentialScore:   7.8,
			OverallScore:              7.4,
			RiskLevel:                 "medium",
		},
		StrategicFitAnalysis:   "Strong strategic fit with market opportunities and company capabilities",
		KeyAssumptions:         []string{"Market growth continues", "Technology adoption increases", "Competitive landscape remains stable"},
		ValidationRequirements: []string{"Customer validation", "Technical feasibility", "Financial modeling"},
		GoNoGoRecommendation:   "go",
		Reasoning:              "Market opportunity outweighs risks with proper execution and strategic focus",
		ConfidenceScore:        0.82,
	}
}
