package strategy

import (
	"fmt"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// approachConfig is the static execution plan for a research approach
type approachConfig struct {
	DurationMinutes int
	Complexity      string
	Phases          []models.AnalysisPhase
	Depth           string
	OptionsCount    int
	Description     string
}

var allPhases = []models.AnalysisPhase{
	models.PhaseMarketContext,
	models.PhaseCompetitiveIntelligence,
	models.PhaseCustomerUnderstanding,
	models.PhaseStrategicAssessment,
}

var approachConfigs = map[models.ResearchApproach]approachConfig{
	models.ApproachQuickValidation: {
		DurationMinutes: 15,
		Complexity:      "beginner",
		Phases: []models.AnalysisPhase{
			models.PhaseMarketContext,
			models.PhaseCompetitiveIntelligence,
			models.PhaseStrategicAssessment,
		},
		Depth:        "surface",
		OptionsCount: 2,
		Description:  "Rapid validation of core business assumptions with go/no-go recommendation",
	},
	models.ApproachMarketDeepDive: {
		DurationMinutes: 45,
		Complexity:      "intermediate",
		Phases:          allPhases,
		Depth:           "comprehensive",
		OptionsCount:    3,
		Description:     "Comprehensive market analysis with strategic recommendations",
	},
	models.ApproachLaunchStrategy: {
		DurationMinutes: 90,
		Complexity:      "advanced",
		Phases:          allPhases,
		Depth:           "detailed",
		OptionsCount:    5,
		Description:     "Complete launch strategy with detailed implementation roadmap",
	},
}

// strategicApproaches is the fixed order canned options are drawn from
var strategicApproaches = []models.StrategicApproach{
	models.StrategicMarketLeaderChallenge,
	models.StrategicNicheDomination,
	models.StrategicPlatformPlay,
	models.StrategicDisruptiveInnovation,
	models.StrategicPartnershipStrategy,
}

// ParseApproach validates a research approach name
func ParseApproach(value string) (models.ResearchApproach, error) {
	approach := models.ResearchApproach(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := approachConfigs[approach]; !ok {
		return "", fmt.Errorf("unknown research approach %q: %w", value, interfaces.ErrInvalidInput)
	}
	return approach, nil
}

func configFor(approach models.ResearchApproach) (approachConfig, error) {
	cfg, ok := approachConfigs[approach]
	if !ok {
		return approachConfig{}, fmt.Errorf("unknown research approach %q: %w", approach, interfaces.ErrInvalidInput)
	}
	return cfg, nil
}

// PhasesFor returns the phases an approach runs, in order
func PhasesFor(approach models.ResearchApproach) ([]models.AnalysisPhase, error) {
	cfg, err := configFor(approach)
	if err != nil {
		return nil, err
	}
	phases := make([]models.AnalysisPhase, len(cfg.Phases))
	copy(phases, cfg.Phases)
	return phases, nil
}

// Approaches describes every research approach for clients choosing one
func Approaches() []models.ApproachInfo {
	return []models.ApproachInfo{
		{
			Approach:        models.ApproachQuickValidation,
			Title:           "Quick Validation",
			Description:     "Rapid validation of core business assumptions",
			DurationMinutes: 15,
			Complexity:      "beginner",
			BestFor: []string{
				"Early-stage ideas needing validation",
				"Quick go/no-go decisions",
				"Limited time or resources",
			},
			Includes: []string{
				"Market opportunity assessment",
				"Basic competitive analysis",
				"Strategic recommendation",
				"Go/no-go decision framework",
			},
			Deliverables: []string{
				"Market context overview",
				"Competitive landscape summary",
				"2 strategic options",
				"Recommendation with reasoning",
			},
		},
		{
			Approach:        models.ApproachMarketDeepDive,
			Title:           "Market Deep-Dive",
			Description:     "Comprehensive market analysis with strategic recommendations",
			DurationMinutes: 45,
			Complexity:      "intermediate",
			BestFor: []string{
				"Well-defined business ideas",
				"Strategic planning and positioning",
				"Investor presentations",
			},
			Includes: []string{
				"Detailed market analysis",
				"Comprehensive competitive intelligence",
				"Customer segment analysis",
				"SWOT analysis",
				"Strategic options evaluation",
			},
			Deliverables: []string{
				"Market sizing and growth analysis",
				"Competitive positioning map",
				"Customer segment priorities",
				"3 strategic options with SWOT",
				"Implementation recommendations",
			},
		},
		{
			Approach:        models.ApproachLaunchStrategy,
			Title:           "Launch Strategy",
			Description:     "Complete launch strategy with implementation roadmap",
			DurationMinutes: 90,
			Complexity:      "advanced",
			BestFor: []string{
				"Pre-launch businesses",
				"Detailed business planning",
				"Funding and investment decisions",
			},
			Includes: []string{
				"Everything in Market Deep-Dive plus:",
				"Go-to-market strategy",
				"Revenue model analysis",
				"Risk assessment & mitigation",
				"Resource planning",
				"Success metrics definition",
			},
			Deliverables: []string{
				"Complete market research report",
				"5 strategic options with detailed analysis",
				"Go-to-market roadmap",
				"Financial projections",
				"Risk mitigation strategies",
				"Implementation timeline",
			},
		},
	}
}

// humanize turns snake_case into Title Case words
func humanize(value string) string {
	words := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// spaced turns snake_case into lower case words
func spaced(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}
