package market

import (
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
)

// marketPayload is the JSON document the AI is asked to produce
type marketPayload struct {
	MarketOverview struct {
		Industry           string                 `json:"industry"`
		MarketCategory     string                 `json:"market_category"`
		GeographicScope    string                 `json:"geographic_scope"`
		TargetDemographics map[string]interface{} `json:"target_demographics"`
	} `json:"market_overview"`

	MarketSize struct {
		TAM            float64 `json:"tam"`
		SAM            float64 `json:"sam"`
		SOM            float64 `json:"som"`
		CAGR           float64 `json:"cagr"`
		MarketMaturity string  `json:"market_maturity"`
	} `json:"market_size"`

	MarketDynamics struct {
		MarketDrivers     []string `json:"market_drivers"`
		MarketBarriers    []string `json:"market_barriers"`
		RegulatoryFactors []string `json:"regulatory_factors"`
		TechnologyTrends  []string `json:"technology_trends"`
	} `json:"market_dynamics"`

	CustomerAnalysis struct {
		CustomerSegments   []segmentPayload       `json:"customer_segments"`
		CustomerPainPoints []string               `json:"customer_pain_points"`
		BuyingBehavior     map[string]interface{} `json:"buying_behavior"`
		PriceSensitivity   *float64               `json:"price_sensitivity"`
	} `json:"customer_analysis"`

	CompetitiveLandscape struct {
		DirectCompetitors   []competitorPayload `json:"direct_competitors"`
		IndirectCompetitors []competitorPayload `json:"indirect_competitors"`
	} `json:"competitive_landscape"`

	MarketTrends struct {
		EmergingTrends []trendPayload `json:"emerging_trends"`
	} `json:"market_trends"`

	Opportunities struct {
		MarketGaps []opportunityPayload `json:"market_gaps"`
	} `json:"opportunities"`
}

type segmentPayload struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	SizePercentage       float64  `json:"size_percentage"`
	AgeRange             string   `json:"age_range"`
	IncomeRange          string   `json:"income_range"`
	BehaviorTraits       []string `json:"behavior_traits"`
	AttractivenessScore  *float64 `json:"attractiveness_score"`
	AccessibilityScore   *float64 `json:"accessibility_score"`
	CompetitionIntensity *float64 `json:"competition_intensity"`
	PriorityLevel        string   `json:"priority_level"`
}

type competitorPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MarketShare float64  `json:"market_share"`
	Revenue     float64  `json:"revenue"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	ThreatLevel *float64 `json:"threat_level"`
}

type trendPayload struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ImpactLevel   *float64 `json:"impact_level"`
	TimeHorizon   string   `json:"time_horizon"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type opportunityPayload struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Type                string   `json:"type"`
	MarketSize          float64  `json:"market_size"`
	AttractivenessScore *float64 `json:"attractiveness_score"`
	FeasibilityScore    *float64 `json:"feasibility_score"`
	UrgencyScore        *float64 `json:"urgency_score"`
	RiskFactors         []string `json:"risk_factors"`
	PriorityLevel       string   `json:"priority_level"`
}

// competitorProfile is the AI reply for a single competitor
type competitorProfile struct {
	Description           string                 `json:"description"`
	Website               string                 `json:"website"`
	Tier                  string                 `json:"tier"`
	MarketShare           float64                `json:"market_share"`
	Revenue               float64                `json:"revenue"`
	Employees             int                    `json:"employees"`
	FoundingYear          int                    `json:"founding_year"`
	Headquarters          string                 `json:"headquarters"`
	ProductsServices      []string               `json:"products_services"`
	PricingModel          string                 `json:"pricing_model"`
	PriceRange            map[string]interface{} `json:"price_range"`
	TargetCustomers       []string               `json:"target_customers"`
	Strengths             []string               `json:"strengths"`
	Weaknesses            []string               `json:"weaknesses"`
	CompetitiveAdvantages []string               `json:"competitive_advantages"`
	FundingRaised         float64                `json:"funding_raised"`
	GrowthRate            float64                `json:"growth_rate"`
	ThreatLevel           *float64               `json:"threat_level"`
	DataCompleteness      *float64               `json:"data_completeness"`
}

var number = map[string]interface{}{"type": "number"}

var marketSchema = ai.ObjectSchema(map[string]interface{}{
	"market_overview": ai.ObjectSchema(map[string]interface{}{
		"industry":        map[string]interface{}{"type": "string"},
		"market_category": map[string]interface{}{"type": "string"},
	}, "industry"),
	"market_size": ai.ObjectSchema(map[string]interface{}{
		"tam":  number,
		"sam":  number,
		"som":  number,
		"cagr": number,
	}, "tam"),
	"market_dynamics":       map[string]interface{}{"type": "object"},
	"customer_analysis":     map[string]interface{}{"type": "object"},
	"competitive_landscape": map[string]interface{}{"type": "object"},
	"market_trends":         map[string]interface{}{"type": "object"},
	"opportunities":         map[string]interface{}{"type": "object"},
}, "market_overview", "market_size")

var competitorSchema = ai.ObjectSchema(map[string]interface{}{
	"description":  map[string]interface{}{"type": "string"},
	"tier":         map[string]interface{}{"type": "string"},
	"threat_level": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
	"strengths":    ai.StringArray(),
	"weaknesses":   ai.StringArray(),
}, "description")

// fallbackPayload is the canned market used when the AI reply is unusable
func fallbackPayload() *marketPayload {
	p := &marketPayload{}
	p.MarketOverview.Industry = "Technology"
	p.MarketOverview.MarketCategory = "Software/Services"
	p.MarketOverview.GeographicScope = "Global"
	p.MarketOverview.TargetDemographics = map[string]interface{}{"primary_age": "25-45", "income_level": "Middle to High"}

	p.MarketSize.TAM = 10_000_000_000
	p.MarketSize.SAM = 1_000_000_000
	p.MarketSize.SOM = 50_000_000
	p.MarketSize.CAGR = 15.0
	p.MarketSize.MarketMaturity = "Growth"

	p.MarketDynamics.MarketDrivers = []string{"Digital transformation", "Increasing demand", "Technology adoption"}
	p.MarketDynamics.MarketBarriers = []string{"Competition", "Regulatory requirements", "Customer acquisition costs"}
	p.MarketDynamics.RegulatoryFactors = []string{"Data privacy regulations", "Industry standards"}
	p.MarketDynamics.TechnologyTrends = []string{"AI/ML adoption", "Cloud migration", "Mobile-first approach"}

	p.CustomerAnalysis.CustomerSegments = []segmentPayload{
		{Name: "Early Adopters", SizePercentage: 15, AttractivenessScore: ptr(0.8)},
		{Name: "Mainstream Market", SizePercentage: 65, AttractivenessScore: ptr(0.6)},
		{Name: "Late Adopters", SizePercentage: 20, AttractivenessScore: ptr(0.4)},
	}
	p.CustomerAnalysis.CustomerPainPoints = []string{"Cost concerns", "Complexity", "Time constraints", "Integration challenges"}
	p.CustomerAnalysis.PriceSensitivity = ptr(0.6)
	return p
}

func fallbackProfile() *competitorProfile {
	return &competitorProfile{
		Description:      "Competitor in the market space",
		Tier:             string(models.CompetitorDirect),
		ThreatLevel:      ptr(0.5),
		DataCompleteness: ptr(0.3),
	}
}

func parseTier(tier string) models.CompetitorTier {
	switch models.CompetitorTier(strings.ToLower(strings.TrimSpace(tier))) {
	case models.CompetitorIndirect:
		return models.CompetitorIndirect
	case models.CompetitorSubstitute:
		return models.CompetitorSubstitute
	default:
		return models.CompetitorDirect
	}
}

func ptr(v float64) *float64 {
	return &v
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
