package models

import "time"

// CompetitorTier classifies how directly a competitor overlaps the idea
type CompetitorTier string

const (
	CompetitorDirect     CompetitorTier = "direct"
	CompetitorIndirect   CompetitorTier = "indirect"
	CompetitorSubstitute CompetitorTier = "substitute"
)

// TrendType classifies a market trend
type TrendType string

const (
	TrendEmerging  TrendType = "emerging"
	TrendGrowing   TrendType = "growing"
	TrendMature    TrendType = "mature"
	TrendDeclining TrendType = "declining"
)

// MarketAnalysis holds the market-level view for a session.
// Fields are mostly AI filled; SAM <= TAM is not enforced.
type MarketAnalysis struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id" badgerhold:"index"`

	// Overview
	Industry           string                 `json:"industry"`
	MarketCategory     string                 `json:"market_category"`
	GeographicScope    string                 `json:"geographic_scope"`
	TargetDemographics map[string]interface{} `json:"target_demographics,omitempty"`

	// Sizing (USD)
	TAMValue         float64 `json:"tam_value"`
	SAMValue         float64 `json:"sam_value"`
	SOMValue         float64 `json:"som_value"`
	MarketSizeYear   int     `json:"market_size_year"`
	MarketSizeSource string  `json:"market_size_source,omitempty"`

	// Growth
	CAGR           float64 `json:"cagr"`
	GrowthPeriod   string  `json:"growth_period,omitempty"`
	MarketMaturity string  `json:"market_maturity"`

	// Dynamics
	MarketDrivers     []string `json:"market_drivers"`
	MarketBarriers    []string `json:"market_barriers"`
	RegulatoryFactors []string `json:"regulatory_factors"`
	TechnologyTrends  []string `json:"technology_trends"`

	// Customers
	CustomerSegments   []map[string]interface{} `json:"customer_segments"`
	CustomerPainPoints []string                 `json:"customer_pain_points"`
	BuyingBehavior     map[string]interface{}   `json:"buying_behavior,omitempty"`
	PriceSensitivity   float64                  `json:"price_sensitivity"`

	ConfidenceScore float64   `json:"confidence_score"`
	DataSources     []string  `json:"data_sources"`
	AnalysisDate    time.Time `json:"analysis_date"`
	LastUpdated     time.Time `json:"last_updated"`
}

// CompetitorAnalysis profiles a single competitor within a market analysis
type CompetitorAnalysis struct {
	ID               string         `json:"id"`
	MarketAnalysisID string         `json:"market_analysis_id" badgerhold:"index"`
	SessionID        string         `json:"session_id" badgerhold:"index"`
	Name             string         `json:"name"`
	Website          string         `json:"website,omitempty"`
	Description      string         `json:"description"`
	Tier             CompetitorTier `json:"tier"`

	MarketShare  float64 `json:"market_share"`
	Revenue      float64 `json:"revenue,omitempty"`
	Employees    int     `json:"employees,omitempty"`
	FoundingYear int     `json:"founding_year,omitempty"`
	Headquarters string  `json:"headquarters,omitempty"`

	ProductsServices      []string               `json:"products_services,omitempty"`
	PricingModel          string                 `json:"pricing_model,omitempty"`
	PriceRange            map[string]interface{} `json:"price_range,omitempty"`
	TargetCustomers       []string               `json:"target_customers,omitempty"`
	Strengths             []string               `json:"strengths"`
	Weaknesses            []string               `json:"weaknesses"`
	CompetitiveAdvantages []string               `json:"competitive_advantages,omitempty"`

	FundingRaised    float64 `json:"funding_raised,omitempty"`
	GrowthRate       float64 `json:"growth_rate,omitempty"`
	ThreatLevel      float64 `json:"threat_level"`
	DataCompleteness float64 `json:"data_completeness"`

	LastResearched time.Time `json:"last_researched"`
}

// MarketSegment is one customer segment of a market analysis
type MarketSegment struct {
	ID               string `json:"id"`
	MarketAnalysisID string `json:"market_analysis_id" badgerhold:"index"`
	SessionID        string `json:"session_id" badgerhold:"index"`
	SegmentName      string `json:"segment_name"`
	Description      string `json:"description"`

	SizeValue      float64 `json:"size_value,omitempty"`
	SizePercentage float64 `json:"size_percentage"`

	AgeRange        string   `json:"age_range,omitempty"`
	IncomeRange     string   `json:"income_range,omitempty"`
	GeographicFocus string   `json:"geographic_focus,omitempty"`
	BehaviorTraits  []string `json:"behavior_traits,omitempty"`

	AttractivenessScore  float64 `json:"attractiveness_score"`
	AccessibilityScore   float64 `json:"accessibility_score"`
	CompetitionIntensity float64 `json:"competition_intensity"`
	PriorityLevel        string  `json:"priority_level"`
	EntryStrategy        string  `json:"entry_strategy,omitempty"`
}

// MarketTrendAnalysis is a trend affecting the idea's market
type MarketTrendAnalysis struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id" badgerhold:"index"`
	TrendName       string    `json:"trend_name"`
	TrendType       TrendType `json:"trend_type"`
	Description     string    `json:"description"`
	ImpactLevel     float64   `json:"impact_level"`
	TimeHorizon     string    `json:"time_horizon"`
	Opportunities   []string  `json:"opportunities,omitempty"`
	Threats         []string  `json:"threats,omitempty"`
	ConfidenceLevel float64   `json:"confidence_level"`
	AnalysisDate    time.Time `json:"analysis_date"`
}

// MarketOpportunity is a gap or underserved area in the market
type MarketOpportunity struct {
	ID                   string   `json:"id"`
	SessionID            string   `json:"session_id" badgerhold:"index"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	OpportunityType      string   `json:"opportunity_type"`
	MarketSize           float64  `json:"market_size,omitempty"`
	TimeToMarket         int      `json:"time_to_market,omitempty"`
	CompetitionLevel     float64  `json:"competition_level"`
	AttractivenessScore  float64  `json:"attractiveness_score"`
	FeasibilityScore     float64  `json:"feasibility_score"`
	UrgencyScore         float64  `json:"urgency_score"`
	PriorityLevel        string   `json:"priority_level"`
	RiskFactors          []string `json:"risk_factors,omitempty"`
	ProbabilityOfSuccess float64  `json:"probability_of_success"`
}

// MarketSizing is the computed TAM/SAM/SOM breakdown
type MarketSizing struct {
	TAM             float64            `json:"tam"`
	SAM             float64            `json:"sam"`
	SOM             float64            `json:"som"`
	Breakdown       map[string]float64 `json:"breakdown"`
	Projections     []YearProjection   `json:"projections"`
	Assumptions     []string           `json:"assumptions"`
	ConfidenceScore float64            `json:"confidence_score"`
}

// YearProjection is one year of projected market value
type YearProjection struct {
	Year        int     `json:"year"`
	MarketValue float64 `json:"market_value"`
	GrowthRate  float64 `json:"growth_rate"`
}

// CompetitiveLandscape groups the competitors of a session's market
type CompetitiveLandscape struct {
	DirectCompetitors     []*CompetitorAnalysis `json:"direct_competitors"`
	IndirectCompetitors   []*CompetitorAnalysis `json:"indirect_competitors"`
	SubstituteProducts    []*CompetitorAnalysis `json:"substitute_products"`
	MarketLeader          *CompetitorAnalysis   `json:"market_leader,omitempty"`
	CompetitiveIntensity  float64               `json:"competitive_intensity"`
	MarketConcentration   string                `json:"market_concentration"`
	TotalCompetitorsCount int                   `json:"total_competitors"`
}

// MarketAnalysisBundle is a market analysis with all its child records
type MarketAnalysisBundle struct {
	Analysis      *MarketAnalysis        `json:"analysis"`
	Competitors   []*CompetitorAnalysis  `json:"competitors"`
	Segments      []*MarketSegment       `json:"segments"`
	Trends        []*MarketTrendAnalysis `json:"trends"`
	Opportunities []*MarketOpportunity   `json:"opportunities"`
}
