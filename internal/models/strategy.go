package models

import "time"

// ResearchApproach selects how deep a research strategy goes
type ResearchApproach string

const (
	ApproachQuickValidation ResearchApproach = "quick_validation"
	ApproachMarketDeepDive  ResearchApproach = "market_deep_dive"
	ApproachLaunchStrategy  ResearchApproach = "launch_strategy"
)

// AnalysisPhase is one step of a research strategy run
type AnalysisPhase string

const (
	PhaseMarketContext           AnalysisPhase = "market_context"
	PhaseCompetitiveIntelligence AnalysisPhase = "competitive_intelligence"
	PhaseCustomerUnderstanding   AnalysisPhase = "customer_understanding"
	PhaseStrategicAssessment     AnalysisPhase = "strategic_assessment"
)

// StrategicApproach names a canned go-to-market strategy
type StrategicApproach string

const (
	StrategicMarketLeaderChallenge StrategicApproach = "market_leader_challenge"
	StrategicNicheDomination       StrategicApproach = "niche_domination"
	StrategicPlatformPlay          StrategicApproach = "platform_play"
	StrategicDisruptiveInnovation  StrategicApproach = "disruptive_innovation"
	StrategicPartnershipStrategy   StrategicApproach = "partnership_strategy"
)

// StrategyStatus is the state of a research strategy.
// Transitions: pending -> in_progress -> completed | error
type StrategyStatus string

const (
	StrategyPending    StrategyStatus = "pending"
	StrategyInProgress StrategyStatus = "in_progress"
	StrategyCompleted  StrategyStatus = "completed"
	StrategyError      StrategyStatus = "error"
)

// ResearchStrategy describes one research run for a session
type ResearchStrategy struct {
	ID                       string                 `json:"id"`
	SessionID                string                 `json:"session_id"`
	Approach                 ResearchApproach       `json:"approach"`
	Title                    string                 `json:"title"`
	Description              string                 `json:"description"`
	EstimatedDurationMinutes int                    `json:"estimated_duration_minutes"`
	ComplexityLevel          string                 `json:"complexity_level"`
	Phases                   []AnalysisPhase        `json:"phases"`
	Status                   StrategyStatus         `json:"status"`
	ProgressPercentage       float64                `json:"progress_percentage"`
	CustomParameters         map[string]interface{} `json:"custom_parameters,omitempty"`
	CreatedAt                time.Time              `json:"created_at"`
	StartedAt                *time.Time             `json:"started_at,omitempty"`
	CompletedAt              *time.Time             `json:"completed_at,omitempty"`
}

// MarketContext is the result of the market context phase
type MarketContext struct {
	IndustryOverview      string   `json:"industry_overview"`
	MarketSizeUSD         float64  `json:"market_size_usd,omitempty"`
	GrowthRateCAGR        float64  `json:"growth_rate_cagr,omitempty"`
	MaturityStage         string   `json:"maturity_stage"`
	KeyTrends             []string `json:"key_trends"`
	RegulatoryEnvironment string   `json:"regulatory_environment"`
	TechnologicalFactors  []string `json:"technological_factors"`
	ConfidenceScore       float64  `json:"confidence_score"`
}

// CompetitorProfile is a competitor as seen by the competitive intelligence phase
type CompetitorProfile struct {
	Name                         string   `json:"name"`
	Category                     string   `json:"category"`
	MarketSharePercent           float64  `json:"market_share_percent,omitempty"`
	Strengths                    []string `json:"strengths"`
	Weaknesses                   []string `json:"weaknesses"`
	ThreatLevel                  string   `json:"threat_level"`
	DifferentiationOpportunities []string `json:"differentiation_opportunities"`
}

// CompetitiveIntelligence is the result of the competitive intelligence phase
type CompetitiveIntelligence struct {
	CompetitiveLandscapeSummary string              `json:"competitive_landscape_summary"`
	DirectCompetitors           []CompetitorProfile `json:"direct_competitors"`
	IndirectCompetitors         []CompetitorProfile `json:"indirect_competitors"`
	SubstituteSolutions         []CompetitorProfile `json:"substitute_solutions"`
	CompetitiveAdvantages       []string            `json:"competitive_advantages"`
	BarriersToEntry             []string            `json:"barriers_to_entry"`
	ConfidenceScore             float64             `json:"confidence_score"`
}

// CustomerSegment is a target customer group
type CustomerSegment struct {
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	SizeEstimate        int                    `json:"size_estimate,omitempty"`
	Demographics        map[string]interface{} `json:"demographics"`
	PainPoints          []string               `json:"pain_points"`
	JobsToBeDone        []string               `json:"jobs_to_be_done"`
	ValuePropositions   []string               `json:"value_propositions"`
	WillingnessToPay    string                 `json:"willingness_to_pay,omitempty"`
	AcquisitionChannels []string               `json:"acquisition_channels"`
	PriorityScore       float64                `json:"priority_score"`
}

// CustomerUnderstanding is the result of the customer understanding phase
type CustomerUnderstanding struct {
	PrimaryTargetSegment     string            `json:"primary_target_segment"`
	CustomerSegments         []CustomerSegment `json:"customer_segments"`
	CustomerJourneyInsights  []string          `json:"customer_journey_insights"`
	UnmetNeeds               []string          `json:"unmet_needs"`
	MarketValidationEvidence []string          `json:"market_validation_evidence"`
	ConfidenceScore          float64           `json:"confidence_score"`
}

// SwotAnalysis is a SWOT with strategic implications
type SwotAnalysis struct {
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	Opportunities          []string `json:"opportunities"`
	Threats                []string `json:"threats"`
	StrategicImplications  []string `json:"strategic_implications,omitempty"`
	CriticalSuccessFactors []string `json:"critical_success_factors,omitempty"`
	ConfidenceScore        float64  `json:"confidence_score"`
}

// OpportunityScoring scores an opportunity on a 0-10 scale
type OpportunityScoring struct {
	MarketOpportunityScore    float64 `json:"market_opportunity_score"`
	CompetitivePositionScore  float64 `json:"competitive_position_score"`
	ExecutionFeasibilityScore float64 `json:"execution_feasibility_score"`
	FinancialPotentialScore   float64 `json:"financial_potential_score"`
	OverallScore              float64 `json:"overall_score"`
	RiskLevel                 string  `json:"risk_level"`
}

// StrategicAssessment is the result of the strategic assessment phase
type StrategicAssessment struct {
	SwotAnalysis           SwotAnalysis       `json:"swot_analysis"`
	OpportunityScoring     OpportunityScoring `json:"opportunity_scoring"`
	StrategicFitAnalysis   string             `json:"strategic_fit_analysis"`
	KeyAssumptions         []string           `json:"key_assumptions"`
	ValidationRequirements []string           `json:"validation_requirements"`
	GoNoGoRecommendation   string             `json:"go_no_go_recommendation"`
	Reasoning              string             `json:"reasoning"`
	ConfidenceScore        float64            `json:"confidence_score"`
}

// ResourceRequirement is a resource a strategic option depends on
type ResourceRequirement struct {
	Category         string  `json:"category"`
	Description      string  `json:"description"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd,omitempty"`
	TimelineMonths   int     `json:"timeline_months,omitempty"`
	Criticality      string  `json:"criticality"`
}

// SuccessMetric is a measurable target for a strategic option
type SuccessMetric struct {
	MetricName        string      `json:"metric_name"`
	TargetValue       interface{} `json:"target_value"`
	Timeframe         string      `json:"timeframe"`
	MeasurementMethod string      `json:"measurement_method"`
}

// StrategicOption is one candidate strategy produced by a research run
type StrategicOption struct {
	Approach              StrategicApproach `json:"approach"`
	Title                 string            `json:"title"`
	Description           string            `json:"description"`
	TargetCustomerSegment string            `json:"target_customer_segment"`
	ValueProposition      string            `json:"value_proposition"`
	GoToMarketStrategy    string            `json:"go_to_market_strategy"`

	EstimatedInvestmentUSD        float64 `json:"estimated_investment_usd,omitempty"`
	TimelineToMarketMonths        int     `json:"timeline_to_market_months"`
	TimelineToProfitabilityMonths int     `json:"timeline_to_profitability_months,omitempty"`

	SuccessProbabilityPercent float64  `json:"success_probability_percent"`
	RiskFactors               []string `json:"risk_factors"`
	MitigationStrategies      []string `json:"mitigation_strategies"`

	ResourceRequirements []ResourceRequirement `json:"resource_requirements"`
	SuccessMetrics       []SuccessMetric       `json:"success_metrics"`

	SwotAnalysis           *SwotAnalysis     `json:"swot_analysis,omitempty"`
	CustomerSegments       []CustomerSegment `json:"customer_segments"`
	CompetitivePositioning string            `json:"competitive_positioning"`

	OverallScore float64 `json:"overall_score"`
	Recommended  bool    `json:"recommended"`
}

// AnalysisResult is the composite output of a completed research strategy
type AnalysisResult struct {
	StrategyID string           `json:"strategy_id"`
	Approach   ResearchApproach `json:"approach"`

	MarketContext           *MarketContext           `json:"market_context,omitempty"`
	CompetitiveIntelligence *CompetitiveIntelligence `json:"competitive_intelligence,omitempty"`
	CustomerUnderstanding   *CustomerUnderstanding   `json:"customer_understanding,omitempty"`
	StrategicAssessment     *StrategicAssessment     `json:"strategic_assessment,omitempty"`

	StrategicOptions  []StrategicOption `json:"strategic_options"`
	RecommendedOption *StrategicOption  `json:"recommended_option,omitempty"`

	AnalysisConfidence   float64   `json:"analysis_confidence"`
	AnalysisCompleteness float64   `json:"analysis_completeness"`
	NextSteps            []string  `json:"next_steps"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// StrategyRecord is what the progress store keeps per strategy.
// Progress never decreases while a run is in flight.
type StrategyRecord struct {
	Strategy        *ResearchStrategy `json:"strategy"`
	IdeaTitle       string            `json:"idea_title"`
	IdeaDescription string            `json:"idea_description"`
	CurrentPhase    AnalysisPhase     `json:"current_phase,omitempty"`
	Progress        float64           `json:"progress"`
	Result          *AnalysisResult   `json:"result,omitempty"`
	Error           string            `json:"error,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Transition moves the strategy to status to if it is currently in from.
// Entering in_progress stamps StartedAt with at unless it is already set.
// It reports false, leaving the record untouched, when the status differs.
func (r *StrategyRecord) Transition(from, to StrategyStatus, at time.Time) bool {
	if r.Strategy == nil || r.Strategy.Status != from {
		return false
	}
	r.Strategy.Status = to
	if to == StrategyInProgress && r.Strategy.StartedAt == nil {
		started := at
		r.Strategy.StartedAt = &started
	}
	return true
}

// ApproachInfo describes a research approach for clients choosing one
type ApproachInfo struct {
	Approach        ResearchApproach `json:"approach"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	DurationMinutes int              `json:"duration_minutes"`
	Complexity      string           `json:"complexity"`
	BestFor         []string         `json:"best_for"`
	Includes        []string         `json:"includes"`
	Deliverables    []string         `json:"deliverables"`
}

// OptionComparison is a side-by-side view of a result's strategic options
type OptionComparison struct {
	SessionID               string            `json:"session_id"`
	Options                 []StrategicOption `json:"options"`
	ComparisonCriteria      []string          `json:"comparison_criteria"`
	RecommendationReasoning string            `json:"recommendation_reasoning"`
	TradeOffAnalysis        map[string]string `json:"trade_off_analysis"`
}

// ExportFile describes a rendered export available for download
type ExportFile struct {
	FileName      string    `json:"file_name"`
	DownloadURL   string    `json:"download_url"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// StrategyProgressEvent is the payload published for strategy progress,
// completion and failure events
type StrategyProgressEvent struct {
	StrategyID string         `json:"strategy_id"`
	SessionID  string         `json:"session_id"`
	Phase      AnalysisPhase  `json:"phase,omitempty"`
	Percentage float64        `json:"progress_percentage"`
	Status     StrategyStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
}

// StrategyProgress is the polling view of a strategy's execution
type StrategyProgress struct {
	StrategyID                 string         `json:"strategy_id"`
	Status                     StrategyStatus `json:"status"`
	CurrentPhase               AnalysisPhase  `json:"current_phase"`
	ProgressPercentage         float64        `json:"progress_percentage"`
	EstimatedCompletionMinutes int            `json:"estimated_completion_minutes"`
	Error                      string         `json:"error,omitempty"`
}
