package models

import "time"

// SessionStatus is the lifecycle state of a research session
type SessionStatus string

const (
	SessionStatusActive      SessionStatus = "active"
	SessionStatusResearching SessionStatus = "researching"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusArchived    SessionStatus = "archived"
)

// IsValid reports whether the status is one of the known values
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusResearching, SessionStatusCompleted, SessionStatusArchived:
		return true
	}
	return false
}

// ResearchSession is a single business idea under research.
// It owns conversations, insights, options, reports, fact-checks and
// market analysis records. Deleting a session removes all of them.
type ResearchSession struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id,omitempty" badgerhold:"index"`
	IdeaID      string        `json:"idea_id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MessageType identifies who authored a conversation message
type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeSystem    MessageType = "system"
)

// Conversation is one message exchanged within a research session
type Conversation struct {
	ID          string                 `json:"id"`
	SessionID   string                 `json:"session_id" badgerhold:"index"`
	MessageType MessageType            `json:"message_type"`
	Content     string                 `json:"content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// InsightCategory is one of the six fixed insight categories
type InsightCategory string

const (
	CategoryTargetMarket    InsightCategory = "target_market"
	CategoryCustomerProfile InsightCategory = "customer_profile"
	CategoryProblemSolution InsightCategory = "problem_solution"
	CategoryGrowthTargets   InsightCategory = "growth_targets"
	CategoryCostModel       InsightCategory = "cost_model"
	CategoryRevenueModel    InsightCategory = "revenue_model"
)

// InsightCategories lists every category in display order
var InsightCategories = []InsightCategory{
	CategoryTargetMarket,
	CategoryCustomerProfile,
	CategoryProblemSolution,
	CategoryGrowthTargets,
	CategoryCostModel,
	CategoryRevenueModel,
}

// ResearchInsight is a categorized finding about the idea
type ResearchInsight struct {
	ID              string                 `json:"id"`
	SessionID       string                 `json:"session_id" badgerhold:"index"`
	Category        InsightCategory        `json:"category"`
	Subcategory     string                 `json:"subcategory,omitempty"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Data            map[string]interface{} `json:"data,omitempty"`
	ConfidenceScore float64                `json:"confidence_score"`
	Sources         []string               `json:"sources,omitempty"`
	IsValidated     bool                   `json:"is_validated"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ResearchOption is a strategic option with scores and an optional SWOT.
// Recommended is derived once at creation and never re-evaluated.
type ResearchOption struct {
	ID               string                 `json:"id"`
	SessionID        string                 `json:"session_id" badgerhold:"index"`
	Category         string                 `json:"category"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	Pros             []string               `json:"pros"`
	Cons             []string               `json:"cons"`
	FeasibilityScore float64                `json:"feasibility_score"`
	ImpactScore      float64                `json:"impact_score"`
	RiskScore        float64                `json:"risk_score"`
	Recommended      bool                   `json:"recommended"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`

	SwotStrengths     []string   `json:"swot_strengths,omitempty"`
	SwotWeaknesses    []string   `json:"swot_weaknesses,omitempty"`
	SwotOpportunities []string   `json:"swot_opportunities,omitempty"`
	SwotThreats       []string   `json:"swot_threats,omitempty"`
	SwotConfidence    float64    `json:"swot_confidence,omitempty"`
	SwotGeneratedAt   *time.Time `json:"swot_generated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Score averages feasibility, impact and inverted risk
func (o *ResearchOption) Score() float64 {
	return (o.FeasibilityScore + o.ImpactScore + (1 - o.RiskScore)) / 3
}

// ResearchReport is a generated summary attached to a session
type ResearchReport struct {
	ID         string                 `json:"id"`
	SessionID  string                 `json:"session_id" badgerhold:"index"`
	ReportType string                 `json:"report_type"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Data       map[string]interface{} `json:"data,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Verification statuses returned by fact-checking
const (
	VerificationVerified   = "verified"
	VerificationDisputed   = "disputed"
	VerificationUnverified = "unverified"
)

// ResearchFactCheck records a verification attempt for an insight claim
type ResearchFactCheck struct {
	ID                 string    `json:"id"`
	InsightID          string    `json:"insight_id" badgerhold:"index"`
	SessionID          string    `json:"session_id" badgerhold:"index"`
	Claim              string    `json:"claim"`
	VerificationStatus string    `json:"verification_status"`
	Sources            []string  `json:"sources"`
	ConfidenceLevel    string    `json:"confidence_level"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
}

// OptionSwot is the SWOT analysis stored on a research option
type OptionSwot struct {
	Strengths     []string   `json:"strengths"`
	Weaknesses    []string   `json:"weaknesses"`
	Opportunities []string   `json:"opportunities"`
	Threats       []string   `json:"threats"`
	Confidence    float64    `json:"confidence"`
	GeneratedAt   *time.Time `json:"generated_at,omitempty"`
}
