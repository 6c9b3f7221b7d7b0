package research

import (
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// SessionDetail is a session with the records it owns
type SessionDetail struct {
	*models.ResearchSession
	Conversations []*models.Conversation    `json:"conversations"`
	Insights      []*models.ResearchInsight `json:"insights"`
	Options       []*models.ResearchOption  `json:"options"`
}

// SessionUpdate holds the fields a client may change; nil means unchanged
type SessionUpdate struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *models.SessionStatus `json:"status,omitempty"`
}

// BrainstormResult is returned by Brainstorm
type BrainstormResult struct {
	Message           string                    `json:"message"`
	Insights          []*models.ResearchInsight `json:"insights"`
	Options           []*models.ResearchOption  `json:"options"`
	FollowUpQuestions []string                  `json:"follow_up_questions"`
	Metadata          map[string]interface{}    `json:"metadata"`
}

// InsightView is an insight as listed by the categorized analysis
type InsightView struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	ConfidenceScore float64                `json:"confidence_score"`
	Category        models.InsightCategory `json:"category"`
	Subcategory     string                 `json:"subcategory,omitempty"`
	Data            map[string]interface{} `json:"data,omitempty"`
	IsValidated     bool                   `json:"is_validated"`
}

// CategoryStat summarises one insight or option category
type CategoryStat struct {
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence,omitempty"`
	AvgScore      float64 `json:"avg_score,omitempty"`
}

// AnalysisStatistics aggregates a session's research data
type AnalysisStatistics struct {
	InsightsByCategory map[string]CategoryStat `json:"insights_by_category"`
	OptionsByCategory  map[string]CategoryStat `json:"options_by_category"`
	ValidatedInsights  int                     `json:"validated_insights"`
	TotalInsights      int                     `json:"total_insights"`
	TotalOptions       int                     `json:"total_options"`
	AvgConfidence      float64                 `json:"avg_confidence"`
	ResearchCompletion float64                 `json:"research_completion"`
	LastUpdated        time.Time               `json:"last_updated"`
}

// CategorizedAnalysis groups a session's insights and options
type CategorizedAnalysis struct {
	SessionID          string                                   `json:"session_id"`
	Insights           map[models.InsightCategory][]InsightView `json:"categorized_insights"`
	AllOptions         []*models.ResearchOption                 `json:"all_options"`
	RecommendedOptions []*models.ResearchOption                 `json:"recommended_options"`
	Statistics         AnalysisStatistics                       `json:"statistics"`
	ReadinessScore     float64                                  `json:"readiness_score"`
}

// CompetitiveAnalysisResult is returned by GenerateCompetitiveAnalysis
type CompetitiveAnalysisResult struct {
	Status        string `json:"status"`
	ReportID      string `json:"report_id"`
	InsightsCount int    `json:"insights_count"`
	OptionsCount  int    `json:"options_count"`
	Message       string `json:"message"`
}

// IdeaSubmission is returned by SubmitIdea
type IdeaSubmission struct {
	SessionID      string                     `json:"session_id"`
	IdeaID         string                     `json:"idea_id"`
	Title          string                     `json:"title"`
	Status         models.SessionStatus       `json:"status"`
	AnalysisResult *CompetitiveAnalysisResult `json:"analysis_result"`
	InsightsCount  int                        `json:"insights_count"`
	OptionsCount   int                        `json:"options_count"`
	Message        string                     `json:"message"`
	NextSteps      []string                   `json:"next_steps"`
}

// AnalysisOutput is the free-text result of PerformAnalysis
type AnalysisOutput struct {
	Analysis     string    `json:"analysis"`
	AnalysisType string    `json:"analysis_type"`
	Timestamp    time.Time `json:"timestamp"`
}
