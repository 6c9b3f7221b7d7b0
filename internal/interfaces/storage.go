package interfaces

import (
	"context"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// ListOptions controls paging for list queries
type ListOptions struct {
	Skip  int
	Limit int
}

// SessionStorage persists research sessions
type SessionStorage interface {
	SaveSession(ctx context.Context, session *models.ResearchSession) error
	GetSession(ctx context.Context, id string) (*models.ResearchSession, error)
	// ListSessions returns sessions ordered by created_at descending
	ListSessions(ctx context.Context, opts *ListOptions) ([]*models.ResearchSession, error)
	DeleteSession(ctx context.Context, id string) error
	CountSessions(ctx context.Context) (int, error)
}

// ConversationStorage persists conversation messages
type ConversationStorage interface {
	SaveConversation(ctx context.Context, conv *models.Conversation) error
	// GetConversationsBySession returns messages oldest first
	GetConversationsBySession(ctx context.Context, sessionID string) ([]*models.Conversation, error)
	DeleteConversationsBySession(ctx context.Context, sessionID string) error
}

// InsightStorage persists research insights
type InsightStorage interface {
	SaveInsight(ctx context.Context, insight *models.ResearchInsight) error
	GetInsight(ctx context.Context, id string) (*models.ResearchInsight, error)
	GetInsightsBySession(ctx context.Context, sessionID string) ([]*models.ResearchInsight, error)
	GetInsightsByCategory(ctx context.Context, sessionID string, categories ...models.InsightCategory) ([]*models.ResearchInsight, error)
	DeleteInsightsBySession(ctx context.Context, sessionID string) error
}

// OptionStorage persists research options
type OptionStorage interface {
	SaveOption(ctx context.Context, option *models.ResearchOption) error
	GetOption(ctx context.Context, id string) (*models.ResearchOption, error)
	GetOptionsBySession(ctx context.Context, sessionID string) ([]*models.ResearchOption, error)
	DeleteOptionsBySession(ctx context.Context, sessionID string) error
}

// ReportStorage persists generated reports
type ReportStorage interface {
	SaveReport(ctx context.Context, report *models.ResearchReport) error
	GetReportsBySession(ctx context.Context, sessionID string) ([]*models.ResearchReport, error)
	DeleteReportsBySession(ctx context.Context, sessionID string) error
}

// FactCheckStorage persists fact-check records
type FactCheckStorage interface {
	SaveFactCheck(ctx context.Context, fc *models.ResearchFactCheck) error
	GetFactChecksByInsight(ctx context.Context, insightID string) ([]*models.ResearchFactCheck, error)
	DeleteFactChecksBySession(ctx context.Context, sessionID string) error
}

// MarketStorage persists market analyses and their child records
type MarketStorage interface {
	SaveMarketAnalysis(ctx context.Context, analysis *models.MarketAnalysis) error
	// GetMarketAnalysisBySession returns the most recent analysis for the session
	GetMarketAnalysisBySession(ctx context.Context, sessionID string) (*models.MarketAnalysis, error)

	SaveCompetitor(ctx context.Context, competitor *models.CompetitorAnalysis) error
	GetCompetitor(ctx context.Context, id string) (*models.CompetitorAnalysis, error)
	GetCompetitorsByAnalysis(ctx context.Context, analysisID string) ([]*models.CompetitorAnalysis, error)

	SaveSegment(ctx context.Context, segment *models.MarketSegment) error
	GetSegmentsByAnalysis(ctx context.Context, analysisID string) ([]*models.MarketSegment, error)

	SaveTrend(ctx context.Context, trend *models.MarketTrendAnalysis) error
	GetTrendsBySession(ctx context.Context, sessionID string) ([]*models.MarketTrendAnalysis, error)

	SaveOpportunity(ctx context.Context, opp *models.MarketOpportunity) error
	GetOpportunitiesBySession(ctx context.Context, sessionID string) ([]*models.MarketOpportunity, error)

	// DeleteMarketDataBySession removes analyses, competitors, segments, trends and opportunities
	DeleteMarketDataBySession(ctx context.Context, sessionID string) error
}

// StorageManager exposes every entity store plus cross-entity operations
type StorageManager interface {
	SessionStorage() SessionStorage
	ConversationStorage() ConversationStorage
	InsightStorage() InsightStorage
	OptionStorage() OptionStorage
	ReportStorage() ReportStorage
	FactCheckStorage() FactCheckStorage
	MarketStorage() MarketStorage

	// DeleteSessionCascade removes a session and every record it owns.
	// Returns ErrNotFound if the session does not exist.
	DeleteSessionCascade(ctx context.Context, sessionID string) error

	Close() error
}
