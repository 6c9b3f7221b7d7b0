package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

const reportTypeCompetitive = "competitive_analysis"

var ideaNextSteps = []string{
	"Review the competitive analysis insights",
	"Explore strategic options",
	"Continue brainstorming with AI",
	"Generate detailed reports",
}

// competitiveInsights is the fixed insight set seeded for every new idea
func competitiveInsights() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"category":         string(models.CategoryTargetMarket),
			"subcategory":      "market_size",
			"title":            "Market Size Analysis",
			"description":      "Initial market size assessment for the submitted idea, pending detailed sizing.",
			"confidence_score": 0.8,
			"data": map[string]interface{}{
				"market_size":  "To be analyzed",
				"growth_rate":  "To be determined",
				"key_segments": []interface{}{},
			},
		},
		{
			"category":         string(models.CategoryTargetMarket),
			"subcategory":      "competitors",
			"title":            "Key Competitors",
			"description":      "Direct and indirect competitors and current market leaders to investigate.",
			"confidence_score": 0.75,
			"data": map[string]interface{}{
				"direct_competitors":   []interface{}{},
				"indirect_competitors": []interface{}{},
				"market_leaders":       []interface{}{},
			},
		},
		{
			"category":         string(models.CategoryProblemSolution),
			"subcategory":      "swot",
			"title":            "SWOT Analysis",
			"description":      "Strengths, weaknesses, opportunities and threats of the idea in its market.",
			"confidence_score": 0.7,
			"data": map[string]interface{}{
				"strengths":     []interface{}{},
				"weaknesses":    []interface{}{},
				"opportunities": []interface{}{},
				"threats":       []interface{}{},
			},
		},
	}
}

func competitiveOptions() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"category":          "market_entry",
			"title":             "Direct Market Entry",
			"description":       "Enter the market with full product offering",
			"pros":              []interface{}{"Capture market share quickly", "Build brand recognition"},
			"cons":              []interface{}{"Higher initial investment", "Greater risk"},
			"feasibility_score": 0.6,
			"impact_score":      0.8,
			"risk_score":        0.6,
		},
		{
			"category":          "market_entry",
			"title":             "Phased Market Approach",
			"description":       "Gradual market entry with MVP and iterative improvements",
			"pros":              []interface{}{"Lower initial cost", "Test market response", "Iterate based on feedback"},
			"cons":              []interface{}{"Slower market capture", "May lose to faster competitors"},
			"feasibility_score": 0.8,
			"impact_score":      0.6,
			"risk_score":        0.3,
		},
	}
}

// GenerateCompetitiveAnalysis seeds the session with the standard
// competitive insights and market entry options, records a report and
// marks the session completed.
func (s *Service) GenerateCompetitiveAnalysis(ctx context.Context, sessionID string) (*CompetitiveAnalysisResult, error) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.AddConversation(ctx, sessionID, models.MessageTypeSystem,
		fmt.Sprintf("Initiating competitive market analysis for: %s", session.Title),
		map[string]interface{}{"type": "analysis_start"}); err != nil {
		return nil, err
	}

	insights := 0
	for _, raw := range competitiveInsights() {
		if _, err := s.AddInsight(ctx, sessionID, raw); err != nil {
			return nil, fmt.Errorf("failed to store competitive insight: %w", err)
		}
		insights++
	}

	options := 0
	for _, raw := range competitiveOptions() {
		if _, err := s.AddOption(ctx, sessionID, raw); err != nil {
			return nil, fmt.Errorf("failed to store market entry option: %w", err)
		}
		options++
	}

	report := &models.ResearchReport{
		ID:         common.NewID(common.PrefixReport),
		SessionID:  sessionID,
		ReportType: reportTypeCompetitive,
		Title:      fmt.Sprintf("Competitive Market Analysis: %s", session.Title),
		Content:    "Comprehensive competitive analysis has been generated. View insights and strategic options for detailed information.",
		Data: map[string]interface{}{
			"generated_at":        s.now(),
			"idea_title":          session.Title,
			"analysis_categories": []string{"market_size", "competitors", "positioning", "strategy"},
			"total_insights":      insights,
			"strategic_options":   options,
		},
		CreatedAt: s.now(),
	}
	if err := s.storage.ReportStorage().SaveReport(ctx, report); err != nil {
		return nil, err
	}

	if _, err := s.AddConversation(ctx, sessionID, models.MessageTypeAssistant,
		fmt.Sprintf("Competitive market analysis completed. Generated %d insights and %d strategic options.", insights, options),
		map[string]interface{}{"type": "analysis_complete", "report_id": report.ID}); err != nil {
		return nil, err
	}

	if err := s.setStatus(ctx, session, models.SessionStatusCompleted); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("report_id", report.ID).
		Msg("Competitive analysis generated")

	return &CompetitiveAnalysisResult{
		Status:        string(models.SessionStatusCompleted),
		ReportID:      report.ID,
		InsightsCount: insights,
		OptionsCount:  options,
		Message:       "Competitive market analysis has been generated successfully",
	}, nil
}

// SubmitIdea creates a researching session for the idea and runs the
// competitive analysis on it synchronously. An analysis failure leaves the
// session researching and is reported in the result rather than returned.
func (s *Service) SubmitIdea(ctx context.Context, userID, ideaID, title, description string) (*IdeaSubmission, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("idea title is required: %w", interfaces.ErrInvalidInput)
	}
	if ideaID == "" {
		ideaID = common.NewID(common.PrefixIdea)
	}

	session := &models.ResearchSession{
		ID:          common.NewID(common.PrefixSession),
		UserID:      userID,
		IdeaID:      ideaID,
		Title:       title,
		Description: description,
		Status:      models.SessionStatusResearching,
	}
	if err := s.storage.SessionStorage().SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if _, err := s.AddConversation(ctx, session.ID, models.MessageTypeUser,
		fmt.Sprintf("New idea submitted: %s", title),
		map[string]interface{}{"idea_description": description}); err != nil {
		return nil, err
	}

	status := models.SessionStatusResearching
	result, err := s.GenerateCompetitiveAnalysis(ctx, session.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Competitive analysis failed")
		result = &CompetitiveAnalysisResult{
			Status:  "error",
			Message: fmt.Sprintf("Failed to generate competitive analysis: %v", err),
		}
	} else if result.Status == string(models.SessionStatusCompleted) {
		status = models.SessionStatusCompleted
	}

	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	options, err := s.storage.OptionStorage().GetOptionsBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	return &IdeaSubmission{
		SessionID:      session.ID,
		IdeaID:         session.IdeaID,
		Title:          title,
		Status:         status,
		AnalysisResult: result,
		InsightsCount:  len(insights),
		OptionsCount:   len(options),
		Message:        "Idea submitted successfully. Competitive market analysis has been generated.",
		NextSteps:      ideaNextSteps,
	}, nil
}

// ExecutiveSummary renders the session's executive summary PDF and records
// the report. Returns the document and a file name.
func (s *Service) ExecutiveSummary(ctx context.Context, sessionID string) ([]byte, string, error) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	options, err := s.storage.OptionStorage().GetOptionsBySession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.pdf.RenderExecutiveSummary(session, insights, options)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render executive summary: %w", err)
	}

	if err := s.storage.ReportStorage().SaveReport(ctx, &models.ResearchReport{
		ID:         common.NewID(common.PrefixReport),
		SessionID:  sessionID,
		ReportType: "executive_summary",
		Title:      fmt.Sprintf("Executive Summary: %s", session.Title),
		Content:    fmt.Sprintf("Executive summary covering %d insights and %d options.", len(insights), len(options)),
		Data: map[string]interface{}{
			"total_insights": len(insights),
			"total_options":  len(options),
			"size_bytes":     len(data),
		},
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to record executive summary report")
	}

	return data, "executive_summary_report.pdf", nil
}
