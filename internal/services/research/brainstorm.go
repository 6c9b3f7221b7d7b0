package research

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
)

const brainstormSystem = `You are an AI business advisor helping to brainstorm and develop ideas.
You provide actionable insights categorized by: target_market, customer_profile, problem_solution,
growth_targets, cost_model, revenue_model. You also suggest strategic options with pros/cons analysis.

Previous insights context:
%s`

const brainstormFormat = `Respond with JSON in this shape:
{"response": "conversational reply",
 "insights": [{"category": "", "title": "", "description": "", "confidence_score": 0.0, "subcategory": ""}],
 "options": [{"category": "", "title": "", "description": "", "pros": [], "cons": [], "feasibility_score": 0.0, "impact_score": 0.0, "risk_score": 0.0}],
 "follow_up_questions": []}`

var brainstormSchema = ai.ObjectSchema(map[string]interface{}{
	"response":            map[string]interface{}{"type": "string"},
	"insights":            map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
	"options":             map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
	"follow_up_questions": ai.StringArray(),
}, "response")

var fallbackQuestions = []string{
	"What specific problem are you trying to solve?",
	"Who is your target audience?",
	"What makes your idea unique?",
}

// analysisPrompts holds the analyst brief per analysis type
var analysisPrompts = map[string]string{
	"market_analysis":      "Analyze the market potential, competition, and opportunities for this idea.",
	"competitive_analysis": "Identify competitors, their strengths/weaknesses, and positioning strategies.",
	"financial_modeling":   "Create financial projections including revenue, costs, and profitability.",
	"risk_assessment":      "Identify potential risks, challenges, and mitigation strategies.",
}

type brainstormReply struct {
	Response          string                   `json:"response"`
	Insights          []map[string]interface{} `json:"insights"`
	Options           []map[string]interface{} `json:"options"`
	FollowUpQuestions []string                 `json:"follow_up_questions"`
}

// Brainstorm sends the user's message to the AI advisor, stores both sides
// of the exchange and persists any insights and options the reply carries.
func (s *Service) Brainstorm(ctx context.Context, sessionID, message string, extra map[string]interface{}) (*BrainstormResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("message is required: %w", interfaces.ErrInvalidInput)
	}
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	existing, err := s.storage.InsightStorage().GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply, aiGenerated := s.brainstormReply(ctx, message, extra, existing)

	if _, err := s.AddConversation(ctx, sessionID, models.MessageTypeUser, message, extra); err != nil {
		return nil, err
	}

	insights := make([]*models.ResearchInsight, 0, len(reply.Insights))
	for _, raw := range reply.Insights {
		insight, err := s.AddInsight(ctx, sessionID, raw)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}

	options := make([]*models.ResearchOption, 0, len(reply.Options))
	for _, raw := range reply.Options {
		option, err := s.AddOption(ctx, sessionID, raw)
		if err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	if _, err := s.AddConversation(ctx, sessionID, models.MessageTypeAssistant, reply.Response, map[string]interface{}{
		"insights_generated":  len(insights),
		"options_generated":   len(options),
		"follow_up_questions": reply.FollowUpQuestions,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("insights", len(insights)).
		Int("options", len(options)).
		Msg("Brainstorm completed")

	return &BrainstormResult{
		Message:           reply.Response,
		Insights:          insights,
		Options:           options,
		FollowUpQuestions: nonNil(reply.FollowUpQuestions),
		Metadata: map[string]interface{}{
			"insights_generated": len(insights),
			"options_generated":  len(options),
			"ai_provider":        s.ai.ProviderName(),
			"ai_generated":       aiGenerated,
		},
	}, nil
}

func (s *Service) brainstormReply(ctx context.Context, message string, extra map[string]interface{}, existing []*models.ResearchInsight) (*brainstormReply, bool) {
	insightContext := make([]map[string]interface{}, 0, len(existing))
	for _, insight := range existing {
		insightContext = append(insightContext, map[string]interface{}{
			"category":         insight.Category,
			"title":            insight.Title,
			"description":      insight.Description,
			"confidence_score": insight.ConfidenceScore,
		})
	}

	prompt := fmt.Sprintf("User message: %s\n\nAdditional context: %s\n\n"+
		"Please provide a helpful response with categorized insights, strategic options, and follow-up questions.\n\n%s",
		message, toJSON(nonNilMap(extra)), brainstormFormat)

	text, err := s.ai.Generate(ctx, prompt, interfaces.GenerateOptions{
		SystemInstruction: fmt.Sprintf(brainstormSystem, toJSON(insightContext)),
		JSON:              true,
	})
	if err == nil {
		var reply brainstormReply
		if err = ai.DecodeJSON(text, brainstormSchema, &reply); err == nil {
			return &reply, true
		}
	}

	s.logger.Warn().Err(err).Msg("Brainstorm AI reply unavailable, using fallback response")
	metrics.AIFallbacks.WithLabelValues("brainstorm").Inc()
	return &brainstormReply{
		Response:          fmt.Sprintf("I'm here to help you brainstorm your idea. %s", message),
		FollowUpQuestions: fallbackQuestions,
	}, false
}

// PerformAnalysis asks the AI for a free-text analysis of the given type
func (s *Service) PerformAnalysis(ctx context.Context, sessionID, analysisType string, params map[string]interface{}) (*AnalysisOutput, error) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	insightData := make([]map[string]interface{}, 0, len(insights))
	for _, insight := range insights {
		insightData = append(insightData, map[string]interface{}{
			"category":         insight.Category,
			"title":            insight.Title,
			"description":      insight.Description,
			"data":             insight.Data,
			"confidence_score": insight.ConfidenceScore,
		})
	}

	brief, ok := analysisPrompts[analysisType]
	if !ok {
		brief = "Perform analysis."
	}

	idea := session.Description
	if idea == "" {
		idea = session.Title
	}

	text, err := s.ai.Generate(ctx,
		fmt.Sprintf("Idea: %s\nInsights: %s\nParameters: %s\n\nProvide detailed analysis.", idea, toJSON(insightData), toJSON(nonNilMap(params))),
		interfaces.GenerateOptions{SystemInstruction: "You are a business analyst. " + brief},
	)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", analysisType, err)
	}

	return &AnalysisOutput{
		Analysis:     text,
		AnalysisType: analysisType,
		Timestamp:    s.now(),
	}, nil
}

// NextSteps recommends up to five actions based on the session's progress
func (s *Service) NextSteps(ctx context.Context, sessionID string) ([]string, error) {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	options, err := s.storage.OptionStorage().GetOptionsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"insights": summarizeInsights(insights),
		"options":  summarizeOptions(options),
	}

	text, err := s.ai.Generate(ctx,
		fmt.Sprintf("Session data: %s\n\nWhat should be the next steps?", toJSON(sessionData)),
		interfaces.GenerateOptions{SystemInstruction: "You are a business advisor. Based on the current progress, recommend the next 3-5 actionable steps."},
	)
	if err == nil {
		if steps := ParseSteps(text); len(steps) > 0 {
			return steps, nil
		}
	}

	s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Next steps AI reply unavailable, deriving from coverage")
	metrics.AIFallbacks.WithLabelValues("next_steps").Inc()
	return fallbackSteps(insights, options), nil
}

// ParseSteps keeps numbered or bulleted lines of text, stripped of their
// markers, up to five.
func ParseSteps(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := []rune(line)[0]
		if !unicode.IsDigit(first) && first != '-' && first != '•' {
			continue
		}
		clean := strings.TrimSpace(strings.TrimLeft(line, "0123456789.-•) "))
		if clean == "" {
			continue
		}
		steps = append(steps, clean)
		if len(steps) == 5 {
			break
		}
	}
	return steps
}

func fallbackSteps(insights []*models.ResearchInsight, options []*models.ResearchOption) []string {
	present := make(map[models.InsightCategory]bool)
	for _, insight := range insights {
		present[insight.Category] = true
	}

	var steps []string
	for _, c := range readinessCategories {
		if !present[c] {
			steps = append(steps, fmt.Sprintf("Research your %s", strings.ReplaceAll(string(c), "_", " ")))
		}
	}
	if len(options) == 0 {
		steps = append(steps, "Brainstorm strategic options for bringing the idea to market")
	} else {
		steps = append(steps, "Generate a SWOT analysis for your top strategic option")
	}
	steps = append(steps, "Validate key insights with fact-checking")

	if len(steps) > 5 {
		steps = steps[:5]
	}
	return steps
}

func summarizeInsights(insights []*models.ResearchInsight) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(insights))
	for _, insight := range insights {
		out = append(out, map[string]interface{}{
			"category":         insight.Category,
			"title":            insight.Title,
			"confidence_score": insight.ConfidenceScore,
		})
	}
	return out
}

func summarizeOptions(options []*models.ResearchOption) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(options))
	for _, option := range options {
		out = append(out, map[string]interface{}{
			"category":          option.Category,
			"title":             option.Title,
			"feasibility_score": option.FeasibilityScore,
		})
	}
	return out
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
