package swot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
)

const (
	maxItems            = 5
	insightsPerCategory = 3
	defaultConfidence   = 0.7
	fallbackConfidence  = 0.5
	highScore           = 0.7
	lowScore            = 0.3
	componentName       = "swot"
	systemInstruction   = "You are a strategic business analyst. Produce concise, specific SWOT analyses grounded in the context provided."
)

var swotSchema = ai.ObjectSchema(map[string]interface{}{
	"strengths":     ai.StringArray(),
	"weaknesses":    ai.StringArray(),
	"opportunities": ai.StringArray(),
	"threats":       ai.StringArray(),
	"confidence":    map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
}, "strengths", "weaknesses", "opportunities", "threats")

// Service generates SWOT analyses for research options
type Service struct {
	storage interfaces.StorageManager
	ai      interfaces.AIService
	pdf     *pdf.Service
	logger  arbor.ILogger
	now     func() time.Time
}

// NewService creates a new SWOT analysis service
func NewService(storage interfaces.StorageManager, aiService interfaces.AIService, pdfService *pdf.Service, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		ai:      aiService,
		pdf:     pdfService,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate returns the SWOT for an option. Stored values are returned as-is
// unless regenerate is set or nothing has been generated yet.
func (s *Service) Generate(ctx context.Context, optionID string, regenerate bool) (*models.OptionSwot, error) {
	option, err := s.storage.OptionStorage().GetOption(ctx, optionID)
	if err != nil {
		return nil, err
	}

	if !regenerate && len(option.SwotStrengths) > 0 {
		return storedSwot(option), nil
	}

	session, err := s.storage.SessionStorage().GetSession(ctx, option.SessionID)
	if err != nil {
		return nil, err
	}

	insights, err := s.storage.InsightStorage().GetInsightsBySession(ctx, option.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}

	swot, err := s.generateWithAI(ctx, option, session, insights)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("option_id", optionID).
			Msg("AI SWOT generation failed, deriving SWOT from option")
		metrics.AIFallbacks.WithLabelValues(componentName).Inc()
		swot = Fallback(option)
	}

	now := s.now()
	swot.GeneratedAt = &now

	option.SwotStrengths = swot.Strengths
	option.SwotWeaknesses = swot.Weaknesses
	option.SwotOpportunities = swot.Opportunities
	option.SwotThreats = swot.Threats
	option.SwotConfidence = swot.Confidence
	option.SwotGeneratedAt = &now
	option.UpdatedAt = now

	if err := s.storage.OptionStorage().SaveOption(ctx, option); err != nil {
		return nil, fmt.Errorf("failed to save SWOT: %w", err)
	}

	s.logger.Info().
		Str("option_id", optionID).
		Float64("confidence", swot.Confidence).
		Msg("SWOT analysis generated")

	return swot, nil
}

// GeneratePDF renders the option's SWOT, generating it first when absent.
// Returns the document and a suggested file name.
func (s *Service) GeneratePDF(ctx context.Context, optionID string, includeMetadata bool) ([]byte, string, error) {
	swot, err := s.Generate(ctx, optionID, false)
	if err != nil {
		return nil, "", err
	}

	option, err := s.storage.OptionStorage().GetOption(ctx, optionID)
	if err != nil {
		return nil, "", err
	}

	var session *models.ResearchSession
	if sess, err := s.storage.SessionStorage().GetSession(ctx, option.SessionID); err == nil {
		session = sess
	}

	data, err := s.pdf.RenderSwot(option, session, swot, includeMetadata)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render SWOT PDF: %w", err)
	}

	name := fmt.Sprintf("swot_analysis_%s_%s.pdf", slug(option.Title), s.now().Format("20060102"))
	return data, name, nil
}

func (s *Service) generateWithAI(ctx context.Context, option *models.ResearchOption, session *models.ResearchSession, insights []*models.ResearchInsight) (*models.OptionSwot, error) {
	text, err := s.ai.Generate(ctx, buildPrompt(option, session, insights), interfaces.GenerateOptions{
		SystemInstruction: systemInstruction,
		JSON:              true,
	})
	if err != nil {
		return nil, err
	}

	var swot models.OptionSwot
	if err := ai.DecodeJSON(text, swotSchema, &swot); err != nil {
		return nil, err
	}

	swot.Strengths = truncate(swot.Strengths)
	swot.Weaknesses = truncate(swot.Weaknesses)
	swot.Opportunities = truncate(swot.Opportunities)
	swot.Threats = truncate(swot.Threats)
	if swot.Confidence <= 0 {
		swot.Confidence = defaultConfidence
	}
	return &swot, nil
}

func buildPrompt(option *models.ResearchOption, session *models.ResearchSession, insights []*models.ResearchInsight) string {
	var b strings.Builder

	b.WriteString("Generate a SWOT analysis for the following strategic option.\n\n")
	fmt.Fprintf(&b, "Business idea: %s\n", session.Title)
	if session.Description != "" {
		fmt.Fprintf(&b, "Idea description: %s\n", session.Description)
	}
	fmt.Fprintf(&b, "\nOption: %s\nCategory: %s\nDescription: %s\n", option.Title, option.Category, option.Description)
	fmt.Fprintf(&b, "Pros: %s\n", strings.Join(option.Pros, "; "))
	fmt.Fprintf(&b, "Cons: %s\n", strings.Join(option.Cons, "; "))
	fmt.Fprintf(&b, "Feasibility: %.2f, Impact: %.2f, Risk: %.2f\n\n", option.FeasibilityScore, option.ImpactScore, option.RiskScore)

	b.WriteString("Research insights:\n")
	b.WriteString(insightContext(insights))

	b.WriteString(`
Provide 3-5 items for each of strengths, weaknesses, opportunities and threats,
plus a confidence between 0.0 and 1.0. Respond with JSON:
{"strengths": [], "weaknesses": [], "opportunities": [], "threats": [], "confidence": 0.0}`)

	return b.String()
}

// insightContext lists up to three insights per category
func insightContext(insights []*models.ResearchInsight) string {
	grouped := make(map[models.InsightCategory][]*models.ResearchInsight)
	for _, insight := range insights {
		grouped[insight.Category] = append(grouped[insight.Category], insight)
	}

	var b strings.Builder
	for _, category := range models.InsightCategories {
		items := grouped[category]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", titleCase(string(category)))
		for i, insight := range items {
			if i == insightsPerCategory {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", insight.Title, insight.Description)
		}
	}

	if b.Len() == 0 {
		return "No specific insights available.\n"
	}
	return b.String()
}

// Fallback derives a SWOT from the option's pros, cons and scores
func Fallback(option *models.ResearchOption) *models.OptionSwot {
	swot := &models.OptionSwot{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{},
		Confidence:    fallbackConfidence,
	}

	for i, pro := range truncate(option.Pros) {
		if i%2 == 0 {
			swot.Strengths = append(swot.Strengths, pro)
		} else {
			swot.Opportunities = append(swot.Opportunities, pro)
		}
	}
	for i, con := range truncate(option.Cons) {
		if i%2 == 0 {
			swot.Weaknesses = append(swot.Weaknesses, con)
		} else {
			swot.Threats = append(swot.Threats, con)
		}
	}

	switch {
	case option.FeasibilityScore > highScore:
		swot.Strengths = append(swot.Strengths, "High feasibility indicates strong implementation potential")
	case option.FeasibilityScore < lowScore:
		swot.Weaknesses = append(swot.Weaknesses, "Low feasibility may hinder successful implementation")
	}
	switch {
	case option.ImpactScore > highScore:
		swot.Opportunities = append(swot.Opportunities, "High impact potential for significant market presence")
	case option.ImpactScore < lowScore:
		swot.Threats = append(swot.Threats, "Low impact potential may limit growth opportunities")
	}
	switch {
	case option.RiskScore > highScore:
		swot.Threats = append(swot.Threats, "High risk profile requires careful risk management")
	case option.RiskScore < lowScore:
		swot.Strengths = append(swot.Strengths, "Low risk profile provides stable foundation")
	}

	swot.Strengths = truncate(swot.Strengths)
	swot.Weaknesses = truncate(swot.Weaknesses)
	swot.Opportunities = truncate(swot.Opportunities)
	swot.Threats = truncate(swot.Threats)
	return swot
}

func storedSwot(option *models.ResearchOption) *models.OptionSwot {
	confidence := option.SwotConfidence
	if confidence == 0 {
		confidence = defaultConfidence
	}
	return &models.OptionSwot{
		Strengths:     option.SwotStrengths,
		Weaknesses:    option.SwotWeaknesses,
		Opportunities: option.SwotOpportunities,
		Threats:       option.SwotThreats,
		Confidence:    confidence,
		GeneratedAt:   option.SwotGeneratedAt,
	}
}

func truncate(items []string) []string {
	if len(items) > maxItems {
		return items[:maxItems]
	}
	return items
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	out := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if out == "" {
		return "option"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
