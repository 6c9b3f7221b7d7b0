package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
)

const defaultDepth = "standard"

// ResearchCompetitor refreshes an existing competitor profile in place.
// An empty name keeps the stored one.
func (s *Service) ResearchCompetitor(ctx context.Context, competitorID, name, depth string) (*models.CompetitorAnalysis, error) {
	competitor, err := s.storage.MarketStorage().GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) != "" {
		competitor.Name = strings.TrimSpace(name)
	}

	applyProfile(competitor, s.researchProfile(ctx, competitor.Name, depth))
	competitor.LastResearched = s.now()

	if err := s.storage.MarketStorage().SaveCompetitor(ctx, competitor); err != nil {
		return nil, fmt.Errorf("failed to save competitor: %w", err)
	}

	s.logger.Info().Str("competitor_id", competitor.ID).Str("name", competitor.Name).Msg("Competitor researched")
	return competitor, nil
}

// AddCompetitor researches a new competitor and attaches it to the
// session's current market analysis.
func (s *Service) AddCompetitor(ctx context.Context, sessionID, name, depth string) (*models.CompetitorAnalysis, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("competitor name is required: %w", interfaces.ErrInvalidInput)
	}
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	analysis, err := s.storage.MarketStorage().GetMarketAnalysisBySession(ctx, sessionID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("no market analysis found, generate one first: %w", interfaces.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	competitor := &models.CompetitorAnalysis{
		ID:               common.NewID(common.PrefixCompetitor),
		MarketAnalysisID: analysis.ID,
		SessionID:        sessionID,
		Name:             name,
		LastResearched:   s.now(),
	}
	applyProfile(competitor, s.researchProfile(ctx, name, depth))

	if err := s.storage.MarketStorage().SaveCompetitor(ctx, competitor); err != nil {
		return nil, fmt.Errorf("failed to save competitor: %w", err)
	}

	s.logger.Info().Str("session_id", sessionID).Str("name", name).Msg("Competitor added")
	return competitor, nil
}

func (s *Service) researchProfile(ctx context.Context, name, depth string) *competitorProfile {
	prompt := fmt.Sprintf(`Research the competitor %q and provide detailed analysis.

Research depth: %s

Provide information on:
1. Company overview and description
2. Market position and market share (if available)
3. Revenue and financial metrics
4. Products and services offered
5. Target customers and markets
6. Pricing model and strategy
7. Key strengths and competitive advantages
8. Weaknesses and vulnerabilities
9. Recent funding or growth metrics
10. Digital presence and online reputation

Return JSON with description, website, tier (direct, indirect or substitute), market_share, revenue,
employees, founding_year, headquarters, products_services, pricing_model, target_customers,
strengths, weaknesses, competitive_advantages, funding_raised, growth_rate and threat_level (0.0-1.0).
Use realistic estimates if exact data isn't available.`, name, orDefault(depth, defaultDepth))

	text, err := s.ai.Generate(ctx, prompt, interfaces.GenerateOptions{
		SystemInstruction: systemInstruction,
		JSON:              true,
	})
	if err == nil {
		var profile competitorProfile
		if err = ai.DecodeJSON(text, competitorSchema, &profile); err == nil {
			return &profile
		}
	}

	s.logger.Warn().Err(err).Str("competitor", name).Msg("Competitor research unavailable, using fallback profile")
	metrics.AIFallbacks.WithLabelValues("competitor").Inc()
	return fallbackProfile()
}

func applyProfile(c *models.CompetitorAnalysis, p *competitorProfile) {
	c.Description = p.Description
	c.Website = p.Website
	c.Tier = parseTier(p.Tier)
	c.MarketShare = p.MarketShare
	c.Revenue = p.Revenue
	c.Employees = p.Employees
	c.FoundingYear = p.FoundingYear
	c.Headquarters = p.Headquarters
	c.ProductsServices = p.ProductsServices
	c.PricingModel = p.PricingModel
	c.PriceRange = p.PriceRange
	c.TargetCustomers = p.TargetCustomers
	c.Strengths = nonNil(p.Strengths)
	c.Weaknesses = nonNil(p.Weaknesses)
	c.CompetitiveAdvantages = p.CompetitiveAdvantages
	c.FundingRaised = p.FundingRaised
	c.GrowthRate = p.GrowthRate
	c.ThreatLevel = valueOr(p.ThreatLevel, 0.5)
	c.DataCompleteness = valueOr(p.DataCompleteness, 0.7)
}
