package pdf

import (
	"fmt"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// SwotReport builds the markdown for an option's SWOT report
func SwotReport(option *models.ResearchOption, session *models.ResearchSession, swot *models.OptionSwot, includeMetadata bool) string {
	var b strings.Builder

	b.WriteString("# SWOT Analysis Report\n\n")
	fmt.Fprintf(&b, "**Option:** %s\n\n", escape(option.Title))
	if option.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", escape(option.Description))
	}
	if session != nil {
		fmt.Fprintf(&b, "**Idea:** %s\n\n", escape(session.Title))
		if session.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", escape(session.Description))
		}
	}

	b.WriteString("## SWOT Matrix\n\n")
	b.WriteString("| Strengths | Weaknesses |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", cellList(swot.Strengths), cellList(swot.Weaknesses))
	b.WriteString("| **Opportunities** | **Threats** |\n")
	fmt.Fprintf(&b, "| %s | %s |\n\n", cellList(swot.Opportunities), cellList(swot.Threats))

	b.WriteString("---\n\n## Detailed Analysis\n\n")
	numberedSection(&b, "Strengths", swot.Strengths)
	numberedSection(&b, "Weaknesses", swot.Weaknesses)
	numberedSection(&b, "Opportunities", swot.Opportunities)
	numberedSection(&b, "Threats", swot.Threats)

	if includeMetadata {
		b.WriteString("---\n\n## Option Metrics\n\n")
		b.WriteString("| Metric | Score | Rating |\n|---|---|---|\n")
		fmt.Fprintf(&b, "| Feasibility | %s | %s |\n", percent(option.FeasibilityScore), Rating(option.FeasibilityScore))
		fmt.Fprintf(&b, "| Impact | %s | %s |\n", percent(option.ImpactScore), Rating(option.ImpactScore))
		fmt.Fprintf(&b, "| Risk | %s | %s |\n", percent(option.RiskScore), RiskRating(option.RiskScore))
		fmt.Fprintf(&b, "| SWOT Confidence | %s | %s |\n\n", percent(swot.Confidence), Rating(swot.Confidence))

		if swot.GeneratedAt != nil {
			fmt.Fprintf(&b, "*Analysis generated on %s*\n\n", swot.GeneratedAt.UTC().Format("January 02, 2006 at 03:04 PM UTC"))
		}
		if option.Recommended {
			b.WriteString("**This option is recommended based on the analysis**\n")
		}
	}

	return b.String()
}

// ExecutiveSummaryReport builds the executive summary markdown for a session.
// Only the first five insights and three options are shown; totals cover all of them.
func ExecutiveSummaryReport(session *models.ResearchSession, insights []*models.ResearchInsight, options []*models.ResearchOption) string {
	var b strings.Builder

	b.WriteString("# Executive Summary\n\n")
	fmt.Fprintf(&b, "Idea: **%s**\n\n", escape(session.Title))
	if session.Description != "" {
		fmt.Fprintf(&b, "*%s*\n\n", escape(session.Description))
	}

	b.WriteString("## Key Insights\n\n")
	if len(insights) == 0 {
		b.WriteString("No insights available.\n\n")
	}
	for i, insight := range insights {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", escape(insight.Title), escape(insight.Description))
	}
	b.WriteString("\n## Top Recommendations\n\n")
	if len(options) == 0 {
		b.WriteString("No recommendations available.\n\n")
	}
	for i, option := range options {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", escape(option.Title), escape(option.Description))
	}

	b.WriteString("\n## Summary Statistics\n\n")
	b.WriteString("| Total Insights | Total Options |\n|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d |\n\n", len(insights), len(options))

	fmt.Fprintf(&b, "---\n\nSession created %s\n", session.CreatedAt.UTC().Format("2006-01-02"))
	return b.String()
}

// MarketAnalysisReport builds the markdown for a stored market analysis
func MarketAnalysisReport(session *models.ResearchSession, bundle *models.MarketAnalysisBundle) string {
	var b strings.Builder
	a := bundle.Analysis

	b.WriteString("# Market Analysis Report\n\n")
	if session != nil {
		fmt.Fprintf(&b, "Idea: **%s**\n\n", escape(session.Title))
	}
	fmt.Fprintf(&b, "Industry: %s | Category: %s | Scope: %s\n\n", escape(a.Industry), escape(a.MarketCategory), escape(a.GeographicScope))

	b.WriteString("## Market Size\n\n")
	b.WriteString("| Measure | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| TAM | %s |\n", Currency(a.TAMValue))
	fmt.Fprintf(&b, "| SAM | %s |\n", Currency(a.SAMValue))
	fmt.Fprintf(&b, "| SOM | %s |\n", Currency(a.SOMValue))
	fmt.Fprintf(&b, "| CAGR | %.1f%% |\n", a.CAGR)
	fmt.Fprintf(&b, "| Maturity | %s |\n\n", escape(a.MarketMaturity))

	bulletSection(&b, "Market Drivers", a.MarketDrivers)
	bulletSection(&b, "Market Barriers", a.MarketBarriers)
	bulletSection(&b, "Technology Trends", a.TechnologyTrends)
	bulletSection(&b, "Customer Pain Points", a.CustomerPainPoints)

	if len(bundle.Competitors) > 0 {
		b.WriteString("## Competitors\n\n")
		b.WriteString("| Name | Tier | Market Share | Threat |\n|---|---|---|---|\n")
		for _, c := range bundle.Competitors {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% | %s |\n", escape(c.Name), c.Tier, c.MarketShare, Rating(c.ThreatLevel))
		}
		b.WriteString("\n")
	}

	if len(bundle.Segments) > 0 {
		b.WriteString("## Segments\n\n")
		b.WriteString("| Segment | Share | Attractiveness | Priority |\n|---|---|---|---|\n")
		for _, s := range bundle.Segments {
			fmt.Fprintf(&b, "| %s | %.0f%% | %s | %s |\n", escape(s.SegmentName), s.SizePercentage, percent(s.AttractivenessScore), s.PriorityLevel)
		}
		b.WriteString("\n")
	}

	if len(bundle.Opportunities) > 0 {
		b.WriteString("## Opportunities\n\n")
		for _, o := range bundle.Opportunities {
			fmt.Fprintf(&b, "- **%s** (%s priority): %s\n", escape(o.Title), o.PriorityLevel, escape(o.Description))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nConfidence: %s. Analysis date %s.\n", percent(a.ConfidenceScore), a.AnalysisDate.UTC().Format("2006-01-02"))
	return b.String()
}

// StrategyResultReport builds the markdown for a completed research strategy
func StrategyResultReport(record *models.StrategyRecord, includeRaw bool) string {
	var b strings.Builder
	strategy := record.Strategy
	result := record.Result

	fmt.Fprintf(&b, "# %s\n\n", escape(strategy.Title))
	fmt.Fprintf(&b, "%s\n\n", escape(strategy.Description))
	fmt.Fprintf(&b, "Approach: **%s** | Status: **%s** | Progress: %.0f%%\n\n", strategy.Approach, strategy.Status, strategy.ProgressPercentage)

	if result == nil {
		b.WriteString("Results are not available yet.\n")
		return b.String()
	}

	if mc := result.MarketContext; mc != nil {
		b.WriteString("## Market Context\n\n")
		fmt.Fprintf(&b, "%s\n\n", escape(mc.IndustryOverview))
		fmt.Fprintf(&b, "Market size %s, growth %.1f%% CAGR, stage: %s\n\n", Currency(mc.MarketSizeUSD), mc.GrowthRateCAGR, mc.MaturityStage)
		bulletSection(&b, "Key Trends", mc.KeyTrends)
	}

	if ci := result.CompetitiveIntelligence; ci != nil {
		b.WriteString("## Competitive Intelligence\n\n")
		fmt.Fprintf(&b, "%s\n\n", escape(ci.CompetitiveLandscapeSummary))
		if len(ci.DirectCompetitors) > 0 {
			b.WriteString("| Competitor | Category | Threat |\n|---|---|---|\n")
			for _, c := range ci.DirectCompetitors {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(c.Name), escape(c.Category), c.ThreatLevel)
			}
			b.WriteString("\n")
		}
		bulletSection(&b, "Competitive Advantages", ci.CompetitiveAdvantages)
	}

	if cu := result.CustomerUnderstanding; cu != nil {
		b.WriteString("## Customer Understanding\n\n")
		fmt.Fprintf(&b, "Primary segment: **%s**\n\n", escape(cu.PrimaryTargetSegment))
		bulletSection(&b, "Unmet Needs", cu.UnmetNeeds)
	}

	if sa := result.StrategicAssessment; sa != nil {
		b.WriteString("## Strategic Assessment\n\n")
		fmt.Fprintf(&b, "Recommendation: **%s**. %s\n\n", sa.GoNoGoRecommendation, escape(sa.Reasoning))
		b.WriteString("| Strengths | Weaknesses | Opportunities | Threats |\n|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n\n",
			cellList(sa.SwotAnalysis.Strengths), cellList(sa.SwotAnalysis.Weaknesses),
			cellList(sa.SwotAnalysis.Opportunities), cellList(sa.SwotAnalysis.Threats))
	}

	if len(result.StrategicOptions) > 0 {
		b.WriteString("## Strategic Options\n\n")
		b.WriteString("| Option | Success | Time to Market | Investment | Score |\n|---|---|---|---|---|\n")
		for _, o := range result.StrategicOptions {
			title := escape(o.Title)
			if o.Recommended {
				title += " (recommended)"
			}
			fmt.Fprintf(&b, "| %s | %.0f%% | %d months | %s | %.1f |\n", title, o.SuccessProbabilityPercent, o.TimelineToMarketMonths, Currency(o.EstimatedInvestmentUSD), o.OverallScore)
		}
		b.WriteString("\n")
	}

	numberedSection(&b, "Next Steps", result.NextSteps)

	if includeRaw {
		fmt.Fprintf(&b, "---\n\nConfidence %s, completeness %.0f%%, generated %s\n",
			percent(result.AnalysisConfidence), result.AnalysisCompleteness, result.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return b.String()
}

// Rating converts a 0-1 score to a label
func Rating(score float64) string {
	switch {
	case score >= 0.8:
		return "Excellent"
	case score >= 0.6:
		return "Good"
	case score >= 0.4:
		return "Fair"
	default:
		return "Poor"
	}
}

// RiskRating converts a 0-1 risk score to a label
func RiskRating(score float64) string {
	switch {
	case score >= 0.8:
		return "Very High"
	case score >= 0.6:
		return "High"
	case score >= 0.4:
		return "Moderate"
	default:
		return "Low"
	}
}

// Currency formats a USD amount with a B/M/K suffix
func Currency(value float64) string {
	switch {
	case value >= 1e9:
		return fmt.Sprintf("$%.1fB", value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("$%.1fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("$%.1fK", value/1e3)
	default:
		return fmt.Sprintf("$%.0f", value)
	}
}

func percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

func cellList(items []string) string {
	if len(items) == 0 {
		return "No items identified"
	}
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = escape(item)
	}
	return strings.Join(escaped, "; ")
}

func bulletSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", escape(item))
	}
	b.WriteString("\n")
}

func numberedSection(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(items) == 0 {
		b.WriteString("No items identified in this category\n\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, escape(item))
	}
	b.WriteString("\n")
}

// escaper keeps user text from being read as table or emphasis markup
var escaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_", "\n", " ")

func escape(s string) string {
	return escaper.Replace(s)
}
