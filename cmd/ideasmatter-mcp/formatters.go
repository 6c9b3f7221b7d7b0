package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
)

// formatSessionList formats a page of sessions as markdown
func formatSessionList(sessions []*models.ResearchSession, total int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Research Sessions (%d of %d)\n\n", len(sessions), total))

	if len(sessions) == 0 {
		sb.WriteString("No sessions found.\n")
		return sb.String()
	}

	for i, session := range sessions {
		sb.WriteString(fmt.Sprintf("%d. **%s** `%s` (%s, created %s)\n",
			i+1, session.Title, session.ID, session.Status, session.CreatedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatSessionDetail formats a session with its children as markdown
func formatSessionDetail(detail *research.SessionDetail) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", detail.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", detail.ID))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", detail.Status))
	sb.WriteString(fmt.Sprintf("**Updated:** %s\n\n", detail.UpdatedAt.Format(time.RFC3339)))

	if detail.Description != "" {
		sb.WriteString(detail.Description)
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("## Insights (%d)\n\n", len(detail.Insights)))
	for _, insight := range detail.Insights {
		sb.WriteString(fmt.Sprintf("- [%s] **%s** (confidence %.2f): %s\n",
			insight.Category, insight.Title, insight.ConfidenceScore, insight.Description))
	}

	sb.WriteString(fmt.Sprintf("\n## Options (%d)\n\n", len(detail.Options)))
	for _, option := range detail.Options {
		marker := ""
		if option.Recommended {
			marker = " (recommended)"
		}
		sb.WriteString(fmt.Sprintf("- **%s**%s feasibility %.1f, impact %.1f, risk %.1f\n",
			option.Title, marker, option.FeasibilityScore, option.ImpactScore, option.RiskScore))
	}

	sb.WriteString(fmt.Sprintf("\n## Conversation (%d messages)\n", len(detail.Conversations)))

	return sb.String()
}

// formatMarketAnalysis formats sizing, competitors and segments as markdown
func formatMarketAnalysis(bundle *models.MarketAnalysisBundle) string {
	var sb strings.Builder
	analysis := bundle.Analysis
	if analysis == nil {
		return "No market analysis recorded.\n"
	}

	sb.WriteString(fmt.Sprintf("# Market Analysis: %s\n\n", analysis.Industry))
	sb.WriteString(fmt.Sprintf("**Category:** %s\n", analysis.MarketCategory))
	sb.WriteString(fmt.Sprintf("**Scope:** %s\n", analysis.GeographicScope))
	sb.WriteString(fmt.Sprintf("**Maturity:** %s\n\n", analysis.MarketMaturity))

	sb.WriteString("## Sizing\n\n")
	sb.WriteString(fmt.Sprintf("- TAM: %s\n", formatUSD(analysis.TAMValue)))
	sb.WriteString(fmt.Sprintf("- SAM: %s\n", formatUSD(analysis.SAMValue)))
	sb.WriteString(fmt.Sprintf("- SOM: %s\n", formatUSD(analysis.SOMValue)))
	sb.WriteString(fmt.Sprintf("- CAGR: %.1f%%\n\n", analysis.CAGR))

	sb.WriteString(fmt.Sprintf("## Competitors (%d)\n\n", len(bundle.Competitors)))
	for _, competitor := range bundle.Competitors {
		sb.WriteString(fmt.Sprintf("- **%s** (%s, share %.1f%%)\n", competitor.Name, competitor.Tier, competitor.MarketShare))
	}

	sb.WriteString(fmt.Sprintf("\n## Segments (%d)\n\n", len(bundle.Segments)))
	for _, segment := range bundle.Segments {
		sb.WriteString(fmt.Sprintf("- **%s** %.1f%%: %s\n", segment.SegmentName, segment.SizePercentage, segment.Description))
	}

	return sb.String()
}

// formatStrategyList formats the strategies of one session as markdown
func formatStrategyList(sessionID string, strategies []*models.ResearchStrategy) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Research Strategies for %s (%d)\n\n", sessionID, len(strategies)))

	if len(strategies) == 0 {
		sb.WriteString("No strategies found.\n")
		return sb.String()
	}

	for _, strategy := range strategies {
		sb.WriteString(fmt.Sprintf("- `%s` %s (%s) %s at %.0f%%\n",
			strategy.ID, strategy.Title, strategy.Approach, strategy.Status, strategy.ProgressPercentage))
	}

	return sb.String()
}

// formatProgress formats a progress snapshot as markdown
func formatProgress(progress *models.StrategyProgress) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Strategy %s\n\n", progress.StrategyID))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", progress.Status))
	if progress.CurrentPhase != "" {
		sb.WriteString(fmt.Sprintf("**Phase:** %s\n", progress.CurrentPhase))
	}
	sb.WriteString(fmt.Sprintf("**Progress:** %.0f%%\n", progress.ProgressPercentage))
	sb.WriteString(fmt.Sprintf("**Estimated minutes remaining:** %d\n", progress.EstimatedCompletionMinutes))
	if progress.Error != "" {
		sb.WriteString(fmt.Sprintf("**Error:** %s\n", progress.Error))
	}
	return sb.String()
}

func formatUSD(value float64) string {
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
