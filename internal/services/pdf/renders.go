package pdf

import (
	"fmt"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// RenderSwot renders an option's SWOT report
func (s *Service) RenderSwot(option *models.ResearchOption, session *models.ResearchSession, swot *models.OptionSwot, includeMetadata bool) ([]byte, error) {
	return s.ConvertMarkdownToPDF(SwotReport(option, session, swot, includeMetadata), fmt.Sprintf("SWOT Analysis: %s", option.Title))
}

// RenderExecutiveSummary renders a session's executive summary
func (s *Service) RenderExecutiveSummary(session *models.ResearchSession, insights []*models.ResearchInsight, options []*models.ResearchOption) ([]byte, error) {
	return s.ConvertMarkdownToPDF(ExecutiveSummaryReport(session, insights, options), fmt.Sprintf("Executive Summary: %s", session.Title))
}

// RenderMarketAnalysis renders a session's market analysis
func (s *Service) RenderMarketAnalysis(session *models.ResearchSession, bundle *models.MarketAnalysisBundle) ([]byte, error) {
	title := "Market Analysis"
	if session != nil {
		title = fmt.Sprintf("Market Analysis: %s", session.Title)
	}
	return s.ConvertMarkdownToPDF(MarketAnalysisReport(session, bundle), title)
}

// RenderStrategyResult renders a research strategy and its results
func (s *Service) RenderStrategyResult(record *models.StrategyRecord, includeRaw bool) ([]byte, error) {
	return s.ConvertMarkdownToPDF(StrategyResultReport(record, includeRaw), record.Strategy.Title)
}
