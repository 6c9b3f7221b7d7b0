package server

import (
	"net/http"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
)

// setupRoutes configures all HTTP routes. API routes live under the
// configured prefix; handlers read wildcards with r.PathValue.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	prefix := strings.TrimSuffix(s.app.Config.App.APIPrefix, "/")

	// WebSocket route
	if s.app.WSHandler != nil {
		mux.HandleFunc(wsPath, s.app.WSHandler.HandleWebSocket)
	}

	// Prometheus scrape endpoint
	if s.app.Config.Metrics.Enabled {
		path := s.app.Config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, metrics.Handler())
	}

	// API routes - System
	mux.HandleFunc(prefix+"/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc(prefix+"/version", s.app.APIHandler.VersionHandler)

	// API routes - Research sessions
	research := s.app.ResearchHandler
	mux.Handle(prefix+"/sessions", collection(research.ListSessionsHandler, research.CreateSessionHandler))
	mux.Handle(prefix+"/sessions/{id}", item(research.GetSessionHandler, research.UpdateSessionHandler, research.DeleteSessionHandler))
	mux.HandleFunc(prefix+"/sessions/{id}/conversations", research.ConversationsHandler)
	mux.HandleFunc(prefix+"/sessions/{id}/brainstorm", research.BrainstormHandler)
	mux.HandleFunc(prefix+"/sessions/{id}/analyze", research.AnalyzeHandler)
	mux.HandleFunc(prefix+"/sessions/{id}/analysis", research.CategorizedAnalysisHandler)
	mux.HandleFunc(prefix+"/sessions/{id}/next-steps", research.NextStepsHandler)
	mux.HandleFunc(prefix+"/sessions/{id}/reports", research.ReportHandler)
	mux.HandleFunc(prefix+"/ideas/submit", research.SubmitIdeaHandler)
	mux.HandleFunc(prefix+"/insights/{id}/fact-check", research.FactCheckHandler)
	mux.HandleFunc(prefix+"/options/{id}/swot", research.SwotHandler)
	mux.HandleFunc(prefix+"/options/{id}/swot/pdf", research.SwotPDFHandler)

	// API routes - Market analysis
	market := prefix + "/market-analysis"
	mux.HandleFunc(market+"/generate", s.app.MarketHandler.GenerateHandler)
	mux.HandleFunc(market+"/sizing", s.app.MarketHandler.SizingHandler)
	mux.HandleFunc(market+"/competitors/add", s.app.MarketHandler.AddCompetitorHandler)
	mux.HandleFunc(market+"/competitors/{id}/research", s.app.MarketHandler.ResearchCompetitorHandler)
	mux.Handle(market+"/{sid}", item(s.app.MarketHandler.GetHandler, nil, s.app.MarketHandler.DeleteHandler))
	mux.HandleFunc(market+"/{sid}/competitive-landscape", s.app.MarketHandler.LandscapeHandler)
	mux.HandleFunc(market+"/{sid}/export/pdf", s.app.MarketHandler.ExportPDFHandler)
	mux.HandleFunc(market+"/{sid}/status", s.app.MarketHandler.StatusHandler)

	// API routes - Research strategy
	rs := prefix + "/research-strategy"
	strategies := s.app.StrategyHandler
	mux.Handle(rs+"/approaches", collection(strategies.ApproachesHandler, strategies.ApproachesHandler))
	mux.HandleFunc(rs+"/initiate", strategies.InitiateHandler)
	mux.HandleFunc(rs+"/execute/{id}", strategies.ExecuteHandler)
	mux.HandleFunc(rs+"/progress/{id}", strategies.ProgressHandler)
	mux.HandleFunc(rs+"/results/{id}", strategies.ResultsHandler)
	// GET takes a session id, DELETE a strategy id
	mux.Handle(rs+"/strategies/{id}", item(strategies.ListStrategiesHandler, nil, strategies.DeleteStrategyHandler))
	mux.HandleFunc(rs+"/compare-options", strategies.CompareOptionsHandler)
	mux.HandleFunc(rs+"/export", strategies.ExportHandler)
	mux.HandleFunc(rs+"/demo/{approach}", strategies.DemoHandler)

	// API routes - Export downloads
	mux.HandleFunc(prefix+"/files/download/{name}", s.app.FilesHandler.DownloadHandler)

	// API routes - Maintenance jobs
	mux.HandleFunc(prefix+"/maintenance/jobs", s.app.SchedulerHandler.ListJobsHandler)
	mux.HandleFunc(prefix+"/maintenance/jobs/{name}/trigger", s.app.SchedulerHandler.TriggerJobHandler)

	// Catch-all for unknown paths
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
