package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
)

// SessionReader is the read side of the research service used by the tools
type SessionReader interface {
	ListSessions(ctx context.Context, skip, limit int) ([]*models.ResearchSession, int, error)
	GetSessionDetail(ctx context.Context, sessionID string) (*research.SessionDetail, error)
}

// MarketReader loads stored market analyses
type MarketReader interface {
	Get(ctx context.Context, sessionID string) (*models.MarketAnalysisBundle, error)
}

// StrategyReader reports strategy records and progress
type StrategyReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]*models.ResearchStrategy, error)
	Progress(ctx context.Context, strategyID string) (*models.StrategyProgress, error)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleListSessions implements the list_sessions tool
func handleListSessions(sessions SessionReader, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		skip := request.GetInt("skip", 0)
		if skip < 0 {
			skip = 0
		}

		list, total, err := sessions.ListSessions(ctx, skip, limit)
		if err != nil {
			logger.Error().Err(err).Msg("ListSessions failed")
			return textResult(fmt.Sprintf("Failed to list sessions: %v", err)), nil
		}

		return textResult(formatSessionList(list, total)), nil
	}
}

// handleGetSession implements the get_session tool
func handleGetSession(sessions SessionReader, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil || sessionID == "" {
			return textResult("Error: session_id parameter is required"), nil
		}

		detail, err := sessions.GetSessionDetail(ctx, sessionID)
		if err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("GetSessionDetail failed")
			return textResult(fmt.Sprintf("Session not found: %v", err)), nil
		}

		return textResult(formatSessionDetail(detail)), nil
	}
}

// handleGetMarketAnalysis implements the get_market_analysis tool
func handleGetMarketAnalysis(market MarketReader, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil || sessionID == "" {
			return textResult("Error: session_id parameter is required"), nil
		}

		bundle, err := market.Get(ctx, sessionID)
		if err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("Market analysis lookup failed")
			return textResult(fmt.Sprintf("Market analysis not found: %v", err)), nil
		}

		return textResult(formatMarketAnalysis(bundle)), nil
	}
}

// handleListStrategies implements the list_strategies tool
func handleListStrategies(strategies StrategyReader, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil || sessionID == "" {
			return textResult("Error: session_id parameter is required"), nil
		}

		list, err := strategies.ListBySession(ctx, sessionID)
		if err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("ListBySession failed")
			return textResult(fmt.Sprintf("Failed to list strategies: %v", err)), nil
		}

		return textResult(formatStrategyList(sessionID, list)), nil
	}
}

// handleGetStrategyProgress implements the get_strategy_progress tool
func handleGetStrategyProgress(strategies StrategyReader, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		strategyID, err := request.RequireString("strategy_id")
		if err != nil || strategyID == "" {
			return textResult("Error: strategy_id parameter is required"), nil
		}

		progress, err := strategies.Progress(ctx, strategyID)
		if err != nil {
			logger.Error().Err(err).Str("strategy_id", strategyID).Msg("Progress lookup failed")
			return textResult(fmt.Sprintf("Strategy not found: %v", err)), nil
		}

		return textResult(formatProgress(progress)), nil
	}
}
