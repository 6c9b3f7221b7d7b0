package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createListSessionsTool returns the list_sessions tool definition
func createListSessionsTool() mcp.Tool {
	return mcp.NewTool("list_sessions",
		mcp.WithDescription("List research sessions, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum sessions to return (default: 20, max: 100)"),
		),
		mcp.WithNumber("skip",
			mcp.Description("Number of sessions to skip"),
		),
	)
}

// createGetSessionTool returns the get_session tool definition
func createGetSessionTool() mcp.Tool {
	return mcp.NewTool("get_session",
		mcp.WithDescription("Retrieve a research session with its conversations, insights and options"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Research session ID"),
		),
	)
}

// createGetMarketAnalysisTool returns the get_market_analysis tool definition
func createGetMarketAnalysisTool() mcp.Tool {
	return mcp.NewTool("get_market_analysis",
		mcp.WithDescription("Retrieve the market analysis (sizing, competitors, segments) for a session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Research session ID"),
		),
	)
}

// createListStrategiesTool returns the list_strategies tool definition
func createListStrategiesTool() mcp.Tool {
	return mcp.NewTool("list_strategies",
		mcp.WithDescription("List research strategies initiated for a session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Research session ID"),
		),
	)
}

// createGetStrategyProgressTool returns the get_strategy_progress tool definition
func createGetStrategyProgressTool() mcp.Tool {
	return mcp.NewTool("get_strategy_progress",
		mcp.WithDescription("Report the phase, percentage and remaining minutes of a research strategy"),
		mcp.WithString("strategy_id",
			mcp.Required(),
			mcp.Description("Research strategy ID"),
		),
	)
}
