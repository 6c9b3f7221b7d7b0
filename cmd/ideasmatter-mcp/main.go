package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/events"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/market"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/strategy"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage"
)

// The MCP server is read-only. It opens the same Badger directory as the
// HTTP server, so point it at a stopped server's data or a copy of it.
// Strategy progress is only visible with the badger or redis backend.
func main() {
	var paths []string
	if configPath := os.Getenv("IDEAS_CONFIG"); configPath != "" {
		paths = append(paths, configPath)
	} else if _, err := os.Stat("ideasmatter.toml"); err == nil {
		paths = append(paths, "ideasmatter.toml")
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console only at warn level; stdout carries the MCP protocol
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	progressStore, err := storage.NewProgressStore(ctx, logger, config, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize progress store")
	}
	defer progressStore.Close()

	// The tools never generate content, so a scripted-empty provider suffices
	aiService := ai.NewServiceWithProvider(ai.NewMockProvider(), &config.AI, logger)
	pdfService := pdf.NewService(logger)
	eventService := events.NewService(logger)
	defer eventService.Close()

	researchService := research.NewService(storageManager, progressStore, aiService, pdfService, logger)
	marketService := market.NewService(storageManager, aiService, pdfService, logger)
	runner := strategy.NewRunner(ctx, strategy.NewService(aiService, &config.Strategy, logger),
		progressStore, storageManager, eventService, &config.Strategy, logger)

	mcpServer := server.NewMCPServer(
		"ideasmatter",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createListSessionsTool(), handleListSessions(researchService, logger))
	mcpServer.AddTool(createGetSessionTool(), handleGetSession(researchService, logger))
	mcpServer.AddTool(createGetMarketAnalysisTool(), handleGetMarketAnalysis(marketService, logger))
	mcpServer.AddTool(createListStrategiesTool(), handleListStrategies(runner, logger))
	mcpServer.AddTool(createGetStrategyProgressTool(), handleGetStrategyProgress(runner, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
