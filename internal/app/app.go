package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/handlers"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/events"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/export"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/market"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/scheduler"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/strategy"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/swot"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage"
)

// shutdownGrace bounds how long Close waits for running strategies
const shutdownGrace = 10 * time.Second

// App holds all application components and dependencies
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	ctx       context.Context
	cancelCtx context.CancelFunc

	StorageManager interfaces.StorageManager
	ProgressStore  interfaces.ProgressStore

	// Event-driven services
	EventService     interfaces.EventService
	SchedulerService *scheduler.Service

	// Domain services
	AIService       *ai.Service
	PDFService      *pdf.Service
	ResearchService *research.Service
	SwotService     *swot.Service
	MarketService   *market.Service
	StrategyService *strategy.Service
	StrategyRunner  *strategy.Runner
	ExportService   *export.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	ResearchHandler  *handlers.ResearchHandler
	MarketHandler    *handlers.MarketHandler
	StrategyHandler  *handlers.StrategyHandler
	FilesHandler     *handlers.FilesHandler
	SchedulerHandler *handlers.SchedulerHandler
	WSHandler        *handlers.WebSocketHandler
	EventSubscriber  *handlers.EventSubscriber
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	if err := app.initDatabase(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	if err := app.SchedulerService.Start(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Str("ai_provider", app.AIService.ProviderName()).
		Str("progress_backend", cfg.Progress.Backend).
		Bool("websocket_enabled", cfg.WebSocket.Enabled).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens Badger and the strategy progress store
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = storageManager

	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	store, err := storage.NewProgressStore(a.ctx, a.Logger, a.Config, storageManager)
	if err != nil {
		return fmt.Errorf("failed to create progress store: %w", err)
	}
	a.ProgressStore = store

	return nil
}

func (a *App) initServices() error {
	var err error

	a.AIService, err = ai.NewService(a.ctx, &a.Config.AI, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	a.EventService = events.NewService(a.Logger)
	if err := events.SubscribeLoggerToAllEvents(a.EventService, a.Logger); err != nil {
		return fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	a.PDFService = pdf.NewService(a.Logger)
	a.ResearchService = research.NewService(a.StorageManager, a.ProgressStore, a.AIService, a.PDFService, a.Logger)
	a.SwotService = swot.NewService(a.StorageManager, a.AIService, a.PDFService, a.Logger)
	a.MarketService = market.NewService(a.StorageManager, a.AIService, a.PDFService, a.Logger)

	a.StrategyService = strategy.NewService(a.AIService, &a.Config.Strategy, a.Logger)
	a.StrategyRunner = strategy.NewRunner(a.ctx, a.StrategyService, a.ProgressStore, a.StorageManager, a.EventService, &a.Config.Strategy, a.Logger)

	a.ExportService, err = export.NewService(a.ProgressStore, a.PDFService, &a.Config.Export, a.Config.App.APIPrefix, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create export service: %w", err)
	}

	a.SchedulerService = scheduler.NewService(a.Logger)
	if err := scheduler.RegisterMaintenanceJobs(a.SchedulerService, a.StrategyRunner, a.ExportService, &a.Config.Strategy, a.Logger); err != nil {
		return fmt.Errorf("failed to register maintenance jobs: %w", err)
	}

	return nil
}

func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler(a.Config.App.Name, a.AIService, a.Logger)
	a.ResearchHandler = handlers.NewResearchHandler(a.ResearchService, a.SwotService, a.Logger)
	a.MarketHandler = handlers.NewMarketHandler(a.MarketService, a.Logger)
	a.StrategyHandler = handlers.NewStrategyHandler(a.StrategyRunner, a.ExportService, a.Logger)
	a.FilesHandler = handlers.NewFilesHandler(a.ExportService, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)

	if a.Config.WebSocket.Enabled {
		a.WSHandler = handlers.NewWebSocketHandler(a.Logger)
		a.EventSubscriber = handlers.NewEventSubscriber(a.WSHandler, a.EventService, a.Logger, &a.Config.WebSocket)
	}

	return nil
}

// Close stops background work and releases storage. Running strategies get
// a short grace period after their context is cancelled.
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.Logger.Info().Msg("Cancelling background goroutines")
		a.cancelCtx()
	}

	if a.StrategyRunner != nil {
		waitCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := a.StrategyRunner.Wait(waitCtx); err != nil {
			a.Logger.Warn().Err(err).Msg("Research strategies still running at shutdown")
		}
		cancel()
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.AIService != nil {
		if err := a.AIService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close AI service")
		}
	}

	if a.ProgressStore != nil {
		if err := a.ProgressStore.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close progress store")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
