// -----------------------------------------------------------------------
// Last Modified: Wednesday, 5th November 2025 8:17:54 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/handlers"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/services/analyzer"
	"github.com/ternarybob/docify/internal/services/events"
	"github.com/ternarybob/docify/internal/services/extractor"
	"github.com/ternarybob/docify/internal/services/fetcher"
	"github.com/ternarybob/docify/internal/services/llm"
	"github.com/ternarybob/docify/internal/services/orchestrator"
	"github.com/ternarybob/docify/internal/services/report"
	"github.com/ternarybob/docify/internal/services/scheduler"
	"github.com/ternarybob/docify/internal/services/walker"
	"github.com/ternarybob/docify/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event fan-out to websocket clients
	EventService interfaces.EventService

	// Pipeline services
	FetchService        *fetcher.Service
	ExtractService      *extractor.Service
	CrawlService        *walker.Service
	AnalyzerService     *analyzer.Service
	LLMService          interfaces.LLMService
	OrchestratorService *orchestrator.Service
	ReportService       *report.Service
	SchedulerService    interfaces.SchedulerService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	DocumentHandler *handlers.DocumentHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Event hub must exist before any service that publishes status
	app.EventService = events.NewHub(app.Logger)

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order.
//
// PIPELINE ARCHITECTURE:
// 1. FetchService - HTTP fetching with Chrome rendering escalation
// 2. ExtractService - HTML to markdown content extraction
// 3. CrawlService - same-domain site walking over fetch + extract
// 4. LLMService - analysis completions (Anthropic or Gemini)
// 5. AnalyzerService - prompt building and response validation
// 6. OrchestratorService - sequences one analysis run end to end
func (a *App) initServices() error {
	var err error

	a.FetchService, err = fetcher.NewService(&a.Config.Fetcher, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize fetch service: %w", err)
	}
	a.Logger.Debug().Msg("Fetch service initialized")

	a.ExtractService = extractor.NewService(a.Logger)

	a.CrawlService = walker.NewService(a.FetchService, a.ExtractService, &a.Config.Crawler, a.Logger)
	a.Logger.Debug().
		Int("max_pages", a.Config.Crawler.MaxPages).
		Msg("Crawl service initialized")

	a.LLMService, err = llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	a.Logger.Debug().
		Str("provider", string(a.Config.LLM.DefaultProvider)).
		Msg("LLM service initialized")

	a.AnalyzerService = analyzer.NewService(a.Logger)

	a.OrchestratorService = orchestrator.NewService(
		a.Config,
		a.Logger,
		a.CrawlService,
		a.AnalyzerService,
		a.LLMService,
		a.StorageManager.DocumentStorage(),
		a.EventService,
	)
	a.Logger.Debug().Msg("Orchestrator initialized")

	a.ReportService = report.NewService(&a.Config.Report, a.Logger)

	// Stale-run sweeper marks abandoned scraping/analyzing runs as failed
	a.SchedulerService = scheduler.NewService(
		a.Config,
		a.Logger,
		a.StorageManager.DocumentStorage(),
		a.EventService,
	)
	if a.Config.Scheduler.Enabled {
		if err := a.SchedulerService.Start(a.Config.Scheduler.Schedule); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to start scheduler service")
		} else {
			a.Logger.Debug().Msg("Scheduler service started")
		}
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()

	a.DocumentHandler = handlers.NewDocumentHandler(
		a.StorageManager.DocumentStorage(),
		a.OrchestratorService,
		a.ReportService,
		a.Logger,
	)

	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	// Stop scheduler service
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	// Close event service
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	// Close LLM service
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	// Close fetch service (releases Chrome renderer resources)
	if a.FetchService != nil {
		if err := a.FetchService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close fetch service")
		}
	}

	// Close storage
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
