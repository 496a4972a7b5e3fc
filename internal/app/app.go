// Package app wires configuration, storage, clients and services into a
// single container shared by the server and monitor binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/aegis/internal/clients/alphavantage"
	"github.com/bobmcallan/aegis/internal/clients/gemini"
	"github.com/bobmcallan/aegis/internal/clients/portfolio"
	"github.com/bobmcallan/aegis/internal/clients/tavily"
	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/interfaces"
	"github.com/bobmcallan/aegis/internal/services/analysis"
	"github.com/bobmcallan/aegis/internal/services/intent"
	"github.com/bobmcallan/aegis/internal/services/marketdata"
	"github.com/bobmcallan/aegis/internal/services/monitor"
	"github.com/bobmcallan/aegis/internal/services/pipeline"
	"github.com/bobmcallan/aegis/internal/services/scan"
	"github.com/bobmcallan/aegis/internal/storage/reportdb"
	"github.com/bobmcallan/aegis/internal/storage/watchfs"
)

// App holds all initialized services, clients, and storage. It is the
// shared core used by both cmd/aegis-server and cmd/aegis-monitor.
type App struct {
	Config *common.Config
	Logger *common.Logger

	WatchStore  *watchfs.Store
	ReportStore interfaces.ReportStore

	MarketData  interfaces.MarketDataClient
	Intent      interfaces.IntentService
	Scan        interfaces.ScanService
	Analysis    interfaces.AnalysisService
	Pipeline    interfaces.PipelineService
	Monitor     *monitor.Service
	StartupTime time.Time

	monitorCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution is used:
// AEGIS_CONFIG, then aegis.toml beside the binary, then config/aegis.toml.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("AEGIS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "aegis.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/aegis.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Data.Path != "" && !filepath.IsAbs(config.Storage.Data.Path) {
		config.Storage.Data.Path = filepath.Join(binDir, config.Storage.Data.Path)
	}
	if config.Storage.Reports.Path != "" && !filepath.IsAbs(config.Storage.Reports.Path) {
		config.Storage.Reports.Path = filepath.Join(binDir, config.Storage.Reports.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	watchStore, err := watchfs.NewStore(logger, config.Storage.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize watch store: %w", err)
	}

	reportStore, err := reportdb.NewStore(logger, config.Storage.Reports.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report store: %w", err)
	}

	// Resolve API keys. Gemini is required: intent extraction and report
	// synthesis have no local substitute. The data keys are optional and
	// degrade to simulated series / empty research.
	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini API key is missing: %w", err)
	}

	alphaVantageKey, err := common.ResolveAPIKey("alphavantage_api_key", config.Clients.AlphaVantage.APIKey)
	if err != nil {
		logger.Warn().Msg("Alpha Vantage API key not configured - market data will be simulated")
	}

	tavilyKey, err := common.ResolveAPIKey("tavily_api_key", config.Clients.Tavily.APIKey)
	if err != nil {
		logger.Warn().Msg("Tavily API key not configured - web research will be unavailable")
	}

	geminiClient, err := gemini.NewClient(ctx, geminiKey,
		gemini.WithLogger(logger),
		gemini.WithModel(config.Clients.Gemini.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	var live interfaces.LiveMarketSource
	if alphaVantageKey != "" {
		live = alphavantage.NewClient(alphaVantageKey,
			alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
			alphavantage.WithLogger(logger),
			alphavantage.WithRateLimit(config.Clients.AlphaVantage.RateLimit),
			alphavantage.WithTimeout(config.Clients.AlphaVantage.GetTimeout()),
		)
	}

	tavilyClient := tavily.NewClient(tavilyKey,
		tavily.WithBaseURL(config.Clients.Tavily.BaseURL),
		tavily.WithLogger(logger),
		tavily.WithTimeout(config.Clients.Tavily.GetTimeout()),
	)

	portfolioClient := portfolio.NewClient(config.Clients.Portfolio.BaseURL,
		portfolio.WithLogger(logger),
		portfolio.WithTimeout(config.Clients.Portfolio.GetTimeout()),
	)

	// Services
	marketData := marketdata.NewService(live, logger)
	intentService := intent.NewService(geminiClient, logger)
	scanService := scan.NewService(marketData, logger)
	analysisService := analysis.NewService(geminiClient, logger)
	pipelineService := pipeline.NewService(
		intentService,
		tavilyClient,
		marketData,
		scanService,
		portfolioClient,
		geminiClient,
		analysisService,
		watchStore,
		reportStore,
		logger,
	)
	monitorService := monitor.NewService(
		marketData,
		tavilyClient,
		watchStore,
		watchStore,
		config.Monitor.GetInterval(),
		config.Monitor.PriceThresholdPct,
		config.Monitor.Workers,
		logger,
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		WatchStore:  watchStore,
		ReportStore: reportStore,
		MarketData:  marketData,
		Intent:      intentService,
		Scan:        scanService,
		Analysis:    analysisService,
		Pipeline:    pipelineService,
		Monitor:     monitorService,
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartMonitor launches the background watchlist monitor.
func (a *App) StartMonitor() error {
	monitorCtx, cancel := context.WithCancel(context.Background())
	if err := a.Monitor.Start(monitorCtx); err != nil {
		cancel()
		return err
	}
	a.monitorCancel = cancel
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop monitor, close report storage.
func (a *App) Close() {
	if a.monitorCancel != nil {
		a.Monitor.Stop()
		a.monitorCancel()
		a.monitorCancel = nil
	}
	if a.ReportStore != nil {
		a.ReportStore.Close()
		a.ReportStore = nil
	}
}
