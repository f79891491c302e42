package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"market-structure/src/analysis"
	"market-structure/src/config"
	datasource "market-structure/src/data_source"
	"market-structure/src/data_source/yahoo"
	"market-structure/src/helpers"
	"market-structure/src/interfaces"
	"market-structure/src/logger"
	"market-structure/src/models"
	"market-structure/src/network"
	"market-structure/src/server"
	"market-structure/src/storage"
	"market-structure/src/utils"
)

// Cached bars older than this are refetched on startup.
const cacheFreshness = time.Hour

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.MConfig, config.Name)

	// 2. Setup Storage
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	// DB startup races container networking on fresh deploys, so retry.
	if _, err := helpers.RetryWithBackoff("database initialize", 3, 2*time.Second, func() (interface{}, error) {
		return nil, db.Initialize()
	}); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	errHandler := helpers.NewErrorHandler()

	// 3. Setup Components
	var networkManage interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, appLogger)

	if len(config.DataSource.Sources) == 0 {
		appLogger.Critical("No data sources configured")
		os.Exit(1)
	}
	// One YahooFinanceSource per configured source block, aggregated behind
	// the manager so the main loop sees a single IDataSource.
	sources := make([]interfaces.IDataSource, 0, len(config.DataSource.Sources))
	for _, srcCfg := range config.DataSource.Sources {
		sources = append(sources, yahoo.NewYahooFinanceSource(config.MConfig, srcCfg, networkManage))
	}
	var source interfaces.IDataSource = datasource.NewMultiSourceManager(sources, appLogger)

	facade := analysis.NewStructureFacade(config.MConfig, appLogger)
	var srv interfaces.IDataExchanger = server.NewFastAPIServer(config.MConfig, appLogger)

	// 4. In-memory bar history sized to the retention policy
	maxPoints := utils.CalculateMaxDataPoints(config.DataSource.DataRetentionDays)
	history := utils.NewBarHistory(maxPoints)

	// 5. Initial Data Load: prefer the storage cache, fall back to the source
	initialData := loadInitialData(config.MConfig, db, source, appLogger)

	// 6. Populate history with initial data
	for sym, bars := range initialData {
		for _, b := range bars {
			history.AddBar(sym, b)
		}
	}

	// 7. Initial Analysis
	startAnalysis := time.Now()
	reports := facade.AnalyzeAll(history.Snapshot(), time.Now().UTC())

	errHandler.Handle(db.SaveReports(reports), "initial report persistence")

	srv.UpdateReports(reports, models.MProcessingMetrics{
		AnalysisTimeSeconds: time.Since(startAnalysis).Seconds(),
		ValidSymbols:        len(initialData),
		ReportsProduced:     len(reports),
	})

	appLogger.Info("Initialization complete: %d reports for %d symbols", len(reports), len(initialData))

	// 8. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 9. Main Loop (Push Model)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	updatesChan := make(chan map[string][]models.MBar, 100)

	// Start Source
	if err := source.Start(ctx, updatesChan, wrapWg); err != nil {
		appLogger.Critical("Failed to start source: %v", err)
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Starting data loop (Push Model)...")

	for {
		select {
		case updates, ok := <-updatesChan:
			if !ok {
				appLogger.Info("Data source closed channel.")
				return
			}

			startProcess := time.Now()
			appLogger.Info("Received update for %d symbols", len(updates))

			// Persist and buffer the fresh bars
			var newBars []models.MBar
			for sym, bars := range updates {
				newBars = append(newBars, bars...)
				for _, b := range bars {
					history.AddBar(sym, b)
				}
			}
			errHandler.Handle(db.SaveBarsBulk(newBars), "bar persistence")

			// Re-analyze only the symbols that changed, over their full history
			changed := make(map[string][]models.MBar, len(updates))
			for sym := range updates {
				if bars := history.GetBars(sym); len(bars) > 0 {
					changed[sym] = bars
				}
			}

			freshReports := facade.AnalyzeAll(changed, time.Now().UTC())
			errHandler.Handle(db.SaveReports(freshReports), "report persistence")

			metrics := models.MProcessingMetrics{
				AnalysisTimeSeconds: time.Since(startProcess).Seconds(),
				ValidSymbols:        len(updates),
				ReportsProduced:     len(freshReports),
			}

			// Merge into server state, then push the merged snapshot
			srv.UpdateReports(freshReports, metrics)
			srv.Broadcast(&models.MLatestData{
				Type:              "UPDATE",
				Reports:           freshReports,
				Timestamp:         time.Now().UTC().Unix(),
				ProcessingMetrics: metrics,
			})

			// Cleanup
			db.CleanupOldData()

		case <-quit:
			appLogger.Info("Shutting down...")
			cancel()      // Signal source to stop
			wrapWg.Wait() // Wait for source to close
			return
		}
	}
}

// -----------------------------------------------------------------------------

// loadInitialData tries the storage cache first and only hits the source when
// a configured symbol has no fresh cached series.
func loadInitialData(
	cfg *models.MConfig,
	db interfaces.IDatabase,
	source interfaces.IDataSource,
	log *logger.Logger,
) map[string][]models.MBar {
	result := make(map[string][]models.MBar)
	minFetchedAt := time.Now().UTC().Add(-cacheFreshness).Unix()

	missing := false
	for _, srcCfg := range cfg.DataSource.Sources {
		for _, sym := range srcCfg.Symbols {
			bars, err := db.LoadBars(sym, minFetchedAt)
			if err != nil {
				log.Warning("Cache load failed for %s: %v", sym, err)
			}
			if len(bars) == 0 {
				missing = true
				continue
			}
			result[sym] = bars
		}
	}

	if !missing {
		log.Info("Loaded %d symbols from storage cache", len(result))
		return result
	}

	log.Info("Fetching initial data...")
	fetched, err := source.FetchInitialData()
	if err != nil {
		log.Warning("Initial fetch failed: %v", err)
		return result
	}

	var all []models.MBar
	for sym, bars := range fetched {
		result[sym] = bars
		all = append(all, bars...)
	}
	if err := db.SaveBarsBulk(all); err != nil {
		log.Error("Failed to cache initial bars: %v", err)
	}

	return result
}
