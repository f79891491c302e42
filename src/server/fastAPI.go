package server

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"market-structure/src/logger"
	"market-structure/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	// WebSocket clients. The clients map belongs to the Hub goroutine;
	// handlers read the connection count through the atomic instead.
	clients    map[*Client]struct{}
	connCount  atomic.Int64
	broadcast  chan *models.MLatestData // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, logger *logger.Logger) *FastAPIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:  cfg,
		Logger:  logger,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		// Queue size of 256 ensures we can handle bursts of updates
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latestState: &models.MLatestData{
			Type:              "INITIAL",
			Reports:           make(map[string]models.MStructureReport),
			Timestamp:         0,
			ProcessingMetrics: models.MProcessingMetrics{},
		},
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/structure", s.getStructure)
	s.engine.GET("/api/structure/:symbol", s.getSymbolStructure)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop is terminal: the Hub loop drains its clients and exits, and later
// Broadcast calls become no-ops. Safe to call more than once.
func (s *FastAPIServer) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getMetrics(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	// Return processing_metrics
	c.JSON(200, s.latestState.ProcessingMetrics)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	// Return the tunables clients care about
	c.JSON(200, gin.H{
		"bar_interval":      s.Config.DataSource.BarInterval,
		"swing_lookback":    s.Config.Analysis.SwingLookback,
		"neutral_band_frac": s.Config.Analysis.NeutralBandFrac,
		"retrace_frac":      s.Config.Analysis.RetraceFrac,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   s.connCount.Load(),
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

// getStructure returns the latest report for every tracked symbol.
func (s *FastAPIServer) getStructure(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"reports":   s.latestState.Reports,
		"timestamp": s.latestState.Timestamp,
	})
}

// -----------------------------------------------------------------------------

// getSymbolStructure returns the latest report for one symbol, 404 when the
// symbol is not tracked or has not produced a report yet.
func (s *FastAPIServer) getSymbolStructure(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	s.stateMutex.RLock()
	report, ok := s.latestState.Reports[symbol]
	s.stateMutex.RUnlock()

	if !ok {
		c.JSON(404, gin.H{"error": fmt.Sprintf("no report for symbol %s", symbol)})
		return
	}

	c.JSON(200, report)
}

// -----------------------------------------------------------------------------

// UpdateReports merges fresh reports into the served state without pushing to
// websocket clients. Used for the initial backfill before clients connect.
func (s *FastAPIServer) UpdateReports(reports map[string]models.MStructureReport, metrics models.MProcessingMetrics) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	if s.latestState.Reports == nil {
		s.latestState.Reports = make(map[string]models.MStructureReport)
	}
	for sym, report := range reports {
		s.latestState.Reports[sym] = report
	}

	s.latestState.Timestamp = time.Now().UTC().Unix()
	s.latestState.ProcessingMetrics = metrics
	s.latestState.Type = "UPDATE"
}
