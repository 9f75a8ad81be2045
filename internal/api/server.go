// Package api exposes the core operations over HTTP with gin.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prediction-radar/config"
	"prediction-radar/internal/ai/analysis"
	"prediction-radar/internal/database"
	"prediction-radar/internal/markets"
	"prediction-radar/internal/service"
	"prediction-radar/internal/ticker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server is the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	svc        *service.Service
	aggregator *markets.Aggregator
	analyzer   *analysis.Analyzer
	db         *database.DB // nil when the position journal is disabled
	hub        *ticker.Hub  // nil when the price stream is disabled
	config     config.ServerConfig
	logger     zerolog.Logger
}

// NewServer wires the routes. db and hub may be nil; their endpoints then
// respond 503 / 404 respectively.
func NewServer(
	cfg config.ServerConfig,
	svc *service.Service,
	aggregator *markets.Aggregator,
	analyzer *analysis.Analyzer,
	db *database.DB,
	hub *ticker.Hub,
	logger zerolog.Logger,
) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "*" || cfg.AllowedOrigins == "" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		router:     router,
		svc:        svc,
		aggregator: aggregator,
		analyzer:   analyzer,
		db:         db,
		hub:        hub,
		config:     cfg,
		logger:     logger.With().Str("component", "api").Logger(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		newsGroup := api.Group("/news")
		{
			newsGroup.GET("/trending", s.handleTrending)
			newsGroup.GET("/opportunities", s.handleOpportunities)
			newsGroup.POST("/match", s.handleMatchEvent)
			newsGroup.POST("/warm-cache", s.handleWarmCache)
			newsGroup.GET("/market-of-the-hour", s.handleMarketOfTheHour)
			newsGroup.POST("/analyze", s.handleAnalyze)
		}

		marketsGroup := api.Group("/markets")
		{
			marketsGroup.GET("", s.handleMarkets)
			marketsGroup.GET("/search", s.handleMarketSearch)
			marketsGroup.GET("/:venue/:id", s.handleMarketByID)
		}

		positionsGroup := api.Group("/positions")
		{
			positionsGroup.GET("", s.handleListPositions)
			positionsGroup.GET("/summary", s.handlePnLSummary)
			positionsGroup.GET("/:id", s.handleGetPosition)
			positionsGroup.POST("", s.handleCreatePosition)
			positionsGroup.PUT("/:id", s.handleUpdatePosition)
			positionsGroup.POST("/:id/close", s.handleClosePosition)
			positionsGroup.DELETE("/:id", s.handleDeletePosition)
		}
	}

	if s.hub != nil {
		s.router.GET("/ws/prices", func(c *gin.Context) {
			s.hub.HandleConnection(c.Writer, c.Request)
		})
	}
}

// Router exposes the gin engine for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	readTimeout := time.Duration(s.config.ReadTimeout) * time.Second
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := time.Duration(s.config.WriteTimeout) * time.Second
	if writeTimeout <= 0 {
		writeTimeout = 15 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
