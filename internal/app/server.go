// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/jobs"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/middleware"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/elasticsearch"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/metrics"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/user"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/webhook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	rateLimiter    *middleware.RateLimiter
	orphanSweepJob *jobs.OrphanSweepJob

	// ESClient is nil when the search index is disabled.
	ESClient *elasticsearch.ESClientWrapper
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	collector *metrics.Collector,
	rateLimiter *middleware.RateLimiter,
	taskHandler *task.Handler,
	userHandler *user.Handler,
	webhookHandler *webhook.Handler,
	orphanSweepJob *jobs.OrphanSweepJob,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	common.RegisterValidation()

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.Metrics(collector))
	router.Use(rateLimiter.Middleware())

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Task manager API is healthy!"})
	})
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	v1 := router.Group("/api/v1")
	taskHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)

	// Webhooks live outside the versioned API.
	webhookHandler.RegisterRoutes(router.Group("/api"))

	timeout := cfg.ServerTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		rateLimiter:    rateLimiter,
		orphanSweepJob: orphanSweepJob,
		ESClient:       esClient,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", common.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", common.RequestIDHeader}
	return corsConfig
}

// Router exposes the configured engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Logger returns the application logger.
func (s *Server) Logger() *zap.Logger {
	return s.logger
}

func (s *Server) Start() error {
	if s.orphanSweepJob != nil {
		if err := s.orphanSweepJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start orphan sweep job", zap.Error(err))
		}
	} else {
		s.logger.Info("Orphan sweep job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.orphanSweepJob != nil {
		s.orphanSweepJob.Stop()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
