package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/dashboard"
)

func init() {
	// Amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Server serves the dashboard API and, optionally, the static front end.
type Server struct {
	server    *http.Server
	router    *gin.Engine
	logger    *zap.Logger
	UUID      string
	StartTime time.Time
}

// NewServer creates a new Server.
func NewServer(cfg *config.Server, svc *dashboard.Service, logger *zap.Logger) *Server {
	s := &Server{
		router:    gin.New(),
		logger:    logger.Named("api-server"),
		UUID:      uuid.NewString(),
		StartTime: time.Now(),
	}
	s.router.Use(gin.Recovery(), requestLogger(s.logger))

	h := NewAPIHandler(s.logger, svc)
	h.Register(s.router)
	s.router.GET("/healthz", s.healthHandler)
	s.router.GET("/api/status", s.statusHandler)

	if cfg.StaticDir != "" {
		s.router.Static("/static", cfg.StaticDir)
	}
	if cfg.IndexFile != "" {
		s.router.GET("/", func(c *gin.Context) {
			c.File(cfg.IndexFile)
		})
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uuid":       s.UUID,
		"start_time": s.StartTime.Format(time.RFC3339),
		"uptime":     time.Since(s.StartTime).Round(time.Second).String(),
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
