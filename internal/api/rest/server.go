package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KevinKickass/OpenPanelCore/internal/api/websocket"
	"github.com/KevinKickass/OpenPanelCore/internal/config"
	"github.com/KevinKickass/OpenPanelCore/internal/interfaces"
	"github.com/KevinKickass/OpenPanelCore/internal/widgets"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	lm        interfaces.LifecycleManager
	logger    *zap.Logger
	server    *http.Server
	wsHub     *websocket.Hub
	validator *widgets.Validator
}

func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)

	validator, err := widgets.NewValidator()
	if err != nil {
		logger.Fatal("Failed to compile dashboard schema", zap.Error(err))
	}

	s := &Server{
		router:    gin.Default(),
		lm:        lm,
		logger:    logger,
		wsHub:     wsHub,
		validator: validator,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	// Public routes
	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// ==================== DASHBOARDS (PERSISTENCE GATEWAY) ====================
		dashboards := v1.Group("/dashboards")
		{
			dashboards.GET("", s.listDashboards)
			// "active" is a reserved name resolved inside the handler
			dashboards.GET("/:name", s.getDashboard)
			dashboards.POST("", s.createDashboard)
			dashboards.PUT("/:name", s.updateDashboard)
			dashboards.PUT("/:name/publish", s.publishDashboard)
			dashboards.DELETE("/:name", s.deleteDashboard)
			dashboards.POST("/:name/widgets", s.addDashboardWidget)
			dashboards.DELETE("/:name/widgets/:id", s.removeDashboardWidget)
		}

		// ==================== SETTINGS TEMPLATES ====================
		templates := v1.Group("/templates")
		{
			templates.GET("", s.listTemplates)
			templates.GET("/:name", s.getTemplate)
			templates.POST("", s.createTemplate)
			templates.DELETE("/:name", s.deleteTemplate)
		}

		// ==================== COMPOSITION SESSION ====================
		sess := v1.Group("/session")
		{
			sess.GET("", s.getSessionStatus)
			sess.GET("/widgets", s.getSessionWidgets)
			sess.GET("/values", s.getSessionValues)
			sess.POST("/new", s.newDashboard)
			sess.POST("/open/:name", s.openDashboard)
			sess.POST("/widgets", s.addWidget)
			sess.DELETE("/widgets/:id", s.deleteWidget)
			sess.PUT("/widgets/:id/binding", s.applyBinding)
			sess.PUT("/widgets/:id/settings", s.applySettings)
			sess.PUT("/settings/bulk", s.applySettingsBulk)
			sess.PUT("/layout", s.applyLayout)
			sess.POST("/save", s.saveDashboard)
			sess.POST("/publish", s.publishSession)
			sess.POST("/edit-mode", s.toggleEditMode)
			sess.DELETE("", s.deleteSessionDashboard)
		}

		// ==================== SYSTEM ====================
		system := v1.Group("/system")
		{
			system.GET("/status", s.getSystemStatus)
		}

		// ==================== WEBSOCKET (VIEWER LIVE STREAM) ====================
		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.lm.GetCurrentStatus())
}
