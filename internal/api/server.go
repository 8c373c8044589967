package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentradar/scraper/internal/api/middleware"
	"github.com/contentradar/scraper/internal/config"
	"github.com/contentradar/scraper/internal/metrics"
	"github.com/contentradar/scraper/internal/orchestrator"
	"github.com/contentradar/scraper/internal/runlog"
	"github.com/contentradar/scraper/internal/store"
)

// Logger is the minimal structured-logging capability the server needs.
type Logger interface {
	Info(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// Server is the admin HTTP API: scraper control, run logs, content browsing.
type Server struct {
	cfg        *config.Config
	log        Logger
	router     *gin.Engine
	httpServer *http.Server
	scraper    *orchestrator.Scraper
	content    *store.Store
	runLogs    *runlog.Store
	startedAt  time.Time
}

// Params bundles the Server's dependencies.
type Params struct {
	Config  *config.Config
	Logger  Logger
	Scraper *orchestrator.Scraper
	Content *store.Store
	RunLogs *runlog.Store
}

// NewServer builds the gin engine and registers every route spec.md §6
// names, plus a Prometheus /metrics endpoint.
func NewServer(p Params) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(p.Config.AllowedOrigins))

	s := &Server{
		cfg:       p.Config,
		log:       p.Logger,
		router:    router,
		scraper:   p.Scraper,
		content:   p.Content,
		runLogs:   p.RunLogs,
		startedAt: time.Now(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	scraperGroup := s.router.Group("/api/scraper")
	{
		scraperGroup.GET("/status", s.handleScraperStatus)
		scraperGroup.GET("/types", s.handleScraperTypes)
		scraperGroup.POST("/start", s.handleScraperStart)
		scraperGroup.POST("/start/:name", s.handleScraperStartOne)
		scraperGroup.POST("/stop", s.handleScraperStop)
		scraperGroup.GET("/logs", s.handleScraperLogs)
		scraperGroup.GET("/logs/:id", s.handleScraperLogByID)
		scraperGroup.GET("/stats", s.handleScraperStats)
		scraperGroup.GET("/file-logs/:filename", s.handleFileLogTail)
	}

	contentGroup := s.router.Group("/api/content")
	{
		contentGroup.GET("", s.handleContentList)
		contentGroup.GET("/:id", s.handleContentGet)
		contentGroup.DELETE("/:id", s.handleContentDelete)
		contentGroup.PATCH("/:id/status", s.handleContentSetStatus)
		contentGroup.POST("/cleanup", s.handleContentCleanup)
		contentGroup.GET("/stats/overview", s.handleContentStatsOverview)
	}
}

// Start runs the HTTP server on cfg.Port. Blocks until the listener exits.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("api: listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("api: shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}
