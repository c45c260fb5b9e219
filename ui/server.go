package ui

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"gridxml/app"
	"gridxml/internal/config"
)

// Server represents the web server for the conversion API
type Server struct {
	router  *gin.Engine
	service *app.ConversionService
	config  *config.Config

	// Finished conversions, id -> output file. In-memory only: no state
	// survives the process, and the files themselves are the only artifacts.
	resultsMutex sync.RWMutex
	results      map[string]conversionResult
}

type conversionResult struct {
	OutputPath string
	Encrypted  bool
}

// NewServer creates a new web server instance
func NewServer(cfg *config.Config, service *app.ConversionService) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:  gin.Default(),
		service: service,
		config:  cfg,
		results: make(map[string]conversionResult),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/convert", s.handleConvert)
	api.GET("/convert/:id/download", s.handleDownload)
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) storeResult(id string, result conversionResult) {
	s.resultsMutex.Lock()
	defer s.resultsMutex.Unlock()
	s.results[id] = result
}

func (s *Server) lookupResult(id string) (conversionResult, bool) {
	s.resultsMutex.RLock()
	defer s.resultsMutex.RUnlock()
	result, ok := s.results[id]
	return result, ok
}
