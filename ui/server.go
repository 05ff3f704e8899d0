package ui

import (
	"net/http"

	"datamend/internal"
	"datamend/internal/config"

	"github.com/gin-gonic/gin"
)

// Server is the thin HTTP layer over the cleaning engine. Every request
// constructs its own cleaner from its own file; the server itself holds
// no table state.
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *internal.Logger
}

// NewServer creates the web server and registers its routes.
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	s := &Server{
		router: gin.Default(),
		cfg:    cfg,
		log:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.MaxMultipartMemory = s.cfg.Storage.MaxUploadBytes

	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.POST("/clean", s.handleClean)
	s.router.GET("/download/:filename", s.handleDownload)
	s.router.POST("/cleanup", s.handleCleanup)
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
